// Package handler provides HTTP request handlers for PushMesh.
//
// This package contains handlers for all HTTP endpoints:
//
//   - notify.go: notification submission, including the legacy alias
//   - connections.go: connection listing and the WebSocket connect endpoint
//   - health.go: health and readiness checks
//
// All handlers follow a consistent pattern:
//
//   - Parse and validate request
//   - Call domain service
//   - Format and return response
//   - Handle errors with appropriate HTTP status codes
package handler
