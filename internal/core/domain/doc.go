// Package domain defines the core domain models for PushMesh.
//
// Domain models carry no transport coupling. This package contains:
//
//   - Handle: one live destination connection and its send capability
//   - Outbox: the unbounded, ordered outbound queue of a connection
//   - Notification: a targeted message submitted by a caller
//   - Frame: the closed set of WebSocket frame kinds the relay reacts to
//   - Errors: Domain-specific error definitions
package domain
