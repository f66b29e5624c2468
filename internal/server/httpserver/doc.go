// Package httpserver provides the HTTP/HTTPS server for PushMesh.
//
// This package implements the external API using stdlib net/http:
//
//   - Relay endpoints: /notify, /notify-machine, /connections
//   - WebSocket endpoints: /connect/{destination_id}, /ws/{destination_id}
//   - Health endpoints: /health, /ready, /metrics
//
// Features:
//
//   - Optional TLS
//   - Middleware chain: Recover, RequestID, Metrics, Audit, RateLimit, CORS
//   - Graceful shutdown
package httpserver
