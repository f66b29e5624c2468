// Package logger provides structured logging for PushMesh.
//
// This package wraps log/slog:
//
//   - logger.go: handler construction, runtime level control, default logger
//   - context.go: context-aware logging with request IDs
//   - redact.go: sensitive data redaction
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime
//   - Automatic masking of secret-like fields
//   - Message bodies logged only as their size unless the level is debug
package logger
