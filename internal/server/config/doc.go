// Package config provides server configuration for PushMesh.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (addresses, TLS files, liveness timing)
//   - sanitize.go: Log sanitization (hide sensitive values)
//   - convert.go: Mapping onto component configs
//
// Configuration is loaded via internal/infra/confloader from a YAML file
// and PUSHMESH_* environment variables.
package config
