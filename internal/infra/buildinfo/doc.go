// Package buildinfo exposes version, commit and build time injected via
// ldflags, for the --version flags, /health and the CLI User-Agent.
package buildinfo
