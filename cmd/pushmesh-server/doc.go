// Package main provides the entry point for pushmesh-server.
//
// The server accepts WebSocket connections from destinations on
// /connect/{destination_id} and relays POST /notify requests to them
// while they are connected.
//
// Usage:
//
//	pushmesh-server [flags]
//	pushmesh-server --config /etc/pushmesh/server.yaml
//
// Settings come from defaults, the optional YAML file and PUSHMESH_*
// environment variables, in that order. Changing log.level in the file
// takes effect without a restart.
package main
