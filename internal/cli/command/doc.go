// Package command defines the pushmesh-cli commands on urfave/cli/v2.
//
//   - root.go: App, global flags, client and output helpers
//   - notify.go: notify DESTINATION_ID MESSAGE
//   - connections.go: connections [--detail]
//   - health.go: health and ready probes
//   - listen.go: listen DESTINATION_ID, a WebSocket destination for testing
//   - config.go: server config validate/default, cli config show
//
// Commands write to App.Writer so they can be run against a buffer.
package command
