// Package connection talks to a pushmesh-server for pushmesh-cli.
//
//   - http.go: JSON API client and response envelope decoding
//   - ws.go: WebSocket listener that holds a destination connection open
package connection
