// Package wsserver accepts destination WebSocket connections and keeps
// them alive.
//
// A connection claims its destination identifier in the registry before
// the HTTP upgrade, so a duplicate is refused with a plain HTTP error and
// never sees a WebSocket. Once upgraded, each connection runs three tasks
// in one errgroup:
//
//   - reader: decodes inbound frames and applies Translate
//   - writer: drains the connection's outbox in order
//   - monitor: the liveness monitor probing the peer with pings
//
// The first task to stop cancels the others. Teardown then removes the
// handle from the registry, closes the outbox and the socket, once.
package wsserver
