// Package shutdown coordinates graceful process termination.
//
// Hooks registered with OnShutdown run in reverse order once SIGINT or
// SIGTERM arrives (or Trigger is called), all sharing one timeout:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(func(context.Context) error { registry.Close(); return nil })
//	h.OnShutdown(httpServer.Shutdown)
//	err := h.Wait()
package shutdown
