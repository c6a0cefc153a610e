// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT/SIGTERM, a programmatic Trigger, or context
// cancellation, then runs registered hooks in reverse registration order
// under a shared timeout:
//
//	h := shutdown.NewHandler(15*time.Second, logger)
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
