// Package shutdown coordinates graceful process termination.
//
// Components register hooks with OnShutdown as they start. Wait blocks
// until SIGINT, SIGTERM, Trigger or context cancellation, then runs the
// hooks newest first under a shared deadline:
//
//	h := shutdown.NewHandler(30*time.Second, logger)
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
