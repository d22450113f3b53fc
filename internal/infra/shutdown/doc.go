// Package shutdown provides the termination sources a job host listens to.
//
// Each source implements Signal and fires at most once:
//
//   - External: forwards a caller-owned context
//   - FileSignal: fires when the shutdown file named by WEBJOBS_SHUTDOWN_FILE appears
//   - OSSignal: fires on SIGTERM or interrupt (Ctrl+C)
//
// Usage:
//
//	sig := shutdown.NewFileSignal()
//	defer sig.Close()
//	sig.OnFire(func() { log.Info("shutdown file detected") })
//	<-sig.Context().Done()
//
// A source that cannot arm (no env var, unwatchable directory) is inert: its
// context is never cancelled and its callbacks never run.
package shutdown
