// Package bootstrap runs an application once its context exists.
//
// A Sequencer walks the boot phases in order: the application's BeforeRun
// hook, its initializers one at a time, then the server list, which is
// handed to a Supervisor after the startup banner is printed. Any error
// before the supervisor aborts the boot.
//
//	seq := bootstrap.New(hooks, appCtx)
//	if err := seq.Boot(ctx); err != nil {
//	    return err
//	}
//	report := seq.Report()
//
// The Supervisor starts every server concurrently and waits for all of
// them. One server failing, or panicking, never stops the others; the
// failure only shows up in the logs and in the Report.
package bootstrap
