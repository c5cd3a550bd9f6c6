// Package oploader runs named operations in dependency order.
//
// An operation declares the names of the operations it depends on and a
// priority. Once every dependency has completed, the scheduler invokes the
// operation body on its dispatch goroutine; among ready operations the one
// with the highest priority goes first. The body reports completion through
// a done callback, synchronously or later from any goroutine. Re-triggering
// a completed operation runs it again and, after it completes, every
// operation depending on it.
//
// The root package wires the scheduler with structured logging, tracing,
// a worker pool for blocking work, lifecycle listeners and an outcome
// journal:
//
//	srv, _ := oploader.New()
//	_ = srv.Start(ctx)
//	defer srv.Shutdown()
//	sched := srv.Scheduler()
//	sched.RegisterFunc("login", nil, login)
//	sched.RegisterFunc("greet", []string{"login"}, greet)
//	sched.WaitFor([]string{"greet"}, func() { fmt.Println("ready") })
//
// For more details see the individual sub-packages.
package oploader
