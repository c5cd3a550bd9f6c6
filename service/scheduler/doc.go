// Package scheduler runs named operations in dependency order.
//
// Operations are kept in an insertion-ordered registry. A single dispatch
// goroutine consumes control events (operation added, removed, completed,
// fallback tick, watchdog) and on every event selects at most one operation to
// start: among operations that are not executing, whose dependencies are all
// registered and completed, and which either never ran or are stale, the one
// with the highest priority wins and registration order breaks ties.
//
// An operation is stale when a direct dependency completed after it did and
// none of its dependencies is itself waiting to be refreshed. Re-triggering an
// operation therefore re-runs its dependents hop by hop, each one after its
// upstream has settled.
//
// The selected operation's body is invoked synchronously on the dispatch
// goroutine. Bodies are expected to hand blocking work elsewhere (see
// RegisterAsync) and report completion later from any goroutine.
package scheduler
