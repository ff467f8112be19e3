// Package derive recomputes reportable state from the event log.
//
// Every function here is pure: it takes a ledger.Snapshot (plus config and
// a reference instant where time matters) and returns a value. Nothing in
// this package writes, caches, or reads clocks, which is what lets the
// membership classifier be re-evaluated at arbitrary future dates for
// demotion projection.
package derive
