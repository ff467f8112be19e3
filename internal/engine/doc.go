// Package engine executes shoplog write operations. Each operation reads
// a full snapshot from the store, validates the request against derived
// state, and appends the resulting events in a single transaction.
//
// All mutations are serialized through one Engine instance; the store's
// single-connection pool makes concurrent callers queue rather than
// interleave.
package engine
