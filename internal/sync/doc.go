// Package sync implements the reconciliation engine: it diffs upstream
// reservations against a downstream system's current records, classifies
// each into CREATE, UPDATE, DELETE or SKIP using identity matching and
// content fingerprints, and applies the resulting plan in ordered
// concurrent batches.
//
// The planner is a pure function over its two input collections; all
// network I/O lives in the provider implementations and the executor.
package sync
