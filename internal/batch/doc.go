// Package batch persists the working scan batch as a delimited UTF-8 file and
// enforces its duplicate-serial invariant.
//
// The Store serializes all batch access behind one coarse exclusive lock (an
// in-process mutex plus an advisory flock for independent processes) and
// re-derives duplicate membership from the file on every check, so no cached
// state can diverge from disk. Within one batch no two rows ever share a
// non-empty, case-normalized serial number.
//
// Treat this package as the single source of truth for batch semantics; the
// finalizer drains batches exclusively through Store.Drain so rotation stays
// atomic with respect to appends.
package batch
