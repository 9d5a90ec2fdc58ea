// Package daemon wires the batch store, registry resolver, finalizer, and
// export history behind a JSON HTTP API, and enforces single-instance
// execution with an advisory lock file.
package daemon
