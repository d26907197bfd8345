// Package machine holds the VNC endpoint registry: the Machine model,
// its SQLite repository, and the read/write access predicates that the
// HTTP layer enforces on every machine operation.
package machine
