// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the ledger, which keeps its working state in memory and only uses a
// store to restore on startup and to write checkpoints.
package store
