// Package service contains the application-level use cases for the loyalty
// ledger. It wraps the in-memory card operator with owner validation,
// request-scoped logging and snapshot persistence through the interfaces
// defined in internal/store.
//
// Key components:
//
// 1. LedgerService:
//   - Validates owner details before they reach the operator
//   - Tracks whether the ledger changed since the last checkpoint
//   - Restores the ledger from the latest snapshot on startup
//
// 2. Checkpointer:
//   - Writes a snapshot on a fixed interval while the ledger is dirty
//   - Writes a final snapshot when stopped
//
// Expected failures (unknown owner, duplicate registration, insufficient
// points) are returned as the domain sentinel errors so callers can use
// errors.Is. Persistence failures are wrapped in LedgerServiceError.
package service
