// Package api handles incoming HTTP requests for the loyalty ledger: request
// decoding and validation, error-to-status mapping and JSON responses. It
// adapts HTTP concerns to LedgerService operations.
package api
