// Package postgres provides the PostgreSQL implementation of the snapshot
// store defined in internal/store, together with the embedded goose
// migrations that create its schema. Connections go through database/sql
// using the pgx stdlib driver.
package postgres
