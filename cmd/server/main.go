// Package main implements the loyalty-api command, which serves the loyalty
// card ledger over HTTP and manages its PostgreSQL snapshot store.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
