// Package domain contains the core loyalty-card entities: the card owner
// identity, the per-owner card with its point balance and usage counter, and
// the errors raised when their rules are violated. It is independent of any
// storage or transport concern.
package domain
