// Package loyalty implements the card operator: the registry that issues one
// card per owner email, credits points from money purchases, debits points
// for points purchases and answers per-owner and aggregate queries.
//
// The registry remembers registration order. That order decides ties when
// looking up the most used card, so earlier registrations win.
package loyalty
