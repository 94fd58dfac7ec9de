package domain

import (
	"fmt"
	"math"
)

// MaxPoints caps a card balance. Credits that would pass it are clamped.
const MaxPoints = 1_000_000_000_000

// Card records one owner's point balance and how often the card has been used.
// A use is any operation that changes the balance.
//
// Card values are copied freely by the outer layers; only the operator that
// owns the registry entry mutates it.
type Card struct {
	owner  Owner
	points int
	uses   int
}

// NewCard returns a zero-balance, unused card for the owner.
func NewCard(owner Owner) *Card {
	return &Card{owner: owner}
}

// RestoreCard rebuilds a card from previously persisted values.
// It returns ErrInvalidCardState when points or uses are negative or points
// exceed MaxPoints.
func RestoreCard(owner Owner, points, uses int) (*Card, error) {
	if points < 0 {
		return nil, fmt.Errorf("%w: points %d is negative", ErrInvalidCardState, points)
	}
	if points > MaxPoints {
		return nil, fmt.Errorf("%w: points %d exceeds %d", ErrInvalidCardState, points, MaxPoints)
	}
	if uses < 0 {
		return nil, fmt.Errorf("%w: uses %d is negative", ErrInvalidCardState, uses)
	}
	return &Card{owner: owner, points: points, uses: uses}, nil
}

// Owner returns the owner the card was issued to.
func (c Card) Owner() Owner {
	return c.owner
}

// Points returns the current point balance.
func (c Card) Points() int {
	return c.points
}

// Uses returns the number of balance-changing operations applied to the card.
func (c Card) Uses() int {
	return c.uses
}

// AddPoints credits the card. Non-positive amounts are ignored and do not
// count as a use. The balance never exceeds MaxPoints; a credit on a full
// card changes nothing and is not a use.
func (c *Card) AddPoints(amount int) {
	if amount <= 0 || c.points >= MaxPoints {
		return
	}
	c.points = min(c.points+min(amount, MaxPoints), MaxPoints)
	c.uses++
}

// SumPoints adds balances without overflowing; the result saturates at
// math.MaxInt.
func SumPoints(total, points int) int {
	if points > math.MaxInt-total {
		return math.MaxInt
	}
	return total + points
}

// UsePoints debits the card. It fails with a *PointsError wrapping
// ErrInsufficientPoints when amount is not positive or exceeds the balance;
// the card is left untouched in that case. Note that zero is rejected here
// while AddPoints(0) is silently accepted.
func (c *Card) UsePoints(amount int) error {
	if amount > 0 && amount <= c.points {
		c.points -= amount
		c.uses++
		return nil
	}

	msg := msgInsufficientPoints
	if amount < 0 {
		msg = msgInvalidPointsToUse
	}
	return &PointsError{
		Requested: amount,
		Available: c.points,
		Message:   msg,
	}
}
