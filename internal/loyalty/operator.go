package loyalty

import (
	"fmt"
	"slices"
	"sync"

	"github.com/phrazzld/loyalty-api/internal/domain"
)

// PencePerPoint is the number of pence a customer spends to earn one point.
const PencePerPoint = 100

// Operator keeps one card per registered owner, keyed by email.
// It is safe for concurrent use; a single lock guards the registry and
// every card in it.
type Operator struct {
	mu    sync.RWMutex
	cards map[string]*domain.Card
	order []string // registration order
}

// NewOperator returns an operator with an empty registry.
func NewOperator() *Operator {
	return &Operator{
		cards: make(map[string]*domain.Card),
		order: make([]string, 0),
	}
}

// RegisterOwner issues a zero-balance card to the owner.
// It returns domain.ErrOwnerAlreadyRegistered if the email is already known.
func (o *Operator) RegisterOwner(owner domain.Owner) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.cards[owner.Email]; exists {
		return fmt.Errorf("%w: %s", domain.ErrOwnerAlreadyRegistered, owner.Email)
	}

	o.cards[owner.Email] = domain.NewCard(owner)
	o.order = append(o.order, owner.Email)
	return nil
}

// UnregisterOwner removes the owner's card and its history.
// It returns domain.ErrOwnerNotRegistered if the email is unknown.
func (o *Operator) UnregisterOwner(owner domain.Owner) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.cards[owner.Email]; !exists {
		return notRegistered(owner.Email)
	}

	delete(o.cards, owner.Email)
	if i := slices.Index(o.order, owner.Email); i >= 0 {
		o.order = slices.Delete(o.order, i, i+1)
	}
	return nil
}

// ProcessMoneyPurchase credits one point per whole PencePerPoint spent.
// Purchases worth less than one point leave the card untouched.
func (o *Operator) ProcessMoneyPurchase(email string, pence int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	card, err := o.lookup(email)
	if err != nil {
		return err
	}

	card.AddPoints(pence / PencePerPoint)
	return nil
}

// ProcessPointsPurchase pays for a purchase with points from the owner's card.
// An ErrInsufficientPoints failure leaves the card unchanged.
func (o *Operator) ProcessPointsPurchase(email string, points int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	card, err := o.lookup(email)
	if err != nil {
		return err
	}

	return card.UsePoints(points)
}

// NumberOfCustomers returns how many owners are currently registered.
func (o *Operator) NumberOfCustomers() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.cards)
}

// TotalNumberOfPoints returns the sum of all card balances.
func (o *Operator) TotalNumberOfPoints() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.totalPoints()
}

// NumberOfPoints returns the balance of the owner's card.
func (o *Operator) NumberOfPoints(email string) (int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	card, err := o.lookup(email)
	if err != nil {
		return 0, err
	}
	return card.Points(), nil
}

// NumberOfUses returns how many times the owner's card has changed balance.
func (o *Operator) NumberOfUses(email string) (int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	card, err := o.lookup(email)
	if err != nil {
		return 0, err
	}
	return card.Uses(), nil
}

// MostUsed returns the owner whose card has the most uses. Ties go to the
// owner registered first. The boolean is false when nobody has used their
// card yet, including when the registry is empty.
func (o *Operator) MostUsed() (domain.Owner, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.mostUsed()
}

// Summary is a consistent view of the registry-wide figures.
type Summary struct {
	Customers   int
	TotalPoints int
	MostUsed    domain.Owner
	HasMostUsed bool
}

// Summary reads the customer count, the point total and the most used
// owner under a single lock.
func (o *Operator) Summary() Summary {
	o.mu.RLock()
	defer o.mu.RUnlock()

	owner, ok := o.mostUsed()
	return Summary{
		Customers:   len(o.cards),
		TotalPoints: o.totalPoints(),
		MostUsed:    owner,
		HasMostUsed: ok,
	}
}

// Card returns a copy of the owner's card.
func (o *Operator) Card(email string) (domain.Card, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	card, err := o.lookup(email)
	if err != nil {
		return domain.Card{}, err
	}
	return *card, nil
}

// Snapshot returns copies of every card in registration order.
func (o *Operator) Snapshot() []domain.Card {
	o.mu.RLock()
	defer o.mu.RUnlock()

	cards := make([]domain.Card, 0, len(o.order))
	for _, email := range o.order {
		cards = append(cards, *o.cards[email])
	}
	return cards
}

// Restore replaces the registry with the given cards, keeping their order.
// It returns domain.ErrOwnerAlreadyRegistered and leaves the registry
// untouched if two cards share an email.
func (o *Operator) Restore(cards []domain.Card) error {
	restored := make(map[string]*domain.Card, len(cards))
	order := make([]string, 0, len(cards))
	for i := range cards {
		email := cards[i].Owner().Email
		if _, exists := restored[email]; exists {
			return fmt.Errorf("%w: %s", domain.ErrOwnerAlreadyRegistered, email)
		}
		card := cards[i]
		restored[email] = &card
		order = append(order, email)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.cards = restored
	o.order = order
	return nil
}

// totalPoints must be called with o.mu held.
func (o *Operator) totalPoints() int {
	total := 0
	for _, card := range o.cards {
		total = domain.SumPoints(total, card.Points())
	}
	return total
}

// mostUsed must be called with o.mu held.
func (o *Operator) mostUsed() (domain.Owner, bool) {
	var (
		best    *domain.Card
		maxUses int
	)
	for _, email := range o.order {
		card := o.cards[email]
		if card.Uses() > maxUses {
			maxUses = card.Uses()
			best = card
		}
	}

	if best == nil {
		return domain.Owner{}, false
	}
	return best.Owner(), true
}

// lookup must be called with o.mu held.
func (o *Operator) lookup(email string) (*domain.Card, error) {
	card, ok := o.cards[email]
	if !ok {
		return nil, notRegistered(email)
	}
	return card, nil
}

func notRegistered(email string) error {
	return fmt.Errorf("%w: %s", domain.ErrOwnerNotRegistered, email)
}
