// Package store holds the ordered line item collection of one draft.
package store

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledgerdesk/internal/domain"
)

// Store is an insertion-ordered, id-keyed line item collection. Ids are
// generated on add and never reused within the owning draft's lifetime. The
// store never recomputes derived values itself; the caller runs the
// derivation pass after each successful mutation.
type Store struct {
	items []domain.LineItem
	index map[string]int
}

func New() *Store {
	return &Store{index: map[string]int{}}
}

// AddOptions are the raw input fields for a new line item. Omitted amounts
// default to zero; an omitted quantity defaults to one.
type AddOptions struct {
	Description string
	RefID       string
	Quantity    *int64
	Rate        decimal.Decimal
	Overtime    decimal.Decimal
	Bonuses     decimal.Decimal
	Deductions  decimal.Decimal
}

// Add constructs a line item and appends it to the collection. The quantity
// must be at least one and every amount non-negative; a violating call fails
// with ErrInvalidValue and leaves the collection unchanged.
func (s *Store) Add(opts AddOptions) (domain.LineItem, error) {
	qty := int64(1)
	if opts.Quantity != nil {
		qty = *opts.Quantity
	}
	if qty < 1 {
		return domain.LineItem{}, domain.InvalidValue("quantity")
	}
	if err := checkAmounts(opts.Rate, opts.Overtime, opts.Bonuses, opts.Deductions); err != nil {
		return domain.LineItem{}, err
	}
	it := domain.LineItem{
		ID:          uuid.New().String(),
		Description: opts.Description,
		RefID:       opts.RefID,
		Quantity:    qty,
		Rate:        opts.Rate,
		Overtime:    opts.Overtime,
		Bonuses:     opts.Bonuses,
		Deductions:  opts.Deductions,
	}
	s.index[it.ID] = len(s.items)
	s.items = append(s.items, it)
	return it, nil
}

// UpdateOptions are a partial update; nil fields are left untouched.
type UpdateOptions struct {
	Description *string
	RefID       *string
	Quantity    *int64
	Rate        *decimal.Decimal
	Overtime    *decimal.Decimal
	Bonuses     *decimal.Decimal
	Deductions  *decimal.Decimal
}

// Update applies a partial update to the item with the given id. It fails
// with ErrNotFound for an absent id and ErrInvalidValue for a constraint
// violation; on failure the item is left exactly as it was.
func (s *Store) Update(id string, opts UpdateOptions) (domain.LineItem, error) {
	pos, ok := s.index[id]
	if !ok {
		return domain.LineItem{}, domain.ErrNotFound
	}
	it := s.items[pos]
	if opts.Description != nil {
		it.Description = *opts.Description
	}
	if opts.RefID != nil {
		it.RefID = *opts.RefID
	}
	if opts.Quantity != nil {
		it.Quantity = *opts.Quantity
	}
	if opts.Rate != nil {
		it.Rate = *opts.Rate
	}
	if opts.Overtime != nil {
		it.Overtime = *opts.Overtime
	}
	if opts.Bonuses != nil {
		it.Bonuses = *opts.Bonuses
	}
	if opts.Deductions != nil {
		it.Deductions = *opts.Deductions
	}
	if it.Quantity < 1 {
		return domain.LineItem{}, domain.InvalidValue("quantity")
	}
	if err := checkAmounts(it.Rate, it.Overtime, it.Bonuses, it.Deductions); err != nil {
		return domain.LineItem{}, err
	}
	s.items[pos] = it
	return it, nil
}

// Remove deletes the item with the given id, preserving the order of the
// rest. It fails with ErrNotFound for an absent id.
func (s *Store) Remove(id string) error {
	pos, ok := s.index[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.items); i++ {
		s.index[s.items[i].ID] = i
	}
	return nil
}

// Get returns the item with the given id.
func (s *Store) Get(id string) (domain.LineItem, error) {
	pos, ok := s.index[id]
	if !ok {
		return domain.LineItem{}, domain.ErrNotFound
	}
	return s.items[pos], nil
}

// Items returns a copy of the collection in insertion order.
func (s *Store) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// SetLineTotals writes freshly derived line totals back into the collection.
// The slice must come from Items() of the same store state.
func (s *Store) SetLineTotals(items []domain.LineItem) {
	for _, it := range items {
		if pos, ok := s.index[it.ID]; ok {
			s.items[pos].LineTotal = it.LineTotal
		}
	}
}

// Len returns the number of items.
func (s *Store) Len() int { return len(s.items) }

// Reset drops every item. Ids are uuid-generated, so a reset store still
// never hands out a previously used id.
func (s *Store) Reset() {
	s.items = nil
	s.index = map[string]int{}
}

func checkAmounts(rate, overtime, bonuses, deductions decimal.Decimal) error {
	if rate.IsNegative() {
		return domain.InvalidValue("rate")
	}
	if overtime.IsNegative() {
		return domain.InvalidValue("overtime")
	}
	if bonuses.IsNegative() {
		return domain.InvalidValue("bonuses")
	}
	if deductions.IsNegative() {
		return domain.InvalidValue("deductions")
	}
	return nil
}
