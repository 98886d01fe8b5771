package store_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"ledgerdesk/internal/domain"
	"ledgerdesk/internal/store"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func qty(n int64) *int64 { return &n }

func TestAddPreservesOrder(t *testing.T) {
	s := store.New()
	var ids []string
	for _, desc := range []string{"first", "second", "third"} {
		it, err := s.Add(store.AddOptions{Description: desc, Rate: dec("10")})
		if err != nil {
			t.Fatalf("add %s: %v", desc, err)
		}
		ids = append(ids, it.ID)
	}
	items := s.Items()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	for i, it := range items {
		if it.ID != ids[i] {
			t.Fatalf("position %d: id %s, want %s", i, it.ID, ids[i])
		}
	}
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	s := store.New()
	it, err := s.Add(store.AddOptions{Description: "salary line", Rate: dec("5000")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if it.Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", it.Quantity)
	}
}

func TestAddRejectsInvalidValues(t *testing.T) {
	s := store.New()
	if _, err := s.Add(store.AddOptions{Quantity: qty(0), Rate: dec("10")}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("zero quantity: got %v, want ErrInvalidValue", err)
	}
	if _, err := s.Add(store.AddOptions{Rate: dec("-1")}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("negative rate: got %v, want ErrInvalidValue", err)
	}
	if _, err := s.Add(store.AddOptions{Rate: dec("10"), Deductions: dec("-5")}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("negative deductions: got %v, want ErrInvalidValue", err)
	}
	if s.Len() != 0 {
		t.Fatalf("store changed by rejected adds, len = %d", s.Len())
	}
}

func TestUpdatePartialAndRejection(t *testing.T) {
	s := store.New()
	it, err := s.Add(store.AddOptions{Description: "widget", Quantity: qty(2), Rate: dec("25")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	rate := dec("30")
	updated, err := s.Update(it.ID, store.UpdateOptions{Rate: &rate})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 2 || !updated.Rate.Equal(dec("30")) {
		t.Fatalf("partial update lost fields: qty=%d rate=%s", updated.Quantity, updated.Rate)
	}

	bad := dec("-1")
	if _, err := s.Update(it.ID, store.UpdateOptions{Rate: &bad}); !errors.Is(err, domain.ErrInvalidValue) {
		t.Fatalf("negative rate: got %v, want ErrInvalidValue", err)
	}
	got, err := s.Get(it.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Rate.Equal(dec("30")) {
		t.Fatalf("rejected update mutated item: rate = %s", got.Rate)
	}

	if _, err := s.Update("missing", store.UpdateOptions{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("absent id: got %v, want ErrNotFound", err)
	}
}

func TestRemoveReindexes(t *testing.T) {
	s := store.New()
	a, _ := s.Add(store.AddOptions{Description: "a", Rate: dec("1")})
	b, _ := s.Add(store.AddOptions{Description: "b", Rate: dec("2")})
	c, _ := s.Add(store.AddOptions{Description: "c", Rate: dec("3")})

	if err := s.Remove(b.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items := s.Items()
	if len(items) != 2 || items[0].ID != a.ID || items[1].ID != c.ID {
		t.Fatalf("unexpected order after remove: %+v", items)
	}
	if _, err := s.Get(c.ID); err != nil {
		t.Fatalf("get after reindex: %v", err)
	}
	if err := s.Remove(b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("double remove: got %v, want ErrNotFound", err)
	}
}

func TestReaddedItemGetsNewID(t *testing.T) {
	s := store.New()
	opts := store.AddOptions{Description: "monitor", Quantity: qty(2), Rate: dec("150")}
	first, err := s.Add(opts)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Remove(first.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	second, err := s.Add(opts)
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("re-added item reused id %s", first.ID)
	}
	if second.Description != first.Description || !second.Rate.Equal(first.Rate) {
		t.Fatalf("re-added item differs beyond id")
	}
}

func TestReset(t *testing.T) {
	s := store.New()
	s.Add(store.AddOptions{Description: "x", Rate: dec("1")})
	s.Add(store.AddOptions{Description: "y", Rate: dec("2")})
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("len after reset = %d, want 0", s.Len())
	}
	if _, err := s.Add(store.AddOptions{Description: "z", Rate: dec("3")}); err != nil {
		t.Fatalf("add after reset: %v", err)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	s := store.New()
	it, _ := s.Add(store.AddOptions{Description: "orig", Rate: dec("5")})
	items := s.Items()
	items[0].Description = "mutated"
	got, _ := s.Get(it.ID)
	if got.Description != "orig" {
		t.Fatalf("external mutation leaked into store")
	}
}
