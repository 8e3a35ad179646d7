// Package memory provides an in-memory transaction store with the same
// semantics as the SQLite engine. It backs the fallback path used when no
// persistent backend is reachable, and doubles as a test double for layers
// above the storage ports.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"budget/internal/core"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
}

func New() *Store {
	return &Store{nextID: 1}
}

// Insert implements store.TransactionWriter.
func (s *Store) Insert(_ context.Context, in core.TransactionInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := core.Transaction{
		ID:          s.nextID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date,
		CreatedAt:   time.Now().UTC(),
	}
	s.nextID++
	s.items = append(s.items, tx)

	return tx.ID, nil
}

// Update implements store.TransactionWriter.
func (s *Store) Update(_ context.Context, id int64, in core.TransactionInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Type = in.Type
			s.items[i].Amount = in.Amount
			s.items[i].Description = in.Description
			s.items[i].Category = in.Category
			s.items[i].Date = in.Date
			return 1, nil
		}
	}
	return 0, nil
}

// Delete implements store.TransactionWriter. Missing ids are a no-op.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// ListByMonth implements store.TransactionLister with the same ordering as
// the SQLite engine: date descending, then newest entry first.
func (s *Store) ListByMonth(_ context.Context, key core.MonthKey) ([]core.Transaction, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []core.Transaction{}
	for _, tx := range s.items {
		if tx.Date.Year() == key.Year && tx.Date.Month() == key.Month {
			out = append(out, tx)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Date.String(), out[j].Date.String()
		if di != dj {
			return di > dj
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

// SummaryByMonth implements store.SummaryReader.
func (s *Store) SummaryByMonth(_ context.Context, key core.MonthKey) ([]core.TypeCategoryTotal, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type groupKey struct {
		typ      core.TransactionType
		category string
	}
	groups := map[groupKey]*core.TypeCategoryTotal{}
	for _, tx := range s.items {
		if tx.Date.Year() != key.Year || tx.Date.Month() != key.Month {
			continue
		}
		k := groupKey{tx.Type, tx.Category}
		g, ok := groups[k]
		if !ok {
			g = &core.TypeCategoryTotal{Type: tx.Type, Category: tx.Category}
			groups[k] = g
		}
		g.Total += tx.Amount
		g.Count++
	}

	out := []core.TypeCategoryTotal{}
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Category < out[j].Category
	})

	return out, nil
}

// CategorySummary implements store.SummaryReader, largest total first with
// category name breaking ties.
func (s *Store) CategorySummary(_ context.Context, typ core.TransactionType, key core.MonthKey) ([]core.CategoryTotal, error) {
	if !typ.Valid() {
		return nil, core.ErrInvalidType
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	groups := map[string]*core.CategoryTotal{}
	for _, tx := range s.items {
		if tx.Type != typ || tx.Date.Year() != key.Year || tx.Date.Month() != key.Month {
			continue
		}
		g, ok := groups[tx.Category]
		if !ok {
			g = &core.CategoryTotal{Category: tx.Category}
			groups[tx.Category] = g
		}
		g.Total += tx.Amount
		g.Count++
	}

	out := []core.CategoryTotal{}
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})

	return out, nil
}
