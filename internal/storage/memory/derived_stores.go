package memory

import (
	"context"
	"sync"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// derivedStore holds one fully-rebuilt derived table. Replace swaps the
// whole slice under the lock, so readers see either the old table or the
// new one, never a partial rebuild. Rows are stored in the order given; the
// metric engine produces them ascending by time.
type derivedStore[T any] struct {
	mu   sync.RWMutex
	rows []T
}

func (s *derivedStore[T]) Replace(_ context.Context, rows []T) error {
	cp := make([]T, len(rows))
	copy(cp, rows)

	s.mu.Lock()
	s.rows = cp
	s.mu.Unlock()
	return nil
}

func (s *derivedStore[T]) Latest(_ context.Context) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.rows) == 0 {
		return nil, storage.ErrNotFound
	}
	latest := s.rows[len(s.rows)-1]
	return &latest, nil
}

func (s *derivedStore[T]) History(_ context.Context, limit int) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.rows
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	out := make([]T, len(rows))
	copy(out, rows)
	return out, nil
}

// PiCycleStore is an in-memory implementation of storage.PiCycleStore.
type PiCycleStore struct {
	derivedStore[domain.PiCycleRow]
}

// NewPiCycleStore creates a new in-memory pi_cycle store.
func NewPiCycleStore() *PiCycleStore { return &PiCycleStore{} }

var _ storage.PiCycleStore = (*PiCycleStore)(nil)

// WMA200Store is an in-memory implementation of storage.WMA200Store.
type WMA200Store struct {
	derivedStore[domain.WMA200Row]
}

// NewWMA200Store creates a new in-memory wma_200 store.
func NewWMA200Store() *WMA200Store { return &WMA200Store{} }

var _ storage.WMA200Store = (*WMA200Store)(nil)

// S2FStore is an in-memory implementation of storage.S2FStore.
type S2FStore struct {
	derivedStore[domain.S2FRow]
}

// NewS2FStore creates a new in-memory s2f_model store.
func NewS2FStore() *S2FStore { return &S2FStore{} }

var _ storage.S2FStore = (*S2FStore)(nil)

// PuellStore is an in-memory implementation of storage.PuellStore.
type PuellStore struct {
	derivedStore[domain.PuellRow]
}

// NewPuellStore creates a new in-memory puell_multiple store.
func NewPuellStore() *PuellStore { return &PuellStore{} }

var _ storage.PuellStore = (*PuellStore)(nil)
