package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/celltype/pkg/celltype/doc"
	"github.com/cognicore/celltype/pkg/celltype/internalerr"
	"github.com/cognicore/celltype/pkg/celltype/store"
)

type entry struct {
	sheet   *doc.Sheet
	created time.Time
}

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu     sync.RWMutex
	ids    *store.IDs
	sheets map[string]entry
	now    func() time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:    store.NewIDs(),
		sheets: make(map[string]entry),
		now:    time.Now,
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// PutSheet stores a copy of sh, keyed by its id.
func (s *Store) PutSheet(ctx context.Context, sh *doc.Sheet) (string, error) {
	if sh == nil {
		return "", fmt.Errorf("put sheet: nil sheet: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if sh.ID == "" {
		sh.ID = s.ids.New(now)
	}
	e, ok := s.sheets[sh.ID]
	if !ok {
		e.created = now
	}
	e.sheet = store.CloneSheet(sh)
	s.sheets[sh.ID] = e
	return sh.ID, nil
}

// GetSheet returns a copy of the stored sheet.
func (s *Store) GetSheet(ctx context.Context, id string) (*doc.Sheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sheets[id]
	if !ok {
		return nil, fmt.Errorf("sheet %s: %w", id, internalerr.ErrNotFound)
	}
	return store.CloneSheet(e.sheet), nil
}

// ListSheets returns summaries, newest first.
func (s *Store) ListSheets(ctx context.Context, limit int) ([]store.Summary, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Summary, 0, len(s.sheets))
	for _, e := range s.sheets {
		out = append(out, store.Summarize(e.sheet, e.created))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
