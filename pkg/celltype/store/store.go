package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/celltype/pkg/celltype/doc"
)

// DefaultListLimit caps ListSheets when the caller passes no limit.
const DefaultListLimit = 20

// Store persists converted sheets for a downstream indexer.
type Store interface {
	Close() error

	// PutSheet stores s, assigning s.ID when it is empty, and returns the
	// id. Storing a sheet with a known id replaces it.
	PutSheet(ctx context.Context, s *doc.Sheet) (string, error)
	// GetSheet returns internalerr.ErrNotFound for unknown ids.
	GetSheet(ctx context.Context, id string) (*doc.Sheet, error)
	// ListSheets returns summaries, newest first.
	ListSheets(ctx context.Context, limit int) ([]Summary, error)
}

// Summary describes a stored sheet without its cells.
type Summary struct {
	ID        string
	Source    string
	Title     string
	Columns   int
	Rows      int
	CreatedAt time.Time
}

// Summarize builds the summary of s stored at t.
func Summarize(s *doc.Sheet, t time.Time) Summary {
	return Summary{
		ID:        s.ID,
		Source:    s.Source,
		Title:     s.Title,
		Columns:   len(s.Columns),
		Rows:      s.Rows(),
		CreatedAt: t,
	}
}

// IDs issues ULIDs that sort by creation time, monotonic within a
// millisecond.
type IDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDs creates an id generator.
func NewIDs() *IDs {
	return &IDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a fresh id for time t.
func (g *IDs) New(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

// CloneSheet deep-copies s.
func CloneSheet(s *doc.Sheet) *doc.Sheet {
	out := &doc.Sheet{ID: s.ID, Source: s.Source, Title: s.Title}
	if s.Columns != nil {
		out.Columns = make([]doc.Column, len(s.Columns))
	}
	for i, c := range s.Columns {
		col := doc.Column{Type: c.Type, Items: append([]doc.Item{}, c.Items...)}
		if c.Header != nil {
			h := *c.Header
			col.Header = &h
		}
		out.Columns[i] = col
	}
	return out
}
