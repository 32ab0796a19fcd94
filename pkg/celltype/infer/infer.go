// Package infer finds the narrowest type for single values and whole
// columns, and converts tables into annotated sheets.
package infer

import (
	"fmt"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/cognicore/celltype/pkg/celltype/internalerr"
	"github.com/cognicore/celltype/pkg/celltype/types"
)

// DefaultCacheSize bounds the value memo when Options leaves it zero.
const DefaultCacheSize = 10000

// Cell is one table cell. An absent cell (short row) has Valid false.
type Cell struct {
	Text  string
	Valid bool
}

// Present wraps s as a cell that exists in the input.
func Present(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// Options configures an Inferrer.
type Options struct {
	// CacheSize is the number of distinct values remembered; negative
	// disables the memo.
	CacheSize int
}

// Inferrer classifies values against a catalogue. It is safe for
// concurrent use.
type Inferrer struct {
	cat   *types.Catalogue
	order []types.Kind
	memo  *gocache.Cache
	limit int
}

// New creates an Inferrer over cat.
func New(cat *types.Catalogue, opts Options) *Inferrer {
	in := &Inferrer{
		cat:   cat,
		order: cat.Order(),
		limit: opts.CacheSize,
	}
	if in.limit == 0 {
		in.limit = DefaultCacheSize
	}
	if in.limit > 0 {
		in.memo = gocache.New(gocache.NoExpiration, 0)
	}
	return in
}

// InferValue returns the narrowest kind accepting s after trimming.
// Placeholders are Missing. ErrNoMatch means the catalogue has no
// universal fallback, which is a construction bug rather than bad input.
func (in *Inferrer) InferValue(s string) (types.Kind, error) {
	s = strings.TrimSpace(s)
	if types.IsMissing(s) {
		return types.Missing, nil
	}
	if in.memo != nil {
		if k, ok := in.memo.Get(s); ok {
			return k.(types.Kind), nil
		}
	}
	for _, k := range in.order {
		if _, ok := in.cat.Match(k, s); ok {
			in.remember(s, k)
			return k, nil
		}
	}
	return 0, fmt.Errorf("value %q: %w", s, internalerr.ErrNoMatch)
}

// InferCell is InferValue with absent cells treated as Missing.
func (in *Inferrer) InferCell(c Cell) (types.Kind, error) {
	if !c.Valid {
		return types.Missing, nil
	}
	return in.InferValue(c.Text)
}

// remember stores k for s, starting over once the memo is full.
func (in *Inferrer) remember(s string, k types.Kind) {
	if in.memo == nil {
		return
	}
	if in.memo.ItemCount() >= in.limit {
		in.memo.Flush()
	}
	in.memo.SetDefault(s, k)
}

// Guess is the outcome of column inference.
type Guess struct {
	Header    string
	HasHeader bool
	// Kind is meaningful only when Typed is set.
	Kind  types.Kind
	Typed bool
}

// InferColumn decides whether the first cell is a header and which kind
// fits the rest. The first cell is data when adding it to the column
// would not change the unified kind.
func (in *Inferrer) InferColumn(cells []Cell) (Guess, error) {
	switch len(cells) {
	case 0:
		return Guess{}, nil
	case 1:
		return Guess{Header: cells[0].Text, HasHeader: cells[0].Valid}, nil
	}

	kinds := make([]types.Kind, 0, len(cells)-1)
	for _, c := range cells[1:] {
		k, err := in.InferCell(c)
		if err != nil {
			return Guess{}, err
		}
		kinds = append(kinds, k)
	}
	best, ok := in.cat.Unify(kinds)
	if !ok {
		return Guess{}, nil
	}

	g := Guess{Kind: best, Typed: true}
	first := cells[0]
	hk, err := in.InferCell(first)
	if err != nil {
		return Guess{}, err
	}

	switch {
	case best == types.Missing && hk != types.Missing:
		// header over an otherwise empty column
		g.Header, g.HasHeader = first.Text, true
	default:
		if u, ok := in.cat.UnifyTwo(hk, best); !ok || u != best {
			g.Header, g.HasHeader = first.Text, true
		}
	}
	return g, nil
}
