package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/celltype/pkg/celltype/internalerr"
)

// Gazetteer expands place names to their hierarchical canonical form.
// *geo.Registry satisfies it.
type Gazetteer interface {
	Expand(name string) (string, bool)
}

// rule is one row of the catalogue table.
type rule struct {
	// extent is the index field name; several kinds may share one.
	extent string
	// parents accept a superset of this kind's string forms.
	parents []Kind
	convert func(s string) (Value, bool)
	index   func(v Value) string
	term    func(index string) string
	query   func(v Value, term, extent string) string
}

// Catalogue holds the recognised types, their hierarchy and the trial
// order used to find the narrowest type for a value. It is immutable and
// safe for concurrent use.
type Catalogue struct {
	rules    [numKinds]rule
	paths    [numKinds][]Kind
	narrower [numKinds][]Kind
	order    []Kind
}

// NewCatalogue builds the built-in catalogue. Place values are resolved
// through g; with a nil gazetteer the Place type accepts nothing.
func NewCatalogue(g Gazetteer) (*Catalogue, error) {
	c := &Catalogue{rules: table(g)}
	if err := c.validate(); err != nil {
		return nil, err
	}
	for k := Kind(0); k < numKinds; k++ {
		c.paths[k] = c.appendPath(k, []Kind{k})
	}
	order, err := c.mostRestrictiveFirst()
	if err != nil {
		return nil, err
	}
	c.order = order
	for _, d := range order {
		for _, a := range c.paths[d][1:] {
			c.narrower[a] = append(c.narrower[a], d)
		}
	}
	return c, nil
}

func table(g Gazetteer) [numKinds]rule {
	placeConvert := func(s string) (Value, bool) {
		if g == nil {
			return Value{}, false
		}
		name, ok := g.Expand(s)
		return Value{Text: name}, ok
	}

	return [numKinds]rule{
		Missing: {
			extent:  "missing",
			convert: convertMissing,
			index:   emptyIndex,
			term:    plainTerm,
			query:   emptyQuery,
		},
		String: {
			extent:  "string",
			convert: convertString,
			index:   textIndex,
			term:    plainTerm,
			query:   contentOrHeaderQuery,
		},
		Number: {
			extent:  "number",
			parents: []Kind{String},
			convert: convertNumber,
			index:   numberIndex,
			term:    plainTerm,
			query:   fieldQuery,
		},
		Rate: {
			extent:  "rate",
			parents: []Kind{Number},
			convert: convertRate,
			index:   numberIndex,
			term:    plainTerm,
			query:   fieldQuery,
		},
		Currency: {
			extent:  "currency",
			parents: []Kind{Number},
			convert: convertCurrency,
			index:   numberIndex,
			term:    plainTerm,
			query:   fieldQuery,
		},
		Bool: {
			extent:  "bool",
			parents: []Kind{String},
			convert: convertBool,
			index:   boolIndex,
			term:    plainTerm,
			query:   fieldQuery,
		},
		BoolFromInt: {
			extent:  "bool",
			parents: []Kind{Number},
			convert: convertBoolFromInt,
			index:   boolIndex,
			term:    plainTerm,
			query:   fieldQuery,
		},
		Date: {
			extent:  "date",
			parents: []Kind{String},
			convert: convertDate,
			index:   textIndex,
			term:    wildcardTerm,
			query:   fieldQuery,
		},
		Year: {
			extent:  "date",
			parents: []Kind{Date, Number},
			convert: convertYear,
			index:   yearIndex,
			term:    wildcardTerm,
			query:   fieldQuery,
		},
		FinancialYear: {
			extent:  "date",
			parents: []Kind{Date},
			convert: convertFinancialYear,
			index:   yearIndex,
			term:    wildcardTerm,
			query:   fieldQuery,
		},
		YearRange: {
			extent:  "date",
			parents: []Kind{Date},
			convert: convertYearRange,
			index:   yearRangeIndex,
			term:    plainTerm,
			query:   yearRangeQuery,
		},
		Decade: {
			extent:  "date",
			parents: []Kind{Number},
			convert: convertDecade,
			index:   yearIndex,
			term:    plainTerm,
			query:   decadeQuery,
		},
		Place: {
			extent:  "placename",
			parents: []Kind{String},
			convert: placeConvert,
			index:   textIndex,
			term:    wildcardTerm,
			query:   contentOrHeaderQuery,
		},
	}
}

func emptyIndex(Value) string       { return "" }
func textIndex(v Value) string      { return v.Text }
func numberIndex(v Value) string    { return v.Num.String() }
func boolIndex(v Value) string      { return strconv.FormatBool(v.Bool) }
func yearIndex(v Value) string      { return strconv.Itoa(v.From) }
func yearRangeIndex(v Value) string { return strconv.Itoa(v.From) + " " + strconv.Itoa(v.To) }

func plainTerm(index string) string    { return index }
func wildcardTerm(index string) string { return index + "*" }

func emptyQuery(Value, string, string) string { return "" }

func fieldQuery(_ Value, term, extent string) string {
	return term + "." + extent
}

// contentOrHeaderQuery matches either column data or a column header.
func contentOrHeaderQuery(_ Value, term, extent string) string {
	return "#or(" + term + "." + extent + " " + term + ".header)"
}

func yearRangeQuery(v Value, _, extent string) string {
	return yearSpanQuery(v.From, v.To, extent)
}

func decadeQuery(v Value, _, extent string) string {
	start := decadeStart(v.From)
	return yearSpanQuery(start, start+9, extent)
}

// yearSpanQuery renders "#or( 1990*.date 1991*.date ... )".
func yearSpanQuery(from, to int, extent string) string {
	var b strings.Builder
	b.WriteString("#or( ")
	for y := from; y <= to; y++ {
		b.WriteString(strconv.Itoa(y))
		b.WriteString("*.")
		b.WriteString(extent)
		b.WriteByte(' ')
	}
	b.WriteString(")")
	return b.String()
}

func (c *Catalogue) validate() error {
	for k, r := range c.rules {
		if r.convert == nil || r.index == nil || r.term == nil || r.query == nil || r.extent == "" {
			return fmt.Errorf("kind %s: incomplete rule: %w", Kind(k), internalerr.ErrInvalidConfig)
		}
		for _, p := range r.parents {
			if !p.Valid() || p == Missing || p == Kind(k) {
				return fmt.Errorf("kind %s: bad parent %s: %w", Kind(k), p, internalerr.ErrInvalidConfig)
			}
		}
	}
	return nil
}

// appendPath adds k's parents in declaration order, then each parent's
// own path, skipping kinds already present.
func (c *Catalogue) appendPath(k Kind, path []Kind) []Kind {
	parents := c.rules[k].parents
	for _, p := range parents {
		if !containsKind(path, p) {
			path = append(path, p)
		}
	}
	for _, p := range parents {
		path = c.appendPath(p, path)
	}
	return path
}

// mostRestrictiveFirst orders kinds by depth in the parent graph, deepest
// first, keeping declaration order within a level. Missing is excluded;
// callers test it separately.
func (c *Catalogue) mostRestrictiveFirst() ([]Kind, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, numKinds)
	depth := make([]int, numKinds)

	var visit func(k Kind) error
	visit = func(k Kind) error {
		switch state[k] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("cycle through kind %s: %w", k, internalerr.ErrInvalidConfig)
		}
		state[k] = visiting
		for _, p := range c.rules[k].parents {
			if err := visit(p); err != nil {
				return err
			}
			if depth[p]+1 > depth[k] {
				depth[k] = depth[p] + 1
			}
		}
		state[k] = done
		return nil
	}

	order := make([]Kind, 0, numKinds-1)
	for k := Kind(0); k < numKinds; k++ {
		if err := visit(k); err != nil {
			return nil, err
		}
		if k != Missing {
			order = append(order, k)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return depth[order[i]] > depth[order[j]]
	})
	return order, nil
}

func containsKind(ks []Kind, k Kind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

// Kinds returns every kind in declaration order, Missing included.
func (c *Catalogue) Kinds() []Kind {
	ks := make([]Kind, numKinds)
	for k := range ks {
		ks[k] = Kind(k)
	}
	return ks
}

// Order returns the trial order, most restrictive first, without Missing.
func (c *Catalogue) Order() []Kind {
	return append([]Kind(nil), c.order...)
}

// Extent returns the index field name for k.
func (c *Catalogue) Extent(k Kind) string {
	if !k.Valid() {
		return ""
	}
	return c.rules[k].extent
}

// Parents returns the direct parents of k.
func (c *Catalogue) Parents(k Kind) []Kind {
	if !k.Valid() {
		return nil
	}
	return append([]Kind(nil), c.rules[k].parents...)
}

// Convert parses s as kind k. Since a kind accepts every string form of
// its descendants, a value k's own rule rejects is tried against the
// narrower kinds; the returned Value then carries the narrower Kind. A
// false result means s is not of kind k; it is not an error.
func (c *Catalogue) Convert(k Kind, s string) (Value, bool) {
	if !k.Valid() {
		return Value{}, false
	}
	if v, ok := c.Match(k, s); ok {
		return v, true
	}
	for _, d := range c.narrower[k] {
		if v, ok := c.rules[d].convert(s); ok {
			v.Kind = d
			return v, true
		}
	}
	return Value{}, false
}

// Match applies only k's own conversion rule. Trying kinds in Order with
// Match finds the narrowest kind for s.
func (c *Catalogue) Match(k Kind, s string) (Value, bool) {
	if !k.Valid() {
		return Value{}, false
	}
	v, ok := c.rules[k].convert(s)
	if !ok {
		return Value{}, false
	}
	v.Kind = k
	return v, true
}

// Index renders v as it should appear in the index.
func (c *Catalogue) Index(v Value) string {
	if !v.Kind.Valid() {
		return ""
	}
	return c.rules[v.Kind].index(v)
}

// Term renders v as a single query term.
func (c *Catalogue) Term(v Value) string {
	if !v.Kind.Valid() {
		return ""
	}
	return c.rules[v.Kind].term(c.Index(v))
}

// QueryOp renders a complete query fragment for v.
func (c *Catalogue) QueryOp(v Value) string {
	if !v.Kind.Valid() {
		return ""
	}
	r := c.rules[v.Kind]
	return r.query(v, c.Term(v), r.extent)
}
