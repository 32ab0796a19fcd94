package query

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/celltype/pkg/celltype/infer"
	"github.com/cognicore/celltype/pkg/celltype/types"
)

type places map[string]string

func (p places) Expand(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

func testRewriter(t *testing.T) *Rewriter {
	t.Helper()
	cat, err := types.NewCatalogue(places{"Sydney": "australia_newsouthwales_sydney"})
	require.NoError(t, err)
	return NewRewriter(infer.New(cat, infer.Options{}), cat)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"1990 - 1999", []string{"1990-1999"}},
		{"from 90  -   99 only", []string{"from", "90-99", "only"}},
		{"1,250 people", []string{"1250", "people"}},
		{"a  b", []string{"a", "", "b"}},
		{"2015-16", []string{"2015-16"}},
		{"", []string{""}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tt.in), "Tokenize(%q)", tt.in)
	}
}

func TestTerm(t *testing.T) {
	r := testRewriter(t)

	tests := []struct {
		in   string
		want string
	}{
		{"hello", "#or(hello.string hello.header)"},
		{"42", "42.number"},
		{"1999", "1999*.date"},
		{"Jan 2001", "2001_01*.date"},
		{"NA", ""},
		{"", ""},
		{"1990s", "#or( 1990*.date 1991*.date 1992*.date 1993*.date 1994*.date " +
			"1995*.date 1996*.date 1997*.date 1998*.date 1999*.date )"},
	}

	for _, tt := range tests {
		got, err := r.Term(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Term(%q)", tt.in)
	}
}

func TestTermHugeExponentStaysShort(t *testing.T) {
	r := testRewriter(t)

	got, err := r.Term("1e200000000")
	require.NoError(t, err)
	assert.Contains(t, got, ".string")
	assert.Less(t, len(got), 100)
}

func TestRewriteSkipsEmptyFragments(t *testing.T) {
	r := testRewriter(t)

	got, err := r.Rewrite("  42  NA 1 ")
	require.NoError(t, err)
	assert.Equal(t, []string{"42.number", "true.bool"}, got)
}

func TestStreamGolden(t *testing.T) {
	r := testRewriter(t)
	in := strings.Join([]string{
		"population Sydney 1990 - 1999",
		"rates 42% in 2015-16",
		"",
		"1990s",
		"$1,250 NA true",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, r.Stream(strings.NewReader(in), &out))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "queries", out.Bytes())
}
