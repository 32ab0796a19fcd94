// Package query rewrites free-text search lines into typed query
// fragments for the downstream search engine.
package query

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/cognicore/celltype/pkg/celltype/infer"
	"github.com/cognicore/celltype/pkg/celltype/types"
)

// spacedRange matches "1990 - 1999" so it survives splitting as one token.
var spacedRange = regexp.MustCompile(`(\d{2,4})\s+-\s+(\d{2,4})`)

// Tokenize joins spaced numeric ranges, drops commas and splits on single
// spaces. Repeated spaces yield empty tokens.
func Tokenize(line string) []string {
	line = spacedRange.ReplaceAllString(line, "$1-$2")
	line = strings.ReplaceAll(line, ",", "")
	return strings.Split(line, " ")
}

// Rewriter turns tokens into query fragments using the same type
// knowledge as table conversion.
type Rewriter struct {
	inf *infer.Inferrer
	cat *types.Catalogue
}

// NewRewriter creates a Rewriter.
func NewRewriter(inf *infer.Inferrer, cat *types.Catalogue) *Rewriter {
	return &Rewriter{inf: inf, cat: cat}
}

// Term renders one token as a fragment. Placeholders render empty.
func (r *Rewriter) Term(token string) (string, error) {
	token = strings.TrimSpace(token)
	k, err := r.inf.InferValue(token)
	if err != nil {
		return "", err
	}
	v, ok := r.cat.Convert(k, token)
	if !ok {
		return "", nil
	}
	return r.cat.QueryOp(v), nil
}

// Rewrite returns the non-empty fragments for every token in line.
func (r *Rewriter) Rewrite(line string) ([]string, error) {
	var out []string
	for _, tok := range Tokenize(strings.TrimSpace(line)) {
		frag, err := r.Term(tok)
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", tok, err)
		}
		if frag != "" {
			out = append(out, frag)
		}
	}
	return out, nil
}

// Stream rewrites each line of in and writes one fragment per line to
// out.
func (r *Rewriter) Stream(in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	w := bufio.NewWriter(out)
	for sc.Scan() {
		frags, err := r.Rewrite(sc.Text())
		if err != nil {
			return err
		}
		for _, f := range frags {
			if _, err := fmt.Fprintln(w, f); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	return w.Flush()
}
