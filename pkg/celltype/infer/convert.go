package infer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cognicore/celltype/pkg/celltype/doc"
	"github.com/cognicore/celltype/pkg/celltype/tabular"
	"github.com/cognicore/celltype/pkg/celltype/types"
)

// DefaultSampleRows is how many rows after the title the sampling pass
// reads: a header plus twenty rows of data.
const DefaultSampleRows = 21

// DefaultKeepRaw lists the extents whose items also carry their original
// text.
var DefaultKeepRaw = []string{"placename", "date", "number", "currency", "rate"}

// ConverterOptions configures a Converter. Zero values take defaults.
type ConverterOptions struct {
	SampleRows int
	KeepRaw    []string
	// Delimiters are the candidates for sniffing files opened by
	// ConvertFile.
	Delimiters string
	Logger     *slog.Logger
}

// Converter turns tables into annotated sheets. It holds no per-table
// state and may be shared.
type Converter struct {
	inf     *Inferrer
	cat     *types.Catalogue
	sample  int
	keepRaw map[string]struct{}
	delims  string
	logger  *slog.Logger
}

// NewConverter creates a Converter.
func NewConverter(inf *Inferrer, cat *types.Catalogue, opts ConverterOptions) *Converter {
	if opts.SampleRows <= 0 {
		opts.SampleRows = DefaultSampleRows
	}
	if opts.KeepRaw == nil {
		opts.KeepRaw = DefaultKeepRaw
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	keep := make(map[string]struct{}, len(opts.KeepRaw))
	for _, e := range opts.KeepRaw {
		keep[e] = struct{}{}
	}
	return &Converter{
		inf:     inf,
		cat:     cat,
		sample:  opts.SampleRows,
		keepRaw: keep,
		delims:  opts.Delimiters,
		logger:  opts.Logger,
	}
}

// ConvertFile opens path and converts it.
func (c *Converter) ConvertFile(path string) (*doc.Sheet, error) {
	src, err := tabular.Open(path, c.delims)
	if err != nil {
		return nil, err
	}
	return c.Convert(src)
}

// Convert infers column kinds from a bounded sample, then re-reads the
// whole table to emit the sheet.
func (c *Converter) Convert(src *tabular.Source) (*doc.Sheet, error) {
	title, skip, err := detectTitle(src)
	if err != nil {
		return nil, err
	}

	sample, err := readColumns(src, skip, c.sample)
	if err != nil {
		return nil, err
	}
	kinds := make([]types.Kind, len(sample))
	hasHeader := false
	for i, col := range sample {
		g, err := c.inf.InferColumn(col)
		if err != nil {
			return nil, fmt.Errorf("%s column %d: %w", src.Name, i, err)
		}
		kinds[i] = types.String
		if g.Typed {
			kinds[i] = g.Kind
		}
		hasHeader = hasHeader || g.HasHeader
		c.logger.Debug("column inferred",
			"source", src.Name,
			"column", i,
			"kind", kinds[i].String(),
			"typed", g.Typed,
			"header", g.HasHeader)
	}

	body, err := readColumns(src, skip, 0)
	if err != nil {
		return nil, err
	}

	sheet := &doc.Sheet{Source: src.Name, Title: title}
	for i, col := range body {
		k := types.String
		if i < len(kinds) {
			k = kinds[i]
		}
		column := doc.Column{Type: c.cat.Extent(k), Items: make([]doc.Item, 0, len(col))}
		if hasHeader && len(col) > 0 {
			h, err := c.header(col[0])
			if err != nil {
				return nil, fmt.Errorf("%s column %d header: %w", src.Name, i, err)
			}
			column.Header = h
			col = col[1:]
		}
		for _, cell := range col {
			column.Items = append(column.Items, c.item(k, cell))
		}
		sheet.Columns = append(sheet.Columns, column)
	}

	c.logger.Info("sheet converted",
		"source", src.Name,
		"columns", len(sheet.Columns),
		"rows", sheet.Rows(),
		"title", title != "",
		"header", hasHeader)
	return sheet, nil
}

// header renders the first cell typed by its own inference.
func (c *Converter) header(cell Cell) (*doc.Header, error) {
	text := strings.TrimSpace(cell.Text)
	k, err := c.inf.InferValue(text)
	if err != nil {
		return nil, err
	}
	h := &doc.Header{Type: c.cat.Extent(k), Text: c.printable(k, text)}
	if c.keeps(h.Type) {
		h.Raw = text
	}
	return h, nil
}

func (c *Converter) item(k types.Kind, cell Cell) doc.Item {
	if !cell.Valid {
		return doc.Item{}
	}
	text := strings.TrimSpace(cell.Text)
	if types.IsMissing(text) {
		return doc.Item{}
	}
	it := doc.Item{Text: c.printable(k, text)}
	if it.Text != "" && c.keeps(c.cat.Extent(k)) {
		it.Raw = text
	}
	return it
}

// printable renders text in k's canonical form, or returns it unchanged
// when k cannot convert it.
func (c *Converter) printable(k types.Kind, text string) string {
	v, ok := c.cat.Convert(k, text)
	if !ok {
		return text
	}
	return strings.TrimSpace(c.cat.Index(v))
}

func (c *Converter) keeps(extent string) bool {
	_, ok := c.keepRaw[extent]
	return ok
}

// detectTitle reports a title when the first line has exactly one
// non-empty cell and the second has none. skip is the number of physical
// lines the title occupies.
func detectTitle(src *tabular.Source) (title string, skip int, err error) {
	lines := src.Lines()
	if len(lines) == 0 {
		return "", 0, nil
	}
	first, err := nonEmptyCells(src, lines[0])
	if err != nil {
		return "", 0, err
	}
	var second []string
	if len(lines) > 1 {
		if second, err = nonEmptyCells(src, lines[1]); err != nil {
			return "", 0, err
		}
	}
	if len(first) == 1 && len(second) == 0 {
		return first[0], 2, nil
	}
	return "", 0, nil
}

func nonEmptyCells(src *tabular.Source, line string) ([]string, error) {
	cells, err := src.SplitLine(line)
	if err != nil {
		return nil, err
	}
	out := cells[:0]
	for _, c := range cells {
		if s := strings.TrimSpace(c); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// readColumns reads up to limit rows (all when limit is zero) after skip
// lines and transposes them. Short rows, blank lines included, are padded
// with absent cells so every column has one cell per row.
func readColumns(src *tabular.Source, skip, limit int) ([][]Cell, error) {
	rows, err := src.Rows(skip, limit)
	if err != nil {
		return nil, err
	}
	width := 0
	for _, rec := range rows {
		if len(rec) > width {
			width = len(rec)
		}
	}

	cols := make([][]Cell, width)
	for i := range cols {
		cols[i] = make([]Cell, len(rows))
	}
	for row, rec := range rows {
		for i, s := range rec {
			cols[i][row] = Present(s)
		}
	}
	return cols, nil
}
