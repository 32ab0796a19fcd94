// Package doc defines the annotated sheet emitted for the indexer and its
// XML and JSON encodings.
package doc

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/cognicore/celltype/pkg/celltype/internalerr"
)

// Sheet is one converted table.
type Sheet struct {
	XMLName xml.Name `xml:"sheet" json:"-"`
	ID      string   `xml:"id,attr,omitempty" json:"id,omitempty"`
	Source  string   `xml:"source,attr,omitempty" json:"source,omitempty"`
	Title   string   `xml:"header,omitempty" json:"title,omitempty"`
	Columns []Column `xml:"column" json:"columns"`
}

// Column carries its inferred extent, an optional header and one item per
// remaining row.
type Column struct {
	Type   string  `xml:"type,attr" json:"type"`
	Header *Header `xml:"header,omitempty" json:"header,omitempty"`
	Items  []Item  `xml:"item" json:"items"`
}

// Header is typed by the header cell's own inference, not the column's.
type Header struct {
	Type string `xml:"type,attr" json:"type"`
	Raw  string `xml:"raw,attr,omitempty" json:"raw,omitempty"`
	Text string `xml:",chardata" json:"text"`
}

// Item holds the canonical form and, for some extents, the original text.
type Item struct {
	Raw  string `xml:"raw,attr,omitempty" json:"raw,omitempty"`
	Text string `xml:",chardata" json:"text"`
}

// Rows returns the length of the longest column.
func (s *Sheet) Rows() int {
	n := 0
	for _, c := range s.Columns {
		if len(c.Items) > n {
			n = len(c.Items)
		}
	}
	return n
}

// WriteXML writes s as an indented <sheet> element.
func WriteXML(w io.Writer, s *Sheet) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	return nil
}

// WriteJSON writes s as indented JSON followed by a newline.
func WriteJSON(w io.Writer, s *Sheet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	return nil
}

// Writer encodes a sheet in one output format.
type Writer func(w io.Writer, s *Sheet) error

// WriterFor returns the encoder for format "xml" or "json".
func WriterFor(format string) (Writer, error) {
	switch format {
	case "", "xml":
		return WriteXML, nil
	case "json":
		return WriteJSON, nil
	}
	return nil, fmt.Errorf("output format %q: %w", format, internalerr.ErrInvalidInput)
}
