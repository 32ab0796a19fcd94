// Package tabular reads delimited text files for type inference. A Source
// holds the whole decoded file so the sampling and emission passes can
// each start from the top.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/cognicore/celltype/pkg/celltype/internalerr"
)

// DefaultDelimiters are the candidates tried when sniffing.
const DefaultDelimiters = ",;"

// sniffBytes bounds how much of the file the sniffer looks at.
const sniffBytes = 1024

// Source is a decoded tabular file.
type Source struct {
	Name     string
	Delim    rune
	Encoding string

	text string
}

// Open reads and decodes the file at path.
func Open(path, delims string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	return FromBytes(filepath.Base(path), data, delims)
}

// FromReader reads r to the end and decodes it.
func FromReader(name string, r io.Reader, delims string) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	return FromBytes(name, data, delims)
}

// FromBytes decodes data and sniffs its delimiter among delims (default
// comma and semicolon). Text without a BOM that is not valid UTF-8 is
// read as windows-1252.
func FromBytes(name string, data []byte, delims string) (*Source, error) {
	if delims == "" {
		delims = DefaultDelimiters
	}
	enc, encName, _ := charset.DetermineEncoding(data, "text/csv")
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s as %s: %w: %v", name, encName, internalerr.ErrInvalidInput, err)
	}
	decoded = bytes.TrimPrefix(decoded, []byte("\uFEFF"))

	return &Source{
		Name:     name,
		Delim:    Sniff(decoded, delims),
		Encoding: encName,
		text:     string(decoded),
	}, nil
}

// Lines returns the physical lines of the file without line terminators.
// A trailing newline does not produce an empty last line.
func (s *Source) Lines() []string {
	text := strings.TrimSuffix(s.text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// SplitLine parses a single physical line into cells. An empty line has
// no cells.
func (s *Source) SplitLine(line string) ([]string, error) {
	r := s.reader(strings.NewReader(line))
	rec, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	return rec, nil
}

// Records returns a reader over the file with the first skip physical
// lines removed.
func (s *Source) Records(skip int) *csv.Reader {
	return s.reader(strings.NewReader(s.after(skip)))
}

// Rows reads up to limit rows (all when limit is zero) after skip
// physical lines. Unlike Records, a blank line is kept as a nil row.
func (s *Source) Rows(skip, limit int) ([][]string, error) {
	text := s.after(skip)
	cr := s.reader(strings.NewReader(text))

	var rows [][]string
	full := func() bool { return limit > 0 && len(rows) >= limit }
	// lines counts the physical lines consumed up to off.
	lines, off := 0, int64(0)
	for !full() {
		rec, err := cr.Read()
		if err == io.EOF {
			for n := strings.Count(text[off:], "\n"); n > 0 && !full(); n-- {
				rows = append(rows, nil)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		start, _ := cr.FieldPos(0)
		for blank := start - lines - 1; blank > 0 && !full(); blank-- {
			rows = append(rows, nil)
		}
		if full() {
			break
		}
		rows = append(rows, rec)

		end := cr.InputOffset()
		lines += strings.Count(text[off:end], "\n")
		off = end
	}
	return rows, nil
}

func (s *Source) after(skip int) string {
	text := s.text
	for i := 0; i < skip && text != ""; i++ {
		nl := strings.IndexByte(text, '\n')
		if nl < 0 {
			return ""
		}
		text = text[nl+1:]
	}
	return text
}

func (s *Source) reader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = s.Delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}
