package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/celltype/pkg/celltype/internalerr"
)

// Sources are the three GeoNames exports a Registry is built from.
type Sources struct {
	Admin1   io.Reader // admin1CodesASCII.txt
	Admin2   io.Reader // admin2Codes.txt
	Features io.Reader // <CC>.txt gazetteer
}

// Paths locate the GeoNames exports on disk.
type Paths struct {
	Admin1   string
	Admin2   string
	Features string
}

// Options tune registry construction.
type Options struct {
	// Denylist holds alternate names that collide with common words and
	// must not become aliases.
	Denylist []string
}

// DefaultDenylist is used when Options.Denylist is nil.
var DefaultDenylist = []string{"price"}

// Feature-class prefixes kept from the gazetteer: populated places and
// administrative areas.
var featurePrefixes = []string{"PPL", "ADM"}

// Load builds a Registry for the given country from GeoNames tables.
// Rows for other countries are skipped; malformed rows fail the load.
func Load(countryName, countryCode string, src Sources, opts Options) (*Registry, error) {
	if src.Admin1 == nil || src.Admin2 == nil || src.Features == nil {
		return nil, fmt.Errorf("geo sources: %w", internalerr.ErrInvalidInput)
	}

	r := newRegistry(countryName)

	if err := r.readAdmin1(src.Admin1, countryCode); err != nil {
		return nil, fmt.Errorf("read admin1 codes: %w", err)
	}
	if err := r.readAdmin2(src.Admin2, countryCode); err != nil {
		return nil, fmt.Errorf("read admin2 codes: %w", err)
	}

	deny := opts.Denylist
	if deny == nil {
		deny = DefaultDenylist
	}
	denySet := make(map[string]struct{}, len(deny))
	for _, d := range deny {
		denySet[Normalize(d)] = struct{}{}
	}

	if err := r.readFeatures(src.Features, denySet); err != nil {
		return nil, fmt.Errorf("read features: %w", err)
	}

	return r, nil
}

// LoadFiles opens the files in p and calls Load.
func LoadFiles(countryName, countryCode string, p Paths, opts Options) (*Registry, error) {
	a1, err := os.Open(p.Admin1)
	if err != nil {
		return nil, err
	}
	defer a1.Close()

	a2, err := os.Open(p.Admin2)
	if err != nil {
		return nil, err
	}
	defer a2.Close()

	feat, err := os.Open(p.Features)
	if err != nil {
		return nil, err
	}
	defer feat.Close()

	return Load(countryName, countryCode, Sources{Admin1: a1, Admin2: a2, Features: feat}, opts)
}

// readAdmin1 reads rows of the form "CC.ID<TAB>name<TAB>asciiname<TAB>geonameid".
func (r *Registry) readAdmin1(s io.Reader, cc string) error {
	return eachRow(s, 3, func(line int, row []string) error {
		parts := strings.Split(row[0], ".")
		if len(parts) != 2 {
			return malformed(line, "admin1 code %q", row[0])
		}
		if parts[0] == cc {
			r.admin1[parts[1]] = Normalize(row[2])
		}
		return nil
	})
}

// readAdmin2 reads rows of the form "CC.A1.ID<TAB>name<TAB>asciiname<TAB>geonameid".
// Codes are stored without their admin1 parent.
func (r *Registry) readAdmin2(s io.Reader, cc string) error {
	return eachRow(s, 3, func(line int, row []string) error {
		parts := strings.Split(row[0], ".")
		if len(parts) != 3 {
			return malformed(line, "admin2 code %q", row[0])
		}
		if parts[0] == cc {
			r.admin2[parts[2]] = Normalize(row[2])
		}
		return nil
	})
}

// readFeatures reads the GeoNames main table: column 2 is the ASCII name,
// 3 the comma-separated alternates, 7 the feature code, 10 and 11 the
// admin codes.
func (r *Registry) readFeatures(s io.Reader, deny map[string]struct{}) error {
	return eachRow(s, 12, func(line int, row []string) error {
		if !keepFeature(row[7]) {
			return nil
		}
		name := Normalize(row[2])
		r.places[name] = Codes{Admin1: row[10], Admin2: row[11]}
		for _, alt := range strings.Split(row[3], ",") {
			r.addAlias(alt, name, deny)
		}
		return nil
	})
}

func keepFeature(code string) bool {
	for _, p := range featurePrefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

// eachRow iterates tab-separated rows, requiring at least minCols columns.
func eachRow(s io.Reader, minCols int, fn func(line int, row []string) error) error {
	cr := csv.NewReader(s)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := cr.FieldPos(0)
		if len(row) < minCols {
			return malformed(line, "%d columns, want at least %d", len(row), minCols)
		}
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

func malformed(line int, format string, args ...any) error {
	return fmt.Errorf("line %d: %s: %w", line, fmt.Sprintf(format, args...), internalerr.ErrMalformedRow)
}
