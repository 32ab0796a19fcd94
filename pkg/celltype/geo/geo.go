package geo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Registry resolves place names for one country and expands them into
// their administrative hierarchy:
//   - admin1: first-level code -> normalized name (e.g. "02" -> "newsouthwales")
//   - admin2: second-level code -> normalized name, stored flat
//   - places: normalized canonical name -> (admin1, admin2) codes
//   - aliases: normalized alternate name -> normalized canonical name
//
// A Registry is read-only once Load returns and safe for concurrent use.
type Registry struct {
	country string
	admin1  map[string]string
	admin2  map[string]string
	places  map[string]Codes
	aliases map[string]string
}

// Codes holds the administrative codes of a place.
type Codes struct {
	Admin1 string
	Admin2 string
}

// RegistryStats holds statistics about registry contents.
type RegistryStats struct {
	Admin1  int
	Admin2  int
	Places  int
	Aliases int
}

var stripper = strings.NewReplacer(",", "", "-", "", ".", "", " ", "")

// Normalize trims, case-folds and strips separators so lookups do not
// depend on formatting: "Murray Bridge", "murray-bridge" and
// "MURRAYBRIDGE" all become "murraybridge".
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = cases.Fold().String(norm.NFC.String(name))
	return stripper.Replace(name)
}

func newRegistry(country string) *Registry {
	return &Registry{
		country: Normalize(country),
		admin1:  make(map[string]string),
		admin2:  make(map[string]string),
		places:  make(map[string]Codes),
		aliases: make(map[string]string),
	}
}

// Country returns the normalized country name.
func (r *Registry) Country() string {
	return r.country
}

// Resolve returns the normalized canonical form of name, following
// aliases, if it is the country or a known place.
func (r *Registry) Resolve(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	name = Normalize(name)
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	if name == r.country {
		return name, true
	}
	if _, ok := r.places[name]; ok {
		return name, true
	}
	return "", false
}

// Expand rewrites a place name to include every containing
// administrative area, e.g. "Sydney" -> "australia_newsouthwales_sydney".
// Returns false if the place is unknown.
func (r *Registry) Expand(name string) (string, bool) {
	place, ok := r.Resolve(name)
	if !ok {
		return "", false
	}
	if place == r.country {
		return place, true
	}

	codes := r.places[place]

	a2 := r.admin2[codes.Admin2]
	if a2 == place {
		a2 = ""
	}

	a1 := r.admin1[codes.Admin1]
	switch {
	case a1 == place:
		a1 = ""
	case a1 != "" && "stateof"+a1 == place:
		// "State of New South Wales" is the admin area itself
		place = ""
	}

	segments := make([]string, 0, 4)
	for _, s := range []string{r.country, a1, a2, place} {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, "_"), true
}

// Codes returns the administrative codes of a resolved place.
func (r *Registry) Codes(name string) (Codes, bool) {
	place, ok := r.Resolve(name)
	if !ok {
		return Codes{}, false
	}
	c, ok := r.places[place]
	return c, ok
}

// Stats returns counts of the loaded tables.
func (r *Registry) Stats() RegistryStats {
	return RegistryStats{
		Admin1:  len(r.admin1),
		Admin2:  len(r.admin2),
		Places:  len(r.places),
		Aliases: len(r.aliases),
	}
}

func (r *Registry) addAlias(alias, canonical string, deny map[string]struct{}) {
	alias = Normalize(alias)
	if alias == "" {
		return
	}
	if _, skip := deny[alias]; skip {
		return
	}
	r.aliases[alias] = canonical
}
