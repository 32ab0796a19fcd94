package types

import "strings"

// Kind identifies one recognised cell type. The set is closed: adding a
// type means adding a Kind and its row in the catalogue table.
type Kind uint8

const (
	Missing Kind = iota
	String
	Number
	Rate
	Currency
	Bool
	BoolFromInt
	Date
	Year
	FinancialYear
	YearRange
	Decade
	Place

	numKinds
)

var kindNames = [numKinds]string{
	Missing:       "missing",
	String:        "string",
	Number:        "number",
	Rate:          "rate",
	Currency:      "currency",
	Bool:          "bool",
	BoolFromInt:   "boolfromint",
	Date:          "date",
	Year:          "year",
	FinancialYear: "financialyear",
	YearRange:     "yearrange",
	Decade:        "decade",
	Place:         "place",
}

// String returns the kind's name (not its extent).
func (k Kind) String() string {
	if !k.Valid() {
		return "invalid"
	}
	return kindNames[k]
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k < numKinds
}

// ParseKind looks up a kind by name, case-insensitively.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}
