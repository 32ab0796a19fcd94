package types

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Value is a successfully converted cell. Which fields are meaningful
// depends on Kind.
type Value struct {
	Kind Kind
	Text string          // String, Date, Place
	Num  decimal.Decimal // Number, Rate, Currency
	Bool bool            // Bool, BoolFromInt
	From int             // Year, FinancialYear, YearRange, Decade
	To   int             // YearRange
}

var missingTokens = map[string]struct{}{
	"":     {},
	`\N`:   {},
	"NA":   {},
	"N/A":  {},
	"UNK":  {},
	"N.A":  {},
	"N.A.": {},
}

// IsMissing reports whether s is a placeholder for an empty cell.
func IsMissing(s string) bool {
	_, ok := missingTokens[strings.ToUpper(s)]
	return ok
}

func convertMissing(s string) (Value, bool) {
	return Value{}, IsMissing(s)
}

func convertString(s string) (Value, bool) {
	return Value{Text: s}, true
}

// decimalRe accepts integers, decimals and scientific notation.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var numberStripper = strings.NewReplacer(",", "", " ", "")

var numberSuffixes = map[byte]decimal.Decimal{
	'k': decimal.New(1, 3),
	'M': decimal.New(1, 6),
	'B': decimal.New(1, 9),
}

// maxExponent keeps accepted values within float64 range. Index text is
// written without an exponent, so its length grows with the exponent.
const maxExponent = 308

func parseDecimal(s string) (decimal.Decimal, bool) {
	if !decimalRe.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, false
	}
	exp := int64(d.Exponent())
	if exp > maxExponent || exp < -2*maxExponent {
		return decimal.Zero, false
	}
	if !d.IsZero() && exp+int64(d.NumDigits())-1 > maxExponent {
		return decimal.Zero, false
	}
	return d, true
}

// parseNumber strips separators and applies an optional k/M/B scale.
func parseNumber(s string) (decimal.Decimal, bool) {
	s = numberStripper.Replace(s)
	mult := decimal.NewFromInt(1)
	if len(s) > 1 {
		if m, ok := numberSuffixes[s[len(s)-1]]; ok {
			mult = m
			s = s[:len(s)-1]
		}
	}
	d, ok := parseDecimal(s)
	if !ok {
		return decimal.Zero, false
	}
	return d.Mul(mult), true
}

func convertNumber(s string) (Value, bool) {
	d, ok := parseNumber(s)
	return Value{Num: d}, ok
}

// Rates scale by 1e-3 for percent; historical indexes depend on it.
var rateSuffixes = []struct {
	suffix string
	scale  decimal.Decimal
}{
	{"percent", decimal.New(1, -3)},
	{"ppm", decimal.New(1, -6)},
	{"pc", decimal.New(1, -3)},
	{"%", decimal.New(1, -3)},
}

func convertRate(s string) (Value, bool) {
	s = numberStripper.Replace(s)
	if len(s) <= 1 {
		return Value{}, false
	}
	for _, rs := range rateSuffixes {
		if !strings.HasSuffix(s, rs.suffix) {
			continue
		}
		d, ok := parseDecimal(s[:len(s)-len(rs.suffix)])
		if !ok {
			return Value{}, false
		}
		return Value{Num: d.Mul(rs.scale)}, true
	}
	return Value{}, false
}

func convertCurrency(s string) (Value, bool) {
	if len(s) < 2 || s[0] != '$' {
		return Value{}, false
	}
	return convertNumber(s[1:])
}

var (
	trueRe  = regexp.MustCompile(`(?i)^(t(rue)?|y(es)?)$`)
	falseRe = regexp.MustCompile(`(?i)^(f(alse)?|n(o)?)$`)
)

func convertBool(s string) (Value, bool) {
	switch {
	case trueRe.MatchString(s):
		return Value{Bool: true}, true
	case falseRe.MatchString(s):
		return Value{Bool: false}, true
	}
	return Value{}, false
}

func convertBoolFromInt(s string) (Value, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return Value{}, false
	}
	switch n {
	case 1:
		return Value{Bool: true}, true
	case 0:
		return Value{Bool: false}, true
	}
	return Value{}, false
}

// dateLayout is a time layout plus the fields it carries. A bare year is
// handled by Year.
type dateLayout struct {
	layout   string
	hasMonth bool
	hasDay   bool
}

var dateLayouts = []dateLayout{
	// year and month
	{"Jan 2006", true, false},
	{"2006 Jan", true, false},
	{"Jan-2006", true, false},
	{"2006-Jan", true, false},
	{"January 2006", true, false},
	{"2006 January", true, false},
	{"January-2006", true, false},
	{"2006-January", true, false},
	{"1/2006", true, false},
	{"200601", true, false},
	{"2006-1", true, false},
	{"1-2006", true, false},
	// year, month, day
	{"2 Jan 2006", true, true},
	{"2006 Jan 2", true, true},
	{"2 January 2006", true, true},
	{"2006 January 2", true, true},
	{"2/1/2006", true, true},
	{"20060102", true, true},
	{"2006-1-2", true, true},
}

func convertDate(s string) (Value, bool) {
	for _, dl := range dateLayouts {
		t, err := time.Parse(dl.layout, s)
		if err != nil {
			continue
		}
		out := "2006"
		if dl.hasMonth {
			out += "_01"
			if dl.hasDay {
				out += "_02"
			}
		}
		return Value{Text: t.Format(out)}, true
	}
	return Value{}, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// fourDigitYear parses a four-digit year within [lo, hi].
func fourDigitYear(s string, lo, hi int) (int, bool) {
	if len(s) != 4 || !allDigits(s) {
		return 0, false
	}
	y, _ := strconv.Atoi(s)
	if y < lo || y > hi {
		return 0, false
	}
	return y, true
}

func convertYear(s string) (Value, bool) {
	y, ok := fourDigitYear(s, 1700, 2100)
	return Value{From: y}, ok
}

func splitPair(s string) (string, string, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// convertFinancialYear accepts "2015-2016" and "2015-16".
func convertFinancialYear(s string) (Value, bool) {
	as, bs, ok := splitPair(s)
	if !ok || !allDigits(as) || !allDigits(bs) {
		return Value{}, false
	}
	a, err := strconv.Atoi(as)
	if err != nil || a < 1800 || a > 2100 {
		return Value{}, false
	}
	b, err := strconv.Atoi(bs)
	if err != nil {
		return Value{}, false
	}
	if b == a+1 || (b < 100 && b == (a+1)%100) {
		return Value{From: a}, true
	}
	return Value{}, false
}

func convertYearRange(s string) (Value, bool) {
	as, bs, ok := splitPair(s)
	if !ok {
		return Value{}, false
	}
	a, ok := fourDigitYear(as, 1800, 2100)
	if !ok {
		return Value{}, false
	}
	b, ok := fourDigitYear(bs, 1800, 2100)
	if !ok {
		return Value{}, false
	}
	return Value{From: a, To: b}, true
}

// convertDecade accepts "1990s" and "90s".
func convertDecade(s string) (Value, bool) {
	if len(s) < 3 || !strings.HasSuffix(s, "0s") {
		return Value{}, false
	}
	digits := s[:len(s)-1]
	if !allDigits(digits) {
		return Value{}, false
	}
	y, err := strconv.Atoi(digits)
	if err != nil {
		return Value{}, false
	}
	return Value{From: y}, true
}

// decadeStart maps two-digit decades into the 1900s.
func decadeStart(y int) int {
	if y < 100 {
		return y + 1900
	}
	return y
}
