package structio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// symbolFromLabel derives an element symbol from a site label such as
// "Na1", "CL2" or "O2-".
func symbolFromLabel(label string) string {
	var b strings.Builder
	for i, r := range label {
		if !unicode.IsLetter(r) || i >= 2 {
			break
		}
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// parseNumber parses a CIF style number, dropping a trailing standard
// uncertainty such as "5.6402(3)".
func parseNumber(s string) (float64, error) {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	return parseFloat(s)
}

// parseFloat parses a finite number. NaN and infinities are rejected.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return f, nil
}
