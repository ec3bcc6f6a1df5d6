package dataset

// convert.go turns raw source cells into typed Values.
//
// Source files are exported from spreadsheets and statistics portals, so a
// numeric column can carry thousands separators, currency symbols, accounting
// negatives or Excel formula prefixes. Everything that still is not a number
// after cleanup stays text.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a plain numeric literal after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// missingTokens are cell contents read as missing (case-insensitive).
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	"#n/a": true,
}

// ParseNumber coerces a string to a float64.
// Handles currency symbols, thousands separators, and accounting format
// (parentheses for negative). Returns false when the string is not numeric.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
			return 0, false
		}
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseCell converts a raw CSV cell into a Value.
// Empty cells and the usual NA markers become missing, numeric-looking cells
// become numbers, everything else is kept as trimmed text.
func ParseCell(raw string) Value {
	s := CleanCell(raw)
	if missingTokens[strings.ToLower(s)] {
		return Missing()
	}
	if f, ok := ParseNumber(s); ok {
		return Number(f)
	}
	return Text(s)
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"`))
}
