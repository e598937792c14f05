package etl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	adCodePattern    = regexp.MustCompile(`(?i)NK[-_][0-9]+`)
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	sheetDatePattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
)

// ParseCount parses an integer counter field. Missing or unparseable
// values count as zero, never as an error.
func ParseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseAmount parses a decimal amount field with the same zero-default
// policy as ParseCount.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// TrimToNull trims whitespace and maps the empty result to nil so blank
// spreadsheet cells are stored as NULL rather than "".
func TrimToNull(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// DeriveAdCode extracts the ad code from an ad's display name: the first
// case-insensitive NK[-_]<digits> substring, uppercased with "_" replaced
// by "-". Returns nil when the name carries no code.
func DeriveAdCode(name string) *string {
	m := adCodePattern.FindString(name)
	if m == "" {
		return nil
	}
	code := strings.ReplaceAll(strings.ToUpper(m), "_", "-")
	return &code
}

// ParseSheetDateToISO normalizes a sheet date cell to ISO YYYY-MM-DD.
// ISO input passes through unchanged; D/M/YYYY and D-M-YYYY are
// zero-padded and reordered. Anything else yields nil.
func ParseSheetDateToISO(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if isoDatePattern.MatchString(s) {
		return &s
	}
	m := sheetDatePattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	return &iso
}
