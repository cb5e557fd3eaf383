package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NotAvailable is displayed in place of missing values.
const NotAvailable = "N/A"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// OrNA returns `s` or NotAvailable when `s` is blank.
func OrNA(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return NotAvailable
	}
	return s
}

// FullName joins the non-blank name parts with a single space.
func FullName(parts ...string) string {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return strings.Join(names, " ")
}

// Title title-cases `s` ("assistant teacher" -> "Assistant Teacher").
func Title(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// Fold returns the case-folded form of `s`, used for case-insensitive comparisons.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether any of `fields` contains `term`, ignoring case.
// An empty term matches everything.
func ContainsFold(term string, fields ...string) bool {
	term = Fold(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), term) {
			return true
		}
	}
	return false
}

// EqualFoldOrEmpty is the dropdown filter: an empty `want` matches everything,
// otherwise `got` must equal it ignoring case.
func EqualFoldOrEmpty(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, strings.TrimSpace(got))
}
