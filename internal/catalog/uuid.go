package catalog

import "strings"

// UUID is a normalized resource identifier: separator characters stripped and
// hex digits uppercased. The editor writes identifiers both hyphenated and
// bare, so raw strings must never be compared directly; construct values
// through Normalize only.
type UUID string

// Normalize converts a raw identifier from the document into its canonical
// form. It is idempotent and insensitive to hyphenation and case.
func Normalize(raw string) UUID {
	cleaned := strings.NewReplacer("-", "", "{", "", "}", "").Replace(strings.TrimSpace(raw))
	return UUID(strings.ToUpper(cleaned))
}

// Short returns a log-friendly prefix of the identifier.
func (u UUID) Short() string {
	if len(u) <= 8 {
		return string(u)
	}
	return string(u[:8])
}
