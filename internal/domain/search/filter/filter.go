package filter

import (
	"strings"

	"github.com/kailas-cloud/pollsearch/internal/domain/record"
)

// DefaultFields are the record fields searched when none are configured.
var DefaultFields = []string{"BandName", "Header", "Title"}

// Normalize trims the term and drops every character outside [A-Za-z0-9].
// The result is safe to use as a literal pattern.
func Normalize(term string) string {
	term = strings.TrimSpace(term)
	var b strings.Builder
	b.Grow(len(term))
	for i := 0; i < len(term); i++ {
		c := term[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Matcher is a case-insensitive substring test over a fixed set of fields.
type Matcher struct {
	needle string
	fields []string
}

// New builds a Matcher for term over fields. Empty fields fall back to DefaultFields.
func New(term string, fields []string) Matcher {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	return Matcher{needle: strings.ToLower(Normalize(term)), fields: fields}
}

// Needle returns the normalized, lower-cased search pattern.
func (m Matcher) Needle() string { return m.needle }

// Fields returns the searched field names.
func (m Matcher) Fields() []string { return m.fields }

// IsEmpty reports whether the matcher accepts every record.
func (m Matcher) IsEmpty() bool { return m.needle == "" }

// Match reports whether any searched field contains the pattern.
// Null and missing fields never match.
func (m Matcher) Match(r record.Record) bool {
	if m.needle == "" {
		return true
	}
	for _, f := range m.fields {
		s, ok := r.Get(f).Text()
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(s), m.needle) {
			return true
		}
	}
	return false
}

// Apply returns the records matching term, preserving input order.
// An empty normalized term returns records unmodified.
func Apply(records []record.Record, term string, fields []string) []record.Record {
	m := New(term, fields)
	if m.IsEmpty() {
		return records
	}
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if m.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
