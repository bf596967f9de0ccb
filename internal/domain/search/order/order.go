package order

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/kailas-cloud/pollsearch/internal/domain"
	"github.com/kailas-cloud/pollsearch/internal/domain/record"
)

// RandomKey is the sort key that shuffles a result set.
const RandomKey = "random"

// Direction suffixes accepted by Parse.
const (
	Asc  = "asc"
	Desc = "desc"
)

// sortPartsMax is the maximum number of parts in "field:direction".
const sortPartsMax = 2

// Key is a parsed sort key: either random, or a field with a direction.
type Key struct {
	field  string
	desc   bool
	random bool
}

// Random returns the shuffle key.
func Random() Key { return Key{random: true} }

// ByField returns a field key.
func ByField(field string, desc bool) Key { return Key{field: field, desc: desc} }

// Parse parses "random", "field", "field:asc" or "field:desc".
// A bare field sorts ascending.
func Parse(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Key{}, fmt.Errorf("%w: empty", domain.ErrInvalidSortKey)
	}
	if strings.EqualFold(s, RandomKey) {
		return Random(), nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > sortPartsMax {
		return Key{}, fmt.Errorf("%w: too many colons in %q", domain.ErrInvalidSortKey, s)
	}
	field := strings.TrimSpace(parts[0])
	if field == "" {
		return Key{}, fmt.Errorf("%w: empty field in %q", domain.ErrInvalidSortKey, s)
	}
	if len(parts) == 1 {
		return ByField(field, false), nil
	}
	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case Asc:
		return ByField(field, false), nil
	case Desc:
		return ByField(field, true), nil
	default:
		return Key{}, fmt.Errorf("%w: direction must be asc or desc in %q", domain.ErrInvalidSortKey, s)
	}
}

// Field returns the sort field (empty for random).
func (k Key) Field() string { return k.field }

// Desc reports a descending field sort.
func (k Key) Desc() bool { return k.desc }

// IsRandom reports the shuffle key.
func (k Key) IsRandom() bool { return k.random }

// IsZero reports an unset key.
func (k Key) IsZero() bool { return !k.random && k.field == "" }

// String returns the canonical form accepted by Parse.
func (k Key) String() string {
	switch {
	case k.random:
		return RandomKey
	case k.field == "":
		return ""
	case k.desc:
		return k.field + ":" + Desc
	default:
		return k.field + ":" + Asc
	}
}

// Apply orders records in place and returns them.
// Random keys shuffle with rnd (a package-level source when nil); field keys
// sort stably. The zero Key leaves records untouched.
func Apply(records []record.Record, k Key, rnd *rand.Rand) []record.Record {
	switch {
	case k.random:
		Shuffle(records, rnd)
	case k.field != "":
		slices.SortStableFunc(records, func(a, b record.Record) int {
			c := Compare(a.Get(k.field), b.Get(k.field))
			if k.desc {
				return -c
			}
			return c
		})
	}
	return records
}

// Shuffle performs an unbiased in-place Fisher-Yates shuffle.
func Shuffle(records []record.Record, rnd *rand.Rand) {
	intN := rand.IntN
	if rnd != nil {
		intN = rnd.IntN
	}
	for i := len(records) - 1; i > 0; i-- {
		j := intN(i + 1)
		records[i], records[j] = records[j], records[i]
	}
}

// Compare orders two field values: numerically when both are numeric,
// by plain byte comparison of their text otherwise. Null sorts first.
func Compare(a, b record.Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	if fa, ok := a.Float(); ok {
		if fb, ok := b.Float(); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	sa, _ := a.Text()
	sb, _ := b.Text()
	return strings.Compare(sa, sb)
}
