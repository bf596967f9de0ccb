package order

import (
	"fmt"
	"sort"
	"strings"
)

// Preset names shipped by default.
const (
	PresetRecent = "recent"
	PresetRandom = "random"
)

// Presets maps sort option names (as shown to users) to sort keys.
type Presets map[string]Key

// DefaultPresets mirrors the widget's two sort options: most recent first
// (ids only ever increase) and random.
func DefaultPresets() Presets {
	return Presets{
		PresetRecent: ByField("Id", true),
		PresetRandom: Random(),
	}
}

// ParsePresets builds Presets from name -> key expressions.
func ParsePresets(raw map[string]string) (Presets, error) {
	p := make(Presets, len(raw))
	for name, expr := range raw {
		k, err := Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		p[strings.ToLower(name)] = k
	}
	return p, nil
}

// Resolve returns the preset named s, or parses s as a key expression.
func (p Presets) Resolve(s string) (Key, error) {
	if k, ok := p[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return Parse(s)
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NameOf returns the preset name for k, or k's canonical form.
func (p Presets) NameOf(k Key) string {
	for _, n := range p.Names() {
		if p[n] == k {
			return n
		}
	}
	return k.String()
}
