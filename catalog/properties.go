package catalog

import (
	"sort"
	"strings"
)

// Properties is an open property bag keyed case-insensitively. The first
// spelling of a key is kept for display.
type Properties struct {
	entries map[string]property
}

type property struct {
	key   string
	value any
}

func NewProperties() Properties {
	return Properties{entries: make(map[string]property)}
}

func (p *Properties) Set(key string, value any) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if p.entries == nil {
		p.entries = make(map[string]property)
	}
	folded := strings.ToLower(key)
	if existing, ok := p.entries[folded]; ok {
		key = existing.key
	}
	p.entries[folded] = property{key: key, value: value}
}

// SetIfAbsent stores value only when key is not present yet and reports
// whether it did.
func (p *Properties) SetIfAbsent(key string, value any) bool {
	if p.Has(key) {
		return false
	}
	p.Set(key, value)
	return true
}

func (p Properties) Get(key string) (any, bool) {
	entry, ok := p.entries[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, false
	}
	return entry.value, true
}

// String returns the value for key formatted as text, or "" when missing.
func (p Properties) String(key string) string {
	value, ok := p.Get(key)
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(FormatValue(value))
}

func (p Properties) Has(key string) bool {
	_, ok := p.entries[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

func (p Properties) Len() int {
	return len(p.entries)
}

// Keys returns the stored keys in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p.entries))
	for _, entry := range p.entries {
		keys = append(keys, entry.key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})
	return keys
}

// Map returns a copy of the bag keyed by the stored spelling.
func (p Properties) Map() map[string]any {
	out := make(map[string]any, len(p.entries))
	for _, entry := range p.entries {
		out[entry.key] = entry.value
	}
	return out
}

// Merge copies all entries of other into p, overriding existing keys.
func (p *Properties) Merge(other Properties) {
	for _, entry := range other.entries {
		p.Set(entry.key, entry.value)
	}
}
