// Package ordered provides an order-preserving string-keyed map, used for
// variable mappings where declaration order matters: later entries may
// reference earlier ones via the expression language.
package ordered

// Map is an insertion-ordered mapping from string keys to arbitrary values.
// The zero value is not usable; use New.
type Map struct {
	keys   []string
	values map[string]any
}

// New returns an empty ordered Map.
func New() *Map {
	return &Map{values: make(map[string]any)}
}

// Clone returns a deep-enough copy: new key slice and value map, sharing
// only the (treated as immutable) leaf values themselves.
func (m *Map) Clone() *Map {
	out := &Map{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]any, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = deepCopy(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = deepCopy(vv)
		}
		return out
	default:
		return v
	}
}

// Set inserts or overwrites key with value, appending to the key order only
// on first insertion.
func (m *Map) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Range calls fn for every entry in insertion order; stops early if fn
// returns false.
func (m *Map) Range(fn func(key string, value any) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// ToMap returns a plain map[string]any snapshot (order is lost).
func (m *Map) ToMap() map[string]any {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// FromPairList builds an ordered Map from a list of single-key mappings,
// e.g. [{"a":1},{"b":2}] — the shape test documents use for variable
// declarations and extractor lists.
func FromPairList(pairs []map[string]any) (*Map, error) {
	m := New()
	for _, pair := range pairs {
		for k, v := range pair {
			m.Set(k, v)
		}
	}
	return m, nil
}
