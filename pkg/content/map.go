package content

import (
	"iter"
	"slices"

	"github.com/CTAG07/Lamina/pkg/mustache"
)

// Entry is one key/value pair used to build a Map.
type Entry struct {
	Key   string
	Value Value
}

// Map is an immutable mapping from unique keys to values that remembers
// insertion order. A nil *Map behaves as an empty map.
type Map struct {
	keys   []string
	values map[string]Value
}

var _ mustache.Content = (*Map)(nil)

// NewMap builds a map from entries. When a key repeats, the last value wins
// and the key keeps its first position.
func NewMap(entries ...Entry) *Map {
	m := &Map{
		keys:   make([]string, 0, len(entries)),
		values: make(map[string]Value, len(entries)),
	}
	for _, e := range entries {
		if _, ok := m.values[e.Key]; !ok {
			m.keys = append(m.keys, e.Key)
		}
		m.values[e.Key] = e.Value
	}
	return m
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// All iterates the entries in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// With returns a new map holding the receiver's entries followed by entries.
func (m *Map) With(entries ...Entry) *Map {
	all := make([]Entry, 0, m.Len()+len(entries))
	for k, v := range m.All() {
		all = append(all, Entry{Key: k, Value: v})
	}
	return NewMap(append(all, entries...)...)
}

func (m *Map) IsTruthy() bool { return m.Len() > 0 }

// A map has no textual form of its own.
func (m *Map) RenderEscaped(mustache.Encoder) error { return nil }
func (m *Map) RenderUnescaped(mustache.Encoder) error { return nil }

func (m *Map) RenderSection(section mustache.Section, enc mustache.Encoder) error {
	if !m.IsTruthy() {
		return nil
	}
	return section.With(m).Render(enc)
}

func (m *Map) RenderInverse(section mustache.Section, enc mustache.Encoder) error {
	return mustache.RenderIfFalsy(m, section, enc)
}

func (m *Map) RenderFieldEscaped(_ uint64, name string, enc mustache.Encoder) (bool, error) {
	v, ok := m.Get(name)
	if !ok {
		return false, nil
	}
	return true, v.RenderEscaped(enc)
}

func (m *Map) RenderFieldUnescaped(_ uint64, name string, enc mustache.Encoder) (bool, error) {
	v, ok := m.Get(name)
	if !ok {
		return false, nil
	}
	return true, v.RenderUnescaped(enc)
}

func (m *Map) RenderFieldSection(_ uint64, name string, section mustache.Section, enc mustache.Encoder) (bool, error) {
	v, ok := m.Get(name)
	if !ok {
		return false, nil
	}
	return true, v.RenderSection(section, enc)
}

func (m *Map) RenderFieldInverse(_ uint64, name string, section mustache.Section, enc mustache.Encoder) (bool, error) {
	v, ok := m.Get(name)
	if !ok {
		return false, nil
	}
	return true, v.RenderInverse(section, enc)
}
