package content

import (
	"slices"

	"github.com/CTAG07/Lamina/pkg/mustache"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNumber
	KindString
	KindDateTime
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDateTime:
		return "datetime"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Value is one decoded configuration value. The zero Value is invalid and
// renders like an empty string.
type Value struct {
	kind Kind
	num  float64
	str  string
	date DateTime
	list []Value
	dict *Map
}

var _ mustache.Content = Value{}

// Number returns a number Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Date returns a date-time Value.
func Date(d DateTime) Value {
	return Value{kind: KindDateTime, date: d}
}

// List returns a list Value. items is copied.
func List(items ...Value) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// MapValue wraps m. A nil map is treated as empty.
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, dict: m}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// AsNumber returns the number held by v and whether v is a number.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsString returns the string held by v and whether v is a string.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsDateTime returns the date-time held by v and whether v is one.
func (v Value) AsDateTime() (DateTime, bool) {
	return v.date, v.kind == KindDateTime
}

// AsList returns a copy of the list items.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// AsMap returns the map held by v and whether v is a map.
func (v Value) AsMap() (*Map, bool) {
	return v.dict, v.kind == KindMap
}

// Len returns the number of items of a list or entries of a map, and zero for
// every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return v.dict.Len()
	default:
		return 0
	}
}

// IsTruthy reports whether a section over v is entered. Only non-empty lists
// and maps are truthy; scalars are interpolated, not used for gating, so they
// are always falsy regardless of their value.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindList, KindMap:
		return v.Len() > 0
	default:
		return false
	}
}

func (v Value) RenderEscaped(enc mustache.Encoder) error {
	switch v.kind {
	case KindNumber:
		return mustache.Number(v.num).RenderEscaped(enc)
	case KindString:
		return enc.WriteEscaped(v.str)
	case KindDateTime:
		return v.date.RenderEscaped(enc)
	case KindMap:
		return v.dict.RenderEscaped(enc)
	default:
		return nil
	}
}

func (v Value) RenderUnescaped(enc mustache.Encoder) error {
	switch v.kind {
	case KindNumber:
		return mustache.Number(v.num).RenderUnescaped(enc)
	case KindString:
		return enc.WriteUnescaped(v.str)
	case KindDateTime:
		return v.date.RenderUnescaped(enc)
	case KindMap:
		return v.dict.RenderUnescaped(enc)
	default:
		return nil
	}
}

// RenderSection renders a list once per item with the item as context, a map
// once with itself as context, and any scalar exactly once without changing
// the context.
func (v Value) RenderSection(section mustache.Section, enc mustache.Encoder) error {
	switch v.kind {
	case KindList:
		for _, item := range v.list {
			if err := section.With(item).Render(enc); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		return v.dict.RenderSection(section, enc)
	default:
		return section.Render(enc)
	}
}

func (v Value) RenderInverse(section mustache.Section, enc mustache.Encoder) error {
	return mustache.RenderIfFalsy(v, section, enc)
}

// Only maps resolve field names. Every other kind reports not found so the
// engine keeps searching the enclosing contexts.

func (v Value) RenderFieldEscaped(hash uint64, name string, enc mustache.Encoder) (bool, error) {
	if v.kind != KindMap {
		return false, nil
	}
	return v.dict.RenderFieldEscaped(hash, name, enc)
}

func (v Value) RenderFieldUnescaped(hash uint64, name string, enc mustache.Encoder) (bool, error) {
	if v.kind != KindMap {
		return false, nil
	}
	return v.dict.RenderFieldUnescaped(hash, name, enc)
}

func (v Value) RenderFieldSection(hash uint64, name string, section mustache.Section, enc mustache.Encoder) (bool, error) {
	if v.kind != KindMap {
		return false, nil
	}
	return v.dict.RenderFieldSection(hash, name, section, enc)
}

func (v Value) RenderFieldInverse(hash uint64, name string, section mustache.Section, enc mustache.Encoder) (bool, error) {
	if v.kind != KindMap {
		return false, nil
	}
	return v.dict.RenderFieldInverse(hash, name, section, enc)
}
