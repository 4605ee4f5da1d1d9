package content

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DecodeTOML decodes a TOML document into a Map whose keys follow the order
// they appear in the document. Local and offset date-times both become
// DateTime values, the latter converted to UTC.
func DecodeTOML(data []byte) (*Map, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode toml: %w", err)
	}

	// Keys lists every key path in document order, including repeated paths
	// of array tables; the first occurrence wins.
	order := make(map[string]int)
	for i, key := range md.Keys() {
		if _, ok := order[key.String()]; !ok {
			order[key.String()] = i
		}
	}
	return tomlTable(raw, nil, order)
}

func tomlTable(raw map[string]any, path toml.Key, order map[string]int) (*Map, error) {
	keys := slices.Collect(maps.Keys(raw))
	rank := func(k string) int {
		if i, ok := order[childKey(path, k).String()]; ok {
			return i
		}
		return len(order)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Or(cmp.Compare(rank(a), rank(b)), cmp.Compare(a, b))
	})

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v, err := tomlValue(raw[k], childKey(path, k), order)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: k, Value: v})
	}
	return NewMap(entries...), nil
}

func tomlValue(raw any, path toml.Key, order map[string]int) (Value, error) {
	switch x := raw.(type) {
	case string:
		return String(x), nil
	case int64:
		return Number(float64(x)), nil
	case float64:
		return Number(x), nil
	case bool:
		return String(strconv.FormatBool(x)), nil
	case time.Time:
		// Local date-times carry a zero offset, so UTC keeps their wall clock.
		return Date(NewDateTime(x)), nil
	case map[string]any:
		m, err := tomlTable(x, path, order)
		if err != nil {
			return Value{}, err
		}
		return MapValue(m), nil
	case []map[string]any:
		items := make([]Value, 0, len(x))
		for _, t := range x {
			m, err := tomlTable(t, path, order)
			if err != nil {
				return Value{}, err
			}
			items = append(items, MapValue(m))
		}
		return Value{kind: KindList, list: items}, nil
	case []any:
		items := make([]Value, 0, len(x))
		for _, item := range x {
			v, err := tomlValue(item, path, order)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Value{kind: KindList, list: items}, nil
	default:
		return Value{}, fmt.Errorf("unsupported toml value %T at %s", raw, path)
	}
}

func childKey(path toml.Key, k string) toml.Key {
	return append(slices.Clip(path), k)
}

// DecodeYAML decodes a YAML document into a Map, keeping mapping order.
// Timestamps go through ParseDateTime and fail decoding when they do not
// parse. An empty document decodes into an empty map.
func DecodeYAML(data []byte) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return NewMap(), nil
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return NewMap(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to decode yaml: line %d: document is not a mapping", root.Line)
	}

	v, err := yamlValue(root)
	if err != nil {
		return nil, err
	}
	return v.dict, nil
}

func yamlValue(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.MappingNode:
		entries := make([]Entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: n.Content[i].Value, Value: v})
		}
		return MapValue(NewMap(entries...)), nil
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Value{kind: KindList, list: items}, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return Value{}, fmt.Errorf("failed to decode yaml: line %d: unsupported node", n.Line)
	}
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("failed to decode yaml: line %d: %w", n.Line, err)
		}
		return Number(f), nil
	case "!!timestamp":
		d, err := ParseDateTime(n.Value)
		if err != nil {
			// yaml.v3 resolves forms like 2020-3-5 as timestamps on its own;
			// only an explicit tag makes them an error.
			if n.Style&yaml.TaggedStyle == 0 {
				return String(n.Value), nil
			}
			return Value{}, fmt.Errorf("failed to decode yaml: line %d: %w", n.Line, err)
		}
		return Date(d), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("failed to decode yaml: line %d: %w", n.Line, err)
		}
		return String(strconv.FormatBool(b)), nil
	case "!!null":
		return String(""), nil
	default:
		return String(n.Value), nil
	}
}
