package cidl

import (
	"bytes"
	"encoding/json"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/cloesce/core/cerr"
)

// OrderedMap is the ordered mapping type used throughout the AST: models,
// services, poos, methods, data sources, and include trees are all keyed,
// insertion-ordered mappings. Grounded on
// denisvmedia-inventario/registry/memory/registry.go's generic wrapper
// around the same library.
type OrderedMap[V any] = orderedmap.OrderedMap[string, V]

// NewOrderedMap constructs an empty ordered map.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return orderedmap.New[string, V]()
}

// Keys returns the map's keys in current iteration order.
func Keys[V any](m *OrderedMap[V]) []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Values returns the map's values in current iteration order.
func Values[V any](m *OrderedMap[V]) []V {
	if m == nil {
		return nil
	}
	out := make([]V, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

// ReorderByRank rebuilds m so its iteration order matches rank (lower
// rank first). Keys absent from rank are pushed to the end, stable on
// their original relative order. This is the "immutable rebuild"
// strategy spec §9 permits as an alternative to an in-place sort.
func ReorderByRank[V any](m *OrderedMap[V], rank map[string]int) *OrderedMap[V] {
	type kv struct {
		key string
		val V
		idx int
	}
	pairs := make([]kv, 0, m.Len())
	i := 0
	for p := m.Oldest(); p != nil; p = p.Next() {
		r, ok := rank[p.Key]
		if !ok {
			r = len(rank) + i
		}
		pairs = append(pairs, kv{p.Key, p.Value, r})
		i++
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].idx < pairs[b].idx })

	out := NewOrderedMap[V]()
	for _, p := range pairs {
		out.Set(p.key, p.val)
	}
	return out
}

// MarshalOrderedMap renders m as a JSON object in iteration order. Plain
// encoding/json has no notion of ordered map keys, so every AST struct
// with an ordered-map field renders it through this helper from a custom
// MarshalJSON rather than relying on struct-tag reflection.
func MarshalOrderedMap[V any](m *OrderedMap[V]) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}

	buf := []byte{'{'}
	first := true
	for p := m.Oldest(); p != nil; p = p.Next() {
		if !first {
			buf = append(buf, ',')
		}
		first = false

		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// UnmarshalOrderedMap parses a JSON object into an ordered map, preserving
// declaration order (the property a plain map[string]V decode would lose).
func UnmarshalOrderedMap[V any](data []byte) (*OrderedMap[V], error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	out := NewOrderedMap[V]()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, cerr.ErrInvalidInputFile.New("expected a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, cerr.ErrInvalidInputFile.New("expected a string key")
		}

		var v V
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out.Set(key, v)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
