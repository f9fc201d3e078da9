// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"bytes"
	"encoding/json"
	"iter"

	"importmap-cli/pkg/specifier"
	"importmap-cli/pkg/urlutil"
)

type (
	// Address is the value of an import map entry: either a target URL or
	// blocked (JSON null). The zero value is blocked.
	Address struct {
		url *urlutil.URL
	}

	// SpecifierMap maps normalized specifier keys to addresses, in the order
	// keys were first defined.
	SpecifierMap struct {
		entries orderedMap[Address]
	}

	// ScopesMap maps normalized scope prefixes to their specifier maps, in the
	// order scopes were first defined.
	ScopesMap struct {
		entries orderedMap[*SpecifierMap]
	}

	// ImportMap is a parsed import map. It is not modified after Parse
	// returns, so it may be shared between goroutines.
	ImportMap struct {
		Imports SpecifierMap
		Scopes  ScopesMap
	}

	// orderedMap is an insertion-ordered map. Setting an existing key replaces
	// its value in place.
	orderedMap[V any] struct {
		keys   []string
		values []V
		index  map[string]int
	}
)

// Target returns an address pointing at u.
func Target(u *urlutil.URL) Address { return Address{url: u} }

// IsBlocked reports whether the address is null.
func (a Address) IsBlocked() bool { return a.url == nil }

// URL returns the target URL, or nil when blocked.
func (a Address) URL() *urlutil.URL { return a.url }

// String returns the serialized target URL, or "" when blocked.
func (a Address) String() string {
	if a.url == nil {
		return ""
	}
	return a.url.String()
}

// MarshalJSON encodes the address as a string, or null when blocked.
func (a Address) MarshalJSON() ([]byte, error) {
	if a.url == nil {
		return []byte("null"), nil
	}
	return json.Marshal(a.url.String())
}

func (m *orderedMap[V]) set(key string, value V) (replaced bool) {
	if i, ok := m.index[key]; ok {
		m.values[i] = value
		return true
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
	return false
}

func (m *orderedMap[V]) get(key string) (V, bool) {
	i, ok := m.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return m.values[i], true
}

func (m *orderedMap[V]) all() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for i, k := range m.keys {
			if !yield(k, m.values[i]) {
				return
			}
		}
	}
}

// Get returns the address stored under key.
func (m *SpecifierMap) Get(key string) (Address, bool) { return m.entries.get(key) }

// Len returns the number of entries.
func (m *SpecifierMap) Len() int { return len(m.entries.keys) }

// Keys returns the keys in definition order.
func (m *SpecifierMap) Keys() []string { return append([]string(nil), m.entries.keys...) }

// All iterates over the entries in definition order.
func (m *SpecifierMap) All() iter.Seq2[string, Address] { return m.entries.all() }

// set stores addr under key and reports whether an earlier entry was replaced.
func (m *SpecifierMap) set(key string, addr Address) bool { return m.entries.set(key, addr) }

// match returns the longest key that equals s or is a slash-terminated prefix
// of it.
func (m *SpecifierMap) match(s string) (key string, addr Address, ok bool) {
	for i, k := range m.entries.keys {
		if len(k) <= len(key) || !specifier.MatchesPrefix(k, s) {
			continue
		}
		key, addr, ok = k, m.entries.values[i], true
	}
	return key, addr, ok
}

// MarshalJSON encodes the map as a JSON object in definition order.
func (m SpecifierMap) MarshalJSON() ([]byte, error) {
	return marshalOrdered(m.entries.all())
}

// Get returns the specifier map for the scope prefix key.
func (m *ScopesMap) Get(key string) (*SpecifierMap, bool) { return m.entries.get(key) }

// Len returns the number of scopes.
func (m *ScopesMap) Len() int { return len(m.entries.keys) }

// Keys returns the scope prefixes in definition order.
func (m *ScopesMap) Keys() []string { return append([]string(nil), m.entries.keys...) }

// All iterates over the scopes in definition order.
func (m *ScopesMap) All() iter.Seq2[string, *SpecifierMap] { return m.entries.all() }

func (m *ScopesMap) set(key string, scope *SpecifierMap) bool { return m.entries.set(key, scope) }

// MarshalJSON encodes the scopes as a JSON object in definition order.
func (m ScopesMap) MarshalJSON() ([]byte, error) {
	return marshalOrdered(m.entries.all())
}

// MarshalJSON encodes the import map as {"imports": ..., "scopes": ...}.
func (m *ImportMap) MarshalJSON() ([]byte, error) {
	return marshalOrdered[any](func(yield func(string, any) bool) {
		if !yield("imports", m.Imports) {
			return
		}
		yield("scopes", m.Scopes)
	})
}

// Record returns the import map as plain nested maps with blocked entries
// left out.
func (m *ImportMap) Record() map[string]any {
	scopes := make(map[string]any, m.Scopes.Len())
	for prefix, scope := range m.Scopes.All() {
		scopes[prefix] = record(scope, false)
	}
	return map[string]any{
		"imports": record(&m.Imports, false),
		"scopes":  scopes,
	}
}

// record flattens a specifier map. With keepBlocked, null entries map to nil.
func record(m *SpecifierMap, keepBlocked bool) map[string]any {
	out := make(map[string]any, m.Len())
	for key, addr := range m.All() {
		switch {
		case !addr.IsBlocked():
			out[key] = addr.String()
		case keepBlocked:
			out[key] = nil
		}
	}
	return out
}

func marshalOrdered[V any](seq iter.Seq2[string, V]) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for key, value := range seq {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
