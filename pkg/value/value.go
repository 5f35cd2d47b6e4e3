package value

import (
	"fmt"
	"strings"
)

// Kind identifies the dynamic type carried by a Value.
type Kind int

const (
	// KindNull is the JSON null literal.
	KindNull Kind = iota
	// KindBool is true or false.
	KindBool
	// KindNumber is a number kept in its textual form.
	KindNumber
	// KindString is a string.
	KindString
	// KindList is an ordered sequence addressed by position.
	KindList
	// KindMap is an ordered mapping addressed by name.
	KindMap
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one node of a decoded configuration document.
type Value interface {
	Kind() Kind
	Clone() Value
}

// Null is the null literal.
type Null struct{}

// Bool is a boolean scalar.
type Bool bool

// Number is a numeric scalar in its source spelling, so that large or
// fractional numbers survive a decode/encode round unchanged.
type Number string

// String is a string scalar.
type String string

// List is an ordered sequence of values.
type List []Value

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (List) Kind() Kind   { return KindList }

func (n Null) Clone() Value   { return n }
func (b Bool) Clone() Value   { return b }
func (n Number) Clone() Value { return n }
func (s String) Clone() Value { return s }

// Clone returns a deep copy of the list.
func (l List) Clone() Value {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	for i, v := range l {
		out[i] = cloneOrNull(v)
	}
	return out
}

// Map is a mapping from names to values that remembers insertion order.
// The zero value is not usable; create maps with NewMap.
type Map struct {
	keys    []string
	entries map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{entries: make(map[string]Value)}
}

// Kind returns KindMap.
func (m *Map) Kind() Kind { return KindMap }

// Clone returns a deep copy of the map. A nil map clones to an empty map.
func (m *Map) Clone() Value {
	if m == nil {
		return NewMap()
	}
	return m.Copy()
}

// Copy is Clone with a concrete return type. A nil map copies to nil.
func (m *Map) Copy() *Map {
	if m == nil {
		return nil
	}
	out := &Map{
		keys:    make([]string, len(m.keys)),
		entries: make(map[string]Value, len(m.entries)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.entries {
		out.entries[k] = cloneOrNull(v)
	}
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the entry names in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Has reports whether name is present.
func (m *Map) Has(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.entries[name]
	return ok
}

// Get returns the value stored under name.
func (m *Map) Get(name string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.entries[name]
	return v, ok
}

// Set stores v under name. A new name is appended to the key order; an
// existing name keeps its position.
func (m *Map) Set(name string, v Value) {
	if v == nil {
		v = Null{}
	}
	if _, ok := m.entries[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.entries[name] = v
}

// Delete removes name from the map.
func (m *Map) Delete(name string) {
	if m == nil {
		return
	}
	if _, ok := m.entries[name]; !ok {
		return
	}
	delete(m.entries, name)
	for i, k := range m.keys {
		if k == name {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(name string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.entries[k]) {
			return
		}
	}
}

// GetMap returns the map stored under name.
func (m *Map) GetMap(name string) (*Map, bool) {
	v, ok := m.Get(name)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Map)
	return sub, ok && sub != nil
}

// GetString returns the string stored under name.
func (m *Map) GetString(name string) (string, bool) {
	v, ok := m.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	return string(s), ok
}

// GetBool returns the boolean stored under name.
func (m *Map) GetBool(name string) (bool, bool) {
	v, ok := m.Get(name)
	if !ok {
		return false, false
	}
	b, ok := v.(Bool)
	return bool(b), ok
}

// Strings flattens a string or a list of strings into a slice. Non-string
// list items are skipped.
func Strings(v Value) []string {
	switch t := v.(type) {
	case String:
		return []string{string(t)}
	case List:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(String); ok {
				out = append(out, string(s))
			}
		}
		return out
	default:
		return nil
	}
}

// StringList converts a slice of strings into a List.
func StringList(items ...string) List {
	out := make(List, len(items))
	for i, s := range items {
		out[i] = String(s)
	}
	return out
}

// Equal reports whether a and b hold the same document. Map key order is
// significant.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case List:
		y := b.(List)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Map:
		y := b.(*Map)
		if x.Len() != y.Len() {
			return false
		}
		xk, yk := x.Keys(), y.Keys()
		for i := range xk {
			if xk[i] != yk[i] {
				return false
			}
			xv, _ := x.Get(xk[i])
			yv, _ := y.Get(yk[i])
			if !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// String renders the value as compact JSON.
func (m *Map) String() string { return string(Marshal(m)) }

// String renders the value as compact JSON.
func (l List) String() string { return string(Marshal(l)) }

// Describe is a short human readable rendering used in log messages.
func Describe(v Value) string {
	if v == nil {
		return "<nil>"
	}
	s := string(Marshal(v))
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return strings.TrimSpace(s)
}

func cloneOrNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v.Clone()
}
