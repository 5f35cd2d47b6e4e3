package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/valyala/fastjson"
)

// Parse decodes a JSON document. Object key order is preserved; a key that
// appears twice keeps its first position and its last value.
func Parse(data []byte) (Value, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return fromFast(v)
}

// ParseMap decodes a JSON document whose top level must be an object.
func ParseMap(data []byte) (*Map, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*Map)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object at top level, got %s", v.Kind())
	}
	return m, nil
}

// MustParseMap is ParseMap for literals in tests and examples.
func MustParseMap(doc string) *Map {
	m, err := ParseMap([]byte(doc))
	if err != nil {
		panic(err)
	}
	return m
}

func fromFast(v *fastjson.Value) (Value, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return Null{}, nil
	case fastjson.TypeTrue:
		return Bool(true), nil
	case fastjson.TypeFalse:
		return Bool(false), nil
	case fastjson.TypeNumber:
		return Number(v.String()), nil
	case fastjson.TypeString:
		b, err := v.StringBytes()
		if err != nil {
			return nil, err
		}
		return String(b), nil
	case fastjson.TypeArray:
		items, err := v.Array()
		if err != nil {
			return nil, err
		}
		out := make(List, 0, len(items))
		for _, item := range items {
			conv, err := fromFast(item)
			if err != nil {
				return nil, err
			}
			out = append(out, conv)
		}
		return out, nil
	case fastjson.TypeObject:
		obj, err := v.Object()
		if err != nil {
			return nil, err
		}
		out := NewMap()
		var visitErr error
		obj.Visit(func(key []byte, item *fastjson.Value) {
			if visitErr != nil {
				return
			}
			conv, err := fromFast(item)
			if err != nil {
				visitErr = err
				return
			}
			out.Set(string(key), conv)
		})
		if visitErr != nil {
			return nil, visitErr
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value type %s", v.Type())
	}
}

// Marshal encodes v as compact JSON keeping map key order.
func Marshal(v Value) []byte {
	var a fastjson.Arena
	return toFast(&a, v).MarshalTo(nil)
}

// MarshalIndent encodes v as indented JSON keeping map key order.
func MarshalIndent(v Value, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, Marshal(v), "", indent); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// MarshalJSON lets maps be embedded in encoding/json documents and zerolog fields.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return Marshal(m), nil
}

// MarshalJSON lets lists be embedded in encoding/json documents and zerolog fields.
func (l List) MarshalJSON() ([]byte, error) {
	return Marshal(l), nil
}

func toFast(a *fastjson.Arena, v Value) *fastjson.Value {
	switch t := v.(type) {
	case nil, Null:
		return a.NewNull()
	case Bool:
		if t {
			return a.NewTrue()
		}
		return a.NewFalse()
	case Number:
		return a.NewNumberString(string(t))
	case String:
		return a.NewString(string(t))
	case List:
		arr := a.NewArray()
		for i, item := range t {
			arr.SetArrayItem(i, toFast(a, item))
		}
		return arr
	case *Map:
		if t == nil {
			return a.NewNull()
		}
		obj := a.NewObject()
		t.Range(func(name string, item Value) bool {
			obj.Set(name, toFast(a, item))
			return true
		})
		return obj
	default:
		return a.NewNull()
	}
}
