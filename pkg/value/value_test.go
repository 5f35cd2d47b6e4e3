package value

import (
	"testing"
)

func TestParseMap_PreservesKeyOrder(t *testing.T) {
	m, err := ParseMap([]byte(`{"zeta": 1, "alpha": 2, "mid": {"b": true, "a": null}}`))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	keys := m.Keys()
	expected := []string{"zeta", "alpha", "mid"}
	if len(keys) != len(expected) {
		t.Fatalf("Expected %d keys, got %d", len(expected), len(keys))
	}
	for i := range expected {
		if keys[i] != expected[i] {
			t.Errorf("Expected key %d to be %q, got %q", i, expected[i], keys[i])
		}
	}

	mid, ok := m.GetMap("mid")
	if !ok {
		t.Fatal("Expected mid to be a map")
	}
	if got := mid.Keys(); got[0] != "b" || got[1] != "a" {
		t.Errorf("Expected nested order [b a], got %v", got)
	}
}

func TestParseMap_RejectsNonObject(t *testing.T) {
	if _, err := ParseMap([]byte(`[1, 2]`)); err == nil {
		t.Fatal("Expected error for top-level array")
	}
	if _, err := ParseMap([]byte(`{"broken": `)); err == nil {
		t.Fatal("Expected error for truncated document")
	}
}

func TestMarshal_RoundTripKeepsSpelling(t *testing.T) {
	doc := `{"b":1.50,"a":[true,false,null,"x\"y"],"c":{}}`
	m := MustParseMap(doc)

	got := string(Marshal(m))
	if got != doc {
		t.Errorf("Expected %s, got %s", doc, got)
	}
}

func TestMap_SetKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set("a", String("1"))
	m.Set("b", String("2"))
	m.Set("a", String("3"))

	if got := m.String(); got != `{"a":"3","b":"2"}` {
		t.Errorf("Expected overwrite in place, got %s", got)
	}

	m.Delete("a")
	if m.Has("a") || m.Len() != 1 {
		t.Errorf("Expected a to be deleted, got %s", m.String())
	}
}

func TestMap_CopyIsDeep(t *testing.T) {
	orig := MustParseMap(`{"k": {"list": [1]}}`)
	cp := orig.Copy()

	inner, _ := cp.GetMap("k")
	inner.Set("list", List{Number("9")})
	inner.Set("extra", Bool(true))

	if got := orig.String(); got != `{"k":{"list":[1]}}` {
		t.Errorf("Expected original untouched, got %s", got)
	}
}

func TestMap_NilReceiver(t *testing.T) {
	var m *Map
	if m.Len() != 0 || m.Has("x") || m.Keys() != nil {
		t.Error("Expected nil map to behave as empty")
	}
	if _, ok := m.GetMap("x"); ok {
		t.Error("Expected no entry on nil map")
	}
	if m.Clone().(*Map).Len() != 0 {
		t.Error("Expected nil map to clone into an empty map")
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected []string
	}{
		{"single string", String("a.json"), []string{"a.json"}},
		{"list", List{String("a"), Number("1"), String("b")}, []string{"a", "b"}},
		{"other", Bool(true), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Strings(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

func TestEqual_OrderSensitive(t *testing.T) {
	a := MustParseMap(`{"x": 1, "y": 2}`)
	b := MustParseMap(`{"y": 2, "x": 1}`)
	if Equal(a, b) {
		t.Error("Expected maps with different key order to differ")
	}
	if !Equal(a, a.Copy()) {
		t.Error("Expected copy to be equal")
	}
}
