package schema

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuiltinValidate(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
	}{
		{String(), "hello", false},
		{String(), 42, true},
		{Int(), int64(42), false},
		{Int(), float64(42), false},  // whole number
		{Int(), float64(42.5), true}, // not whole
		{Int(), "42", true},
		{Float(), 3.14, false},
		{Float(), 42, false},
		{Float(), "3.14", true},
		{Bool(), true, false},
		{Bool(), 1, true},
		{Slice(String()), []any{"a", "b"}, false},
		{Slice(Int()), []any{1, "2"}, true},
		{Slice(Slice(String())), [][]string{{"a"}, {"b", "c"}}, false},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Validate(%v) error = %v, wantErr %v", tt.typ.Name(), tt.value, err, tt.wantErr)
		}
	}
}

func TestBuiltinConvert(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		want    any
		wantErr bool
	}{
		{String(), 42, "42", false},
		{String(), 1.5, "1.5", false},
		{Int(), "7", 7, false},
		{Int(), int64(9), 9, false},
		{Int(), "seven", nil, true},
		{Float(), 3, float64(3), false},
		{Float(), "2.5", 2.5, false},
		{Bool(), "true", true, false},
		{Bool(), 0, false, false},
		{Slice(Float()), []int{1, 2}, []any{float64(1), float64(2)}, false},
		{Slice(Int()), "nope", nil, true},
	}

	for _, tt := range tests {
		got, err := tt.typ.Convert(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Convert(%v) error = %v, wantErr %v", tt.typ.Name(), tt.value, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s.Convert(%v) = %#v, want %#v", tt.typ.Name(), tt.value, got, tt.want)
		}
	}
}

func TestZero(t *testing.T) {
	if Int().Zero() != 0 || Float().Zero() != float64(0) || String().Zero() != "" || Bool().Zero() != false {
		t.Error("built-in zero values are not the canonical Go zero values")
	}
}

type point struct {
	X float64
	Y float64
}

func TestGoType(t *testing.T) {
	typ := Of[point]("point")

	if typ.Name() != "point" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "point")
	}
	if err := typ.Validate(point{1, 2}); err != nil {
		t.Errorf("Validate(point) error = %v", err)
	}
	if err := typ.Validate(map[string]any{"X": 1}); err == nil {
		t.Error("Validate(map) should fail, maps need Convert")
	}

	got, err := typ.Convert(map[string]any{"x": "1.5", "y": 2})
	if err != nil {
		t.Fatalf("Convert(map) error = %v", err)
	}
	if got != (point{1.5, 2}) {
		t.Errorf("Convert(map) = %#v", got)
	}
	if typ.Zero() != (point{}) {
		t.Errorf("Zero() = %#v", typ.Zero())
	}
}

func TestCustomType(t *testing.T) {
	even := Custom("even", func(v any) error {
		i, ok := v.(int)
		if !ok || i%2 != 0 {
			return errors.New("not an even int")
		}
		return nil
	})

	if _, err := even.Convert(3); err == nil {
		t.Error("Convert(3) should fail validation")
	}
	if v, err := even.Convert(4); err != nil || v != 4 {
		t.Errorf("Convert(4) = %v, %v", v, err)
	}
	if err := Opaque("mystery").Validate(struct{}{}); err != nil {
		t.Errorf("Opaque accepts anything, got %v", err)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantErr  bool
		wantName string
	}{
		{"string", false, "string"},
		{"float", false, "float"},
		{"[int]", false, "[int]"},
		{"[[string]]", false, "[[string]]"},
		{"invalid", true, ""},
		{"[invalid]", true, ""},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q) Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
	}
}

func TestTypesRegistry(t *testing.T) {
	types := NewTypes().Register(Of[point]("point"))

	typ, err := types.Parse("[point]")
	if err != nil {
		t.Fatalf("Parse([point]) error = %v", err)
	}
	if typ.Name() != "[point]" {
		t.Errorf("Name() = %q", typ.Name())
	}
	if _, err := ParseType("point"); err == nil {
		t.Error("package-level ParseType must only know built-ins")
	}

	want := []string{"bool", "float", "int", "point", "string"}
	if got := types.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestParseTypeMap(t *testing.T) {
	s, err := ParseTypeMap(map[string]string{"gain": "float", "tags": "[string]"})
	if err != nil {
		t.Fatalf("ParseTypeMap() error = %v", err)
	}
	if s["gain"].Name() != "float" || s["tags"].Name() != "[string]" {
		t.Errorf("ParseTypeMap() = %v", s)
	}

	if _, err := ParseTypeMap(map[string]string{"x": "invalid"}); err == nil {
		t.Fatal("ParseTypeMap() should return error for invalid type")
	}
}
