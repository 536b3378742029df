package event

import (
	"bytes"
	"log/slog"
	"strings"
	"reflect"
	"testing"
)

func sampleStructure() *Structure {
	return &Structure{
		TypeTag: "User",
		Properties: []Property{
			{Name: "Id", Value: Scalar{V: 2}},
			{Name: "Tags", Value: &Sequence{Elements: []Value{Scalar{V: "a"}, Scalar{V: "b"}}}},
			{Name: "Meta", Value: &Dictionary{Entries: []DictionaryEntry{
				{Key: Scalar{V: "region"}, Value: Scalar{V: "eu"}},
			}}},
			{Name: "Password", Value: Scalar{V: "******"}},
		},
	}
}

func TestStructureGetAndNames(t *testing.T) {
	s := sampleStructure()

	if got, want := s.Names(), []string{"Id", "Tags", "Meta", "Password"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	v, ok := s.Get("Password")
	if !ok {
		t.Fatal("Password should exist")
	}
	if lit, _ := Literal(v); lit != "******" {
		t.Errorf("Password = %v, want ******", lit)
	}
	if _, ok := s.Get("password"); ok {
		t.Error("Get should be case sensitive")
	}
}

func TestToPlain(t *testing.T) {
	got := ToPlain(sampleStructure(), "")
	want := map[string]any{
		"Id":       2,
		"Tags":     []any{"a", "b"},
		"Meta":     map[string]any{"region": "eu"},
		"Password": "******",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToPlain() = %#v, want %#v", got, want)
	}

	tagged := ToPlain(sampleStructure(), "_type").(map[string]any)
	if tagged["_type"] != "User" {
		t.Errorf("type tag = %v, want User", tagged["_type"])
	}
}

func TestRenderKeepsFieldOrder(t *testing.T) {
	v := Render(sampleStructure(), "$type")
	if v.Kind() != slog.KindGroup {
		t.Fatalf("Kind() = %v, want Group", v.Kind())
	}
	var keys []string
	for _, a := range v.Group() {
		keys = append(keys, a.Key)
	}
	want := []string{"$type", "Id", "Tags", "Meta", "Password"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestLiteralOnNonScalar(t *testing.T) {
	if _, ok := Literal(&Sequence{}); ok {
		t.Error("Literal should reject sequences")
	}
	if v, ok := Literal(Scalar{}); !ok || v != nil {
		t.Errorf("Literal(Scalar{}) = %v, %v", v, ok)
	}
}

func TestRenderEmptyStructureIsKept(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logger.Info("empty", "s", Render(&Structure{TypeTag: "Empty"}, ""), "d", Render(&Dictionary{}, ""))

	if !strings.Contains(buf.String(), `"s":{}`) || !strings.Contains(buf.String(), `"d":{}`) {
		t.Errorf("output = %s", buf.String())
	}

	v := Render(&Structure{TypeTag: "Empty"}, "$type")
	if v.Kind() != slog.KindGroup || len(v.Group()) != 1 {
		t.Errorf("tagged empty structure = %v, want group with type tag", v)
	}
}
