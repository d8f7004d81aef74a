package binding

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolve_SubstitutesValues(t *testing.T) {
	var values Values
	values.Set("f1", "name", "Alice")

	got, warnings := Resolve(map[string]any{"who": "${form.f1.name}"}, values)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if diff := cmp.Diff(map[string]any{"who": "Alice"}, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_UnresolvedBinding(t *testing.T) {
	got, warnings := Resolve(map[string]any{"who": "${form.f1.missing}"}, Values{})
	if diff := cmp.Diff(map[string]any{"who": ""}, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warnings))
	}
	want := Warning{
		Code:    CodeUnresolvedBinding,
		Ref:     FieldRef{Form: "f1", Field: "missing"},
		Path:    "who",
		Message: "no value for ${form.f1.missing}",
	}
	if diff := cmp.Diff(want, warnings[0]); diff != "" {
		t.Fatalf("warning mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_NestedAndPassThrough(t *testing.T) {
	var values Values
	values.Set("order", "qty", json.Number("3"))
	values.Set("order", "tags", []string{"a", "b"})

	template := map[string]any{
		"static":  "hello ${form.order.qty}",
		"count":   json.Number("7"),
		"flag":    true,
		"missing": nil,
		"items": []any{
			map[string]any{"qty": "${form.order.qty}"},
			"${form.order.tags}",
		},
	}
	got, warnings := Resolve(template, values)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	want := map[string]any{
		"static":  "hello ${form.order.qty}",
		"count":   json.Number("7"),
		"flag":    true,
		"missing": nil,
		"items": []any{
			map[string]any{"qty": json.Number("3")},
			[]string{"a", "b"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_DoesNotMutateTemplate(t *testing.T) {
	template := map[string]any{
		"outer": map[string]any{"inner": "${form.f.x}"},
	}
	var values Values
	values.Set("f", "x", "first")

	first, _ := Resolve(template, values)
	if template["outer"].(map[string]any)["inner"] != "${form.f.x}" {
		t.Fatalf("template was mutated")
	}

	values.Set("f", "x", "second")
	second, _ := Resolve(template, values)
	if first.(map[string]any)["outer"].(map[string]any)["inner"] != "first" {
		t.Fatalf("first result changed after re-evaluation")
	}
	if second.(map[string]any)["outer"].(map[string]any)["inner"] != "second" {
		t.Fatalf("expected re-evaluation to pick up the new value")
	}
}

func TestResolvePayload_Nil(t *testing.T) {
	got, warnings := ResolvePayload(nil, Values{})
	if got != nil || warnings != nil {
		t.Fatalf("expected nil payload to stay nil")
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want FieldRef
		ok   bool
	}{
		{in: "${form.f1.name}", want: FieldRef{Form: "f1", Field: "name"}, ok: true},
		{in: "${form.sign-up.e_mail}", want: FieldRef{Form: "sign-up", Field: "e_mail"}, ok: true},
		{in: "${form.name}"},
		{in: "${data.f1.name}"},
		{in: "prefix ${form.f1.name}"},
		{in: ""},
	}
	for _, tt := range tests {
		got, ok := ParseRef(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseRef(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRefs_Depth(t *testing.T) {
	template := map[string]any{
		"photo": "${form.upload.photo}",
		"meta":  map[string]any{"doc": "${form.upload.doc}"},
		"list":  []any{"${form.a.b}"},
	}
	want := []Reference{
		{Ref: FieldRef{Form: "a", Field: "b"}, Path: "list[0]", Depth: 2},
		{Ref: FieldRef{Form: "upload", Field: "doc"}, Path: "meta.doc", Depth: 2},
		{Ref: FieldRef{Form: "upload", Field: "photo"}, Path: "photo", Depth: 1},
	}
	if diff := cmp.Diff(want, Refs(template)); diff != "" {
		t.Fatalf("refs mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_NestedAndClone(t *testing.T) {
	var values Values
	values.Set("b", "y", "2")
	values.Set("a", "x", "1")

	want := map[string]any{
		"a": map[string]any{"x": "1"},
		"b": map[string]any{"y": "2"},
	}
	if diff := cmp.Diff(want, values.Nested()); diff != "" {
		t.Fatalf("nested mismatch (-want +got):\n%s", diff)
	}

	clone := values.Clone()
	clone.Set("a", "x", "changed")
	if v, _ := values.Get(FieldRef{Form: "a", Field: "x"}); v != "1" {
		t.Fatalf("clone shares storage")
	}
}
