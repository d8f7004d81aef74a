package binding

import (
	"sort"

	"github.com/goliatone/go-waflow/pkg/flow"
)

// Values holds entered field values keyed by form and field name. The zero
// value is ready to use through Set.
type Values map[FieldRef]any

// Set records a value, allocating the map on first use.
func (v *Values) Set(form, field string, value any) {
	if *v == nil {
		*v = make(Values)
	}
	(*v)[FieldRef{Form: form, Field: field}] = value
}

// Get looks up a value.
func (v Values) Get(ref FieldRef) (any, bool) {
	if v == nil {
		return nil, false
	}
	value, ok := v[ref]
	return value, ok
}

// Clone returns a shallow copy of the map; values are deep-copied when they
// are maps or slices.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	out := make(Values, len(v))
	for ref, value := range v {
		out[ref] = flow.CloneValue(value)
	}
	return out
}

// Refs returns the keys sorted by form then field.
func (v Values) Refs() []FieldRef {
	out := make([]FieldRef, 0, len(v))
	for ref := range v {
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Form == out[j].Form {
			return out[i].Field < out[j].Field
		}
		return out[i].Form < out[j].Form
	})
	return out
}

// Nested renders the values as {form: {field: value}}.
func (v Values) Nested() map[string]any {
	out := make(map[string]any)
	for _, ref := range v.Refs() {
		form, ok := out[ref.Form].(map[string]any)
		if !ok {
			form = make(map[string]any)
			out[ref.Form] = form
		}
		form[ref.Field] = flow.CloneValue(v[ref])
	}
	return out
}
