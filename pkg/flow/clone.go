package flow

import (
	"encoding/json"
	"reflect"
)

// Clone returns a deep copy. Sessions clone the document they are given so a
// reload never mutates a document under a running simulation.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Version:        d.Version,
		DataAPIVersion: d.DataAPIVersion,
		Extra:          cloneRaw(d.Extra),
	}
	if d.RoutingModel != nil {
		out.RoutingModel = make(map[string][]string, len(d.RoutingModel))
		for from, targets := range d.RoutingModel {
			out.RoutingModel[from] = append([]string{}, targets...)
		}
	}
	if d.Screens != nil {
		out.Screens = make([]Screen, len(d.Screens))
		for idx, screen := range d.Screens {
			out.Screens[idx] = screen.clone()
		}
	}
	if d.Actions != nil {
		out.Actions = make([]Action, len(d.Actions))
		for idx, action := range d.Actions {
			out.Actions[idx] = *action.Clone()
		}
	}
	return out
}

func (s Screen) clone() Screen {
	out := s
	out.Extra = cloneRaw(s.Extra)
	out.Layout.Extra = cloneRaw(s.Layout.Extra)
	out.Layout.Children = cloneComponents(s.Layout.Children)
	return out
}

func cloneComponents(components []Component) []Component {
	if components == nil {
		return nil
	}
	out := make([]Component, len(components))
	for idx, component := range components {
		out[idx] = component.Clone()
	}
	return out
}

// Clone returns a deep copy of the component.
func (c Component) Clone() Component {
	out := c
	out.Props = cloneRaw(c.Props)
	if c.Raw != nil {
		out.Raw = append(json.RawMessage(nil), c.Raw...)
	}
	if c.DataSource != nil {
		out.DataSource = make([]DataSourceItem, len(c.DataSource))
		for idx, item := range c.DataSource {
			item.Extra = cloneRaw(item.Extra)
			out.DataSource[idx] = item
		}
	}
	if c.MinCount != nil {
		n := *c.MinCount
		out.MinCount = &n
	}
	if c.MaxCount != nil {
		n := *c.MaxCount
		out.MaxCount = &n
	}
	out.OnClickAction = c.OnClickAction.Clone()
	out.Children = cloneComponents(c.Children)
	return out
}

// Clone returns a deep copy of the action; nil stays nil.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	out := *a
	out.Extra = cloneRaw(a.Extra)
	out.NextExtra = cloneRaw(a.NextExtra)
	if a.Payload != nil {
		out.Payload, _ = CloneValue(a.Payload).(map[string]any)
	}
	out.Success = a.Success.Clone()
	out.Error = a.Error.Clone()
	return &out
}

// CloneValue deep-copies a value tree: decoded JSON (maps, slices,
// scalars) as well as typed slices and maps such as []string handed in by
// callers. Pointers and structs are returned as is.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = CloneValue(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = CloneValue(v)
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	}
	return cloneReflect(reflect.ValueOf(value)).Interface()
}

func cloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneElem(v.Index(i)))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneElem(iter.Value()))
		}
		return out
	default:
		return v
	}
}

// cloneElem copies an element and converts it back to the container's
// element type.
func cloneElem(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v
		}
		clone := reflect.ValueOf(CloneValue(v.Elem().Interface()))
		out := reflect.New(v.Type()).Elem()
		out.Set(clone)
		return out
	}
	return cloneReflect(v)
}

func cloneRaw(fields map[string]json.RawMessage) map[string]json.RawMessage {
	if fields == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(fields))
	for key, value := range fields {
		out[key] = append(json.RawMessage(nil), value...)
	}
	return out
}
