package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Serialize renders the document as two-space indented JSON. Known keys are
// written first in canonical order, preserved keys follow sorted by name.
// HTML characters are not escaped so text survives export verbatim.
func Serialize(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("flow: serialize nil document")
	}
	w := newObjectWriter()
	w.value("version", doc.Version)
	if doc.DataAPIVersion != "" {
		w.value("data_api_version", doc.DataAPIVersion)
	}
	if doc.RoutingModel != nil {
		w.value("routing_model", doc.RoutingModel)
	}
	screens := make([]json.RawMessage, 0, len(doc.Screens))
	for _, screen := range doc.Screens {
		raw, err := encodeScreen(screen)
		if err != nil {
			return nil, err
		}
		screens = append(screens, raw)
	}
	w.array("screens", screens)
	if doc.Actions != nil {
		actions := make([]json.RawMessage, 0, len(doc.Actions))
		for _, action := range doc.Actions {
			raw, err := encodeAction(action)
			if err != nil {
				return nil, err
			}
			actions = append(actions, raw)
		}
		w.array("actions", actions)
	}
	w.extras(doc.Extra)

	out, err := w.bytes()
	if err != nil {
		return nil, fmt.Errorf("flow: serialize: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, out, "", "  "); err != nil {
		return nil, fmt.Errorf("flow: serialize: %w", err)
	}
	pretty.WriteByte('\n')
	return pretty.Bytes(), nil
}

func encodeScreen(screen Screen) (json.RawMessage, error) {
	w := newObjectWriter()
	w.value("id", screen.ID)
	if screen.Title != "" {
		w.value("title", screen.Title)
	}
	if screen.Terminal {
		w.value("terminal", true)
	}
	layout := screen.Layout
	if layout.Type != "" || layout.Children != nil || layout.Extra != nil {
		lw := newObjectWriter()
		if layout.Type != "" {
			lw.value("type", layout.Type)
		}
		if layout.Children != nil {
			children, err := encodeComponents(layout.Children)
			if err != nil {
				return nil, err
			}
			lw.array("children", children)
		}
		lw.extras(layout.Extra)
		raw, err := lw.bytes()
		if err != nil {
			return nil, err
		}
		w.raw("layout", raw)
	}
	w.extras(screen.Extra)
	return w.bytes()
}

func encodeComponents(components []Component) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(components))
	for _, component := range components {
		raw, err := encodeComponent(component)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func encodeComponent(c Component) (json.RawMessage, error) {
	if c.Kind == KindUnknown {
		if len(c.Raw) > 0 {
			return c.Raw, nil
		}
		w := newObjectWriter()
		w.value("type", c.Type)
		w.extras(c.Props)
		return w.bytes()
	}

	w := newObjectWriter()
	w.value("type", c.Type)
	if c.Name != "" {
		w.value("name", c.Name)
	}
	if c.Label != "" {
		w.value("label", c.Label)
	}
	if c.Text != "" {
		w.value("text", c.Text)
	}
	if c.DataSource != nil {
		items := make([]json.RawMessage, 0, len(c.DataSource))
		for _, item := range c.DataSource {
			iw := newObjectWriter()
			if item.ID != "" {
				iw.value("id", item.ID)
			}
			if item.Title != "" {
				iw.value("title", item.Title)
			}
			iw.extras(item.Extra)
			raw, err := iw.bytes()
			if err != nil {
				return nil, err
			}
			items = append(items, raw)
		}
		key := "data-source"
		if _, taken := c.Props[key]; taken {
			key = "data_source"
		}
		w.array(key, items)
	}
	if minKey, maxKey := c.Kind.mediaBoundKeys(); minKey != "" {
		if _, taken := c.Props[minKey]; c.MinCount != nil && !taken {
			w.value(minKey, *c.MinCount)
		}
		if _, taken := c.Props[maxKey]; c.MaxCount != nil && !taken {
			w.value(maxKey, *c.MaxCount)
		}
	}
	if c.ActionID != "" {
		w.value("action_id", c.ActionID)
	}
	if c.OnClickAction != nil {
		raw, err := encodeAction(*c.OnClickAction)
		if err != nil {
			return nil, err
		}
		w.raw("on-click-action", raw)
	}
	if c.Kind == KindForm && c.Children != nil {
		children, err := encodeComponents(c.Children)
		if err != nil {
			return nil, err
		}
		w.array("children", children)
	}
	w.extras(c.Props)
	return w.bytes()
}

func encodeAction(a Action) (json.RawMessage, error) {
	w := newObjectWriter()
	if a.ID != "" {
		w.value("id", a.ID)
	}
	legacy := a.Syntax == SyntaxLegacy
	switch {
	case legacy:
		w.value("type", string(a.Kind))
	case a.Kind != "":
		w.value("name", string(a.Kind))
	}
	_, nextTaken := a.Extra["next"]
	_, screenIDTaken := a.Extra["screen_id"]
	hasNext := a.NextType != "" || len(a.NextExtra) > 0
	switch {
	case a.Target != "" && (nextTaken || (legacy && !hasNext && !screenIDTaken)):
		w.value("screen_id", a.Target)
	case a.Target != "" || hasNext:
		nw := newObjectWriter()
		if a.NextType != "" {
			nw.value("type", a.NextType)
		}
		if a.Target != "" {
			nw.value("name", a.Target)
		}
		nw.extras(a.NextExtra)
		raw, err := nw.bytes()
		if err != nil {
			return nil, err
		}
		w.raw("next", raw)
	}
	if a.Payload != nil {
		w.value("payload", a.Payload)
	}
	for _, continuation := range []struct {
		key    string
		action *Action
	}{{"success", a.Success}, {"error", a.Error}} {
		if continuation.action == nil {
			continue
		}
		raw, err := encodeAction(*continuation.action)
		if err != nil {
			return nil, err
		}
		w.raw(continuation.key, raw)
	}
	w.extras(a.Extra)
	return w.bytes()
}

// objectWriter emits a JSON object with keys in insertion order. The first
// encoding error sticks and is reported by bytes.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) raw(key string, raw json.RawMessage) {
	if w.err != nil {
		return
	}
	name, err := encodeJSON(key)
	if err != nil {
		w.err = err
		return
	}
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(name)
	w.buf.WriteByte(':')
	w.buf.Write(raw)
	w.n++
}

func (w *objectWriter) value(key string, v any) {
	if w.err != nil {
		return
	}
	raw, err := encodeJSON(v)
	if err != nil {
		w.err = fmt.Errorf("encode %q: %w", key, err)
		return
	}
	w.raw(key, raw)
}

func (w *objectWriter) array(key string, items []json.RawMessage) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for idx, item := range items {
		if idx > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item)
	}
	buf.WriteByte(']')
	w.raw(key, buf.Bytes())
}

func (w *objectWriter) extras(fields map[string]json.RawMessage) {
	if len(fields) == 0 {
		return
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		w.raw(key, fields[key])
	}
}

func (w *objectWriter) bytes() (json.RawMessage, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return json.RawMessage(w.buf.Bytes()), nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
