package flow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Parse builds a Document from raw JSON text.
func Parse(raw []byte) (*Document, error) {
	p := &parser{input: raw}
	return p.document()
}

// ParseString is Parse for string input.
func ParseString(raw string) (*Document, error) {
	return Parse([]byte(raw))
}

type parser struct {
	input []byte
}

func (p *parser) malformed(path string, err error) error {
	return &ParseError{Kind: ParseMalformed, Path: path, Input: string(p.input), Err: err}
}

func (p *parser) missing(field string) error {
	return &ParseError{Kind: ParseSchemaMissingField, Field: field, Input: string(p.input)}
}

func (p *parser) document() (*Document, error) {
	if !json.Valid(p.input) {
		var probe any
		err := json.Unmarshal(p.input, &probe)
		perr := &ParseError{Kind: ParseMalformed, Input: string(p.input), Err: err}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			perr.Offset = syntaxErr.Offset
		}
		return nil, perr
	}

	fields, err := p.object(p.input, "")
	if err != nil {
		return nil, err
	}

	doc := &Document{}

	rawVersion, ok := take(fields, "version")
	if !ok {
		return nil, p.missing("version")
	}
	if doc.Version, err = p.str(rawVersion, "version"); err != nil {
		return nil, err
	}

	rawScreens, ok := take(fields, "screens")
	if !ok {
		return nil, p.missing("screens")
	}
	items, err := p.array(rawScreens, "screens")
	if err != nil {
		return nil, err
	}
	doc.Screens = make([]Screen, 0, len(items))
	for idx, item := range items {
		screen, err := p.screen(item, fmt.Sprintf("screens[%d]", idx))
		if err != nil {
			return nil, err
		}
		doc.Screens = append(doc.Screens, screen)
	}

	if raw, ok := takeString(fields, "data_api_version"); ok {
		doc.DataAPIVersion = raw
	}

	if raw, ok := take(fields, "routing_model"); ok {
		if doc.RoutingModel, err = p.routingModel(raw); err != nil {
			return nil, err
		}
	}

	if raw, ok := take(fields, "actions"); ok {
		entries, err := p.array(raw, "actions")
		if err != nil {
			return nil, err
		}
		doc.Actions = make([]Action, 0, len(entries))
		for idx, entry := range entries {
			action, err := p.action(entry, fmt.Sprintf("actions[%d]", idx))
			if err != nil {
				return nil, err
			}
			doc.Actions = append(doc.Actions, *action)
		}
	}

	doc.Extra = extras(fields)
	return doc, nil
}

func (p *parser) routingModel(raw json.RawMessage) (map[string][]string, error) {
	fields, err := p.object(raw, "routing_model")
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(fields))
	for from, value := range fields {
		var targets []string
		if err := json.Unmarshal(value, &targets); err != nil {
			return nil, p.malformed("routing_model."+from, errors.New("expected an array of screen ids"))
		}
		if targets == nil {
			targets = []string{}
		}
		out[from] = targets
	}
	return out, nil
}

func (p *parser) screen(raw json.RawMessage, path string) (Screen, error) {
	fields, err := p.object(raw, path)
	if err != nil {
		return Screen{}, err
	}
	var screen Screen
	if value, ok := takeString(fields, "id"); ok {
		screen.ID = value
	}
	if value, ok := takeString(fields, "title"); ok {
		screen.Title = value
	}
	if value, ok := fields["terminal"]; ok {
		var terminal bool
		if json.Unmarshal(value, &terminal) == nil {
			screen.Terminal = terminal
			delete(fields, "terminal")
		}
	}
	if value, ok := take(fields, "layout"); ok {
		if screen.Layout, err = p.layout(value, path+".layout"); err != nil {
			return Screen{}, err
		}
	}
	screen.Extra = extras(fields)
	return screen, nil
}

func (p *parser) layout(raw json.RawMessage, path string) (Layout, error) {
	fields, err := p.object(raw, path)
	if err != nil {
		return Layout{}, err
	}
	var layout Layout
	if value, ok := takeString(fields, "type"); ok {
		layout.Type = value
	}
	if value, ok := take(fields, "children"); ok {
		if layout.Children, err = p.components(value, path+".children"); err != nil {
			return Layout{}, err
		}
	}
	layout.Extra = extras(fields)
	return layout, nil
}

func (p *parser) components(raw json.RawMessage, path string) ([]Component, error) {
	items, err := p.array(raw, path)
	if err != nil {
		return nil, err
	}
	out := make([]Component, 0, len(items))
	for idx, item := range items {
		component, err := p.component(item, fmt.Sprintf("%s[%d]", path, idx))
		if err != nil {
			return nil, err
		}
		out = append(out, component)
	}
	return out, nil
}

func (p *parser) component(raw json.RawMessage, path string) (Component, error) {
	fields, err := p.object(raw, path)
	if err != nil {
		return Component{}, err
	}

	var tag string
	if value, ok := fields["type"]; ok {
		_ = json.Unmarshal(value, &tag)
	}
	kind := KindOf(tag)
	if kind == KindUnknown {
		return Component{Type: tag, Raw: compact(raw)}, nil
	}
	delete(fields, "type")

	c := Component{Type: tag, Kind: kind}
	if value, ok := takeString(fields, "name"); ok {
		c.Name = value
	}
	if value, ok := takeString(fields, "label"); ok {
		c.Label = value
	}
	if value, ok := takeString(fields, "text"); ok {
		c.Text = value
	}
	if value, ok := takeString(fields, "action_id"); ok {
		c.ActionID = value
	}

	for _, key := range []string{"data-source", "data_source"} {
		value, ok := fields[key]
		if !ok || firstByte(value) != '[' {
			continue
		}
		if c.DataSource, err = p.dataSource(value, path+"."+key); err != nil {
			return Component{}, err
		}
		delete(fields, key)
		break
	}

	if minKey, maxKey := kind.mediaBoundKeys(); minKey != "" {
		c.MinCount = optionalInt(fields, minKey)
		c.MaxCount = optionalInt(fields, maxKey)
	}

	if value, ok := fields["on-click-action"]; ok && firstByte(value) == '{' {
		delete(fields, "on-click-action")
		if c.OnClickAction, err = p.action(value, path+".on-click-action"); err != nil {
			return Component{}, err
		}
	}

	if kind == KindForm {
		if value, ok := take(fields, "children"); ok {
			if c.Children, err = p.components(value, path+".children"); err != nil {
				return Component{}, err
			}
		}
	}

	c.Props = extras(fields)
	return c, nil
}

func (p *parser) dataSource(raw json.RawMessage, path string) ([]DataSourceItem, error) {
	items, err := p.array(raw, path)
	if err != nil {
		return nil, err
	}
	out := make([]DataSourceItem, 0, len(items))
	for idx, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, idx)
		fields, err := p.object(item, itemPath)
		if err != nil {
			return nil, err
		}
		var entry DataSourceItem
		if value, ok := takeString(fields, "id"); ok {
			entry.ID = value
		}
		if value, ok := takeString(fields, "title"); ok {
			entry.Title = value
		}
		entry.Extra = extras(fields)
		out = append(out, entry)
	}
	return out, nil
}

// optionalInt consumes key only when it holds an integer. Bindings such as
// "${data.max}" stay in the remaining fields.
func optionalInt(fields map[string]json.RawMessage, key string) *int {
	value, ok := fields[key]
	if !ok {
		return nil
	}
	var n int
	if err := json.Unmarshal(value, &n); err != nil {
		return nil
	}
	delete(fields, key)
	return &n
}

func (p *parser) action(raw json.RawMessage, path string) (*Action, error) {
	fields, err := p.object(raw, path)
	if err != nil {
		return nil, err
	}

	action := &Action{Syntax: SyntaxInline}
	if value, ok := takeString(fields, "name"); ok {
		action.Kind = ActionKind(value)
	} else if value, ok := takeString(fields, "type"); ok {
		action.Kind = ActionKind(value)
		action.Syntax = SyntaxLegacy
	}
	if value, ok := takeString(fields, "id"); ok {
		action.ID = value
	}

	if value, ok := fields["next"]; ok && firstByte(value) == '{' {
		next, err := p.object(value, path+".next")
		if err != nil {
			return nil, err
		}
		if value, ok := takeString(next, "type"); ok {
			action.NextType = value
		}
		if value, ok := takeString(next, "name"); ok {
			action.Target = value
		}
		action.NextExtra = extras(next)
		delete(fields, "next")
	} else if value, ok := takeString(fields, "screen_id"); ok {
		action.Target = value
	}

	if value, ok := fields["payload"]; ok && firstByte(value) == '{' {
		payload, err := decodeTree(value)
		if err != nil {
			return nil, p.malformed(path+".payload", err)
		}
		action.Payload, _ = payload.(map[string]any)
		delete(fields, "payload")
	}

	for _, key := range []string{"success", "error"} {
		value, ok := fields[key]
		if !ok || firstByte(value) != '{' {
			continue
		}
		next, err := p.action(value, path+"."+key)
		if err != nil {
			return nil, err
		}
		if key == "success" {
			action.Success = next
		} else {
			action.Error = next
		}
		delete(fields, key)
	}

	action.Extra = extras(fields)
	return action, nil
}

func (p *parser) object(raw json.RawMessage, path string) (map[string]json.RawMessage, error) {
	if firstByte(raw) != '{' {
		return nil, p.malformed(pathOrRoot(path), errors.New("expected an object"))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, p.malformed(pathOrRoot(path), err)
	}
	return fields, nil
}

func (p *parser) array(raw json.RawMessage, path string) ([]json.RawMessage, error) {
	if firstByte(raw) != '[' {
		return nil, p.malformed(path, errors.New("expected an array"))
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, p.malformed(path, err)
	}
	return items, nil
}

func (p *parser) str(raw json.RawMessage, path string) (string, error) {
	var out string
	if err := json.Unmarshal(raw, &out); err != nil || firstByte(raw) != '"' {
		return "", p.malformed(path, errors.New("expected a string"))
	}
	return out, nil
}

func take(fields map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	value, ok := fields[key]
	if ok {
		delete(fields, key)
	}
	return value, ok
}

// takeString consumes key only when it holds a JSON string. Other shapes
// (dynamic bindings expressed as objects, arrays of rich text) stay in the
// remaining fields and are preserved opaquely.
func takeString(fields map[string]json.RawMessage, key string) (string, bool) {
	value, ok := fields[key]
	if !ok || firstByte(value) != '"' {
		return "", false
	}
	var out string
	if err := json.Unmarshal(value, &out); err != nil {
		return "", false
	}
	delete(fields, key)
	return out, true
}

func extras(fields map[string]json.RawMessage) map[string]json.RawMessage {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(fields))
	for key, value := range fields {
		out[key] = compact(value)
	}
	return out
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return append(json.RawMessage(nil), raw...)
	}
	return json.RawMessage(buf.Bytes())
}

func decodeTree(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func firstByte(raw []byte) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func pathOrRoot(path string) string {
	if strings.TrimSpace(path) == "" {
		return "$"
	}
	return path
}
