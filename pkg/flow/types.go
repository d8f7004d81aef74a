package flow

import (
	"encoding/json"
	"strings"
)

// Document is a parsed flow. Screens keep declaration order; the first
// screen is the entry point.
type Document struct {
	Version        string
	DataAPIVersion string
	// RoutingModel is the declarative adjacency list (screen id to reachable
	// screen ids). It is validated but never consulted during navigation.
	RoutingModel map[string][]string
	Screens      []Screen
	// Actions is the legacy action table addressed by Button.ActionID.
	Actions []Action
	Extra   map[string]json.RawMessage
}

// Screen is one page of the flow.
type Screen struct {
	ID       string
	Title    string
	Terminal bool
	Layout   Layout
	Extra    map[string]json.RawMessage
}

// Layout holds the ordered component tree of a screen.
type Layout struct {
	Type     string
	Children []Component
	Extra    map[string]json.RawMessage
}

// Component is the tagged variant for every element of a layout. Kind is the
// discriminator; fields that do not apply to a variant stay zero. Unknown
// components carry only Type and Raw.
type Component struct {
	// Type is the wire tag as written, aliases preserved.
	Type string
	Kind Kind

	Name  string
	Label string
	Text  string

	// ActionID references Document.Actions (Button, legacy addressing).
	ActionID string
	// OnClickAction is the inline action (Footer, modern addressing).
	OnClickAction *Action

	DataSource []DataSourceItem

	MinCount *int
	MaxCount *int

	// Children is populated for Form components.
	Children []Component

	// Props holds keys the model does not type (style, src, url, ...).
	Props map[string]json.RawMessage
	// Raw is the compacted source object of an Unknown component.
	Raw json.RawMessage
}

// DataSourceItem is one option of a choice input.
type DataSourceItem struct {
	ID    string
	Title string
	Extra map[string]json.RawMessage
}

// ActionKind names what an action does.
type ActionKind string

const (
	ActionNavigate     ActionKind = "navigate"
	ActionComplete     ActionKind = "complete"
	ActionDataExchange ActionKind = "data_exchange"
	ActionUpdateData   ActionKind = "update_data"
	ActionOpenURL      ActionKind = "open_url"
)

// ActionSyntax records which addressing convention an action was written in.
type ActionSyntax string

const (
	// SyntaxInline is the `on-click-action` form: kind under "name", target
	// under "next".
	SyntaxInline ActionSyntax = "inline"
	// SyntaxLegacy is the top-level `actions[]` form: kind under "type",
	// target under "screen_id".
	SyntaxLegacy ActionSyntax = "legacy"
)

// Action is a declarative instruction triggered by a footer or button.
type Action struct {
	// ID is set for entries of the legacy action table.
	ID     string
	Kind   ActionKind
	Syntax ActionSyntax

	// Target is the navigate destination screen id. NextType is the
	// optional `next.type` discriminator ("screen"); NextExtra keeps any
	// other key of the `next` object.
	Target    string
	NextType  string
	NextExtra map[string]json.RawMessage

	Payload map[string]any

	// Success and Error are the data_exchange continuations.
	Success *Action
	Error   *Action

	Extra map[string]json.RawMessage
}

// EntryScreen returns the first declared screen.
func (d *Document) EntryScreen() (Screen, bool) {
	if d == nil || len(d.Screens) == 0 {
		return Screen{}, false
	}
	return d.Screens[0], true
}

// Screen looks up a screen by id.
func (d *Document) Screen(id string) (Screen, bool) {
	if d == nil {
		return Screen{}, false
	}
	for _, screen := range d.Screens {
		if screen.ID == id {
			return screen, true
		}
	}
	return Screen{}, false
}

// ScreenIndex returns the declaration index of id or -1.
func (d *Document) ScreenIndex(id string) int {
	if d == nil {
		return -1
	}
	for idx, screen := range d.Screens {
		if screen.ID == id {
			return idx
		}
	}
	return -1
}

// Action resolves an entry of the legacy action table.
func (d *Document) Action(id string) (Action, bool) {
	if d == nil {
		return Action{}, false
	}
	for _, action := range d.Actions {
		if action.ID == id {
			return action, true
		}
	}
	return Action{}, false
}

// Prop decodes an untyped property into dst. It reports false when the key
// is absent or does not decode.
func (c Component) Prop(key string, dst any) bool {
	raw, ok := c.Props[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// StringProp returns an untyped string property or "".
func (c Component) StringProp(key string) string {
	var out string
	if c.Prop(key, &out) {
		return out
	}
	return ""
}

// DisplayText returns the user-visible text of the component: label for
// inputs and buttons, text for text-like variants.
func (c Component) DisplayText() string {
	if text := strings.TrimSpace(c.Text); text != "" && (c.Kind.IsText() || c.Label == "") {
		return text
	}
	return strings.TrimSpace(c.Label)
}
