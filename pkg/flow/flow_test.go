package flow_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-waflow/pkg/flow"
	"github.com/goliatone/go-waflow/pkg/testsupport"
)

func TestParse_Onboarding(t *testing.T) {
	doc := testsupport.MustDocument(t, testsupport.Onboarding)

	if doc.Version != "7.1" || doc.DataAPIVersion != "3.0" {
		t.Fatalf("unexpected versions: %q %q", doc.Version, doc.DataAPIVersion)
	}
	if got := len(doc.Screens); got != 3 {
		t.Fatalf("expected 3 screens, got %d", got)
	}
	if diff := cmp.Diff([]string{"DETAILS"}, doc.RoutingModel["WELCOME"]); diff != "" {
		t.Fatalf("routing model mismatch (-want +got):\n%s", diff)
	}

	entry, ok := doc.EntryScreen()
	if !ok || entry.ID != "WELCOME" {
		t.Fatalf("expected WELCOME entry screen, got %+v", entry)
	}
	if _, ok := entry.Extra["data"]; !ok {
		t.Fatalf("expected screen data to be preserved")
	}

	form := entry.Layout.Children[2]
	if form.Kind != flow.KindForm || form.Name != "profile" {
		t.Fatalf("expected profile form, got %+v", form)
	}
	dropdown := form.Children[1]
	want := []flow.DataSourceItem{
		{ID: "basic", Title: "Basic"},
		{ID: "pro", Title: "Pro", Extra: map[string]json.RawMessage{
			"description": json.RawMessage(`"Everything in Basic & more"`),
		}},
	}
	if diff := cmp.Diff(want, dropdown.DataSource); diff != "" {
		t.Fatalf("data source mismatch (-want +got):\n%s", diff)
	}

	footer := form.Children[2]
	if footer.OnClickAction == nil || footer.OnClickAction.Kind != flow.ActionNavigate {
		t.Fatalf("expected navigate action, got %+v", footer.OnClickAction)
	}
	if footer.OnClickAction.Target != "DETAILS" || footer.OnClickAction.Syntax != flow.SyntaxInline {
		t.Fatalf("unexpected action: %+v", footer.OnClickAction)
	}

	image := entry.Layout.Children[1]
	if image.StringProp("src") != "https://example.com/banner.png" {
		t.Fatalf("expected src prop, got %q", image.StringProp("src"))
	}

	details, _ := doc.Screen("DETAILS")
	rich := details.Layout.Children[0]
	if rich.Kind != flow.KindUnknown || rich.Type != "RichText" {
		t.Fatalf("expected unknown RichText, got %+v", rich)
	}
	if !strings.Contains(string(rich.Raw), `"Read <b>carefully</b>"`) {
		t.Fatalf("unknown component raw not preserved: %s", rich.Raw)
	}

	upload, _ := doc.Screen("UPLOAD")
	picker := upload.Layout.Children[0].Children[0]
	if picker.Kind != flow.KindPhotoPicker || picker.MinCount == nil || *picker.MinCount != 1 || *picker.MaxCount != 2 {
		t.Fatalf("unexpected picker: %+v", picker)
	}
	submit := upload.Layout.Children[0].Children[1].OnClickAction
	if got := submit.Payload["attempt"]; got != json.Number("1") {
		t.Fatalf("expected json.Number payload, got %#v", got)
	}
}

func TestParse_LegacyAddressing(t *testing.T) {
	doc := testsupport.MustDocument(t, testsupport.Legacy)

	screen, _ := doc.Screen("SCREEN_1")
	radio := screen.Layout.Children[2].Children[0]
	if radio.Kind != flow.KindRadioButtonsGroup || radio.Type != "RadioButtonGroup" {
		t.Fatalf("expected radio alias to resolve, got %+v", radio)
	}
	if len(radio.DataSource) != 2 || radio.DataSource[1].Title != "Blue" {
		t.Fatalf("expected data_source spelling to parse, got %+v", radio.DataSource)
	}

	button := screen.Layout.Children[3]
	action, ok := doc.Action(button.ActionID)
	if !ok {
		t.Fatalf("expected action %q", button.ActionID)
	}
	if action.Syntax != flow.SyntaxLegacy || action.Kind != flow.ActionNavigate || action.Target != "SCREEN_2" {
		t.Fatalf("unexpected legacy action: %+v", action)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    flow.ParseErrorKind
		target  error
		field   string
		pathHas string
	}{
		{name: "syntax", input: `{"version": "7.1", "screens": [}`, kind: flow.ParseMalformed, target: flow.ErrMalformed},
		{name: "not an object", input: `[1, 2]`, kind: flow.ParseMalformed, target: flow.ErrMalformed},
		{name: "missing version", input: `{"screens": []}`, kind: flow.ParseSchemaMissingField, target: flow.ErrMissingField, field: "version"},
		{name: "missing screens", input: `{"version": "7.1"}`, kind: flow.ParseSchemaMissingField, target: flow.ErrMissingField, field: "screens"},
		{name: "screens not array", input: `{"version": "7.1", "screens": {}}`, kind: flow.ParseMalformed, target: flow.ErrMalformed, pathHas: "screens"},
		{
			name:    "children not array",
			input:   `{"version": "7.1", "screens": [{"id": "A", "layout": {"children": "nope"}}]}`,
			kind:    flow.ParseMalformed,
			target:  flow.ErrMalformed,
			pathHas: "screens[0].layout.children",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flow.ParseString(tt.input)
			if err == nil {
				t.Fatalf("expected error")
			}
			var perr *flow.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *flow.ParseError, got %T", err)
			}
			if perr.Kind != tt.kind {
				t.Fatalf("expected kind %q, got %q", tt.kind, perr.Kind)
			}
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected errors.Is(%v)", tt.target)
			}
			if perr.Input != tt.input {
				t.Fatalf("expected offending input to be retained")
			}
			if tt.field != "" && perr.Field != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, perr.Field)
			}
			if tt.pathHas != "" && !strings.Contains(perr.Path, tt.pathHas) {
				t.Fatalf("expected path to contain %q, got %q", tt.pathHas, perr.Path)
			}
		})
	}
}

func TestParse_SyntaxErrorOffset(t *testing.T) {
	_, err := flow.ParseString(`{"version": "7.1",, "screens": []}`)
	var perr *flow.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if perr.Offset == 0 {
		t.Fatalf("expected syntax offset, got %+v", perr)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"onboarding": testsupport.MustFixture(t, testsupport.Onboarding),
		"legacy":     testsupport.MustFixture(t, testsupport.Legacy),
		"edge cases": []byte(`{
  "version": "7.1",
  "x-origin": {"tool": "designer"},
  "screens": [
    {
      "id": "A",
      "terminal": "maybe",
      "layout": {
        "type": "SingleColumnLayout",
        "children": [
          {"type": "Chart", "series": [1, 2.50, 3e2]},
          {"type": "TextBody", "text": ["rich", "body"]},
          {"type": "Dropdown", "name": "d", "data-source": "${data.options}"},
          {"type": "PhotoPicker", "name": "p", "min-uploaded-photos": 1, "max-uploaded-photos": "${data.max}"},
          {"type": "Footer", "label": "Go", "on-click-action": {
            "name": "data_exchange",
            "payload": {"nested": {"n": 1.0, "list": [true, null]}},
            "success": {"name": "navigate", "next": {"name": "B", "hint": 1}},
            "error": {"type": "navigate", "screen_id": "A"}
          }}
        ]
      }
    },
    {"id": "B", "layout": {}}
  ],
  "actions": [
    {"id": "x", "type": "navigate", "next": {"type": "screen", "name": "B"}},
    {"id": "y", "name": "complete", "payload": {"a": "<b>"}}
  ]
}`),
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			first, err := flow.Parse(raw)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			out, err := flow.Serialize(first)
			if err != nil {
				t.Fatalf("serialize: %v", err)
			}
			second, err := flow.Parse(out)
			if err != nil {
				t.Fatalf("reparse: %v\n%s", err, out)
			}
			if diff := cmp.Diff(first, second); diff != "" {
				t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
			}
			again, err := flow.Serialize(second)
			if err != nil {
				t.Fatalf("serialize again: %v", err)
			}
			if string(out) != string(again) {
				t.Fatalf("serialization is not stable:\n%s\n---\n%s", out, again)
			}
		})
	}
}

func TestParse_KeepsDynamicMediaBounds(t *testing.T) {
	doc, err := flow.ParseString(`{"version": "7.1", "screens": [{"id": "A", "layout": {"children": [
		{"type": "PhotoPicker", "name": "p", "min-uploaded-photos": 1, "max-uploaded-photos": "${data.max}"}
	]}}]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	picker := doc.Screens[0].Layout.Children[0]
	if picker.MinCount == nil || *picker.MinCount != 1 {
		t.Fatalf("expected min bound 1, got %v", picker.MinCount)
	}
	if picker.MaxCount != nil {
		t.Fatalf("expected no typed max bound, got %d", *picker.MaxCount)
	}
	if got := string(picker.Props["max-uploaded-photos"]); got != `"${data.max}"` {
		t.Fatalf("expected the binding to be preserved, got %q", got)
	}

	out, err := flow.Serialize(doc)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	for _, fragment := range []string{`"min-uploaded-photos": 1`, `"max-uploaded-photos": "${data.max}"`} {
		if strings.Count(string(out), fragment) != 1 {
			t.Fatalf("expected %s once in:\n%s", fragment, out)
		}
	}
}

func TestSerialize_KeepsNextExtras(t *testing.T) {
	doc := testsupport.MustParse(t, `{"version": "7.1", "screens": [{"id": "A", "layout": {"children": [
		{"type": "Footer", "label": "Go", "on-click-action": {"name": "navigate", "next": {"type": "screen", "name": "B", "hint": 1}}}
	]}}]}`)
	action := doc.Screens[0].Layout.Children[0].OnClickAction
	if action.Target != "B" || action.NextType != "screen" {
		t.Fatalf("unexpected action %+v", action)
	}
	if diff := cmp.Diff(map[string]json.RawMessage{"hint": json.RawMessage("1")}, action.NextExtra); diff != "" {
		t.Fatalf("next extras mismatch (-want +got):\n%s", diff)
	}

	out, err := flow.Serialize(doc)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	var decoded struct {
		Screens []struct {
			Layout struct {
				Children []struct {
					Action struct {
						Next map[string]any `json:"next"`
					} `json:"on-click-action"`
				} `json:"children"`
			} `json:"layout"`
		} `json:"screens"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{"type": "screen", "name": "B", "hint": float64(1)}
	if diff := cmp.Diff(want, decoded.Screens[0].Layout.Children[0].Action.Next); diff != "" {
		t.Fatalf("next mismatch (-want +got):\n%s", diff)
	}
}

func TestSerialize_CanonicalForm(t *testing.T) {
	doc := testsupport.MustDocument(t, testsupport.Legacy)
	out, err := flow.Serialize(doc)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, `"data-source"`) || strings.Contains(text, `"data_source"`) {
		t.Fatalf("expected canonical data-source key:\n%s", text)
	}
	if !strings.Contains(text, `"screen_id": "SCREEN_2"`) {
		t.Fatalf("expected legacy action table to keep screen_id:\n%s", text)
	}
	if !strings.HasPrefix(text, "{\n  \"version\": \"7.1\"") {
		t.Fatalf("expected version first:\n%s", text)
	}

	onboarding := testsupport.MustDocument(t, testsupport.Onboarding)
	out, err = flow.Serialize(onboarding)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(string(out), "Basic & more") {
		t.Fatalf("expected HTML characters to stay unescaped")
	}
	if !strings.Contains(string(out), `"next": {`) {
		t.Fatalf("expected inline actions to use next")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	doc := testsupport.MustDocument(t, testsupport.Onboarding)
	clone := doc.Clone()
	if diff := cmp.Diff(doc, clone); diff != "" {
		t.Fatalf("clone differs (-doc +clone):\n%s", diff)
	}

	clone.Screens[0].Layout.Children[2].Children[0].Label = "changed"
	clone.Screens[2].Layout.Children[0].Children[1].OnClickAction.Payload["source"] = "other"
	clone.RoutingModel["WELCOME"][0] = "UPLOAD"

	if doc.Screens[0].Layout.Children[2].Children[0].Label != "Full name" {
		t.Fatalf("clone shares component storage")
	}
	if doc.Screens[2].Layout.Children[0].Children[1].OnClickAction.Payload["source"] != "waflow" {
		t.Fatalf("clone shares payload storage")
	}
	if doc.RoutingModel["WELCOME"][0] != "DETAILS" {
		t.Fatalf("clone shares routing model storage")
	}
}

func TestCloneValue_TypedContainers(t *testing.T) {
	files := []string{"a.jpg", "b.jpg"}
	counts := map[string][]int{"n": {1, 2}}
	tree := map[string]any{"files": files, "nested": []any{map[string]any{"k": []string{"x"}}}}

	gotFiles := flow.CloneValue(files).([]string)
	gotCounts := flow.CloneValue(counts).(map[string][]int)
	gotTree := flow.CloneValue(tree).(map[string]any)

	files[0] = "changed"
	counts["n"][0] = 9
	tree["nested"].([]any)[0].(map[string]any)["k"].([]string)[0] = "changed"

	if diff := cmp.Diff([]string{"a.jpg", "b.jpg"}, gotFiles); diff != "" {
		t.Fatalf("[]string shared storage (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string][]int{"n": {1, 2}}, gotCounts); diff != "" {
		t.Fatalf("map of slices shared storage (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.jpg", "b.jpg"}, gotTree["files"]); diff != "" {
		t.Fatalf("nested []string shared storage (-want +got):\n%s", diff)
	}
	if got := gotTree["nested"].([]any)[0].(map[string]any)["k"].([]string)[0]; got != "x" {
		t.Fatalf("deep []string shared storage, got %q", got)
	}
	if flow.CloneValue(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestScreenWalk(t *testing.T) {
	doc := testsupport.MustDocument(t, testsupport.Onboarding)
	screen, _ := doc.Screen("WELCOME")

	var visited []string
	screen.Walk(func(v flow.Visit) {
		visited = append(visited, v.Form+":"+v.Component.Type)
	})
	want := []string{":TextHeading", ":Image", ":Form", "profile:TextInput", "profile:Dropdown", "profile:Footer"}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}

	inputs := screen.Inputs()
	if len(inputs) != 2 || inputs[1].Path != "layout.children[2].children[1]" {
		t.Fatalf("unexpected inputs: %+v", inputs)
	}
	if got := len(screen.Clickables()); got != 1 {
		t.Fatalf("expected one clickable, got %d", got)
	}
}

func TestKindOf(t *testing.T) {
	if flow.KindOf("RadioButtonGroup") != flow.KindRadioButtonsGroup {
		t.Fatalf("expected alias to resolve")
	}
	if flow.KindOf("Carousel") != flow.KindUnknown {
		t.Fatalf("expected unknown tag")
	}
	if !flow.KindDocumentPicker.IsInput() || !flow.KindDocumentPicker.IsMediaPicker() {
		t.Fatalf("document picker should be an input media picker")
	}
	if flow.KindFooter.IsInput() || !flow.KindHeadline.IsText() || !flow.KindDropdown.HasDataSource() {
		t.Fatalf("unexpected kind classification")
	}
}
