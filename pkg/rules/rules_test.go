package rules_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-waflow/pkg/rules"
	"github.com/goliatone/go-waflow/pkg/testsupport"
)

// singleScreen wraps layout children in a one-screen terminal document.
func singleScreen(id, children string) string {
	return `{"version":"7.1","screens":[{"id":"` + id + `","terminal":true,"layout":{"type":"SingleColumnLayout","children":[` + children + `]}}]}`
}

func codesOf(findings []rules.Finding) []rules.Code {
	out := make([]rules.Code, 0, len(findings))
	for _, finding := range findings {
		out = append(out, finding.Code)
	}
	return out
}

func hasCode(findings []rules.Finding, code rules.Code) bool {
	for _, finding := range findings {
		if finding.Code == code {
			return true
		}
	}
	return false
}

func TestValidate_OnboardingFixture(t *testing.T) {
	doc := testsupport.MustDocument(t, testsupport.Onboarding)

	got := rules.Validate(doc, rules.LevelStandard)
	want := []rules.Finding{{
		Severity: rules.SeverityWarning,
		Code:     rules.CodeUnknownComponentType,
		Message:  `component type "RichText" is not recognised`,
		Path:     "screens[1].layout.children[0]",
		ScreenID: "DETAILS",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("findings mismatch (-want +got):\n%s", diff)
	}
	if rules.HasErrors(got) {
		t.Fatalf("expected no errors")
	}
}

func TestValidate_LegacyFixtureAgainstPresets(t *testing.T) {
	doc := testsupport.MustDocument(t, testsupport.Legacy)

	if got := rules.Validate(doc, rules.LevelStandard); len(got) != 0 {
		t.Fatalf("expected legacy fixture to be clean at standard level, got %v", got)
	}

	strict := rules.Validate(doc, rules.LevelStrict)
	var tags []string
	for _, finding := range strict {
		if finding.Code != rules.CodeNonStandardComponent {
			t.Fatalf("unexpected finding at strict level: %s", finding)
		}
		tags = append(tags, finding.Path)
	}
	if len(tags) == 0 {
		t.Fatalf("expected NonStandardComponent warnings for Text/Headline/Button tags")
	}

	legacy, err := rules.Preset(rules.PresetLegacy)
	if err != nil {
		t.Fatalf("load legacy preset: %v", err)
	}
	if got := rules.ValidateWith(doc, legacy.WithLevel(rules.LevelStrict)); len(got) != 0 {
		t.Fatalf("expected legacy preset to accept its own tags, got %v", got)
	}
}

func TestValidate_DataSourceTitle(t *testing.T) {
	missing := testsupport.MustParse(t, singleScreen("A",
		`{"type":"Form","name":"f","children":[{"type":"Dropdown","name":"d","label":"D","data-source":[{"id":"x"}]}]}`))
	complete := testsupport.MustParse(t, singleScreen("A",
		`{"type":"Form","name":"f","children":[{"type":"Dropdown","name":"d","label":"D","data-source":[{"id":"x","title":"X"}]}]}`))

	for _, level := range []rules.Level{rules.LevelLenient, rules.LevelStandard, rules.LevelStrict} {
		got := rules.Validate(missing, level)
		want := []rules.Finding{{
			Severity: rules.SeverityError,
			Code:     rules.CodeMissingDataSourceTitle,
			Message:  `data-source entry "x" of "d" has no title; every option needs a user-visible title`,
			Path:     "screens[0].layout.children[0].children[0].data-source[0]",
			ScreenID: "A",
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s: findings mismatch (-want +got):\n%s", level, diff)
		}
		if hasCode(rules.Validate(complete, level), rules.CodeMissingDataSourceTitle) {
			t.Fatalf("%s: titled entry must not be flagged", level)
		}
	}
}

func TestValidate_MediaExclusivity(t *testing.T) {
	both := testsupport.MustParse(t, singleScreen("A",
		`{"type":"Form","name":"f","children":[{"type":"PhotoPicker","name":"p","label":"P"},{"type":"DocumentPicker","name":"d","label":"D"}]}`))
	got := rules.Validate(both, rules.LevelStandard)
	if diff := cmp.Diff([]rules.Code{rules.CodeMultipleMediaPickers}, codesOf(got)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if got[0].Path != "screens[0].layout.children[0].children[1]" {
		t.Fatalf("expected the second picker to be reported, got %q", got[0].Path)
	}

	for _, tag := range []string{"PhotoPicker", "DocumentPicker"} {
		one := testsupport.MustParse(t, singleScreen("A",
			`{"type":"Form","name":"f","children":[{"type":"`+tag+`","name":"m","label":"M"}]}`))
		if findings := rules.Validate(one, rules.LevelStrict); hasCode(findings, rules.CodeMultipleMediaPickers) {
			t.Fatalf("single %s must not be flagged: %v", tag, findings)
		}
	}
}

func TestValidate_MediaBounds(t *testing.T) {
	doc := testsupport.MustParse(t, singleScreen("A",
		`{"type":"Form","name":"f","children":[{"type":"PhotoPicker","name":"p","label":"P","min-uploaded-photos":3,"max-uploaded-photos":1}]}`))
	got := rules.Validate(doc, rules.LevelStandard)
	if diff := cmp.Diff([]rules.Code{rules.CodeInvalidMediaBounds}, codesOf(got)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(got[0].Message, "minimum 3 exceeds maximum 1") {
		t.Fatalf("unexpected message %q", got[0].Message)
	}
}

func TestValidate_DanglingNavigateTarget(t *testing.T) {
	doc := testsupport.MustParse(t, `{
  "version": "7.1",
  "screens": [
    {"id": "A", "layout": {"type": "SingleColumnLayout", "children": [
      {"type": "Form", "name": "f", "children": [
        {"type": "Footer", "label": "Go", "on-click-action": {"name": "navigate", "next": {"type": "screen", "name": "NOPE"}}}
      ]}
    ]}},
    {"id": "B", "terminal": true, "layout": {"type": "SingleColumnLayout", "children": []}}
  ]
}`)
	got := rules.Validate(doc, rules.LevelStandard)
	want := []rules.Finding{{
		Severity: rules.SeverityError,
		Code:     rules.CodeUnknownScreenReference,
		Message:  `navigate target "NOPE" is not a screen of this document`,
		Path:     "screens[0].layout.children[0].children[0].on-click-action",
		ScreenID: "A",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_RoutingModelReferences(t *testing.T) {
	doc := testsupport.MustParse(t, `{
  "version": "7.1",
  "data_api_version": "3.0",
  "routing_model": {"A": ["B", "GHOST"], "ZED": []},
  "screens": [
    {"id": "A", "layout": {"type": "SingleColumnLayout", "children": []}},
    {"id": "B", "terminal": true, "layout": {"type": "SingleColumnLayout", "children": []}}
  ]
}`)
	got := rules.Validate(doc, rules.LevelStandard)
	var paths []string
	for _, finding := range got {
		if finding.Code != rules.CodeUnknownScreenReference {
			t.Fatalf("unexpected finding %s", finding)
		}
		paths = append(paths, finding.Path)
	}
	want := []string{"routing_model.A[1]", "routing_model.ZED"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_FooterOrdering(t *testing.T) {
	doc := testsupport.MustParse(t, singleScreen("A",
		`{"type":"Form","name":"f","children":[{"type":"Footer","label":"Send","on-click-action":{"name":"complete","payload":{}}},{"type":"TextInput","name":"n","label":"N"}]}`))
	got := rules.Validate(doc, rules.LevelStandard)
	if diff := cmp.Diff([]rules.Code{rules.CodeFooterNotLast}, codesOf(got)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	decorative := testsupport.MustParse(t, singleScreen("A",
		`{"type":"Form","name":"f","children":[{"type":"Footer","label":"Note"},{"type":"TextInput","name":"n","label":"N"}]}`))
	if findings := rules.Validate(decorative, rules.LevelStandard); len(findings) != 0 {
		t.Fatalf("a footer without action is decorative, got %v", findings)
	}
}

func TestValidate_MediaPayloadRules(t *testing.T) {
	doc := testsupport.MustParse(t, `{
  "version": "7.1",
  "screens": [
    {"id": "A", "layout": {"type": "SingleColumnLayout", "children": [
      {"type": "Form", "name": "f", "children": [
        {"type": "PhotoPicker", "name": "photo", "label": "Photo"},
        {"type": "Footer", "label": "Next", "on-click-action": {
          "name": "navigate", "next": {"type": "screen", "name": "B"},
          "payload": {"p": "${form.f.photo}"}
        }}
      ]}
    ]}},
    {"id": "B", "terminal": true, "layout": {"type": "SingleColumnLayout", "children": [
      {"type": "Form", "name": "g", "children": [
        {"type": "Footer", "label": "Done", "on-click-action": {
          "name": "complete",
          "payload": {"flat": "${form.f.photo}", "outer": {"p": "${form.f.photo}"}}
        }}
      ]}
    ]}}
  ]
}`)
	got := rules.Validate(doc, rules.LevelStandard)
	type located struct {
		Code rules.Code
		Path string
	}
	var gotLocated []located
	for _, finding := range got {
		gotLocated = append(gotLocated, located{finding.Code, finding.Path})
	}
	want := []located{
		{rules.CodeMediaInNavigatePayload, "screens[0].layout.children[0].children[1].on-click-action.payload.p"},
		{rules.CodeNestedMediaPayload, "screens[1].layout.children[0].children[0].on-click-action.payload.outer.p"},
	}
	if diff := cmp.Diff(want, gotLocated); diff != "" {
		t.Fatalf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_StructuralRules(t *testing.T) {
	doc := testsupport.MustParse(t, `{
  "version": "7.0",
  "screens": [
    {"id": "welcome", "layout": {"type": "SingleColumnLayout", "children": [
      {"type": "TextInput", "name": "loose", "label": "Loose"},
      {"type": "Form", "name": "f", "children": [
        {"type": "Form", "name": "inner", "children": []},
        {"type": "TextArea", "label": "No name"},
        {"type": "CheckboxGroup", "name": "c", "label": "C", "data-source": [{"id": "a", "title": "A"}, {"id": "a", "title": "Again"}]}
      ]},
      {"type": "Form", "name": "f", "children": []},
      {"type": "Button", "label": "Go", "action_id": "missing"}
    ]}},
    {"id": "welcome", "layout": {"type": "SingleColumnLayout", "children": []}}
  ]
}`)
	got := codesOf(rules.Validate(doc, rules.LevelStrict))
	want := []rules.Code{
		rules.CodeVersionMismatch,
		rules.CodeDuplicateScreenID,
		rules.CodeInvalidScreenID,
		rules.CodeInvalidScreenID,
		rules.CodeDanglingActionID,
		rules.CodeDuplicateDataSourceID,
		rules.CodeInputOutsideForm,
		rules.CodeMissingFieldName,
		rules.CodeNestedForm,
		rules.CodeDuplicateFormName,
		rules.CodeNonStandardComponent,
		rules.CodeNoTerminalScreen,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	lenient := codesOf(rules.Validate(doc, rules.LevelLenient))
	for _, code := range lenient {
		switch code {
		case rules.CodeVersionMismatch, rules.CodeInvalidScreenID, rules.CodeNonStandardComponent, rules.CodeNoTerminalScreen:
			t.Fatalf("%s must not run at lenient level", code)
		}
	}
}

func TestValidate_MissingScreenID(t *testing.T) {
	doc := testsupport.MustParse(t, `{"version":"7.1","screens":[
		{"title":"No id","terminal":true,"layout":{"type":"SingleColumnLayout","children":[]}},
		{"id":"","layout":{"type":"SingleColumnLayout","children":[]}},
		{"id":"B","layout":{"type":"SingleColumnLayout","children":[]}}
	]}`)
	for _, level := range []rules.Level{rules.LevelLenient, rules.LevelStandard, rules.LevelStrict} {
		var paths []string
		for _, finding := range rules.Validate(doc, level) {
			if finding.Code == rules.CodeDuplicateScreenID || finding.Code == rules.CodeInvalidScreenID {
				t.Fatalf("%s: empty ids must only be reported as missing, got %s", level, finding)
			}
			if finding.Code == rules.CodeMissingScreenID {
				if finding.Severity != rules.SeverityError {
					t.Fatalf("%s: expected an error, got %s", level, finding)
				}
				paths = append(paths, finding.Path)
			}
		}
		if diff := cmp.Diff([]string{"screens[0].id", "screens[1].id"}, paths); diff != "" {
			t.Fatalf("%s: paths mismatch (-want +got):\n%s", level, diff)
		}
	}
}

func TestValidate_EmptyScreensAndRoutingPairing(t *testing.T) {
	empty := testsupport.MustParse(t, `{"version":"7.1","screens":[]}`)
	if diff := cmp.Diff([]rules.Code{rules.CodeEmptyScreens}, codesOf(rules.Validate(empty, rules.LevelStandard))); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	unpaired := testsupport.MustParse(t, `{"version":"7.1","data_api_version":"3.0","screens":[{"id":"A","terminal":true,"layout":{"type":"SingleColumnLayout","children":[]}}]}`)
	if diff := cmp.Diff([]rules.Code{rules.CodeMissingRoutingModel}, codesOf(rules.Validate(unpaired, rules.LevelStandard))); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if got := rules.Validate(unpaired, rules.LevelLenient); len(got) != 0 {
		t.Fatalf("routing pairing is a standard level rule, got %v", got)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	for _, name := range []string{testsupport.Onboarding, testsupport.Legacy} {
		doc := testsupport.MustDocument(t, name)
		for _, level := range []rules.Level{rules.LevelLenient, rules.LevelStandard, rules.LevelStrict} {
			first := rules.Validate(doc, level)
			second := rules.Validate(doc, level)
			if diff := cmp.Diff(first, second); diff != "" {
				t.Fatalf("%s/%s: validation is not idempotent (-first +second):\n%s", name, level, diff)
			}
		}
	}
}

func TestLoadRuleset_ExtendsAndOverrides(t *testing.T) {
	rs, err := rules.LoadRuleset(strings.NewReader(`
name: team
extends: v7.1
level: strict
screen_id_pattern: "^[a-z_]+$"
rules:
  UnknownComponentType:
    severity: error
  NoTerminalScreen:
    disabled: true
  InvalidScreenId:
    level: lenient
`))
	if err != nil {
		t.Fatalf("load ruleset: %v", err)
	}
	if rs.Name != "team" || rs.Version != "7.1" || rs.Level != rules.LevelStrict {
		t.Fatalf("unexpected ruleset header: %+v", rs)
	}
	if !rs.IsStandard("TextBody") || rs.IsStandard("Headline") {
		t.Fatalf("standard components must be inherited from v7.1")
	}
	if severity, ok := rs.Active(rules.CodeUnknownComponentType); !ok || severity != rules.SeverityError {
		t.Fatalf("expected UnknownComponentType upgraded to error, got %q %v", severity, ok)
	}
	if _, ok := rs.Active(rules.CodeNoTerminalScreen); ok {
		t.Fatalf("expected NoTerminalScreen disabled")
	}

	doc := testsupport.MustParse(t, `{"version":"7.1","screens":[{"id":"WELCOME","layout":{"type":"SingleColumnLayout","children":[{"type":"Carousel"}]}}]}`)
	got := rules.ValidateWith(doc, rs.WithLevel(rules.LevelLenient))
	want := []rules.Code{rules.CodeInvalidScreenID, rules.CodeUnknownComponentType}
	if diff := cmp.Diff(want, codesOf(got)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if !rules.HasErrors(got) {
		t.Fatalf("expected upgraded unknown component to be an error")
	}
}

func TestLoadRuleset_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown rule":     "rules:\n  Bogus:\n    disabled: true\n",
		"unknown severity": "rules:\n  FooterNotLast:\n    severity: fatal\n",
		"unknown level":    "level: extreme\n",
		"unknown preset":   "extends: v9\n",
		"bad pattern":      "screen_id_pattern: \"[\"\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := rules.LoadRuleset(strings.NewReader(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPresets(t *testing.T) {
	if diff := cmp.Diff([]string{rules.PresetLegacy, rules.PresetV71}, rules.Presets()); diff != "" {
		t.Fatalf("presets mismatch (-want +got):\n%s", diff)
	}
	if _, err := rules.Preset("v9"); err == nil {
		t.Fatalf("expected unknown preset error")
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    rules.Level
		wantErr bool
	}{
		{"", rules.LevelStandard, false},
		{"Lenient", rules.LevelLenient, false},
		{" strict ", rules.LevelStrict, false},
		{"loose", rules.LevelStandard, true},
	}
	for _, tc := range cases {
		got, err := rules.ParseLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestCheckRaw(t *testing.T) {
	if got := rules.CheckRaw(testsupport.MustFixture(t, testsupport.Onboarding)); len(got) != 0 {
		t.Fatalf("expected onboarding fixture to match the envelope schema, got %v", got)
	}

	got := rules.CheckRaw([]byte(`{"version": 7, "screens": [{"id": "A", "layout": {"type": "SingleColumnLayout", "children": {}}}]}`))
	var paths []string
	for _, finding := range got {
		if finding.Code != rules.CodeSchemaViolation || finding.Severity != rules.SeverityError {
			t.Fatalf("unexpected finding %s", finding)
		}
		paths = append(paths, finding.Path)
	}
	sort.Strings(paths)
	want := []string{"screens[0].layout.children", "version"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	if got := rules.CheckRaw([]byte(`{"version":`)); len(got) != 1 {
		t.Fatalf("expected one finding for malformed JSON, got %v", got)
	}
}

func TestCheck(t *testing.T) {
	rs := rules.DefaultRuleset()

	doc, findings := rules.Check(testsupport.MustFixture(t, testsupport.Onboarding), rs)
	if doc == nil {
		t.Fatalf("expected the onboarding fixture to parse")
	}
	if diff := cmp.Diff([]rules.Code{rules.CodeUnknownComponentType}, codesOf(findings)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	doc, findings = rules.Check([]byte(`{"version":"7.1"}`), rs)
	if doc != nil {
		t.Fatalf("expected no document for a schema violation")
	}
	if len(findings) != 1 || findings[0].Code != rules.CodeSchemaViolation {
		t.Fatalf("expected the schema to explain the failure once, got %v", findings)
	}

	doc, findings = rules.Check([]byte(`{"version":"7.1","data_api_version":"3.0","routing_model":{"A":[]},"screens":[
		{"id":"A","terminal":true,"layout":{"type":"SingleColumnLayout","children":[
			{"type":"Form","name":"f","children":[
				{"type":"Dropdown","name":"d","label":"Pick","data-source":"${data.options}"},
				{"type":"Footer","label":"Done","on-click-action":{"name":"complete","payload":{"d":"${form.f.d}"}}}
			]}
		]}}
	]}`), rs)
	if doc == nil {
		t.Fatalf("expected a dynamic data source to parse, got %v", findings)
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings for a dynamic data source, got %v", findings)
	}

	_, findings = rules.Check([]byte(singleScreen("A", `{"type":"Form","name":"f","children":[
		{"type":"Dropdown","name":"d","label":"Pick","data-source":{"bad":true}}
	]}`)), rs)
	if len(findings) == 0 || findings[0].Code != rules.CodeSchemaViolation {
		t.Fatalf("expected an object data source to violate the schema, got %v", findings)
	}
}
