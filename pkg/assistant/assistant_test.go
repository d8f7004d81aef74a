package assistant_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-waflow/pkg/assistant"
	"github.com/goliatone/go-waflow/pkg/flow"
	"github.com/goliatone/go-waflow/pkg/rules"
	"github.com/goliatone/go-waflow/pkg/testsupport"
)

type recorder struct {
	requests []assistant.Request
	reply    string
	err      error
}

func (r *recorder) completer() assistant.Completer {
	return assistant.CompleterFunc(func(_ context.Context, req assistant.Request) (string, error) {
		r.requests = append(r.requests, req)
		return r.reply, r.err
	})
}

func newAssistant(t *testing.T, rec *recorder, opts ...assistant.Option) *assistant.Assistant {
	t.Helper()
	a, err := assistant.New(rec.completer(), opts...)
	if err != nil {
		t.Fatalf("new assistant: %v", err)
	}
	return a
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare", in: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", in: "Here you go:\n```json\n{\"a\":1}\n```\nEnjoy", want: `{"a":1}`},
		{name: "fence without info", in: "```\n{\"a\":{\"b\":2}}\n```", want: `{"a":{"b":2}}`},
		{name: "prose around", in: "Sure! {\"a\":1} hope it helps", want: `{"a":1}`},
		{name: "no object", in: "  nothing here ", want: "nothing here"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := assistant.ExtractJSON(tc.in); got != tc.want {
				t.Fatalf("ExtractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExampleIsClean(t *testing.T) {
	doc, err := flow.Parse(assistant.Example())
	if err != nil {
		t.Fatalf("parse example: %v", err)
	}
	if findings := rules.Validate(doc, rules.LevelStrict); len(findings) != 0 {
		t.Fatalf("expected the example to validate cleanly, got %v", findings)
	}
}

func TestGenerate_ParsesAndValidates(t *testing.T) {
	rec := &recorder{reply: "```json\n" + string(assistant.Example()) + "\n```"}
	a := newAssistant(t, rec)

	result, err := a.Generate(context.Background(), "collect a receipt photo")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Document == nil || len(result.Document.Screens) != 2 {
		t.Fatalf("expected two screens, got %+v", result.Document)
	}
	if len(result.Findings) != 0 {
		t.Fatalf("unexpected findings %v", result.Findings)
	}

	if len(rec.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(rec.requests))
	}
	req := rec.requests[0]
	for _, fragment := range []string{
		"collect a receipt photo",
		`"version": "7.1"`,
		"At most ONE PhotoPicker",
		"TextArea, TextInput",
		`"id": "SCREEN_A"`,
	} {
		if !strings.Contains(req.Prompt, fragment) {
			t.Fatalf("expected %q in prompt:\n%s", fragment, req.Prompt)
		}
	}
	if !strings.Contains(req.System, "version 7.1") {
		t.Fatalf("unexpected system prompt %q", req.System)
	}
	if req.Image != nil {
		t.Fatalf("generate must not attach an image")
	}
}

func TestGenerate_UnparseableKeepsRaw(t *testing.T) {
	rec := &recorder{reply: `{"version": "7.1"}`}
	a := newAssistant(t, rec)

	result, err := a.Generate(context.Background(), "anything")
	if !errors.Is(err, assistant.ErrUnparseable) {
		t.Fatalf("expected ErrUnparseable, got %v", err)
	}
	var parseErr *flow.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected a wrapped *flow.ParseError, got %T", err)
	}
	if result == nil || result.Raw != rec.reply || result.Document != nil {
		t.Fatalf("expected the raw reply to be kept, got %+v", result)
	}
}

func TestGenerate_Errors(t *testing.T) {
	if _, err := assistant.New(nil); err == nil {
		t.Fatalf("expected an error for a nil completer")
	}

	a := newAssistant(t, &recorder{reply: "   "})
	if _, err := a.Generate(context.Background(), ""); err == nil {
		t.Fatalf("expected an error for an empty description")
	}
	if _, err := a.Generate(context.Background(), "x"); !errors.Is(err, assistant.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}

	boom := errors.New("boom")
	a = newAssistant(t, &recorder{err: boom})
	if _, err := a.Generate(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected completer error, got %v", err)
	}
}

func TestEdit_IncludesDocumentAndFindings(t *testing.T) {
	current := testsupport.MustDocument(t, testsupport.Onboarding)
	rec := &recorder{reply: string(assistant.Example())}
	a := newAssistant(t, rec)

	result, err := a.Edit(context.Background(), current, "drop the rich text")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if result.Document == nil {
		t.Fatalf("expected a document")
	}

	prompt := rec.requests[0].Prompt
	for _, fragment := range []string{
		"drop the rich text",
		`"id": "WELCOME"`,
		"warning UnknownComponentType at screens[1].layout.children[0]",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("expected %q in prompt:\n%s", fragment, prompt)
		}
	}

	if _, err := a.Edit(context.Background(), current, " "); err == nil {
		t.Fatalf("expected an error for empty instructions")
	}
}

func TestFromScreenshot_AttachesImage(t *testing.T) {
	rec := &recorder{reply: string(assistant.Example())}
	a := newAssistant(t, rec)

	if _, err := a.FromScreenshot(context.Background(), assistant.Image{}, ""); err == nil {
		t.Fatalf("expected an error for an empty screenshot")
	}

	_, err := a.FromScreenshot(context.Background(), assistant.Image{Data: []byte{0x89, 'P', 'N', 'G'}}, "two screens")
	if err != nil {
		t.Fatalf("screenshot: %v", err)
	}
	req := rec.requests[0]
	want := &assistant.Image{MediaType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	if diff := cmp.Diff(want, req.Image); diff != "" {
		t.Fatalf("image mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(req.Prompt, "Additional instructions from the user:\ntwo screens") {
		t.Fatalf("expected instructions in prompt:\n%s", req.Prompt)
	}
}

func TestAnalyze_ReturnsText(t *testing.T) {
	rec := &recorder{reply: "\n- Use fewer screens\n"}
	a := newAssistant(t, rec)

	got, err := a.Analyze(context.Background(), testsupport.MustDocument(t, testsupport.Legacy))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got != "- Use fewer screens" {
		t.Fatalf("unexpected analysis %q", got)
	}
	if rec.requests[0].System != "" {
		t.Fatalf("analysis must not use the JSON-only system prompt")
	}
}

func TestPrompts_FollowRuleset(t *testing.T) {
	rs := rules.DefaultRuleset()
	rs.Version = "6.0"
	rs.StandardComponents = map[string]struct{}{"Form": {}, "Footer": {}, "TextInput": {}, "Dropdown": {}}

	a := newAssistant(t, &recorder{}, assistant.WithRuleset(rs))
	out, err := a.Prompts().Render(assistant.PromptGenerate, map[string]any{"description": "d"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, fragment := range []string{
		`"version": "6.0"`,
		"Allowed component types: Dropdown, Footer, Form, TextInput.",
		"Input components (Dropdown, TextInput)",
		"- Dropdown need a \"data-source\" array.",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in prompt:\n%s", fragment, out)
		}
	}
}
