package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-waflow/pkg/flow"
	"github.com/goliatone/go-waflow/pkg/rules"
)

// Result is a document produced by the model.
type Result struct {
	// Raw is the complete model output.
	Raw string
	// JSON is the object extracted from Raw.
	JSON     string
	Document *flow.Document
	Findings []rules.Finding
}

// Assistant generates and edits flow documents through a Completer.
type Assistant struct {
	completer Completer
	prompts   *Prompts
	ruleset   *rules.Ruleset
	logger    *zap.Logger
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithRuleset validates results against rs and teaches its vocabulary in
// the prompts.
func WithRuleset(rs *rules.Ruleset) Option {
	return func(a *Assistant) {
		if rs != nil {
			a.ruleset = rs
		}
	}
}

// WithLogger routes request logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Assistant.
func New(completer Completer, opts ...Option) (*Assistant, error) {
	if completer == nil {
		return nil, fmt.Errorf("assistant: completer is required")
	}
	a := &Assistant{
		completer: completer,
		ruleset:   rules.DefaultRuleset(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	prompts, err := NewPrompts(a.ruleset.Version, standardTags(a.ruleset))
	if err != nil {
		return nil, err
	}
	a.prompts = prompts
	return a, nil
}

// Prompts exposes the template renderer.
func (a *Assistant) Prompts() *Prompts {
	return a.prompts
}

// Generate designs a flow from a text description.
func (a *Assistant) Generate(ctx context.Context, description string) (*Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("assistant: description is required")
	}
	prompt, err := a.prompts.Render(PromptGenerate, map[string]any{"description": description})
	if err != nil {
		return nil, err
	}
	return a.document(ctx, "generate", Request{Prompt: prompt})
}

// Edit applies instructions to current.
func (a *Assistant) Edit(ctx context.Context, current *flow.Document, instructions string) (*Result, error) {
	if current == nil {
		return nil, fmt.Errorf("assistant: current document is required")
	}
	if strings.TrimSpace(instructions) == "" {
		return nil, fmt.Errorf("assistant: edit instructions are required")
	}
	raw, err := flow.Serialize(current)
	if err != nil {
		return nil, fmt.Errorf("assistant: serialize current document: %w", err)
	}
	prompt, err := a.prompts.Render(PromptEdit, map[string]any{
		"current":      strings.TrimSpace(string(raw)),
		"instructions": instructions,
		"findings":     findingLines(rules.ValidateWith(current, a.ruleset)),
	})
	if err != nil {
		return nil, err
	}
	return a.document(ctx, "edit", Request{Prompt: prompt})
}

// FromScreenshot converts a screenshot of a web page into a flow.
func (a *Assistant) FromScreenshot(ctx context.Context, image Image, instructions string) (*Result, error) {
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("assistant: screenshot is empty")
	}
	if image.MediaType == "" {
		image.MediaType = "image/png"
	}
	prompt, err := a.prompts.Render(PromptScreenshot, map[string]any{"instructions": strings.TrimSpace(instructions)})
	if err != nil {
		return nil, err
	}
	return a.document(ctx, "screenshot", Request{Prompt: prompt, Image: &image})
}

// Analyze returns markdown suggestions for improving doc.
func (a *Assistant) Analyze(ctx context.Context, doc *flow.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("assistant: document is required")
	}
	raw, err := flow.Serialize(doc)
	if err != nil {
		return "", fmt.Errorf("assistant: serialize document: %w", err)
	}
	prompt, err := a.prompts.Render(PromptAnalyze, map[string]any{
		"current":  strings.TrimSpace(string(raw)),
		"findings": findingLines(rules.ValidateWith(doc, a.ruleset)),
	})
	if err != nil {
		return "", err
	}

	a.logger.Debug("assistant request", zap.String("op", "analyze"), zap.Int("prompt_bytes", len(prompt)))
	out, err := a.completer.Complete(ctx, Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func (a *Assistant) document(ctx context.Context, op string, req Request) (*Result, error) {
	system, err := a.prompts.Render(PromptSystem, nil)
	if err != nil {
		return nil, err
	}
	req.System = system

	a.logger.Debug("assistant request",
		zap.String("op", op),
		zap.Int("prompt_bytes", len(req.Prompt)),
		zap.Bool("image", req.Image != nil),
	)
	raw, err := a.completer.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	result := &Result{Raw: raw, JSON: ExtractJSON(raw)}
	doc, err := flow.ParseString(result.JSON)
	if err != nil {
		a.logger.Warn("assistant response did not parse", zap.String("op", op), zap.Error(err))
		return result, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	result.Document = doc
	result.Findings = rules.ValidateWith(doc, a.ruleset)
	a.logger.Debug("assistant response parsed",
		zap.String("op", op),
		zap.Int("screens", len(doc.Screens)),
		zap.Int("findings", len(result.Findings)),
	)
	return result, nil
}

// ExtractJSON reduces model output to its JSON object: a fenced block when
// one is present, else the span from the first "{" to the last "}".
func ExtractJSON(output string) string {
	text := strings.TrimSpace(output)
	if start := strings.Index(text, "```"); start >= 0 {
		body := text[start+3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			// Drop the info string (```json).
			if info := strings.TrimSpace(body[:nl]); !strings.HasPrefix(info, "{") {
				body = body[nl+1:]
			}
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		text = strings.TrimSpace(body)
	}
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first < 0 || last < first {
		return text
	}
	return text[first : last+1]
}

func findingLines(findings []rules.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, finding := range findings {
		out = append(out, finding.String())
	}
	return out
}

func standardTags(rs *rules.Ruleset) []string {
	if len(rs.StandardComponents) == 0 {
		return nil
	}
	out := make([]string, 0, len(rs.StandardComponents))
	for tag := range rs.StandardComponents {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
