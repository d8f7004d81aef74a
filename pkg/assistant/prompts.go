package assistant

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-waflow/pkg/flow"
)

//go:embed prompts/*.tmpl prompts/example.json
var promptFiles embed.FS

// Template names.
const (
	PromptSystem     = "system.tmpl"
	PromptGenerate   = "generate.tmpl"
	PromptEdit       = "edit.tmpl"
	PromptScreenshot = "screenshot.tmpl"
	PromptAnalyze    = "analyze.tmpl"
)

// Prompts renders the embedded prompt templates.
type Prompts struct {
	set       *pongo2.TemplateSet
	mu        sync.Mutex
	templates map[string]*pongo2.Template
	base      pongo2.Context
}

// NewPrompts loads the embedded templates. version and components describe
// the ruleset the prompts should teach; empty values fall back to the v7.1
// vocabulary.
func NewPrompts(version string, components []string) (*Prompts, error) {
	sub, err := fs.Sub(promptFiles, "prompts")
	if err != nil {
		return nil, fmt.Errorf("assistant: prompts: %w", err)
	}
	example, err := fs.ReadFile(sub, "example.json")
	if err != nil {
		return nil, fmt.Errorf("assistant: prompts: %w", err)
	}
	if version == "" {
		version = "7.1"
	}
	if len(components) == 0 {
		components = defaultComponents()
	}

	return &Prompts{
		set:       pongo2.NewSet("waflow", pongo2.NewFSLoader(sub)),
		templates: make(map[string]*pongo2.Template),
		base: pongo2.Context{
			"version":    version,
			"components": components,
			"inputs":     tagsWhere(components, flow.Kind.IsInput),
			"choices":    tagsWhere(components, flow.Kind.HasDataSource),
			"example":    strings.TrimSpace(string(example)),
		},
	}, nil
}

// Example returns the example document embedded in the prompts.
func Example() []byte {
	data, _ := promptFiles.ReadFile("prompts/example.json")
	return data
}

// Render executes the named template with vars merged over the defaults.
func (p *Prompts) Render(name string, vars map[string]any) (string, error) {
	tpl, err := p.template(name)
	if err != nil {
		return "", err
	}
	ctx := pongo2.Context{}
	ctx.Update(p.base)
	ctx.Update(pongo2.Context(vars))
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("assistant: render %s: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}

func (p *Prompts) template(name string) (*pongo2.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tpl, ok := p.templates[name]; ok {
		return tpl, nil
	}
	tpl, err := p.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("assistant: load template %s: %w", name, err)
	}
	p.templates[name] = tpl
	return tpl, nil
}

func defaultComponents() []string {
	var out []string
	for _, tag := range flow.Tags() {
		// The alias and the legacy-only tags are not taught.
		switch tag {
		case "RadioButtonGroup", "Text", "Headline", "Button", "ScreenConfirmation":
			continue
		}
		out = append(out, tag)
	}
	return out
}

func tagsWhere(tags []string, pred func(flow.Kind) bool) []string {
	var out []string
	for _, tag := range tags {
		if kind := flow.KindOf(tag); kind.Known() && pred(kind) {
			out = append(out, tag)
		}
	}
	return out
}
