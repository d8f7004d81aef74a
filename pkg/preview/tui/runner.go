package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-waflow/pkg/binding"
	"github.com/goliatone/go-waflow/pkg/flow"
	"github.com/goliatone/go-waflow/pkg/preview"
	"github.com/goliatone/go-waflow/pkg/simulator"
)

// Runner walks a user through a session.
type Runner struct {
	driver   PromptDriver
	renderer *preview.Renderer
	logger   *zap.Logger
	maxSteps int
}

// Result summarises an interactive run.
type Result struct {
	Final simulator.State
	// Submissions holds the outcomes of complete and data_exchange actions.
	Submissions []simulator.Outcome
	// Quit is true when the user left before the flow completed.
	Quit bool
}

// NewRunner builds a runner. Without WithPromptDriver it prompts through
// survey on the process terminal.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		renderer: preview.New(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

type choiceKind int

const (
	choiceField choiceKind = iota
	choiceClick
	choiceBack
	choiceReset
	choiceQuit
)

type choice struct {
	kind  choiceKind
	label string
	visit flow.Visit
}

// Run loops until the flow closes, the user quits or the driver fails.
func (r *Runner) Run(ctx context.Context, session *simulator.Session) (Result, error) {
	var result Result
	for steps := 0; ; steps++ {
		if err := ctx.Err(); err != nil {
			result.Final = session.State()
			return result, err
		}
		if r.maxSteps > 0 && steps >= r.maxSteps {
			result.Final = session.State()
			return result, ErrStepLimit
		}

		state := session.State()
		screen := session.ActiveScreen()
		if err := r.driver.Info(ctx, r.renderer.RenderScreen(screen, state.FormValues)); err != nil {
			return result, err
		}

		menu := r.menu(screen, state)
		labels := make([]string, len(menu))
		for idx, item := range menu {
			labels[idx] = item.label
		}
		picked, err := r.driver.Select(ctx, SelectConfig{Message: "Action", Options: uniqueLabels(labels)})
		if err != nil {
			result.Final = session.State()
			return result, err
		}
		if picked < 0 || picked >= len(menu) {
			continue
		}

		item := menu[picked]
		r.logger.Debug("menu selection", zap.String("screen", screen.ID), zap.String("choice", item.label))
		switch item.kind {
		case choiceQuit:
			result.Final = session.State()
			result.Quit = true
			return result, nil
		case choiceReset:
			session.Reset()
		case choiceBack:
			if _, err := session.Back(); err != nil {
				r.report(ctx, err)
			}
		case choiceField:
			value, skip, err := r.ask(ctx, item.visit, state)
			if err != nil {
				result.Final = session.State()
				return result, err
			}
			if skip {
				continue
			}
			if _, err := session.SetField(item.visit.Form, item.visit.Component.Name, value); err != nil {
				r.report(ctx, err)
			}
		case choiceClick:
			outcome, err := session.ClickFooter(item.visit.Component)
			if err != nil {
				r.report(ctx, err)
				continue
			}
			if outcome.Action != nil && outcome.Action.Kind != flow.ActionNavigate {
				result.Submissions = append(result.Submissions, outcome)
				if err := r.showSubmission(ctx, outcome); err != nil {
					return result, err
				}
			}
			if outcome.Closed {
				result.Final = session.State()
				return result, r.driver.Info(ctx, "Flow completed.")
			}
		}
	}
}

func (r *Runner) menu(screen flow.Screen, state simulator.State) []choice {
	var menu []choice
	for _, visit := range screen.Inputs() {
		menu = append(menu, choice{
			kind:  choiceField,
			label: "Fill: " + fieldLabel(visit.Component),
			visit: visit,
		})
	}
	for _, visit := range screen.Clickables() {
		menu = append(menu, choice{
			kind:  choiceClick,
			label: "Press: " + fieldLabel(visit.Component),
			visit: visit,
		})
	}
	if len(state.History) > 0 {
		menu = append(menu, choice{kind: choiceBack, label: "Back"})
	}
	menu = append(menu,
		choice{kind: choiceReset, label: "Restart"},
		choice{kind: choiceQuit, label: "Quit"},
	)
	return menu
}

// ask prompts for the value of one input, prefilled from the current
// value. skip is true when the user made no choice.
func (r *Runner) ask(ctx context.Context, visit flow.Visit, state simulator.State) (value any, skip bool, err error) {
	c := visit.Component
	current, _ := state.FormValues.Get(binding.FieldRef{Form: visit.Form, Field: c.Name})
	label := fieldLabel(c)

	switch c.Kind {
	case flow.KindTextArea:
		text, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: stringValue(current)})
		return text, false, err
	case flow.KindDropdown, flow.KindRadioButtonsGroup:
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message: label,
			Options: uniqueLabels(optionTitles(c.DataSource)),
			Default: optionIndex(c.DataSource, current),
		})
		if err != nil || idx < 0 || idx >= len(c.DataSource) {
			return nil, err == nil, err
		}
		return c.DataSource[idx].ID, false, nil
	case flow.KindCheckboxGroup:
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  uniqueLabels(optionTitles(c.DataSource)),
			Default:  -1,
			Defaults: selectedIndices(c.DataSource, current),
		})
		if err != nil {
			return nil, false, err
		}
		ids := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(c.DataSource) {
				ids = append(ids, c.DataSource[idx].ID)
			}
		}
		return ids, false, nil
	case flow.KindOptIn:
		checked, _ := current.(bool)
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: checked})
		return ok, false, err
	case flow.KindDatePicker:
		text, err := r.driver.Input(ctx, InputConfig{
			Message:  label,
			Default:  stringValue(current),
			Help:     "date as YYYY-MM-DD",
			Validate: validateDate,
		})
		return text, false, err
	case flow.KindPhotoPicker, flow.KindDocumentPicker:
		raw, err := r.driver.Input(ctx, InputConfig{
			Message:  label,
			Help:     "file names, comma separated",
			Validate: uploadBounds(c.MinCount, c.MaxCount),
		})
		if err != nil {
			return nil, false, err
		}
		files := make([]any, 0)
		for _, name := range splitFiles(raw) {
			files = append(files, name)
		}
		return files, false, nil
	default:
		text, err := r.driver.Input(ctx, InputConfig{Message: label, Default: stringValue(current)})
		return text, false, err
	}
}

func (r *Runner) showSubmission(ctx context.Context, outcome simulator.Outcome) error {
	raw, err := json.MarshalIndent(outcome.Payload, "", "  ")
	if err != nil {
		return fmt.Errorf("tui: encode payload: %w", err)
	}
	msg := fmt.Sprintf("Submitted %s payload:\n%s", outcome.Action.Kind, raw)
	for _, warning := range outcome.Warnings {
		msg += "\nwarning: " + warning.Path + ": " + warning.Message
	}
	return r.driver.Info(ctx, msg)
}

func (r *Runner) report(ctx context.Context, err error) {
	r.logger.Warn("event rejected", zap.Error(err))
	_ = r.driver.Info(ctx, "error: "+err.Error())
}

func fieldLabel(c flow.Component) string {
	if label := preview.Sanitize(c.DisplayText()); label != "" {
		return label
	}
	if c.Name != "" {
		return c.Name
	}
	return c.Type
}

func optionTitles(items []flow.DataSourceItem) []string {
	out := make([]string, len(items))
	for idx, item := range items {
		out[idx] = preview.Sanitize(item.Title)
		if out[idx] == "" {
			out[idx] = item.ID
		}
	}
	return out
}

func stringValue(value any) string {
	if text, ok := value.(string); ok {
		return text
	}
	return ""
}

// uniqueLabels suffixes repeated labels with their occurrence number so the
// user can tell the entries apart.
func uniqueLabels(labels []string) []string {
	seen := make(map[string]int, len(labels))
	out := make([]string, len(labels))
	for idx, label := range labels {
		seen[label]++
		out[idx] = label
		if n := seen[label]; n > 1 {
			out[idx] = fmt.Sprintf("%s (%d)", label, n)
		}
	}
	return out
}

func optionIndex(items []flow.DataSourceItem, current any) int {
	id, ok := current.(string)
	if !ok {
		return -1
	}
	for idx, item := range items {
		if item.ID == id {
			return idx
		}
	}
	return -1
}

func selectedIndices(items []flow.DataSourceItem, current any) []int {
	chosen := make(map[string]struct{})
	switch typed := current.(type) {
	case []any:
		for _, v := range typed {
			if id, ok := v.(string); ok {
				chosen[id] = struct{}{}
			}
		}
	case []string:
		for _, id := range typed {
			chosen[id] = struct{}{}
		}
	}
	var out []int
	for idx, item := range items {
		if _, ok := chosen[item.ID]; ok {
			out = append(out, idx)
		}
	}
	return out
}

func validateDate(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, text); err != nil {
		return fmt.Errorf("expected a date as YYYY-MM-DD")
	}
	return nil
}

// uploadBounds checks the number of listed files against the picker's
// min/max uploads. An empty answer leaves the field empty.
func uploadBounds(minCount, maxCount *int) func(string) error {
	return func(text string) error {
		n := len(splitFiles(text))
		if n == 0 {
			return nil
		}
		if minCount != nil && n < *minCount {
			return fmt.Errorf("select at least %d file(s)", *minCount)
		}
		if maxCount != nil && n > *maxCount {
			return fmt.Errorf("select at most %d file(s)", *maxCount)
		}
		return nil
	}
}

func splitFiles(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
