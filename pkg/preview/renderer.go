package preview

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-waflow/pkg/binding"
	"github.com/goliatone/go-waflow/pkg/flow"
)

// Renderer turns screens into terminal text.
type Renderer struct {
	theme      Theme
	width      int
	showNames  bool
	showAction bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme overrides the default theme.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithWidth sets the frame width. Zero lets content decide.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		if width >= 0 {
			r.width = width
		}
	}
}

// WithFieldNames prints `form.field` next to every input label.
func WithFieldNames(show bool) Option {
	return func(r *Renderer) {
		r.showNames = show
	}
}

// WithActions prints the action each footer or button triggers.
func WithActions(show bool) Option {
	return func(r *Renderer) {
		r.showAction = show
	}
}

// New creates a renderer with DefaultTheme.
func New(opts ...Option) *Renderer {
	r := &Renderer{theme: DefaultTheme(), width: 40, showAction: true}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RenderScreen renders screen with the given form values.
func (r *Renderer) RenderScreen(screen flow.Screen, values binding.Values) string {
	var lines []string
	title := Sanitize(screen.Title)
	if title == "" {
		title = screen.ID
	}
	header := r.theme.Title.Render(title)
	if screen.Terminal {
		header += " " + r.theme.Muted.Render("(terminal)")
	}
	lines = append(lines, header, "")
	lines = append(lines, r.components(screen.Layout.Children, "", values)...)

	frame := r.theme.Frame
	if r.width > 0 {
		frame = frame.Width(r.width)
	}
	return frame.Render(strings.Join(lines, "\n"))
}

// RenderComponent renders one component outside of a screen.
func (r *Renderer) RenderComponent(component flow.Component, form string, values binding.Values) []string {
	return r.component(component, form, values)
}

func (r *Renderer) components(children []flow.Component, form string, values binding.Values) []string {
	var out []string
	for _, child := range children {
		out = append(out, r.component(child, form, values)...)
	}
	return out
}

func (r *Renderer) component(c flow.Component, form string, values binding.Values) []string {
	text := Sanitize(c.Text)
	label := r.label(c, form)
	value, hasValue := values.Get(binding.FieldRef{Form: form, Field: c.Name})

	switch c.Kind {
	case flow.KindTextHeading, flow.KindHeadline:
		return []string{r.textStyle(c, r.theme.Heading).Render(text)}
	case flow.KindTextSubheading:
		return []string{r.textStyle(c, r.theme.Subheading).Render(text)}
	case flow.KindTextBody, flow.KindText:
		return []string{r.textStyle(c, r.theme.Body).Render(text)}
	case flow.KindTextCaption:
		return []string{r.textStyle(c, r.theme.Caption).Render(text)}
	case flow.KindImage:
		alt := Sanitize(c.StringProp("alt-text"))
		if alt == "" {
			alt = c.StringProp("src")
		}
		if alt == "" && c.StringProp("image_id") != "" {
			alt = "image " + c.StringProp("image_id")
		}
		return []string{r.theme.Muted.Render("[image: " + alt + "]")}
	case flow.KindTextInput, flow.KindTextArea:
		shown := r.theme.Muted.Render("________")
		if hasValue {
			shown = r.theme.Value.Render(formatValue(value))
		}
		return []string{label + ": [" + shown + "]"}
	case flow.KindDatePicker:
		shown := r.theme.Muted.Render("yyyy-mm-dd")
		if hasValue {
			shown = r.theme.Value.Render(formatValue(value))
		}
		return []string{label + ": [" + shown + "]"}
	case flow.KindDropdown:
		shown := r.theme.Muted.Render("select")
		if hasValue {
			shown = r.theme.Value.Render(optionTitle(c.DataSource, value))
		}
		out := []string{label + ": [" + shown + " v]"}
		for _, item := range c.DataSource {
			out = append(out, r.theme.Muted.Render("    - "+Sanitize(item.Title)))
		}
		return out
	case flow.KindRadioButtonsGroup:
		out := []string{label}
		for _, item := range c.DataSource {
			mark := "( )"
			if hasValue && formatValue(value) == item.ID {
				mark = "(*)"
			}
			out = append(out, "  "+mark+" "+Sanitize(item.Title))
		}
		return out
	case flow.KindCheckboxGroup:
		selected := selectedSet(value, hasValue)
		out := []string{label}
		for _, item := range c.DataSource {
			mark := "[ ]"
			if _, ok := selected[item.ID]; ok {
				mark = "[x]"
			}
			out = append(out, "  "+mark+" "+Sanitize(item.Title))
		}
		return out
	case flow.KindOptIn:
		mark := "[ ]"
		if hasValue && isTruthy(value) {
			mark = "[x]"
		}
		return []string{mark + " " + label}
	case flow.KindPhotoPicker, flow.KindDocumentPicker:
		noun := "photos"
		if c.Kind == flow.KindDocumentPicker {
			noun = "documents"
		}
		count := 0
		if hasValue {
			count = countOf(value)
		}
		return []string{fmt.Sprintf("%s: [%d uploaded%s %s]", label, count, bounds(c.MinCount, c.MaxCount), noun)}
	case flow.KindEmbeddedLink:
		line := r.theme.Action.Underline(true).Render(text)
		if r.showAction && c.OnClickAction != nil {
			line += " " + r.theme.Muted.Render(describeAction(c.OnClickAction))
		}
		return []string{line}
	case flow.KindButton:
		line := r.theme.Action.Render("( " + label + " )")
		if r.showAction && c.ActionID != "" {
			line += " " + r.theme.Muted.Render("-> "+c.ActionID)
		}
		return []string{line}
	case flow.KindFooter:
		if c.OnClickAction == nil {
			return []string{r.theme.Muted.Render(label)}
		}
		line := r.theme.Action.Render("[ " + label + " ]")
		if r.showAction {
			line += " " + r.theme.Muted.Render(describeAction(c.OnClickAction))
		}
		return []string{"", line}
	case flow.KindScreenConfirmation:
		return []string{r.theme.Action.Render("v " + firstNonEmpty(text, label))}
	case flow.KindForm:
		return r.components(c.Children, c.Name, values)
	case flow.KindUnknown:
		tag := c.Type
		if tag == "" {
			tag = "untyped"
		}
		return []string{r.theme.Warning.Render("! unsupported component " + Sanitize(tag))}
	default:
		return []string{r.theme.Warning.Render("! unhandled component " + c.Type)}
	}
}

func (r *Renderer) label(c flow.Component, form string) string {
	label := Sanitize(c.DisplayText())
	if label == "" {
		label = c.Name
	}
	if c.Kind.IsInput() && isTruthy(rawProp(c, "required")) {
		label += "*"
	}
	out := r.theme.Label.Render(label)
	if r.showNames && c.Name != "" && form != "" {
		out += " " + r.theme.Muted.Render("("+form+"."+c.Name+")")
	}
	return out
}

// textStyle applies the `style` and `font-weight` hints of text components.
func (r *Renderer) textStyle(c flow.Component, base lipgloss.Style) lipgloss.Style {
	var hints []string
	if !c.Prop("style", &hints) {
		if single := c.StringProp("style"); single != "" {
			hints = []string{single}
		}
	}
	if weight := c.StringProp("font-weight"); weight != "" {
		hints = append(hints, weight)
	}
	style := base
	for _, hint := range hints {
		switch strings.ToLower(hint) {
		case "bold":
			style = style.Bold(true)
		case "italic":
			style = style.Italic(true)
		case "bold_italic", "bold-italic":
			style = style.Bold(true).Italic(true)
		case "strikethrough":
			style = style.Strikethrough(true)
		}
	}
	return style
}

func describeAction(action *flow.Action) string {
	switch action.Kind {
	case flow.ActionNavigate:
		return "-> " + action.Target
	case flow.ActionComplete:
		return "-> complete"
	case flow.ActionDataExchange:
		return "-> data_exchange"
	default:
		return "-> " + string(action.Kind)
	}
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Sanitize strips markup from document text and collapses whitespace.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	cleaned := html.UnescapeString(policy.Sanitize(trimmed))
	return strings.Join(strings.Fields(cleaned), " ")
}

func rawProp(c flow.Component, key string) any {
	var value any
	if c.Prop(key, &value) {
		return value
	}
	return nil
}

func formatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case json.Number:
		return typed.String()
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		raw, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(raw)
	default:
		return fmt.Sprint(typed)
	}
}

func optionTitle(items []flow.DataSourceItem, value any) string {
	id := formatValue(value)
	for _, item := range items {
		if item.ID == id {
			return Sanitize(item.Title)
		}
	}
	return id
}

func selectedSet(value any, ok bool) map[string]struct{} {
	out := make(map[string]struct{})
	if !ok {
		return out
	}
	switch typed := value.(type) {
	case []any:
		for _, item := range typed {
			out[formatValue(item)] = struct{}{}
		}
	case []string:
		for _, item := range typed {
			out[item] = struct{}{}
		}
	default:
		out[formatValue(typed)] = struct{}{}
	}
	return out
}

func isTruthy(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true", "yes", "y", "1", "on":
			return true
		}
	}
	return false
}

func countOf(value any) int {
	switch typed := value.(type) {
	case nil:
		return 0
	case []any:
		return len(typed)
	case []string:
		return len(typed)
	case string:
		if typed == "" {
			return 0
		}
	}
	return 1
}

func bounds(minCount, maxCount *int) string {
	switch {
	case minCount != nil && maxCount != nil:
		return fmt.Sprintf(", %d-%d", *minCount, *maxCount)
	case maxCount != nil:
		return fmt.Sprintf(", max %d", *maxCount)
	case minCount != nil:
		return fmt.Sprintf(", min %d", *minCount)
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// ValuesSummary lists entered values as `form.field = value` lines sorted by
// reference.
func ValuesSummary(values binding.Values) []string {
	refs := values.Refs()
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		value, _ := values.Get(ref)
		out = append(out, ref.Form+"."+ref.Field+" = "+formatValue(value))
	}
	sort.Strings(out)
	return out
}
