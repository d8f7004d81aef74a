package rules

import (
	"embed"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultScreenIDPattern is the strict identifier pattern for screen ids.
const DefaultScreenIDPattern = `^[A-Z0-9_]+$`

// Rule is the configuration of one code.
type Rule struct {
	Code     Code
	Severity Severity
	// Level is the lowest strictness the rule runs at.
	Level    Level
	Disabled bool
}

// defaultRules lists every code in evaluation order.
var defaultRules = []Rule{
	{Code: CodeVersionMismatch, Severity: SeverityWarning, Level: LevelStandard},
	{Code: CodeEmptyScreens, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeMissingScreenID, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeDuplicateScreenID, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeInvalidScreenID, Severity: SeverityError, Level: LevelStrict},
	{Code: CodeUnknownScreenReference, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeDanglingActionID, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeMissingDataSourceTitle, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeDuplicateDataSourceID, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeInputOutsideForm, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeMissingFieldName, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeNestedForm, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeDuplicateFormName, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeFooterNotLast, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeMultipleMediaPickers, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeInvalidMediaBounds, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeMediaInNavigatePayload, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeNestedMediaPayload, Severity: SeverityError, Level: LevelLenient},
	{Code: CodeUnknownComponentType, Severity: SeverityWarning, Level: LevelLenient},
	{Code: CodeNonStandardComponent, Severity: SeverityWarning, Level: LevelStrict},
	{Code: CodeNoTerminalScreen, Severity: SeverityWarning, Level: LevelStandard},
	{Code: CodeMissingRoutingModel, Severity: SeverityWarning, Level: LevelStandard},
}

// Ruleset is the data a validation run is configured with.
type Ruleset struct {
	Name string
	// Version is the expected document version; empty disables the check.
	Version            string
	Level              Level
	ScreenIDPattern    *regexp.Regexp
	StandardComponents map[string]struct{}
	Rules              map[Code]Rule
}

// Codes returns every known code in evaluation order.
func Codes() []Code {
	out := make([]Code, 0, len(defaultRules))
	for _, rule := range defaultRules {
		out = append(out, rule.Code)
	}
	return out
}

// DefaultRuleset returns the v7.1 preset at LevelStandard.
func DefaultRuleset() *Ruleset {
	rs, err := Preset(PresetV71)
	if err != nil {
		panic(err)
	}
	return rs
}

func baseRuleset() *Ruleset {
	rs := &Ruleset{
		Name:            "base",
		Level:           LevelStandard,
		ScreenIDPattern: regexp.MustCompile(DefaultScreenIDPattern),
		Rules:           make(map[Code]Rule, len(defaultRules)),
	}
	for _, rule := range defaultRules {
		rs.Rules[rule.Code] = rule
	}
	return rs
}

// WithLevel returns a copy of the ruleset validating at level.
func (rs *Ruleset) WithLevel(level Level) *Ruleset {
	clone := rs.Clone()
	clone.Level = level
	return clone
}

// Clone returns an independent copy.
func (rs *Ruleset) Clone() *Ruleset {
	if rs == nil {
		return nil
	}
	out := *rs
	if rs.StandardComponents != nil {
		out.StandardComponents = make(map[string]struct{}, len(rs.StandardComponents))
		for tag := range rs.StandardComponents {
			out.StandardComponents[tag] = struct{}{}
		}
	}
	out.Rules = make(map[Code]Rule, len(rs.Rules))
	for code, rule := range rs.Rules {
		out.Rules[code] = rule
	}
	return &out
}

// Active reports whether code runs at the ruleset's level and returns its
// configured severity.
func (rs *Ruleset) Active(code Code) (Severity, bool) {
	rule, ok := rs.Rules[code]
	if !ok || rule.Disabled || rs.Level < rule.Level {
		return "", false
	}
	return rule.Severity, true
}

// IsStandard reports whether tag is in the standard component list. An
// empty list accepts every recognised tag.
func (rs *Ruleset) IsStandard(tag string) bool {
	if len(rs.StandardComponents) == 0 {
		return true
	}
	_, ok := rs.StandardComponents[tag]
	return ok
}

// Preset names.
const (
	PresetV71    = "v7.1"
	PresetLegacy = "legacy"
)

//go:embed presets/*.yaml
var presetFiles embed.FS

// Presets lists the embedded preset names.
func Presets() []string {
	entries, err := presetFiles.ReadDir("presets")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// Preset loads an embedded ruleset by name.
func Preset(name string) (*Ruleset, error) {
	data, err := presetFiles.ReadFile("presets/" + strings.TrimSpace(name) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("rules: unknown preset %q", name)
	}
	return parseRuleset(data, 0)
}

// LoadRuleset decodes a YAML ruleset. A file may `extends` a preset and
// only override what differs.
func LoadRuleset(r io.Reader) (*Ruleset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rules: read ruleset: %w", err)
	}
	return parseRuleset(data, 0)
}

type rulesetFile struct {
	Name               string              `yaml:"name"`
	Extends            string              `yaml:"extends"`
	Version            *string             `yaml:"version"`
	Level              *Level              `yaml:"level"`
	ScreenIDPattern    *string             `yaml:"screen_id_pattern"`
	StandardComponents []string            `yaml:"standard_components"`
	Rules              map[string]ruleFile `yaml:"rules"`
}

type ruleFile struct {
	Severity string `yaml:"severity"`
	Level    *Level `yaml:"level"`
	Disabled *bool  `yaml:"disabled"`
}

const maxExtendsDepth = 4

func parseRuleset(data []byte, depth int) (*Ruleset, error) {
	var file rulesetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("rules: decode ruleset: %w", err)
	}

	rs := baseRuleset()
	if extends := strings.TrimSpace(file.Extends); extends != "" {
		if depth >= maxExtendsDepth {
			return nil, fmt.Errorf("rules: ruleset %q extends too deeply", file.Name)
		}
		parent, err := presetFiles.ReadFile("presets/" + extends + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("rules: ruleset %q extends unknown preset %q", file.Name, extends)
		}
		if rs, err = parseRuleset(parent, depth+1); err != nil {
			return nil, err
		}
	}

	if name := strings.TrimSpace(file.Name); name != "" {
		rs.Name = name
	}
	if file.Version != nil {
		rs.Version = strings.TrimSpace(*file.Version)
	}
	if file.Level != nil {
		rs.Level = *file.Level
	}
	if file.ScreenIDPattern != nil {
		pattern, err := regexp.Compile(*file.ScreenIDPattern)
		if err != nil {
			return nil, fmt.Errorf("rules: ruleset %q: screen_id_pattern: %w", rs.Name, err)
		}
		rs.ScreenIDPattern = pattern
	}
	if file.StandardComponents != nil {
		rs.StandardComponents = make(map[string]struct{}, len(file.StandardComponents))
		for _, tag := range file.StandardComponents {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				rs.StandardComponents[trimmed] = struct{}{}
			}
		}
	}

	for rawCode, override := range file.Rules {
		code := Code(strings.TrimSpace(rawCode))
		rule, ok := rs.Rules[code]
		if !ok {
			return nil, fmt.Errorf("rules: ruleset %q: unknown rule %q", rs.Name, rawCode)
		}
		if override.Severity != "" {
			severity := Severity(strings.ToLower(strings.TrimSpace(override.Severity)))
			if severity != SeverityError && severity != SeverityWarning {
				return nil, fmt.Errorf("rules: ruleset %q: rule %s: unknown severity %q", rs.Name, code, override.Severity)
			}
			rule.Severity = severity
		}
		if override.Level != nil {
			rule.Level = *override.Level
		}
		if override.Disabled != nil {
			rule.Disabled = *override.Disabled
		}
		rs.Rules[code] = rule
	}
	return rs, nil
}
