package rules

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is the strictness a document is validated at. Each rule declares the
// lowest level it runs at.
type Level int

const (
	LevelLenient Level = iota
	LevelStandard
	LevelStrict
)

// ParseLevel accepts "lenient", "standard" or "strict" (case-insensitive).
// The empty string selects LevelStandard.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "lenient":
		return LevelLenient, nil
	case "", "standard":
		return LevelStandard, nil
	case "strict":
		return LevelStrict, nil
	default:
		return LevelStandard, fmt.Errorf("rules: unknown level %q", raw)
	}
}

func (l Level) String() string {
	switch l {
	case LevelLenient:
		return "lenient"
	case LevelStrict:
		return "strict"
	default:
		return "standard"
	}
}

// UnmarshalYAML decodes a level name.
func (l *Level) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseLevel(node.Value)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
