package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// PatternList accepts either a single pattern string or a sequence of
// patterns, in YAML and in environment variables (comma separated).
type PatternList []string

// SetValue implements cleanenv.Setter for env-var parsing.
func (p *PatternList) SetValue(s string) error {
	*p = split(s)
	return nil
}

func (p *PatternList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*p = split(s)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*p = items
		return nil
	default:
		return fmt.Errorf("pattern list: unsupported YAML node kind %v", value.Kind)
	}
}

func split(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
