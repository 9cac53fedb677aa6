package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses "5s"-style values from both YAML and environment
// variables.
type Duration time.Duration

// SetValue implements cleanenv.Setter for env-var parsing.
func (d *Duration) SetValue(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.SetValue(s)
}

func (d Duration) Std() time.Duration { return time.Duration(d) }
