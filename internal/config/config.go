// Package config holds runtime settings. Values are layered: defaults, then
// an optional YAML file, then PHOTOMESH_* environment variables, then any
// flag set explicitly on the command line.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"photomesh/internal/apperr"
	"photomesh/internal/engine"
	"photomesh/internal/render"
	"photomesh/internal/validate"
)

const envPrefix = "PHOTOMESH_"

// Config holds all settings for one run.
type Config struct {
	// Paths (set from positional args).
	InputDir   string `yaml:"-"`
	OutputFile string `yaml:"-"`

	Detail          string `yaml:"detail"`         // Default: "medium".
	MinImages       int    `yaml:"min_images"`     // Default: 40.
	MinShortSide    int    `yaml:"min_short_side"` // Default: 1200 pixels.
	Strict          bool   `yaml:"strict"`
	SkipInputChecks bool   `yaml:"skip_input_checks"`
	Engine          string `yaml:"engine"` // Renderer executable name or path.

	Verbose bool `yaml:"verbose"`
	LogFile bool `yaml:"logfile"` // Also write logs to <output-file>.log.
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Detail:       "medium",
		MinImages:    40,
		MinShortSide: 1200,
		Engine:       engine.DefaultBinary,
	}
}

// LoadFile overlays the YAML document at path onto c. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read config: %v", apperr.ErrInvalidConfiguration, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parse %s: %v", apperr.ErrInvalidConfiguration, path, err)
	}
	return nil
}

// ApplyEnv overlays PHOTOMESH_* variables found via lookup onto c.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(envPrefix + "DETAIL"); ok {
		c.Detail = v
	}
	if v, ok := lookup(envPrefix + "ENGINE"); ok {
		c.Engine = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MIN_IMAGES", &c.MinImages},
		{"MIN_SHORT_SIDE", &c.MinShortSide},
	}
	for _, e := range ints {
		v, ok := lookup(envPrefix + e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", apperr.ErrInvalidConfiguration, envPrefix, e.key, v)
		}
		*e.dst = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"STRICT", &c.Strict},
		{"SKIP_INPUT_CHECKS", &c.SkipInputChecks},
		{"VERBOSE", &c.Verbose},
		{"LOGFILE", &c.LogFile},
	}
	for _, e := range bools {
		v, ok := lookup(envPrefix + e.key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a boolean", apperr.ErrInvalidConfiguration, envPrefix, e.key, v)
		}
		*e.dst = b
	}
	return nil
}

// LogPath is where the log file sink writes, or "" when disabled.
func (c *Config) LogPath() string {
	if !c.LogFile || c.OutputFile == "" {
		return ""
	}
	return c.OutputFile + ".log"
}

// Policy returns the validation policy. Thresholds are checked by the
// validator itself so that misconfiguration is reported in order.
func (c *Config) Policy() validate.Policy {
	return validate.Policy{
		MinImageCount: c.MinImages,
		MinShortSide:  c.MinShortSide,
		Strict:        c.Strict,
	}
}

// Request builds the orchestrator request for this configuration.
func (c *Config) Request() render.Request {
	return render.Request{
		InputDir:       c.InputDir,
		OutputFile:     c.OutputFile,
		Detail:         c.Detail,
		Policy:         c.Policy(),
		SkipValidation: c.SkipInputChecks,
	}
}
