package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/runtime"
)

// Config represents a lintstream.yaml configuration file.
// All values are optional and act as defaults for lint flags.
// CLI flags always override config values.
type Config struct {
	Tool    ToolConfig    `yaml:"tool"`
	Sources SourcesConfig `yaml:"sources"`
	Storage StorageConfig `yaml:"storage"`
	Policy  PolicyConfig  `yaml:"policy"`
	Adapter AdapterConfig `yaml:"adapter"`
	// Dump is the raw dump path. Empty disables dumps.
	Dump string `yaml:"dump"`
	// Report is the run report path; "-" writes to stderr.
	Report string `yaml:"report"`
}

// ToolConfig describes the lint executable and how to call it.
type ToolConfig struct {
	// Name is the logical tool name used as the storage partition key.
	Name           string               `yaml:"name"`
	Path           string               `yaml:"path"`
	OptionsFile    string               `yaml:"options_file"`
	WorkDir        string               `yaml:"workdir"`
	Args           []string             `yaml:"args"`
	Env            []string             `yaml:"env"`
	Timeout        Duration             `yaml:"timeout"`
	LaunchTimeout  Duration             `yaml:"launch_timeout"`
	MaxCommandLine int                  `yaml:"max_command_line"`
	Banner         runtime.BannerConfig `yaml:"banner"`
}

// SourcesConfig selects the files to lint.
type SourcesConfig struct {
	// Include holds doublestar globs relative to the working directory.
	Include []string `yaml:"include"`
	// Exclude removes matches of Include.
	Exclude []string `yaml:"exclude"`
}

// StorageConfig holds storage defaults from the config file.
type StorageConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// PolicyConfig holds policy defaults from the config file.
type PolicyConfig struct {
	Name          string   `yaml:"name"`
	FlushCount    int      `yaml:"flush_count"`
	FlushInterval Duration `yaml:"flush_interval"`
}

// AdapterConfig holds adapter defaults from the config file.
type AdapterConfig struct {
	Type         string            `yaml:"type"`
	URL          string            `yaml:"url"`
	Channel      string            `yaml:"channel,omitempty"`
	HistoryKey   string            `yaml:"history_key,omitempty"`
	HistoryLimit int64             `yaml:"history_limit,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	Timeout      Duration          `yaml:"timeout,omitempty"`
	Retries      *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML writes the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	if d.Duration == 0 {
		return "", nil
	}
	return d.String(), nil
}

// Validate checks enumerated values and numeric ranges.
// Empty values are allowed; flag defaults fill them later.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case "", "fs", "s3":
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q (want fs or s3)", c.Storage.Backend))
	}

	switch c.Policy.Name {
	case "", "strict", "streaming":
	default:
		errs = append(errs, fmt.Errorf("policy.name: unknown policy %q (want strict or streaming)", c.Policy.Name))
	}
	if c.Policy.FlushCount < 0 {
		errs = append(errs, fmt.Errorf("policy.flush_count: must be >= 0, got %d", c.Policy.FlushCount))
	}

	switch c.Adapter.Type {
	case "", "webhook", "redis":
	default:
		errs = append(errs, fmt.Errorf("adapter.type: unknown adapter %q (want webhook or redis)", c.Adapter.Type))
	}
	if c.Adapter.Type != "" && c.Adapter.URL == "" {
		errs = append(errs, fmt.Errorf("adapter.url: required for %s adapter", c.Adapter.Type))
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		errs = append(errs, fmt.Errorf("adapter.retries: must be >= 0, got %d", *c.Adapter.Retries))
	}

	if c.Tool.MaxCommandLine < 0 {
		errs = append(errs, fmt.Errorf("tool.max_command_line: must be >= 0, got %d", c.Tool.MaxCommandLine))
	}

	return errors.Join(errs...)
}
