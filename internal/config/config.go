// ABOUTME: Settings loading with global + plugin-local config merge
// ABOUTME: YAML files via yaml.v3, .toml files via BurntSushi/toml

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel       = "info"
	DefaultResponseMode   = "legacy"
	DefaultContextMenuTTL = 10 * time.Minute
	DefaultMaxLineBytes   = 10 * 1024 * 1024
)

// Duration is a time.Duration written as "250ms", "10m", or 0 in config files.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML accepts the same forms as UnmarshalText.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Settings holds the merged configuration.
type Settings struct {
	LogLevel       string   `yaml:"log_level,omitempty" toml:"log_level"`
	LogFile        string   `yaml:"log_file,omitempty" toml:"log_file"`
	ResponseMode   string   `yaml:"response_mode,omitempty" toml:"response_mode"`
	CallTimeout    Duration `yaml:"call_timeout,omitempty" toml:"call_timeout"`
	ContextMenuTTL Duration `yaml:"context_menu_ttl,omitempty" toml:"context_menu_ttl"`
	MaxLineBytes   int      `yaml:"max_line_bytes,omitempty" toml:"max_line_bytes"`
}

// Defaults returns the settings used when no file sets a value.
func Defaults() *Settings {
	return &Settings{
		LogLevel:       DefaultLogLevel,
		ResponseMode:   DefaultResponseMode,
		ContextMenuTTL: Duration(DefaultContextMenuTTL),
		MaxLineBytes:   DefaultMaxLineBytes,
	}
}

// Load reads and merges the global and plugin-local settings on top of
// the defaults. Plugin-local settings override global settings. Missing
// files are skipped.
func Load(pluginDir string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	local, err := loadFile(LocalConfigFile(pluginDir))
	if err != nil {
		return nil, fmt.Errorf("loading plugin config: %w", err)
	}

	merged := merge(merge(Defaults(), global), local)
	ResolveEnvVars(merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// LoadFile reads one config file on top of the defaults.
func LoadFile(path string) (*Settings, error) {
	s, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	merged := merge(Defaults(), s)
	ResolveEnvVars(merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Validate rejects values the runtime cannot use.
func (s *Settings) Validate() error {
	var errs []error
	switch strings.ToLower(s.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", s.LogLevel))
	}
	switch strings.ToLower(s.ResponseMode) {
	case "", "legacy", "results":
	default:
		errs = append(errs, fmt.Errorf("response_mode: unknown mode %q", s.ResponseMode))
	}
	if s.CallTimeout < 0 {
		errs = append(errs, errors.New("call_timeout: must not be negative"))
	}
	if s.ContextMenuTTL < 0 {
		errs = append(errs, errors.New("context_menu_ttl: must not be negative"))
	}
	if s.MaxLineBytes < 0 {
		errs = append(errs, errors.New("max_line_bytes: must not be negative"))
	}
	return errors.Join(errs...)
}

// loadFile decodes path by extension. An empty path or a missing file
// yields nil settings and no error.
func loadFile(path string) (*Settings, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Settings
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &s)
	} else {
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays the non-zero fields of over onto base.
func merge(base, over *Settings) *Settings {
	if base == nil {
		base = &Settings{}
	}
	if over == nil {
		return base
	}

	result := *base
	if over.LogLevel != "" {
		result.LogLevel = over.LogLevel
	}
	if over.LogFile != "" {
		result.LogFile = over.LogFile
	}
	if over.ResponseMode != "" {
		result.ResponseMode = over.ResponseMode
	}
	if over.CallTimeout != 0 {
		result.CallTimeout = over.CallTimeout
	}
	if over.ContextMenuTTL != 0 {
		result.ContextMenuTTL = over.ContextMenuTTL
	}
	if over.MaxLineBytes != 0 {
		result.MaxLineBytes = over.MaxLineBytes
	}
	return &result
}
