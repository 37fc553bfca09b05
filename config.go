package sqlite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Switch is a boolean setting that only accepts boolean-like input when
// decoded from YAML.
type Switch bool

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Switch) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return &ValueError{Name: "switch", Value: node.Value, Reason: fmt.Sprintf("line %d: expected a scalar", node.Line)}
	}
	on, err := ParseSwitch(node.Value)
	if err != nil {
		return err
	}
	*s = Switch(on)
	return nil
}

// ParseSwitch interprets v as a boolean. Accepted values are bools,
// integers 0 and 1, and the strings true/false, yes/no, on/off and 1/0 in
// any case.
func ParseSwitch(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case Switch:
		return bool(x), nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
	default:
		if n, ok := toIndex(v); ok && (n == 0 || n == 1) {
			return n == 1, nil
		}
	}
	return false, &ValueError{Name: "switch", Value: v, Reason: "not a boolean"}
}

// Config holds the settings a Conn can be created with.
type Config struct {
	// Library is an explicit path to the SQLite shared library. When empty
	// the SQLITE3_LIBRARY_PATH environment variable and then the platform
	// default names are tried.
	Library string `yaml:"library"`

	// Path is opened by New when New is given no path.
	Path string `yaml:"path"`

	AutoEscape Switch `yaml:"auto_escape"`
	Dispatch   Switch `yaml:"dispatch"`
}

// ParseConfig decodes a YAML configuration document. Unknown keys are
// rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and decodes the YAML configuration file at name.
func LoadConfig(name string) (Config, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}

type settings struct {
	config Config
	logger *log.Logger
}

func defaultSettings() settings {
	return settings{}
}

// Option configures a Conn created by New
type Option func(*settings)

// WithConfig replaces all configuration fields at once.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.config = cfg
	}
}

// WithLibrary sets an explicit shared library path.
func WithLibrary(path string) Option {
	return func(s *settings) {
		s.config.Library = path
	}
}

// WithAutoEscape sets the initial auto-escape switch.
func WithAutoEscape(on bool) Option {
	return func(s *settings) {
		s.config.AutoEscape = Switch(on)
	}
}

// WithDispatch sets the initial raw dispatch switch.
func WithDispatch(on bool) Option {
	return func(s *settings) {
		s.config.Dispatch = Switch(on)
	}
}

// WithLogger sends connection lifecycle and failure logs to l. Logging is
// off by default.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}
