// Package config loads bridge settings from YAML.
//
//	namespaces:
//	  Demo: example.com/demo
//	  Demo.Widgets: example.com/demo/widgets
//	marshal_by_value:
//	  - Point
//	  - example.com/demo.Rect
//	workers: 8
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/namespace"
)

// Config holds namespace mappings, by-value types and engine sizing.
type Config struct {
	Namespaces     map[string]string `yaml:"namespaces"`
	MarshalByValue []string          `yaml:"marshal_by_value"`
	Workers        int               `yaml:"workers"`
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.InvalidInput(errors.PhaseConfig, "empty config path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return Parse(data)
}

// Parse decodes and validates YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if stderrors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem found, combined.
func (c *Config) Validate() error {
	var err error
	packages := make(map[string]string, len(c.Namespaces))
	for _, ns := range c.namespaceKeys() {
		pkg := c.Namespaces[ns]
		switch {
		case ns == "" || namespace.IsPlaceholder(ns):
			err = multierr.Append(err, invalid("namespace %q is reserved", ns))
		case pkg == "":
			err = multierr.Append(err, invalid("namespace %q has no package", ns))
		default:
			if other, dup := packages[pkg]; dup {
				err = multierr.Append(err, errors.Conflict("package", pkg, other))
			}
			packages[pkg] = ns
		}
	}
	for i, name := range c.MarshalByValue {
		if name == "" {
			err = multierr.Append(err, invalid("marshal_by_value[%d] is empty", i))
		}
	}
	if c.Workers < 0 {
		err = multierr.Append(err, invalid("workers must not be negative, got %d", c.Workers))
	}
	return err
}

func invalid(format string, args ...any) error {
	return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf(format, args...))
}

func (c *Config) namespaceKeys() []string {
	keys := make([]string, 0, len(c.Namespaces))
	for k := range c.Namespaces {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Options returns the engine options the config implies.
func (c *Config) Options() []bridge.Option {
	var opts []bridge.Option
	if c.Workers > 0 {
		opts = append(opts, bridge.WithWorkers(c.Workers))
	}
	return opts
}

// Apply registers the namespaces and by-value types on eng.
func (c *Config) Apply(eng *bridge.Engine) error {
	var err error
	for _, ns := range c.namespaceKeys() {
		err = multierr.Append(err, eng.Mapper().Register(ns, c.Namespaces[ns]))
	}
	for _, name := range c.MarshalByValue {
		eng.RegisterMarshalByValue(name)
	}
	return err
}
