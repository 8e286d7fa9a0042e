// Package config holds the configuration of the shared-demo driver and its
// parsing from defaults, a YAML file, environment variables and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Parse.
const EnvPrefix = "SHARED_"

// Scenario names.
const (
	ScenarioCounter = "counter"
	ScenarioAppend  = "append"
)

// Runner names.
const (
	RunnerGo       = "go"
	RunnerErrgroup = "errgroup"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config is the driver configuration.
type Config struct {
	// Workers is the number of workers spawned against the shared container.
	Workers int `yaml:"workers"`
	// Scenario selects the mutation each worker performs: "counter" adds one,
	// "append" appends "-<id>" to a string seeded with Seed.
	Scenario string `yaml:"scenario"`
	Seed     string `yaml:"seed"`
	// Runner selects the primitive backing the workers: "go" or "errgroup".
	Runner    string `yaml:"runner"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// Metrics dumps the Prometheus metrics in text format after the run.
	Metrics bool `yaml:"metrics"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workers:   10,
		Scenario:  ScenarioCounter,
		Seed:      "seed",
		Runner:    RunnerGo,
		LogLevel:  "info",
		LogFormat: FormatConsole,
	}
}

// ConfigError represents invalid user configuration.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return NewConfigError("workers must be >= 0, got %d", c.Workers)
	}
	if !slices.Contains([]string{ScenarioCounter, ScenarioAppend}, c.Scenario) {
		return NewConfigError("unknown scenario %q", c.Scenario)
	}
	if !slices.Contains([]string{RunnerGo, RunnerErrgroup}, c.Runner) {
		return NewConfigError("unknown runner %q", c.Runner)
	}
	if !slices.Contains([]string{FormatConsole, FormatJSON}, c.LogFormat) {
		return NewConfigError("unknown log format %q", c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return NewConfigError("invalid log level %q", c.LogLevel)
	}
	return nil
}

// Level returns the parsed log level, or info if it is invalid.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Parse builds the configuration. Priority: flags > environment > file >
// defaults. The file is named by -config or SHARED_CONFIG.
func Parse(programName string, args []string, errW io.Writer) (Config, error) {
	d := Default()
	fc := d
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errW)
	fs.IntVar(&fc.Workers, "workers", d.Workers, "number of workers")
	fs.IntVar(&fc.Workers, "n", d.Workers, "number of workers (shorthand)")
	fs.StringVar(&fc.Scenario, "scenario", d.Scenario, "scenario to run: counter or append")
	fs.StringVar(&fc.Seed, "seed", d.Seed, "initial value of the append scenario")
	fs.StringVar(&fc.Runner, "runner", d.Runner, "worker backing: go or errgroup")
	fs.StringVar(&fc.LogLevel, "log-level", d.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.StringVar(&fc.LogFormat, "log-format", d.LogFormat, "log format: console or json")
	fs.BoolVar(&fc.Metrics, "metrics", d.Metrics, "print Prometheus metrics after the run")
	configPath := fs.String("config", "", "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, NewConfigError("unexpected arguments: %v", fs.Args())
	}

	cfg := d
	path := *configPath
	if !isFlagSet(fs, "config") {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnvOverrides(&cfg, fs); err != nil {
		return Config{}, err
	}
	applyFlags(&cfg, &fc, fs)
	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return NewConfigError("open config file: %v", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return NewConfigError("parse config file %s: %v", path, err)
	}
	return nil
}
