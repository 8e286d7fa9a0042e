// This file contains environment variable and flag overrides.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
)

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps an env key (without the SHARED_ prefix) to the flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*Config, string) error
}

var envOverrides = []envOverride{
	{"WORKERS", []string{"workers", "n"}, func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return NewConfigError("invalid %sWORKERS %q", EnvPrefix, v)
		}
		c.Workers = n
		return nil
	}},
	{"SCENARIO", []string{"scenario"}, func(c *Config, v string) error {
		c.Scenario = v
		return nil
	}},
	{"SEED", []string{"seed"}, func(c *Config, v string) error {
		c.Seed = v
		return nil
	}},
	{"RUNNER", []string{"runner"}, func(c *Config, v string) error {
		c.Runner = v
		return nil
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *Config, v string) error {
		c.LogLevel = v
		return nil
	}},
	{"LOG_FORMAT", []string{"log-format"}, func(c *Config, v string) error {
		c.LogFormat = v
		return nil
	}},
	{"METRICS", []string{"metrics"}, func(c *Config, v string) error {
		c.Metrics = parseBoolEnv(v, c.Metrics)
		return nil
	}},
}

// parseBoolEnv accepts "true", "1", "yes" as true and "false", "0", "no" as
// false (case-insensitive). Returns defaultVal otherwise.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variables for every setting whose
// flags were not given on the command line.
func applyEnvOverrides(cfg *Config, fs *flag.FlagSet) error {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			if err := o.apply(cfg, val); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyFlags copies explicitly set flag values from fc into cfg.
func applyFlags(cfg, fc *Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers", "n":
			cfg.Workers = fc.Workers
		case "scenario":
			cfg.Scenario = fc.Scenario
		case "seed":
			cfg.Seed = fc.Seed
		case "runner":
			cfg.Runner = fc.Runner
		case "log-level":
			cfg.LogLevel = fc.LogLevel
		case "log-format":
			cfg.LogFormat = fc.LogFormat
		case "metrics":
			cfg.Metrics = fc.Metrics
		}
	})
}
