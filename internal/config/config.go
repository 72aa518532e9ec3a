// Package config handles loading front-end options from a file.
//
// Options can be specified in a JSON file named fx.json or .fxrc. The
// file is searched for in the current directory and parent directories,
// the same discovery walk the teacher used for its minifier config.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config represents the configuration file structure. All fields are
// optional and fall back to their Options zero value when unset.
type Config struct {
	// WarnAsError promotes every warning-level diagnostic to an error
	// for the purposes of the CLI's exit code.
	WarnAsError *bool `json:"warnAsError,omitempty"`

	// MaxErrors stops batch checking (the check subcommand) after this
	// many files have reported at least one error. Zero means no limit.
	MaxErrors *int `json:"maxErrors,omitempty"`

	// KeepGoing continues checking remaining files in a batch after one
	// fails, instead of stopping at the first failure.
	KeepGoing *bool `json:"keepGoing,omitempty"`
}

// FileNames are the names searched for a config file, in order of
// preference.
var FileNames = []string{
	"fx.json",
	".fxrc",
	".fxrc.json",
}

// Load searches for a config file starting from startDir and walking up
// to parent directories. Returns a nil Config (and no error) if none is
// found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Options is the resolved set of front-end options after merging a
// config file with CLI overrides.
type Options struct {
	WarnAsError bool
	MaxErrors   int
	KeepGoing   bool
}

// ToOptions converts c to Options, using zero values for unset fields.
func (c *Config) ToOptions() Options {
	var opts Options
	if c == nil {
		return opts
	}
	if c.WarnAsError != nil {
		opts.WarnAsError = *c.WarnAsError
	}
	if c.MaxErrors != nil {
		opts.MaxErrors = *c.MaxErrors
	}
	if c.KeepGoing != nil {
		opts.KeepGoing = *c.KeepGoing
	}
	return opts
}

// CLIOverrides holds flags collected directly from the command line;
// nil pointers mean "not specified", so Merge only overrides fields the
// user actually passed (mirroring the teacher's CLI/config merge rule).
type CLIOverrides struct {
	WarnAsError *bool
	MaxErrors   *int
	KeepGoing   *bool
}

// Merge combines c's file-level options with CLI overrides, CLI taking
// precedence field by field.
func (c *Config) Merge(cli CLIOverrides) Options {
	opts := c.ToOptions()
	if cli.WarnAsError != nil {
		opts.WarnAsError = *cli.WarnAsError
	}
	if cli.MaxErrors != nil {
		opts.MaxErrors = *cli.MaxErrors
	}
	if cli.KeepGoing != nil {
		opts.KeepGoing = *cli.KeepGoing
	}
	return opts
}
