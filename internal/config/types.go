// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/invowk/docnose/pkg/doctest"
)

const (
	// ShellBash accepts Bash syntax in examples.
	ShellBash Shell = "bash"
	// ShellPOSIX rejects Bash-only syntax.
	ShellPOSIX Shell = "posix"

	// DefaultGroup is used for blocks without an explicit group.
	DefaultGroup = "default"
	// DefaultEnvFile is the env file looked up when none is configured.
	DefaultEnvFile = ".env"
)

var (
	// ErrInvalidShell is returned when a Shell value is not recognized.
	ErrInvalidShell = errors.New("invalid shell")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Shell selects the dialect examples are parsed with.
	Shell string

	// InvalidShellError is returned when a Shell value is not recognized.
	// It wraps ErrInvalidShell for errors.Is() compatibility.
	InvalidShellError struct {
		Value Shell
	}

	// InvalidConfigError collects field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the docnose configuration of one documentation tree.
	Config struct {
		GlobalSetup    string   `json:"global_setup" mapstructure:"global_setup"`
		GlobalCleanup  string   `json:"global_cleanup" mapstructure:"global_cleanup"`
		DefaultFlags   []string `json:"default_flags" mapstructure:"default_flags"`
		SourceSuffixes []string `json:"source_suffixes" mapstructure:"source_suffixes"`
		Exclude        []string `json:"exclude" mapstructure:"exclude"`
		DefaultGroup   string   `json:"default_group" mapstructure:"default_group"`
		EnvFile        string   `json:"env_file" mapstructure:"env_file"`
		Shell          Shell    `json:"shell" mapstructure:"shell"`

		// Env holds NAME=value pairs read from EnvFile.
		Env []string `json:"-" mapstructure:"-"`
		// Path is the conf.cue that was loaded, or empty when defaults apply.
		Path string `json:"-" mapstructure:"-"`
	}
)

// DefaultConfig returns the configuration used when a tree has no conf.cue.
func DefaultConfig() *Config {
	return &Config{
		DefaultFlags:   []string{},
		SourceSuffixes: []string{".md"},
		Exclude:        []string{},
		DefaultGroup:   DefaultGroup,
		EnvFile:        DefaultEnvFile,
		Shell:          ShellBash,
	}
}

func (s Shell) String() string { return string(s) }

// IsValid returns whether the Shell is one of the defined dialects.
func (s Shell) IsValid() (bool, []error) {
	switch s {
	case ShellBash, ShellPOSIX:
		return true, nil
	default:
		return false, []error{&InvalidShellError{Value: s}}
	}
}

// Error implements the error interface for InvalidShellError.
func (e *InvalidShellError) Error() string {
	return fmt.Sprintf("invalid shell %q (valid: bash, posix)", e.Value)
}

// Unwrap returns ErrInvalidShell for errors.Is() compatibility.
func (e *InvalidShellError) Unwrap() error { return ErrInvalidShell }

// IsValid validates what the CUE schema cannot: that the default flags name
// known options.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Shell.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if _, err := c.Flags(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.DefaultGroup) == "" {
		errs = append(errs, errors.New("default_group must not be empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so callers
// can match either.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Flags parses DefaultFlags.
func (c *Config) Flags() (doctest.OptionFlags, error) {
	return doctest.ParseOptions(strings.Join(c.DefaultFlags, ","))
}

// Compiler returns the example compiler for the configured dialect.
func (c *Config) Compiler() doctest.Compiler {
	if c.Shell == ShellPOSIX {
		return doctest.NewPOSIXCompiler()
	}
	return doctest.NewShellCompiler()
}
