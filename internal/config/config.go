// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/invowk/docnose/internal/issue"
	"github.com/invowk/docnose/pkg/cueutil"
	"github.com/invowk/docnose/pkg/doctest"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// FileName is the doc-tree configuration file looked up in the conf dir.
	FileName = "conf.cue"
	// EnvPrefix prefixes environment overrides of configuration keys.
	EnvPrefix = "DOCNOSE"

	schemaDefinition = "#Config"
)

//go:embed conf_schema.cue
var confSchema string

// Load reads conf.cue from confDir, if present, over the defaults. An empty
// confDir yields the defaults plus environment overrides.
func Load(ctx context.Context, confDir string) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("global_setup", defaults.GlobalSetup)
	v.SetDefault("global_cleanup", defaults.GlobalCleanup)
	v.SetDefault("default_flags", defaults.DefaultFlags)
	v.SetDefault("source_suffixes", defaults.SourceSuffixes)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("default_group", defaults.DefaultGroup)
	v.SetDefault("env_file", defaults.EnvFile)
	v.SetDefault("shell", defaults.Shell)

	path := ""
	if confDir != "" {
		path = filepath.Join(confDir, FileName)
		if !fileExists(path) {
			path = ""
		}
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load doc-tree config").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Run 'docnose explain config-load-failed' for the list of keys").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Path = path

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate doc-tree config").
			WithResource(path).
			WithSuggestion("Option flags are written +NAME or -NAME, e.g. +ELLIPSIS").
			WithSuggestion("Known flags: "+knownFlagList()).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	env, err := readEnvFile(confDir, cfg.EnvFile)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read env file").
			WithResource(cfg.EnvFile).
			WithSuggestion("Lines must have the form NAME=value").
			Wrap(err).
			BuildError()
	}
	cfg.Env = env

	return &cfg, nil
}

// loadCUEIntoViper validates the CUE file against #Config and merges the
// fields it sets over the defaults already in v.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()
	// One byte past the limit is enough for the size check to fail.
	data, err := io.ReadAll(io.LimitReader(f, cueutil.DefaultMaxFileSize+1))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}
	configMap, err := cueutil.DecodeMap(confSchema, data, schemaDefinition, path)
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// readEnvFile returns the file's variables as sorted NAME=value pairs. The
// default env file is optional; one named explicitly must exist.
func readEnvFile(confDir, name string) ([]string, error) {
	if name == "" || (confDir == "" && !filepath.IsAbs(name)) {
		return nil, nil
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(confDir, name)
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) && name == DefaultEnvFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	env := make([]string, 0, len(vars))
	for k, val := range vars {
		env = append(env, k+"="+val)
	}
	slices.Sort(env)
	return env, nil
}

// Suffixes returns the configured source suffixes, each with a leading dot.
func (c *Config) Suffixes() []string {
	out := make([]string, 0, len(c.SourceSuffixes))
	for _, s := range c.SourceSuffixes {
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		out = append(out, s)
	}
	return out
}

func knownFlagList() string {
	flags := doctest.KnownFlags()
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
