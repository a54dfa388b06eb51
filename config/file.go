package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override file settings
// (SNAPDIFF_DIALECT, SNAPDIFF_DATABASE_URL, ...).
const EnvPrefix = "SNAPDIFF"

// File is the command line configuration, read from snapdiff.yaml (or .json,
// .toml) in the working directory and overridden by the environment.
type File struct {
	// Dialect forces the dialect of the snapshots. Empty uses the dialect
	// recorded in the snapshots.
	Dialect string `mapstructure:"dialect"`
	// Action is "generate" or "push".
	Action string `mapstructure:"action"`
	// Prev is the snapshot of the last migration.
	Prev string `mapstructure:"prev"`
	// Schema is the snapshot describing the desired schema.
	Schema string `mapstructure:"schema"`
	// Out is the directory migrations are written to.
	Out string `mapstructure:"out"`
	// DatabaseURL addresses the database of the push flow.
	DatabaseURL string `mapstructure:"database_url"`
	// Renames are "from->to" hints (see resolver.Static). In the
	// environment they are separated by commas.
	Renames []string `mapstructure:"renames"`
	// IgnoredTables are qualified table keys left out of the diff.
	IgnoredTables []string `mapstructure:"ignored_tables"`
}

var fileDefaults = map[string]any{
	"dialect":        "",
	"action":         string(ActionGenerate),
	"prev":           "",
	"schema":         "schema.json",
	"out":            "./migrations",
	"database_url":   "",
	"renames":        []string{},
	"ignored_tables": []string{},
}

// Load reads the configuration. An explicit path must exist; without one,
// snapdiff.{yaml,json,toml} is looked up in the working directory and is
// optional.
func Load(path string) (*File, error) {
	v := viper.New()
	for key, value := range fileDefaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("snapdiff")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	f.Renames = splitList(f.Renames)
	f.IgnoredTables = splitList(f.IgnoredTables)
	if _, err := ParseAction(f.Action); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadDotEnv loads environment files (".env" when none are given). Missing
// files are ignored; variables that are already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", p, err)
		}
	}
	return nil
}

// DiffOptions converts the file settings into diff options.
func (f *File) DiffOptions() (*DiffOptions, error) {
	action, err := ParseAction(f.Action)
	if err != nil {
		return nil, err
	}
	return &DiffOptions{Action: action, IgnoredTables: f.IgnoredTables}, nil
}

// splitList accepts both proper lists and comma separated values, which is
// how lists arrive from the environment.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
