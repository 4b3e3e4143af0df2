/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Drilldown Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads drilldown settings from defaults, a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/google/drilldown/core/selection"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "drilldown.yaml"

// EnvPrefix prefixes environment overrides, e.g. DRILLDOWN_SOURCE_PATH.
const EnvPrefix = "DRILLDOWN_"

// Source types understood by the datasources package.
const (
	SourceDemo     = "demo"
	SourceCSV      = "csv"
	SourceYAML     = "yaml"
	SourceJSON     = "json"
	SourceXLSX     = "xlsx"
	SourceSQLite   = "sqlite"
	SourceDuckDB   = "duckdb"
	SourcePostgres = "postgres"
)

var sourceTypes = []string{
	SourceDemo, SourceCSV, SourceYAML, SourceJSON, SourceXLSX,
	SourceSQLite, SourceDuckDB, SourcePostgres,
}

// Source describes where the snapshot comes from.
type Source struct {
	Type      string `koanf:"type"`
	Path      string `koanf:"path"`
	DSN       string `koanf:"dsn"`
	Query     string `koanf:"query"`
	Sheet     string `koanf:"sheet"`
	Measure   string `koanf:"measure"`
	Delimiter string `koanf:"delimiter"`
	HasHeader bool   `koanf:"has_header"`
}

// IsFile reports whether the source is read from a local file.
func (s Source) IsFile() bool {
	switch s.Type {
	case SourceCSV, SourceYAML, SourceJSON, SourceXLSX:
		return true
	}
	return false
}

// IsSQL reports whether the source is a database query.
func (s Source) IsSQL() bool {
	switch s.Type {
	case SourceSQLite, SourceDuckDB, SourcePostgres:
		return true
	}
	return false
}

// ConnString returns the database connection string. File databases may give
// a path instead of a dsn.
func (s Source) ConnString() string {
	if s.DSN != "" {
		return s.DSN
	}
	return s.Path
}

// View is the initial state of the summary.
type View struct {
	Level1 string `koanf:"level1"`
	Level2 string `koanf:"level2"`
	Level3 string `koanf:"level3"`
	Search string `koanf:"search"`
}

// Assignment returns the configured dimensions per level.
func (v View) Assignment() selection.Assignment {
	return selection.Assignment{v.Level1, v.Level2, v.Level3}
}

// Server configures the web adapter.
type Server struct {
	Addr          string `koanf:"addr"`
	SessionSecret string `koanf:"session_secret"`
	Watch         bool   `koanf:"watch"`
	Title         string `koanf:"title"`

	// SecureCookie marks the session cookie Secure; set it when serving over TLS.
	SecureCookie bool `koanf:"secure_cookie"`
}

// Log configures logging.
type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Config holds all drilldown settings.
type Config struct {
	Source Source `koanf:"source"`
	View   View   `koanf:"view"`
	Server Server `koanf:"server"`
	Log    Log    `koanf:"log"`

	// File is the config file that was read, empty if none.
	File string `koanf:"-"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"source.type":          SourceDemo,
		"source.delimiter":     ",",
		"source.has_header":    true,
		"server.addr":          "127.0.0.1:8097",
		"server.watch":         true,
		"server.secure_cookie": false,
		"server.title":         "Drill-down summary",
		"log.level":            "info",
		"log.format":           "console",
	}
}

// flagKeys maps flag names to config keys for flags that do not follow the
// "section-field" naming.
var flagKeys = map[string]string{
	"addr":       "server.addr",
	"watch":      "server.watch",
	"log-level":  "log.level",
	"log-format": "log.format",
	"search":     "view.search",
}

// FlagKey returns the config key a flag loads into, or "" if the flag is not
// a config flag.
func FlagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	section, field, ok := strings.Cut(name, "-")
	if !ok {
		return ""
	}
	switch section {
	case "source", "view", "server", "log":
		return section + "." + strings.ReplaceAll(field, "-", "_")
	}
	return ""
}

// envKey maps DRILLDOWN_SERVER_SESSION_SECRET to server.session_secret.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Load reads the configuration. An empty cfgFile means DefaultFile when it
// exists. Only flags that were explicitly set override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			cfgFile = DefaultFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "error reading config file %s", cfgFile)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load env vars")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := FlagKey(f.Name)
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(err, "failed to load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	cfg.File = cfgFile
	cfg.Source.Type = strings.ToLower(strings.TrimSpace(cfg.Source.Type))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the source settings.
func (c *Config) Validate() error {
	s := c.Source
	known := false
	for _, t := range sourceTypes {
		if s.Type == t {
			known = true
			break
		}
	}
	if !known {
		return errors.Errorf("unknown source type %q (want one of %s)", s.Type, strings.Join(sourceTypes, ", "))
	}
	if s.IsFile() && s.Path == "" {
		return errors.Errorf("source type %q needs a path", s.Type)
	}
	if s.IsSQL() {
		if s.DSN == "" && (s.Type == SourcePostgres || s.Path == "") {
			return errors.Errorf("source type %q needs a dsn", s.Type)
		}
		if strings.TrimSpace(s.Query) == "" {
			return errors.Errorf("source type %q needs a query", s.Type)
		}
	}
	if s.Type == SourceCSV && utf8.RuneCountInString(s.Delimiter) != 1 {
		return errors.Errorf("csv delimiter must be a single character, got %q", s.Delimiter)
	}
	return nil
}
