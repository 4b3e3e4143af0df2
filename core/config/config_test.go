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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/drilldown/core/selection"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drilldown.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, SourceDemo, cfg.Source.Type)
	assert.Equal(t, ",", cfg.Source.Delimiter)
	assert.True(t, cfg.Source.HasHeader)
	assert.Equal(t, "127.0.0.1:8097", cfg.Server.Addr)
	assert.True(t, cfg.Server.Watch)
	assert.False(t, cfg.Server.SecureCookie)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
source:
  type: CSV
  path: data/ftu.csv
  measure: ftu
  delimiter: ";"
view:
  level1: city
  level2: area
server:
  addr: ":9000"
log:
  level: debug
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceCSV, cfg.Source.Type)
	assert.Equal(t, "data/ftu.csv", cfg.Source.Path)
	assert.Equal(t, "ftu", cfg.Source.Measure)
	assert.Equal(t, ";", cfg.Source.Delimiter)
	assert.True(t, cfg.Source.HasHeader)
	assert.Equal(t, selection.Assignment{"city", "area", ""}, cfg.View.Assignment())
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, path, cfg.File)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
view:
  level1: city
  level2: area
server:
  addr: ":9000"
  session_secret: from-file
`)
	t.Setenv("DRILLDOWN_VIEW_LEVEL1", "zone")
	t.Setenv("DRILLDOWN_SERVER_SESSION_SECRET", "from-env")
	t.Setenv("DRILLDOWN_SERVER_ADDR", ":9100")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("addr", "", "")
	flags.String("view-level2", "", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--addr", ":9200", "--view-level2", "zone"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "zone", cfg.View.Level1)
	assert.Equal(t, "zone", cfg.View.Level2)
	assert.Equal(t, "from-env", cfg.Server.SessionSecret)
	assert.Equal(t, ":9200", cfg.Server.Addr)
	// unchanged flags do not override
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadSecureCookie(t *testing.T) {
	path := writeConfig(t, `
server:
  secure_cookie: true
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.True(t, cfg.Server.SecureCookie)

	t.Chdir(t.TempDir())
	t.Setenv("DRILLDOWN_SERVER_SECURE_COOKIE", "true")
	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.True(t, cfg.Server.SecureCookie)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "server.addr", FlagKey("addr"))
	assert.Equal(t, "source.has_header", FlagKey("source-has-header"))
	assert.Equal(t, "view.level3", FlagKey("view-level3"))
	assert.Equal(t, "", FlagKey("config"))
	assert.Equal(t, "", FlagKey("output-format"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		wantErr bool
	}{
		{"demo", Source{Type: SourceDemo}, false},
		{"unknown", Source{Type: "parquet"}, true},
		{"csv without path", Source{Type: SourceCSV, Delimiter: ","}, true},
		{"csv", Source{Type: SourceCSV, Path: "a.csv", Delimiter: ","}, false},
		{"csv bad delimiter", Source{Type: SourceCSV, Path: "a.csv", Delimiter: ";;"}, true},
		{"tab delimiter", Source{Type: SourceCSV, Path: "a.tsv", Delimiter: "\t"}, false},
		{"xlsx", Source{Type: SourceXLSX, Path: "a.xlsx"}, false},
		{"sqlite path", Source{Type: SourceSQLite, Path: "a.db", Query: "SELECT 1"}, false},
		{"sqlite without query", Source{Type: SourceSQLite, Path: "a.db"}, true},
		{"postgres without dsn", Source{Type: SourcePostgres, Path: "x", Query: "SELECT 1"}, true},
		{"postgres", Source{Type: SourcePostgres, DSN: "postgres://localhost/db", Query: "SELECT 1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Config{Source: tt.source}).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConnString(t *testing.T) {
	assert.Equal(t, "a.db", Source{Path: "a.db"}.ConnString())
	assert.Equal(t, "file:x", Source{Path: "a.db", DSN: "file:x"}.ConnString())
}
