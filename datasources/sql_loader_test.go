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

package datasources

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/tables"
)

func TestLoadFromDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT city, area, ftu FROM stores").
		WillReturnRows(sqlmock.NewRows([]string{"city", "area", "ftu"}).
			AddRow("Pune", []byte("Kothrud"), int64(120)).
			AddRow("Mumbai", nil, 200.5))

	snap, err := LoadFromDB(context.Background(), db, "SELECT city, area, ftu FROM stores")
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "area", "ftu"}, columnNames(snap))
	require.Equal(t, 2, snap.Length())
	assert.Equal(t, tables.Row{"Pune", "Kothrud", int64(120)}, snap.Rows()[0])
	assert.Equal(t, tables.Row{"Mumbai", nil, 200.5}, snap.Rows()[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFromDBErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
	}{
		{
			name: "query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)
			},
		},
		{
			name: "row error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(
					sqlmock.NewRows([]string{"city"}).AddRow("Pune").RowError(0, assert.AnError))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tt.setup(mock)

			_, err = LoadFromDB(context.Background(), db, "SELECT city FROM stores")
			assert.Error(t, err)
		})
	}
}

func TestSqliteLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ftu.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE stores (city TEXT, area TEXT, ftu INTEGER);
		INSERT INTO stores VALUES ('Pune', 'Kothrud', 120), ('Pune', 'Wakad', 80), ('Mumbai', NULL, 200);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	snap, err := NewSqliteLoader().Load(context.Background(), config.Source{
		Type:  config.SourceSQLite,
		Path:  path,
		Query: "SELECT city, area, ftu FROM stores ORDER BY rowid",
	})
	require.NoError(t, err)
	require.Equal(t, 3, snap.Length())
	assert.Equal(t, tables.Row{"Pune", "Kothrud", int64(120)}, snap.Rows()[0])
	assert.Equal(t, tables.Row{"Mumbai", nil, int64(200)}, snap.Rows()[2])

	_, err = NewSqliteLoader().Load(context.Background(), config.Source{Type: config.SourceSQLite, Path: path})
	assert.Error(t, err)
}

func TestSqlLoaderSourceTypes(t *testing.T) {
	assert.Equal(t, config.SourceSQLite, NewSqliteLoader().SourceType())
	assert.Equal(t, config.SourceDuckDB, NewDuckdbLoader().SourceType())
	assert.Equal(t, config.SourcePostgres, NewPostgresLoader().SourceType())
}
