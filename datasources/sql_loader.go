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

	// Drivers for the SQL source types.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite"

	"github.com/pkg/errors"

	"github.com/google/drilldown/core/columns"
	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/tables"
)

// SqlLoader implements Loader for database queries. The query's result set
// becomes the snapshot: its columns in select order, its rows as scanned.
type SqlLoader struct {
	sourceType string
	driver     string
}

// NewSqliteLoader reads from a SQLite database file.
func NewSqliteLoader() *SqlLoader {
	return &SqlLoader{sourceType: config.SourceSQLite, driver: "sqlite"}
}

// NewDuckdbLoader reads from a DuckDB database; an empty path is in-memory.
func NewDuckdbLoader() *SqlLoader {
	return &SqlLoader{sourceType: config.SourceDuckDB, driver: "duckdb"}
}

// NewPostgresLoader reads from PostgreSQL through pgx.
func NewPostgresLoader() *SqlLoader {
	return &SqlLoader{sourceType: config.SourcePostgres, driver: "pgx"}
}

// SourceType returns the configured source type.
func (l *SqlLoader) SourceType() string {
	return l.sourceType
}

// Load opens the database, runs src.Query and closes the connection.
func (l *SqlLoader) Load(ctx context.Context, src config.Source) (*tables.Snapshot, error) {
	if src.Query == "" {
		return nil, errors.New("query is required")
	}
	db, err := sql.Open(l.driver, src.ConnString())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", l.sourceType)
	}
	defer func() { _ = db.Close() }()
	return LoadFromDB(ctx, db, src.Query)
}

// LoadFromDB runs query on db and returns its result set as a snapshot.
func LoadFromDB(ctx context.Context, db *sql.DB, query string, args ...any) (*tables.Snapshot, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read columns")
	}
	cols := make([]*columns.ColumnSchema, len(names))
	for i, name := range names {
		cols[i] = columns.NewColumnSchema(name, "", false)
	}

	var data []tables.Row
	for rows.Next() {
		row := make(tables.Row, len(names))
		ptrs := make([]any, len(names))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		for i, v := range row {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read rows")
	}
	return tables.NewSnapshot(cols, data), nil
}
