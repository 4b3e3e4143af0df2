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

// Package datasources loads summary snapshots from files and databases.
// Every source produces a tables.Snapshot: an ordered schema plus rows of
// loosely typed cells. Which column is the measure is decided by the source
// configuration, not by the loader.
package datasources

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/tables"
)

// Loader is implemented by every snapshot source.
// Drilldown provides loaders for demo, csv, yaml, json, xlsx and the SQL
// drivers; others can be registered on a Manager.
type Loader interface {
	// SourceType returns the type identifier used in config (e.g. "csv").
	SourceType() string

	// Load reads the source and returns a snapshot.
	Load(ctx context.Context, src config.Source) (*tables.Snapshot, error)
}

// TextCell turns a text field into a cell. The text is kept as written so that
// "007" and "7" stay distinct keys; blank fields are missing cells.
func TextCell(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

// textRows builds snapshot rows from a text grid. Short records are padded
// with missing cells and extra fields are dropped.
func textRows(width int, records [][]string) []tables.Row {
	rows := make([]tables.Row, len(records))
	for r, rec := range records {
		row := make(tables.Row, width)
		for c := 0; c < width && c < len(rec); c++ {
			row[c] = TextCell(rec[c])
		}
		rows[r] = row
	}
	return rows
}

// generatedNames returns col_0, col_1, ... for headerless sources.
func generatedNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "col_" + strconv.Itoa(i)
	}
	return names
}
