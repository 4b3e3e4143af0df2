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

// Package tables holds immutable table snapshots as delivered by a data source.
package tables

import (
	"github.com/google/drilldown/core/columns"
)

// Row is one record, aligned to the column schema of its snapshot.
type Row []any

// Snapshot is an ordered column schema plus an ordered row sequence.
// A snapshot is never mutated once built; updates replace it wholesale.
type Snapshot struct {
	columns []*columns.ColumnSchema
	rows    []Row
}

// NewSnapshot creates a snapshot from a schema and its rows.
func NewSnapshot(cols []*columns.ColumnSchema, rows []Row) *Snapshot {
	return &Snapshot{
		columns: cols,
		rows:    rows,
	}
}

// Columns returns the column schema in order.
func (s *Snapshot) Columns() []*columns.ColumnSchema {
	if s == nil {
		return nil
	}
	return s.columns
}

// Rows returns the rows in source order.
func (s *Snapshot) Rows() []Row {
	if s == nil {
		return nil
	}
	return s.rows
}

// Length returns the number of rows.
func (s *Snapshot) Length() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// WithMeasure returns a snapshot sharing the same rows whose schema flags the
// column named name (by name or display name) as the measure. Other measure flags
// are cleared. When no column matches, the snapshot is returned unchanged.
func (s *Snapshot) WithMeasure(name string) *Snapshot {
	if s == nil || name == "" {
		return s
	}
	found := -1
	for i, c := range s.columns {
		if c.Name() == name || c.DisplayName() == name {
			found = i
			break
		}
	}
	if found < 0 {
		return s
	}
	cols := make([]*columns.ColumnSchema, len(s.columns))
	for i, c := range s.columns {
		cols[i] = c.WithMeasure(i == found)
	}
	return &Snapshot{columns: cols, rows: s.rows}
}

// Cell returns the value at column i of the row, or nil when the row is short.
func (r Row) Cell(i int) any {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}
