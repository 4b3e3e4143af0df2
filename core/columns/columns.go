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

// Package columns describes the column schema of a table snapshot and derives
// the catalog of dimensions a user can assign to drill-down levels.
package columns

// ColumnSchema describes one column of a snapshot.
type ColumnSchema struct {
	name        string // must not contain any of the following characters: & = : ,
	displayName string
	// measure marks the column summed by the aggregation engine.
	measure bool
}

// NewColumnSchema creates a new ColumnSchema with the given name and display name.
// An empty display name defaults to the name.
func NewColumnSchema(name, displayName string, measure bool) *ColumnSchema {
	if displayName == "" {
		displayName = name
	}
	return &ColumnSchema{
		name:        name,
		displayName: displayName,
		measure:     measure,
	}
}

func (cs *ColumnSchema) Name() string {
	return cs.name
}

func (cs *ColumnSchema) DisplayName() string {
	return cs.displayName
}

// IsMeasure reports whether the column carries the measure role.
func (cs *ColumnSchema) IsMeasure() bool {
	return cs.measure
}

// WithMeasure returns a copy of the schema with the measure role set to m.
func (cs *ColumnSchema) WithMeasure(m bool) *ColumnSchema {
	c := *cs
	c.measure = m
	return &c
}

// MeasureIndex returns the index of the first column flagged as the measure.
// When no column is flagged it falls back to the last column, and it returns -1
// for an empty schema. The second result reports whether the fallback was used.
func MeasureIndex(cols []*ColumnSchema) (int, bool) {
	for i, c := range cols {
		if c != nil && c.measure {
			return i, false
		}
	}
	if len(cols) == 0 {
		return -1, false
	}
	return len(cols) - 1, true
}

// DeriveDimensions returns the display names of every column except the measure
// column, in schema order.
func DeriveDimensions(cols []*ColumnSchema) []string {
	measure, _ := MeasureIndex(cols)
	dims := make([]string, 0, len(cols))
	for i, c := range cols {
		if i == measure || c == nil {
			continue
		}
		dims = append(dims, c.displayName)
	}
	return dims
}

// IndexOf returns the index of the first column with the given display name, or -1.
func IndexOf(cols []*ColumnSchema, displayName string) int {
	if displayName == "" {
		return -1
	}
	for i, c := range cols {
		if c != nil && c.displayName == displayName {
			return i
		}
	}
	return -1
}
