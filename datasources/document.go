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
	"github.com/pkg/errors"

	"github.com/google/drilldown/core/columns"
	"github.com/google/drilldown/core/tables"
)

// DocumentColumn describes one column of a YAML or JSON snapshot document.
type DocumentColumn struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Measure     bool   `yaml:"measure"`
}

// buildDocumentSnapshot assembles a snapshot from decoded document rows. A row
// is either a list of cells in column order or a mapping from column name to
// cell. Missing cells are nil.
func buildDocumentSnapshot(docCols []DocumentColumn, docRows []any) (*tables.Snapshot, error) {
	cols := make([]*columns.ColumnSchema, len(docCols))
	index := make(map[string]int, len(docCols))
	for i, c := range docCols {
		if c.Name == "" {
			return nil, errors.Errorf("column %d has no name", i)
		}
		cols[i] = columns.NewColumnSchema(c.Name, c.DisplayName, c.Measure)
		if _, dup := index[c.Name]; !dup {
			index[c.Name] = i
		}
	}

	rows := make([]tables.Row, len(docRows))
	for r, raw := range docRows {
		row := make(tables.Row, len(cols))
		switch v := raw.(type) {
		case []any:
			copy(row, v)
		case map[string]any:
			for name, cell := range v {
				if i, ok := index[name]; ok {
					row[i] = cell
				}
			}
		case nil:
		default:
			return nil, errors.Errorf("row %d: expected a list or a mapping, got %T", r, raw)
		}
		rows[r] = row
	}
	return tables.NewSnapshot(cols, rows), nil
}
