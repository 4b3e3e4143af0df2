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
	"encoding/csv"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/google/drilldown/core/columns"
	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/tables"
)

// CsvLoader implements Loader for delimited text files. Cells keep their text;
// the measure is parsed when aggregating.
//
// Source fields used:
//   - path: the CSV file
//   - has_header: whether the first record names the columns (otherwise col_0, col_1, ...)
//   - delimiter: field delimiter (default ",")
type CsvLoader struct{}

// NewCsvLoader creates a new CSV loader.
func NewCsvLoader() *CsvLoader {
	return &CsvLoader{}
}

// SourceType returns "csv".
func (l *CsvLoader) SourceType() string {
	return config.SourceCSV
}

// Load reads the file named by src.Path.
func (l *CsvLoader) Load(_ context.Context, src config.Source) (*tables.Snapshot, error) {
	if src.Path == "" {
		return nil, errors.New("path is required")
	}
	file, err := os.Open(src.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	delimiter := ','
	if src.Delimiter != "" {
		delimiter, _ = utf8.DecodeRuneInString(src.Delimiter)
	}
	return ReadCSV(file, delimiter, src.HasHeader)
}

// ReadCSV parses CSV data into a snapshot. An empty input is an empty
// snapshot.
func ReadCSV(r io.Reader, delimiter rune, hasHeader bool) (*tables.Snapshot, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV")
	}
	if len(records) == 0 {
		return tables.NewSnapshot(nil, nil), nil
	}

	var names []string
	data := records
	if hasHeader {
		names = records[0]
		data = records[1:]
	} else {
		names = generatedNames(len(records[0]))
	}

	cols := make([]*columns.ColumnSchema, len(names))
	for i, name := range names {
		cols[i] = columns.NewColumnSchema(name, "", false)
	}
	return tables.NewSnapshot(cols, textRows(len(cols), data)), nil
}
