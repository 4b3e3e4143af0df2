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
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/google/drilldown/core/columns"
	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/tables"
)

// XlsxLoader implements Loader for Excel workbooks. It reads one sheet, the
// first one unless src.Sheet names another. Cells keep their displayed text.
type XlsxLoader struct{}

// NewXlsxLoader creates a new XLSX loader.
func NewXlsxLoader() *XlsxLoader {
	return &XlsxLoader{}
}

// SourceType returns "xlsx".
func (l *XlsxLoader) SourceType() string {
	return config.SourceXLSX
}

// Load reads the workbook named by src.Path.
func (l *XlsxLoader) Load(_ context.Context, src config.Source) (*tables.Snapshot, error) {
	if src.Path == "" {
		return nil, errors.New("path is required")
	}
	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()
	return readSheet(f, src.Sheet, src.HasHeader)
}

// ReadXLSX reads one sheet of a workbook from r.
func ReadXLSX(r io.Reader, sheet string, hasHeader bool) (*tables.Snapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer f.Close()
	return readSheet(f, sheet, hasHeader)
}

func readSheet(f *excelize.File, sheet string, hasHeader bool) (*tables.Snapshot, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return tables.NewSnapshot(nil, nil), nil
		}
		sheet = sheets[0]
	}

	it, err := f.Rows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheet)
	}
	defer it.Close()

	var records [][]string
	for it.Next() {
		vals, err := it.Columns()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read sheet %q", sheet)
		}
		records = append(records, vals)
	}
	if len(records) == 0 {
		return tables.NewSnapshot(nil, nil), nil
	}

	var names []string
	data := records
	if hasHeader {
		names = records[0]
		data = records[1:]
	}
	width := len(names)
	for _, rec := range data {
		if len(rec) > width {
			width = len(rec)
		}
	}
	if hasHeader {
		// unnamed trailing columns
		for i := len(names); i < width; i++ {
			names = append(names, "col_"+strconv.Itoa(i))
		}
	} else {
		names = generatedNames(width)
	}

	cols := make([]*columns.ColumnSchema, len(names))
	for i, name := range names {
		cols[i] = columns.NewColumnSchema(name, "", false)
	}
	return tables.NewSnapshot(cols, textRows(len(cols), data)), nil
}
