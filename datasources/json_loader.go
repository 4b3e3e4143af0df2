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
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/tables"
)

// JsonLoader implements Loader for JSON snapshot documents. The layout is the
// same as the YAML loader's; null cells stay missing.
type JsonLoader struct{}

// NewJsonLoader creates a new JSON loader.
func NewJsonLoader() *JsonLoader {
	return &JsonLoader{}
}

// SourceType returns "json".
func (l *JsonLoader) SourceType() string {
	return config.SourceJSON
}

// Load reads the document named by src.Path.
func (l *JsonLoader) Load(_ context.Context, src config.Source) (*tables.Snapshot, error) {
	if src.Path == "" {
		return nil, errors.New("path is required")
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read JSON file")
	}
	return ParseJSON(data)
}

// ParseJSON parses a JSON snapshot document.
func ParseJSON(data []byte) (*tables.Snapshot, error) {
	doc := &structpb.Struct{}
	if err := protojson.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON")
	}
	fields := doc.GetFields()

	var cols []DocumentColumn
	for i, v := range fields["columns"].GetListValue().GetValues() {
		switch c := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			cols = append(cols, DocumentColumn{Name: c.StringValue})
		case *structpb.Value_StructValue:
			f := c.StructValue.GetFields()
			cols = append(cols, DocumentColumn{
				Name:        f["name"].GetStringValue(),
				DisplayName: f["display_name"].GetStringValue(),
				Measure:     f["measure"].GetBoolValue(),
			})
		default:
			return nil, errors.Errorf("column %d: expected a name or an object", i)
		}
	}

	values := fields["rows"].GetListValue().GetValues()
	rows := make([]any, len(values))
	for i, v := range values {
		rows[i] = v.AsInterface()
	}
	return buildDocumentSnapshot(cols, rows)
}
