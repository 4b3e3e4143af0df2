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
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/tables"
)

// yamlDocument is the on-disk layout shared by the YAML and JSON loaders:
//
//	columns:
//	  - {name: city, display_name: City}
//	  - {name: ftu, measure: true}
//	rows:
//	  - [Pune, 120]
//	  - {city: Mumbai, ftu: 200}
type yamlDocument struct {
	Columns []DocumentColumn `yaml:"columns"`
	Rows    []any            `yaml:"rows"`
}

// YamlLoader implements Loader for YAML snapshot documents.
type YamlLoader struct{}

// NewYamlLoader creates a new YAML loader.
func NewYamlLoader() *YamlLoader {
	return &YamlLoader{}
}

// SourceType returns "yaml".
func (l *YamlLoader) SourceType() string {
	return config.SourceYAML
}

// Load reads the document named by src.Path.
func (l *YamlLoader) Load(_ context.Context, src config.Source) (*tables.Snapshot, error) {
	if src.Path == "" {
		return nil, errors.New("path is required")
	}
	file, err := os.Open(src.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open YAML file")
	}
	defer file.Close()
	return ReadYAML(file)
}

// ReadYAML parses a YAML snapshot document. An empty document is an empty
// snapshot.
func ReadYAML(r io.Reader) (*tables.Snapshot, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}
	return buildDocumentSnapshot(doc.Columns, doc.Rows)
}

// UnmarshalYAML accepts a bare column name as shorthand for {name: ...}.
func (c *DocumentColumn) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*c = DocumentColumn{Name: n.Value}
		return nil
	}
	type plain DocumentColumn
	return n.Decode((*plain)(c))
}
