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
	"strings"

	"github.com/pkg/errors"

	"github.com/google/drilldown/core/config"
	"github.com/google/drilldown/core/tables"
	"github.com/google/drilldown/demo"
)

// DemoLoader implements Loader for the embedded demo dataset.
type DemoLoader struct{}

// NewDemoLoader creates a new demo loader.
func NewDemoLoader() *DemoLoader {
	return &DemoLoader{}
}

// SourceType returns "demo".
func (l *DemoLoader) SourceType() string {
	return config.SourceDemo
}

// Load parses the embedded dataset. The source fields are ignored.
func (l *DemoLoader) Load(_ context.Context, _ config.Source) (*tables.Snapshot, error) {
	snap, err := ReadYAML(strings.NewReader(demo.SnapshotYAML()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load demo data")
	}
	return snap, nil
}
