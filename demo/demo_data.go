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

// Package demo ships a small first-time-user dataset used when no source is
// configured.
package demo

import (
	_ "embed"

	"github.com/google/drilldown/core/selection"
)

//go:embed data/ftu.yaml
var ftuYAML string

// SnapshotYAML returns the demo dataset as a YAML snapshot document: first-time
// users per store, by city, area, zone and store type.
func SnapshotYAML() string {
	return ftuYAML
}

// DefaultAssignment is the level layout the demo opens with.
func DefaultAssignment() selection.Assignment {
	return selection.Assignment{"City", "Area", "Zone"}
}
