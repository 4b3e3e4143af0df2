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

// Package search implements the level-1 text filter of a drill-down summary.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Filter is a lower-cased substring. The zero value matches everything.
type Filter struct {
	text string
}

// NewFilter normalizes raw user input: surrounding whitespace is trimmed and the
// rest is lower-cased.
func NewFilter(raw string) Filter {
	return Filter{text: fold(strings.TrimSpace(raw))}
}

// Text returns the normalized filter text.
func (f Filter) Text() string {
	return f.text
}

// Matches reports whether key contains the filter text, ignoring case.
func (f Filter) Matches(key string) bool {
	if f.text == "" {
		return true
	}
	return strings.Contains(fold(key), f.text)
}

func fold(s string) string {
	if s == "" {
		return s
	}
	return lower.String(s)
}
