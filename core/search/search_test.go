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

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFilterNormalizes(t *testing.T) {
	assert.Equal(t, "pune", NewFilter("  PuNe ").Text())
	assert.Empty(t, NewFilter("   ").Text())
	assert.True(t, NewFilter("   ").Matches("anything"))
	assert.True(t, Filter{}.Matches(""))
}

func TestFilterMatches(t *testing.T) {
	tests := []struct {
		filter string
		key    string
		want   bool
	}{
		{"", "anything", true},
		{"", "", true},
		{"pun", "Pune", true},
		{"UNE", "Pune", true},
		{"mum", "Pune", false},
		{"a", "", false},
		{"ör", "KÖRNER", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewFilter(tt.filter).Matches(tt.key), "%q in %q", tt.filter, tt.key)
	}
}
