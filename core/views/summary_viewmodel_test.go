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

package views

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/drilldown/core/columns"
	"github.com/google/drilldown/core/expansion"
	"github.com/google/drilldown/core/query"
	"github.com/google/drilldown/core/selection"
	"github.com/google/drilldown/core/session"
	"github.com/google/drilldown/core/tables"
)

func newSession() *session.Session {
	s := session.New()
	s.Update(tables.NewSnapshot([]*columns.ColumnSchema{
		columns.NewColumnSchema("city", "City", false),
		columns.NewColumnSchema("area", "Area", false),
		columns.NewColumnSchema("zone", "Zone", false),
		columns.NewColumnSchema("ftu", "FTU", true),
	}, []tables.Row{
		{"Pune", "Kothrud", "West", 1_200_000},
		{"Pune", "Wakad", "West", 300_000},
		{"Mumbai", "Andheri", "North", 1_500_000},
	}))
	return s
}

func TestBuildSummaryViewModelEmpty(t *testing.T) {
	vm := BuildSummaryViewModel(session.New(), Options{Title: "FTU"})
	assert.False(t, vm.HasSnapshot)
	assert.Empty(t, vm.Rows)
	assert.Equal(t, "0", vm.GrandTotal)
	assert.Equal(t, "/action", vm.ActionURL.String())
	assert.False(t, vm.LiveReload)
	require.Len(t, vm.Levels, 3)
	assert.Empty(t, vm.Levels[0].Options)
}

func TestBuildSummaryViewModelDropdowns(t *testing.T) {
	s := newSession()
	s.Assign(selection.Level1, "City")
	vm := BuildSummaryViewModel(s, Options{})

	assert.Equal(t, "FTU", vm.Measure)
	assert.Equal(t, "Level 1", vm.Levels[0].Label)
	assert.Equal(t, "City", vm.Levels[0].Selected)
	assert.Equal(t, []Option{{"City", true}, {"Area", false}, {"Zone", false}}, vm.Levels[0].Options)
	assert.Equal(t, []Option{{"Area", false}, {"Zone", false}}, vm.Levels[1].Options)
}

func TestBuildSummaryViewModelRows(t *testing.T) {
	s := newSession()
	s.Assign(selection.Level1, "City")
	s.Assign(selection.Level2, "Area")
	s.ToggleLevel1("Pune")
	vm := BuildSummaryViewModel(s, Options{ActionPath: "/x", LiveReload: true})

	assert.Equal(t, "3.0M", vm.GrandTotal)
	assert.True(t, vm.LiveReload)
	require.Len(t, vm.Rows, 4)

	pune := vm.Rows[0]
	assert.Equal(t, 1, pune.Level)
	assert.Equal(t, "1.5M", pune.Total)
	assert.Equal(t, "50.0%", pune.Percent)
	assert.True(t, pune.ShowBar)
	assert.Equal(t, ArrowOpen, pune.Arrow)

	u, err := url.Parse(pune.ToggleURL.String())
	require.NoError(t, err)
	assert.Equal(t, "/x", u.Path)
	a, err := query.ParseAction(u.Query())
	require.NoError(t, err)
	assert.Equal(t, query.Toggle1("Pune"), a)

	kothrud := vm.Rows[1]
	assert.Equal(t, 2, kothrud.Level)
	assert.Equal(t, "1.2M", kothrud.Total)
	assert.False(t, kothrud.ShowBar)
	assert.Empty(t, kothrud.Percent)
	// no level 3 assigned
	assert.False(t, kothrud.Expandable)
	assert.Empty(t, kothrud.Arrow)

	assert.Equal(t, "300.0K", vm.Rows[2].Total)
	assert.Equal(t, ArrowClosed, vm.Rows[3].Arrow)
}

func TestBuildSummaryViewModelLevel2Toggle(t *testing.T) {
	s := newSession()
	s.Assign(selection.Level1, "City")
	s.Assign(selection.Level2, "Area")
	s.Assign(selection.Level3, "Zone")
	s.ToggleLevel1("Pune")
	s.ToggleLevel2(expansion.PathKey{Level1: "Pune", Level2: "Wakad"})
	vm := BuildSummaryViewModel(s, Options{})

	var keys []string
	for _, r := range vm.Rows {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"Pune", "Kothrud", "Wakad", "West", "Mumbai"}, keys)

	wakad := vm.Rows[2]
	assert.Equal(t, ArrowOpen, wakad.Arrow)
	u, err := url.Parse(wakad.ToggleURL.String())
	require.NoError(t, err)
	a, err := query.ParseAction(u.Query())
	require.NoError(t, err)
	assert.Equal(t, query.Toggle2(expansion.PathKey{Level1: "Pune", Level2: "Wakad"}), a)

	assert.Equal(t, 3, vm.Rows[3].Level)
	assert.Empty(t, vm.Rows[3].Arrow)
}
