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

package rendering

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/drilldown/core/columns"
	"github.com/google/drilldown/core/expansion"
	"github.com/google/drilldown/core/selection"
	"github.com/google/drilldown/core/session"
	"github.com/google/drilldown/core/tables"
	"github.com/google/drilldown/core/views"
)

func newSession() *session.Session {
	s := session.New(session.WithAssignment(selection.Assignment{"City", "Area"}))
	s.Update(tables.NewSnapshot([]*columns.ColumnSchema{
		columns.NewColumnSchema("city", "City", false),
		columns.NewColumnSchema("area", "Area", false),
		columns.NewColumnSchema("ftu", "FTU", true),
	}, []tables.Row{
		{"Pune", "Kothrud", 1500},
		{"Pune", "<b>Wakad</b>", 500},
		{"Mumbai", "Andheri", 2000},
	}))
	return s
}

func TestRenderHTML(t *testing.T) {
	r, err := NewSummaryRenderer()
	require.NoError(t, err)

	s := newSession()
	s.ToggleLevel1("Pune")
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, views.BuildSummaryViewModel(s, views.Options{Title: "FTU by city", LiveReload: true})))

	body := buf.String()
	assert.Contains(t, body, "<title>FTU by city</title>")
	assert.Contains(t, body, "Clear Filter")
	assert.Contains(t, body, "Select…")
	assert.Contains(t, body, `<option value="City" selected>City</option>`)
	assert.Contains(t, body, "4.0K")
	assert.Contains(t, body, "1.5K")
	assert.Contains(t, body, "&lt;b&gt;Wakad&lt;/b&gt;")
	assert.NotContains(t, body, "<b>Wakad</b>")
	assert.Contains(t, body, "op=toggle1")
	assert.Contains(t, body, "data-init")
	assert.Contains(t, body, "˄")
}

func TestRenderHTMLStates(t *testing.T) {
	r, err := NewSummaryRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, views.BuildSummaryViewModel(session.New(), views.Options{})))
	assert.Contains(t, buf.String(), "Waiting for data.")
	assert.NotContains(t, buf.String(), "data-init")

	s := newSession()
	s.ClearAssignment()
	buf.Reset()
	require.NoError(t, r.Render(&buf, views.BuildSummaryViewModel(s, views.Options{})))
	assert.Contains(t, buf.String(), "Assign a dimension to level 1")
}

func TestRenderTable(t *testing.T) {
	s := newSession()
	s.ToggleLevel1("Pune")
	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, views.BuildSummaryViewModel(s, views.Options{Title: "FTU"})))

	out := buf.String()
	// headers are upper-cased by the table style
	assert.Contains(t, out, "CITY › AREA")
	assert.Contains(t, out, "Pune")
	assert.Contains(t, out, "  Kothrud")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "4.0K")

	lines := strings.Split(out, "\n")
	var puneLine, mumbaiLine int
	for i, l := range lines {
		if strings.Contains(l, "Pune") {
			puneLine = i
		}
		if strings.Contains(l, "Mumbai") {
			mumbaiLine = i
		}
	}
	assert.Less(t, puneLine, mumbaiLine)
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, views.BuildSummaryViewModel(session.New(), views.Options{})))
	assert.Equal(t, "(no data)\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	s := newSession()
	s.ToggleLevel1("Mumbai")
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, s))

	var got SummaryJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "FTU", got.Measure)
	assert.Equal(t, [3]string{"City", "Area", ""}, got.Levels)
	assert.Equal(t, 4000.0, got.GrandTotal)
	assert.Equal(t, 3, got.Rows)
	assert.Equal(t, []string{"Area"}, got.Available[2])
	require.Len(t, got.Groups, 2)

	pune, mumbai := got.Groups[0], got.Groups[1]
	require.NotNil(t, pune.Percent)
	assert.InDelta(t, 50.0, *pune.Percent, 1e-9)
	assert.Equal(t, "2.0K", pune.Display)
	assert.Equal(t, 500.0, pune.Min)
	assert.Equal(t, 1500.0, pune.Max)
	assert.Equal(t, 1000.0, pune.Avg)
	assert.Empty(t, pune.Children)
	require.Len(t, mumbai.Children, 1)
	assert.Nil(t, mumbai.Children[0].Percent)
	assert.Equal(t, "Andheri", mumbai.Children[0].Key)
	assert.Equal(t, 2000.0, mumbai.Children[0].Avg)

	assert.Equal(t, []string{"Mumbai"}, got.Open.Level1)
	assert.Empty(t, got.Open.Level2)
}

func TestRenderJSONListsOpenGroups(t *testing.T) {
	s := newSession()
	s.ToggleLevel1("Pune")
	s.ToggleLevel2(expansion.PathKey{Level1: "Pune", Level2: "Kothrud"})
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, s))

	var got SummaryJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"Pune"}, got.Open.Level1)
	assert.Equal(t, []string{"Pune||Kothrud"}, got.Open.Level2)
}
