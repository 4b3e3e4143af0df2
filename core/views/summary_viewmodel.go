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

// Package views turns a session's state into models the renderers consume.
package views

import (
	"strconv"

	"github.com/google/safehtml"

	"github.com/google/drilldown/core/aggregates"
	"github.com/google/drilldown/core/query"
	"github.com/google/drilldown/core/selection"
	"github.com/google/drilldown/core/session"
)

// Arrow glyphs shown next to expandable groups.
const (
	ArrowClosed = "˅"
	ArrowOpen   = "˄"
)

// Placeholder is the label of the empty dropdown option.
const Placeholder = "Select…"

// SummaryViewModel contains everything the summary page shows.
type SummaryViewModel struct {
	Title       string
	Measure     string // Display name of the measure column
	HasSnapshot bool
	Levels      []LevelSelect
	Search      string // Normalized search text
	GrandTotal  string
	Rows        []RowViewModel // Groups in display order, children after their parent
	ActionURL   safehtml.URL   // Form target for dropdowns, search and clear
	LiveReload  bool           // Whether the page subscribes to reload events
}

// LevelSelect is one level's dropdown.
type LevelSelect struct {
	Level    int
	Label    string
	Selected string
	Options  []Option
}

// Option is one dropdown entry.
type Option struct {
	Value    string
	Selected bool
}

// RowViewModel is one rendered group.
type RowViewModel struct {
	Level      int
	Key        string
	Total      string  // Compact total, e.g. "1.5M"
	RawTotal   float64 // Unformatted total
	Percent    string  // Share of the grand total, level 1 only
	Bar        float64 // Bar fill in percent, level 1 only
	ShowBar    bool
	Expandable bool
	Expanded   bool
	Arrow      string       // Glyph for the toggle, empty when not expandable
	ToggleURL  safehtml.URL // Link toggling the group, set when expandable
}

// Options configures BuildSummaryViewModel.
type Options struct {
	Title      string
	ActionPath string // defaults to "/action"
	LiveReload bool
}

// BuildSummaryViewModel builds the page model for s.
func BuildSummaryViewModel(s *session.Session, opts Options) SummaryViewModel {
	actionPath := opts.ActionPath
	if actionPath == "" {
		actionPath = "/action"
	}
	res := s.Result()
	vm := SummaryViewModel{
		Title:       opts.Title,
		Measure:     s.MeasureName(),
		HasSnapshot: s.HasSnapshot(),
		Search:      s.SearchText(),
		GrandTotal:  aggregates.FormatCompact(res.GrandTotal),
		ActionURL:   safehtml.URLSanitized(actionPath),
		LiveReload:  opts.LiveReload,
	}

	assigned := s.Selection()
	for _, l := range selection.AllLevels() {
		ls := LevelSelect{
			Level:    int(l),
			Label:    "Level " + strconv.Itoa(int(l)),
			Selected: assigned.Dimension(l),
		}
		for _, d := range s.AvailableFor(l) {
			ls.Options = append(ls.Options, Option{Value: d, Selected: d == ls.Selected})
		}
		vm.Levels = append(vm.Levels, ls)
	}

	res.Walk(func(n *aggregates.Node) bool {
		vm.Rows = append(vm.Rows, buildRow(n, actionPath))
		return true
	})
	return vm
}

func buildRow(n *aggregates.Node, actionPath string) RowViewModel {
	row := RowViewModel{
		Level:      int(n.Level),
		Key:        n.Key,
		Total:      aggregates.FormatCompact(n.Total),
		RawTotal:   n.Total,
		Expandable: n.Expandable,
		Expanded:   n.Expanded,
	}
	if n.Level == selection.Level1 {
		row.Percent = aggregates.FormatPercent(n.Percent)
		row.Bar = n.Percent
		row.ShowBar = true
	}
	if !n.Expandable {
		return row
	}
	row.Arrow = ArrowClosed
	if n.Expanded {
		row.Arrow = ArrowOpen
	}
	switch n.Level {
	case selection.Level1:
		row.ToggleURL = query.Toggle1(n.Key).ToSafeURL(actionPath)
	case selection.Level2:
		row.ToggleURL = query.Toggle2(n.Path).ToSafeURL(actionPath)
	}
	return row
}
