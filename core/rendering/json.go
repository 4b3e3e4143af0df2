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
	"encoding/json"
	"io"

	"github.com/google/drilldown/core/aggregates"
	"github.com/google/drilldown/core/selection"
	"github.com/google/drilldown/core/session"
)

// SummaryJSON is the wire form of a session's current summary.
type SummaryJSON struct {
	Measure    string                   `json:"measure"`
	Levels     [selection.Levels]string `json:"levels"`
	Search     string                   `json:"search"`
	GrandTotal float64                  `json:"grand_total"`
	Rows       int                      `json:"rows"`
	Available  map[int][]string         `json:"available"`
	Open       OpenJSON                 `json:"open"`
	Groups     []NodeJSON               `json:"groups"`
}

// OpenJSON lists the open groups. Level-2 entries use the "||"-joined form.
type OpenJSON struct {
	Level1 []string `json:"level1"`
	Level2 []string `json:"level2"`
}

// NodeJSON is one group of the tree.
type NodeJSON struct {
	Key        string     `json:"key"`
	Level      int        `json:"level"`
	Total      float64    `json:"total"`
	Display    string     `json:"display"`
	Count      int64      `json:"count"`
	Min        float64    `json:"min"`
	Max        float64    `json:"max"`
	Avg        float64    `json:"avg"`
	Percent    *float64   `json:"percent,omitempty"`
	Expandable bool       `json:"expandable"`
	Expanded   bool       `json:"expanded"`
	Children   []NodeJSON `json:"children,omitempty"`
}

// NewSummaryJSON captures the session's state and result.
func NewSummaryJSON(s *session.Session) SummaryJSON {
	res := s.Result()
	out := SummaryJSON{
		Measure:    s.MeasureName(),
		Levels:     s.Selection(),
		Search:     s.SearchText(),
		GrandTotal: res.GrandTotal,
		Rows:       res.Rows,
		Available:  make(map[int][]string, selection.Levels),
		Groups:     nodesJSON(res.Groups),
	}
	for _, l := range selection.AllLevels() {
		out.Available[int(l)] = s.AvailableFor(l)
	}
	open := s.Expansion()
	out.Open.Level1 = open.OpenLevel1()
	paths := open.OpenLevel2()
	out.Open.Level2 = make([]string, 0, len(paths))
	for _, p := range paths {
		out.Open.Level2 = append(out.Open.Level2, p.String())
	}
	return out
}

func nodesJSON(nodes []*aggregates.Node) []NodeJSON {
	out := make([]NodeJSON, 0, len(nodes))
	for _, n := range nodes {
		nj := NodeJSON{
			Key:        n.Key,
			Level:      int(n.Level),
			Total:      n.Total,
			Display:    aggregates.FormatCompact(n.Total),
			Count:      n.Count,
			Min:        n.Min,
			Max:        n.Max,
			Avg:        n.Avg,
			Expandable: n.Expandable,
			Expanded:   n.Expanded,
		}
		if n.Level == selection.Level1 {
			pct := n.Percent
			nj.Percent = &pct
		}
		if len(n.Children) > 0 {
			nj.Children = nodesJSON(n.Children)
		}
		out = append(out, nj)
	}
	return out
}

// RenderJSON writes the session's summary as indented JSON.
func RenderJSON(w io.Writer, s *session.Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewSummaryJSON(s))
}
