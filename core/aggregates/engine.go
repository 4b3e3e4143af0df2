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

package aggregates

import (
	"github.com/google/drilldown/core/columns"
	"github.com/google/drilldown/core/expansion"
	"github.com/google/drilldown/core/orderedmap"
	"github.com/google/drilldown/core/search"
	"github.com/google/drilldown/core/selection"
	"github.com/google/drilldown/core/tables"
)

// Expander reports which groups are open. *expansion.State implements it.
type Expander interface {
	IsOpenLevel1(key string) bool
	IsOpenLevel2(path expansion.PathKey) bool
}

// Node is one group at one level of the summary tree.
// Nodes are built fresh by every Aggregate call and never modified afterwards.
type Node struct {
	Key   string
	Level selection.Level
	Total float64
	Count int64 // rows aggregated into the node
	// Min, Max and Avg describe the measure values of the node's rows.
	Min, Max, Avg float64
	// Percent is the share of the grand total; only set at level 1.
	Percent float64
	// Path is the level-1/level-2 key pair the node sits under. For a level-2
	// node it is the node's own expansion key.
	Path expansion.PathKey
	// Expandable is true when the next level has a dimension assigned.
	Expandable bool
	// Expanded is true when the node is expandable and open; only then are
	// Children populated.
	Expanded bool
	Children []*Node
}

// Result is the output of one aggregation pass.
type Result struct {
	GrandTotal float64
	Groups     []*Node
	// Rows is the number of rows that passed the search filter.
	Rows int
}

// Walk visits every node depth-first in display order. Returning false from
// fn skips the node's children.
func (r *Result) Walk(fn func(n *Node) bool) {
	if r == nil {
		return
	}
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if fn(n) {
				walk(n.Children)
			}
		}
	}
	walk(r.Groups)
}

// Flatten returns every node in display order.
func (r *Result) Flatten() []*Node {
	var nodes []*Node
	r.Walk(func(n *Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// LevelIndices holds the column index backing each level, -1 when the level has
// no usable dimension.
type LevelIndices [selection.Levels]int

// Index returns the column index for level l.
func (li LevelIndices) Index(l selection.Level) int {
	if !l.Valid() {
		return -1
	}
	return li[l-1]
}

// ResolveLevels maps an assignment onto column indices by display name. A
// dimension missing from the schema resolves like an unassigned level.
func ResolveLevels(cols []*columns.ColumnSchema, a selection.Assignment) LevelIndices {
	var li LevelIndices
	for _, l := range selection.AllLevels() {
		li[l-1] = columns.IndexOf(cols, a.Dimension(l))
	}
	return li
}

type group struct {
	state *NumericAggState
	rows  []int
}

func newGroup() *group {
	return &group{state: NewNumericAggState()}
}

// Aggregate groups the snapshot's rows by the assigned levels and sums the
// measure column. Only rows whose level-1 key contains the filter text take
// part, in both the groups and the grand total. Groups appear in the order
// their key is first seen. Level-2 groups are built only for open level-1
// groups and level-3 groups only for open level-2 paths.
func Aggregate(snap *tables.Snapshot, measureIndex int, a selection.Assignment, filter search.Filter, open Expander) *Result {
	result := &Result{Groups: []*Node{}}
	li := ResolveLevels(snap.Columns(), a)
	idx1 := li.Index(selection.Level1)
	if idx1 < 0 {
		return result
	}
	if open == nil {
		open = expansion.New()
	}

	rows := snap.Rows()
	values := make([]float64, len(rows))
	level1 := orderedmap.New[string, *group]()
	for i, r := range rows {
		k1 := tables.CellString(r.Cell(idx1))
		if !filter.Matches(k1) {
			continue
		}
		values[i] = tables.CellNumber(r.Cell(measureIndex))
		g := level1.GetOrInsert(k1, newGroup)
		g.state.Add(values[i])
		g.rows = append(g.rows, i)
	}

	total := NewNumericAggState()
	level1.Range(func(_ string, g1 *group) bool {
		total.Combine(g1.state)
		return true
	})
	result.GrandTotal = total.Sum
	result.Rows = int(total.Count)

	idx2 := li.Index(selection.Level2)
	idx3 := li.Index(selection.Level3)
	level1.Range(func(k1 string, g1 *group) bool {
		n1 := &Node{
			Key:        k1,
			Level:      selection.Level1,
			Total:      g1.state.Sum,
			Count:      g1.state.Count,
			Min:        g1.state.Min,
			Max:        g1.state.Max,
			Avg:        g1.state.Avg(),
			Path:       expansion.PathKey{Level1: k1},
			Expandable: idx2 >= 0,
		}
		if result.GrandTotal > 0 {
			n1.Percent = n1.Total / result.GrandTotal * 100
		}
		n1.Expanded = n1.Expandable && open.IsOpenLevel1(k1)
		if n1.Expanded {
			n1.Children = buildLevel2(rows, values, g1.rows, k1, idx2, idx3, open)
		}
		result.Groups = append(result.Groups, n1)
		return true
	})
	return result
}

func buildLevel2(rows []tables.Row, values []float64, indices []int, k1 string, idx2, idx3 int, open Expander) []*Node {
	level2 := groupRows(rows, values, indices, idx2)
	nodes := make([]*Node, 0, level2.Len())
	level2.Range(func(k2 string, g2 *group) bool {
		path := expansion.PathKey{Level1: k1, Level2: k2}
		n2 := &Node{
			Key:        k2,
			Level:      selection.Level2,
			Total:      g2.state.Sum,
			Count:      g2.state.Count,
			Min:        g2.state.Min,
			Max:        g2.state.Max,
			Avg:        g2.state.Avg(),
			Path:       path,
			Expandable: idx3 >= 0,
		}
		n2.Expanded = n2.Expandable && open.IsOpenLevel2(path)
		if n2.Expanded {
			level3 := groupRows(rows, values, g2.rows, idx3)
			n2.Children = make([]*Node, 0, level3.Len())
			level3.Range(func(k3 string, g3 *group) bool {
				n2.Children = append(n2.Children, &Node{
					Key:   k3,
					Level: selection.Level3,
					Total: g3.state.Sum,
					Count: g3.state.Count,
					Min:   g3.state.Min,
					Max:   g3.state.Max,
					Avg:   g3.state.Avg(),
					Path:  path,
				})
				return true
			})
		}
		nodes = append(nodes, n2)
		return true
	})
	return nodes
}

// groupRows groups the given rows by the string form of column idx.
func groupRows(rows []tables.Row, values []float64, indices []int, idx int) *orderedmap.Map[string, *group] {
	groups := orderedmap.New[string, *group]()
	for _, i := range indices {
		g := groups.GetOrInsert(tables.CellString(rows[i].Cell(idx)), newGroup)
		g.state.Add(values[i])
		g.rows = append(g.rows, i)
	}
	return groups
}
