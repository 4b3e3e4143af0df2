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

// Package selection tracks which dimension is assigned to each drill-down level.
package selection

// Levels is the number of nesting levels a summary supports.
const Levels = 3

// Level identifies one nesting depth, 1 being the outermost grouping.
type Level int

const (
	Level1 Level = 1
	Level2 Level = 2
	Level3 Level = 3
)

// Valid reports whether l is one of the three levels.
func (l Level) Valid() bool {
	return l >= Level1 && l <= Level3
}

// AllLevels returns the levels from outermost to innermost.
func AllLevels() []Level {
	return []Level{Level1, Level2, Level3}
}

// Assignment is a read-only copy of the level to dimension mapping.
// An empty string means the level is unassigned.
type Assignment [Levels]string

// Dimension returns the dimension assigned to l, or "" when none is.
func (a Assignment) Dimension(l Level) string {
	if !l.Valid() {
		return ""
	}
	return a[l-1]
}

// IsAssigned reports whether l has a dimension.
func (a Assignment) IsAssigned(l Level) bool {
	return a.Dimension(l) != ""
}

// Selection holds the user's current assignment and the catalog it is drawn from.
// Uniqueness is not enforced by Assign; AvailableFor hides a dimension used at one
// level from every other level's candidates.
type Selection struct {
	assigned   Assignment
	dimensions []string
}

// New creates an empty selection.
func New() *Selection {
	return &Selection{}
}

// SetDimensions replaces the catalog of assignable dimensions.
func (s *Selection) SetDimensions(dims []string) {
	s.dimensions = append([]string(nil), dims...)
}

// Dimensions returns the catalog of assignable dimensions.
func (s *Selection) Dimensions() []string {
	return append([]string(nil), s.dimensions...)
}

// Assign maps a level to a dimension. An empty name unassigns the level and an
// invalid level is ignored.
func (s *Selection) Assign(l Level, name string) {
	if !l.Valid() {
		return
	}
	s.assigned[l-1] = name
}

// Clear unassigns every level.
func (s *Selection) Clear() {
	s.assigned = Assignment{}
}

// Dimension returns the dimension assigned to l.
func (s *Selection) Dimension(l Level) string {
	return s.assigned.Dimension(l)
}

// Assignment returns a copy of the current assignment.
func (s *Selection) Assignment() Assignment {
	return s.assigned
}

// AvailableFor returns the catalog minus dimensions chosen at any other level.
// The dimension chosen at l itself stays available.
func (s *Selection) AvailableFor(l Level) []string {
	if !l.Valid() {
		return nil
	}
	used := make(map[string]bool, Levels)
	for _, other := range AllLevels() {
		if other == l {
			continue
		}
		if name := s.assigned.Dimension(other); name != "" {
			used[name] = true
		}
	}
	own := s.assigned.Dimension(l)
	result := make([]string, 0, len(s.dimensions))
	for _, d := range s.dimensions {
		if !used[d] || d == own {
			result = append(result, d)
		}
	}
	return result
}
