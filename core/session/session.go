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

// Package session holds the interactive state of one drill-down summary: the
// latest snapshot, the level assignment, the open groups, the search text and
// the most recent aggregation result.
//
// A Session is not safe for concurrent use. Callers that share one across
// goroutines must serialise access.
package session

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/google/drilldown/core/aggregates"
	"github.com/google/drilldown/core/columns"
	"github.com/google/drilldown/core/expansion"
	"github.com/google/drilldown/core/metrics"
	"github.com/google/drilldown/core/search"
	"github.com/google/drilldown/core/selection"
	"github.com/google/drilldown/core/tables"
)

// Session is one user's view of a snapshot.
type Session struct {
	id      string
	log     zerolog.Logger
	metrics *metrics.Metrics

	snap      *tables.Snapshot
	measure   int
	selection *selection.Selection
	expansion *expansion.State
	filter    search.Filter
	result    *aggregates.Result
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithMetrics records aggregation passes and toggles on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithID names the session in log lines.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithAssignment sets the initial level assignment.
func WithAssignment(a selection.Assignment) Option {
	return func(s *Session) {
		for _, l := range selection.AllLevels() {
			s.selection.Assign(l, a.Dimension(l))
		}
	}
}

// WithSearch sets the initial search text.
func WithSearch(raw string) Option {
	return func(s *Session) {
		s.filter = search.NewFilter(raw)
	}
}

// New creates a session that has not received a snapshot yet.
func New(opts ...Option) *Session {
	s := &Session{
		log:       zerolog.Nop(),
		measure:   -1,
		selection: selection.New(),
		expansion: expansion.New(),
		result:    &aggregates.Result{Groups: []*aggregates.Node{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id != "" {
		s.log = s.log.With().Str("session", s.id).Logger()
	}
	return s
}

// ID returns the session identifier given by WithID.
func (s *Session) ID() string {
	return s.id
}

// Update installs a new snapshot, re-derives the measure column and the
// dimension catalog, and recomputes the result. A nil snapshot is ignored.
// Selection, expansion and search survive the update; names that no longer
// resolve behave as unassigned until they do again.
func (s *Session) Update(snap *tables.Snapshot) {
	if snap == nil {
		s.log.Debug().Msg("ignoring empty update")
		return
	}
	s.snap = snap
	cols := snap.Columns()
	measure, fallback := columns.MeasureIndex(cols)
	s.measure = measure
	s.selection.SetDimensions(columns.DeriveDimensions(cols))
	s.metrics.SetSnapshotRows(snap.Length())

	if fallback {
		s.log.Info().Str("measure", s.MeasureName()).
			Msg("no measure column flagged, using the last column")
	}
	s.log.Debug().Int("rows", snap.Length()).Int("columns", len(cols)).
		Str("measure", s.MeasureName()).Msg("snapshot updated")
	for _, l := range selection.AllLevels() {
		if name := s.selection.Dimension(l); name != "" && columns.IndexOf(cols, name) < 0 {
			s.log.Debug().Int("level", int(l)).Str("dimension", name).
				Msg("assigned dimension not in snapshot")
		}
	}
	s.aggregate()
}

// HasSnapshot reports whether Update has been called with a snapshot.
func (s *Session) HasSnapshot() bool {
	return s.snap != nil
}

// Snapshot returns the current snapshot, or nil.
func (s *Session) Snapshot() *tables.Snapshot {
	return s.snap
}

// Assign maps level l to the named dimension; "" unassigns it.
func (s *Session) Assign(l selection.Level, name string) {
	s.selection.Assign(l, name)
	s.refresh()
}

// ClearAssignment unassigns every level. Open groups and search text are kept.
func (s *Session) ClearAssignment() {
	s.selection.Clear()
	s.refresh()
}

// SetSearch replaces the level-1 filter text.
func (s *Session) SetSearch(raw string) {
	s.filter = search.NewFilter(raw)
	s.refresh()
}

// ToggleLevel1 opens or closes a level-1 group and returns its new state.
func (s *Session) ToggleLevel1(key string) bool {
	open := s.expansion.ToggleLevel1(key)
	s.metrics.IncToggle(int(selection.Level1))
	s.log.Debug().Int("level", 1).Str("key", key).Bool("open", open).Msg("toggled")
	s.refresh()
	return open
}

// ToggleLevel2 opens or closes a level-2 group and returns its new state.
func (s *Session) ToggleLevel2(path expansion.PathKey) bool {
	open := s.expansion.ToggleLevel2(path)
	s.metrics.IncToggle(int(selection.Level2))
	s.log.Debug().Int("level", 2).Str("key", path.String()).Bool("open", open).Msg("toggled")
	s.refresh()
	return open
}

// Result returns the latest aggregation. It is empty until a snapshot arrives.
func (s *Session) Result() *aggregates.Result {
	return s.result
}

// AvailableFor returns the dimensions that may be chosen at level l.
func (s *Session) AvailableFor(l selection.Level) []string {
	return s.selection.AvailableFor(l)
}

// Dimensions returns the catalog derived from the current snapshot.
func (s *Session) Dimensions() []string {
	return s.selection.Dimensions()
}

// MeasureName returns the display name of the measure column, or "".
func (s *Session) MeasureName() string {
	cols := s.snap.Columns()
	if s.measure < 0 || s.measure >= len(cols) || cols[s.measure] == nil {
		return ""
	}
	return cols[s.measure].DisplayName()
}

// SearchText returns the normalized search text.
func (s *Session) SearchText() string {
	return s.filter.Text()
}

// Selection returns a copy of the level assignment.
func (s *Session) Selection() selection.Assignment {
	return s.selection.Assignment()
}

// Expansion returns the open-group state. Callers must not modify it.
func (s *Session) Expansion() *expansion.State {
	return s.expansion
}

// refresh recomputes the result when there is a snapshot to work from.
func (s *Session) refresh() {
	if s.snap == nil {
		return
	}
	s.aggregate()
}

func (s *Session) aggregate() {
	start := time.Now()
	s.result = aggregates.Aggregate(s.snap, s.measure, s.selection.Assignment(), s.filter, s.expansion)
	s.metrics.ObserveAggregation(start)
}
