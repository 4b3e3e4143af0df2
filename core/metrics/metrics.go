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

// Package metrics exposes prometheus instruments for the drill-down summary.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "drilldown"

// Metrics holds the instruments registered for one process.
type Metrics struct {
	aggregations   prometheus.Counter
	aggregationDur prometheus.Histogram
	snapshotRows   prometheus.Gauge
	toggles        *prometheus.CounterVec
	reloads        prometheus.Counter
}

// New registers the instruments on reg. Passing nil registers nothing and
// returns instruments that are still usable.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		aggregations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Number of aggregation passes.",
		}),
		aggregationDur: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_seconds",
			Help:      "Duration of one aggregation pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		snapshotRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_rows",
			Help:      "Rows in the most recently received snapshot.",
		}),
		toggles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toggles_total",
			Help:      "Expansion toggles by level.",
		}, []string{"level"}),
		reloads: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_reloads_total",
			Help:      "Snapshots reloaded from the watched source.",
		}),
	}
}

// ObserveAggregation records one aggregation pass that started at start.
func (m *Metrics) ObserveAggregation(start time.Time) {
	if m == nil {
		return
	}
	m.aggregations.Inc()
	m.aggregationDur.Observe(time.Since(start).Seconds())
}

// SetSnapshotRows records the size of the current snapshot.
func (m *Metrics) SetSnapshotRows(n int) {
	if m == nil {
		return
	}
	m.snapshotRows.Set(float64(n))
}

// IncToggle counts an expansion toggle at the given level.
func (m *Metrics) IncToggle(level int) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(strconv.Itoa(level)).Inc()
}

// IncReload counts a snapshot reload.
func (m *Metrics) IncReload() {
	if m == nil {
		return
	}
	m.reloads.Inc()
}
