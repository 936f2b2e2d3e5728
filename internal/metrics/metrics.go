// Copyright 2024 The Ampiato Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the evaluator's prometheus instrumentation,
// following the same promauto package-level-var pattern the staging layer
// this was ported from uses for its own counters and histograms.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBuckets mirrors the default bucket ladder used elsewhere in the
// pipeline for sub-second operations.
var latencyBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

var (
	// SyncDuration measures the wall-clock time of a single SyncChanges
	// call, from GrabChanges through the final applied invalidation.
	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tem_sync_changes_duration_seconds",
		Help:    "the length of time a single SyncChanges call took",
		Buckets: latencyBuckets,
	})

	// InvalidatedHandles counts subscribed handles returned by Update
	// across the life of the engine.
	InvalidatedHandles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tem_invalidated_handles_total",
		Help: "the number of subscribed handles reported invalidated by Update",
	})

	// ReplicationErrors counts failures surfaced while pulling or decoding
	// replicated transactions.
	ReplicationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tem_replication_errors_total",
		Help: "the number of errors encountered syncing replicated changes",
	})
)

// Timer wraps prometheus.Timer so callers can write `defer timer.Stop()`
// without importing prometheus directly.
type Timer struct {
	t *prometheus.Timer
}

// StartTimer begins timing an observation against h.
func StartTimer(h prometheus.Histogram) Timer {
	return Timer{t: prometheus.NewTimer(h)}
}

// Stop records the elapsed duration.
func (t Timer) Stop() {
	t.t.ObserveDuration()
}
