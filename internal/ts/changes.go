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

// Package ts provides the two time-series containers values are stored in:
// Changes, a sparse step function, and Dense, an exact-match table. Their
// get semantics differ on purpose — see the comment on each type.
package ts

import (
	"sort"

	"github.com/ampiato/tem/internal/clock"
)

type point[V any] struct {
	t clock.Time
	v V
}

// Changes is a sparse, monotonically-increasing step function: the value at
// any time t is the value of the last point at or before t. A point at a
// time strictly after the series' last recorded point extrapolates forward
// (the series is read as "holding" its last value until a newer one
// arrives), which is why Get never reports a miss for a query at or after
// the first recorded point.
type Changes[V any] struct {
	points []point[V]
}

// NewChanges returns an empty Changes series.
func NewChanges[V any]() *Changes[V] {
	return &Changes[V]{}
}

// Push appends a new point. t must not be before the last point's time;
// pushing at an already-recorded time overwrites that point's value rather
// than inserting a duplicate.
func (c *Changes[V]) Push(t clock.Time, v V) {
	n := len(c.points)
	if n > 0 && c.points[n-1].t.Compare(t) == 0 {
		c.points[n-1].v = v
		return
	}
	c.points = append(c.points, point[V]{t: t, v: v})
}

// Set records v at t in any order: a point already recorded at t has its
// value overwritten, otherwise a new point is inserted in time order.
func (c *Changes[V]) Set(t clock.Time, v V) {
	i := sort.Search(len(c.points), func(i int) bool {
		return !c.points[i].t.Before(t)
	})
	if i < len(c.points) && c.points[i].t.Compare(t) == 0 {
		c.points[i].v = v
		return
	}
	c.points = append(c.points, point[V]{})
	copy(c.points[i+1:], c.points[i:])
	c.points[i] = point[V]{t: t, v: v}
}

// Get returns the value in effect at t: the value of the latest point at or
// before t. Lookups at or after the last recorded point return that point's
// value (step extrapolation to the right). A query strictly before the
// first recorded point is a miss.
func (c *Changes[V]) Get(t clock.Time) (V, bool) {
	var zero V
	n := len(c.points)
	if n == 0 {
		return zero, false
	}
	// binary search for the rightmost point with point.t <= t
	i := sort.Search(n, func(i int) bool {
		return c.points[i].t.After(t)
	})
	if i == 0 {
		return zero, false
	}
	return c.points[i-1].v, true
}

// Len reports the number of recorded points.
func (c *Changes[V]) Len() int {
	return len(c.points)
}

// Last returns the most recently recorded point, if any.
func (c *Changes[V]) Last() (clock.Time, V, bool) {
	var zero V
	if len(c.points) == 0 {
		return clock.Time{}, zero, false
	}
	p := c.points[len(c.points)-1]
	return p.t, p.v, true
}
