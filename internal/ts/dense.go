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

package ts

import "github.com/ampiato/tem/internal/clock"

// Dense is an exact-match time series: it holds a value recorded at each
// time it was explicitly set, and Get reports a miss for every other time,
// including times after the last recorded point. Unlike Changes, Dense
// never extrapolates — it is for quantities that are only meaningful at the
// instants they were actually produced (e.g. measurement samples), not
// quantities that hold their value between updates.
type Dense[V any] struct {
	byTime map[clock.Time]V
}

// NewDense returns an empty Dense series.
func NewDense[V any]() *Dense[V] {
	return &Dense[V]{byTime: make(map[clock.Time]V)}
}

// Set records v at exactly t, overwriting any prior value at that time.
func (d *Dense[V]) Set(t clock.Time, v V) {
	d.byTime[t] = v
}

// Get returns the value recorded at exactly t. Any other time, including one
// after the last Set, is a miss.
func (d *Dense[V]) Get(t clock.Time) (V, bool) {
	v, ok := d.byTime[t]
	return v, ok
}

// Len reports the number of recorded points.
func (d *Dense[V]) Len() int {
	return len(d.byTime)
}
