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

// Package clock provides the single time representation shared by every
// quantity in the evaluation graph. Every leaf and derived value is indexed
// by one of these timestamps, so equality and ordering here are load-bearing
// for dependency-graph identity.
package clock

import (
	"time"

	"github.com/pkg/errors"
)

// postgresEpochSeconds is the number of seconds between the Unix epoch and
// 2000-01-01T00:00:00Z, the epoch Postgres logical-replication binary
// timestamps are relative to. The decoder this package's
// FromMicrosecondsSincePostgresEpoch was ported from named this constant in
// milliseconds but applied it as seconds, which would place every decoded
// timestamp about 30,000 years in the future; here it is seconds, used as
// seconds.
const postgresEpochSeconds = 946684800

// Time is a signed 64-bit second counter since the Unix epoch, the
// resolution every quantity in the graph is indexed by. Sub-second
// precision in wire timestamps is deliberately discarded at decode time:
// the engine keys nodes on whole seconds.
type Time struct {
	seconds int64
}

// Now returns the current instant, truncated to whole seconds.
func Now() Time {
	return Time{seconds: time.Now().Unix()}
}

// FromDateTime builds a Time from an arbitrary time.Time, truncated to
// whole seconds.
func FromDateTime(t time.Time) Time {
	return Time{seconds: t.Unix()}
}

// FromUnixSeconds builds a Time directly from a Unix-epoch second count.
func FromUnixSeconds(seconds int64) Time {
	return Time{seconds: seconds}
}

// FromMicrosecondsSincePostgresEpoch builds a Time from a microsecond count
// relative to the Postgres epoch (2000-01-01), the unit pgoutput Begin,
// Commit and binary timestamp columns use on the wire: the corrected
// constant is added to the Unix epoch before the microsecond count is
// truncated down to whole seconds.
func FromMicrosecondsSincePostgresEpoch(us int64) Time {
	return Time{seconds: postgresEpochSeconds + floorDiv(us, 1_000_000)}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FromRFC3339 parses a timestamp in RFC3339 form, the textual form used by
// text-mode tuple columns and by configuration/test fixtures. Malformed
// input returns the wrapped time.Parse error, the only recoverable error
// this type raises.
func FromRFC3339(s string) (Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Time{}, errors.Wrapf(err, "parsing timestamp %q", s)
	}
	return FromDateTime(t), nil
}

// Unix returns the Unix-epoch second count.
func (t Time) Unix() int64 {
	return t.seconds
}

// Std returns the standard-library representation, in UTC.
func (t Time) Std() time.Time {
	return time.Unix(t.seconds, 0).UTC()
}

// Before reports whether t occurs strictly before o.
func (t Time) Before(o Time) bool {
	return t.seconds < o.seconds
}

// After reports whether t occurs strictly after o.
func (t Time) After(o Time) bool {
	return t.seconds > o.seconds
}

// Add returns t shifted by the given number of seconds.
func (t Time) Add(seconds int64) Time {
	return Time{seconds: t.seconds + seconds}
}

// Compare returns -1, 0 or 1 as t is before, equal to, or after o.
func (t Time) Compare(o Time) int {
	switch {
	case t.seconds < o.seconds:
		return -1
	case t.seconds > o.seconds:
		return 1
	default:
		return 0
	}
}

// String renders t in RFC3339 form, its Display representation.
func (t Time) String() string {
	return t.Std().Format(time.RFC3339)
}

// GoString renders t as a naive UTC date-time, matching the source's Debug
// format (no trailing zone designator).
func (t Time) GoString() string {
	return t.Std().Format("2006-01-02 15:04:05")
}
