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

package clock

import "testing"

func TestRFC3339RoundTrip(t *testing.T) {
	in := "2024-03-15T12:30:00Z"
	tm, err := FromRFC3339(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := tm.String(); got != in {
		t.Fatalf("round trip mismatch: got %q want %q", got, in)
	}
}

func TestRFC3339RejectsMalformedInput(t *testing.T) {
	if _, err := FromRFC3339("not-a-timestamp"); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestPostgresEpochIsCorrected(t *testing.T) {
	// zero microseconds since the Postgres epoch must map back to exactly
	// 2000-01-01T00:00:00Z, not 30 millennia later (which is what the
	// millisecond-as-seconds bug this was ported from would produce).
	tm := FromMicrosecondsSincePostgresEpoch(0)
	want, err := FromRFC3339("2000-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tm.Compare(want) != 0 {
		t.Fatalf("postgres epoch zero = %s, want %s", tm, want)
	}
}

func TestFromMicrosecondsSincePostgresEpochTruncatesToSeconds(t *testing.T) {
	// 1_500_000 microseconds past the epoch is 1.5 seconds; Time keeps
	// only whole seconds.
	tm := FromMicrosecondsSincePostgresEpoch(1_500_000)
	want, _ := FromRFC3339("2000-01-01T00:00:01Z")
	if tm.Compare(want) != 0 {
		t.Fatalf("got %s, want %s", tm, want)
	}
}

func TestOrdering(t *testing.T) {
	a, _ := FromRFC3339("2024-01-01T00:00:00Z")
	b, _ := FromRFC3339("2024-01-02T00:00:00Z")
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected a before b")
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("unexpected Compare results")
	}
}

func TestAdd(t *testing.T) {
	a, _ := FromRFC3339("2024-01-01T00:00:00Z")
	b := a.Add(60)
	want, _ := FromRFC3339("2024-01-01T00:01:00Z")
	if b.Compare(want) != 0 {
		t.Fatalf("got %s, want %s", b, want)
	}
}
