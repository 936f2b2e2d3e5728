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

package tem_test

import (
	"context"
	"testing"

	"github.com/ampiato/tem/internal/clock"
	"github.com/ampiato/tem/internal/fixtures"
	"github.com/ampiato/tem/internal/tem"
)

func mustTime(t *testing.T, s string) clock.Time {
	t.Helper()
	tm, err := clock.FromRFC3339(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tm
}

// newTestEngine builds an engine against the fixtures provider without
// going through FromPool, since these tests have no database to load from.
func newTestEngine(t *testing.T) (*tem.Engine[fixtures.Selector], *fixtures.Provider) {
	t.Helper()
	provider := fixtures.NewProvider()
	e, err := tem.FromPool[fixtures.Selector](context.Background(), nil, provider, fixtures.TableFactory, false)
	if err != nil {
		t.Fatalf("FromPool: %v", err)
	}
	return e, provider
}

func TestDerivedFunctionReadsLeafValues(t *testing.T) {
	e, provider := newTestEngine(t)
	b := fixtures.BlokFromEntityID(1)
	t0 := mustTime(t, "2024-01-01T00:00:00Z")

	provider.SetValue("vykon", b, t0, 100)
	provider.SetValue("cena", fixtures.Unit{}, t0, 2.5)

	got := fixtures.Vynos(e, b, t0)
	if got != 250 {
		t.Fatalf("got %v, want 250", got)
	}
}

func TestSubscribeAndUpdateInvalidatesDerivedHandle(t *testing.T) {
	e, provider := newTestEngine(t)
	b := fixtures.BlokFromEntityID(1)
	t0 := mustTime(t, "2024-01-01T00:00:00Z")

	provider.SetValue("vykon", b, t0, 100)
	provider.SetValue("cena", fixtures.Unit{}, t0, 2.5)

	// evaluate once, which wires the dependency edges
	fixtures.Vynos(e, b, t0)

	h := e.Subscribe("vynos", b, t0)

	// updating the leaf the derived value read should invalidate it
	invalidated := e.Update("vykon", b, t0, 150)
	if _, ok := invalidated[h]; !ok {
		t.Fatalf("expected vynos handle to be invalidated by a vykon update")
	}

	e.Unsubscribe(h)
	invalidated = e.Update("vykon", b, t0, 200)
	if len(invalidated) != 0 {
		t.Fatalf("expected no invalidations after unsubscribe, got %v", invalidated)
	}
}

func TestUpdateOfUnreadQuantityReturnsEmptySet(t *testing.T) {
	e, _ := newTestEngine(t)
	b := fixtures.BlokFromEntityID(99)
	t0 := mustTime(t, "2024-01-01T00:00:00Z")

	invalidated := e.Update("vykon", b, t0, 10)
	if len(invalidated) != 0 {
		t.Fatalf("expected empty set, got %v", invalidated)
	}
}

func TestNestedDerivedDependencyInvalidatesOuterHandle(t *testing.T) {
	e, provider := newTestEngine(t)
	b := fixtures.BlokFromEntityID(1)
	t0 := mustTime(t, "2024-01-01T00:00:00Z")
	provider.SetValue("vykon", b, t0, 100)
	provider.SetValue("cena", fixtures.Unit{}, t0, 2.5)

	outer := e.RegisterFn("double_vynos", b, t0, func() float64 {
		return fixtures.Vynos(e, b, t0) + fixtures.Vynos(e, b, t0)
	})
	if outer != 500 {
		t.Fatalf("got %v, want 500", outer)
	}

	hOuter := e.Subscribe("double_vynos", b, t0)
	invalidated := e.Update("cena", fixtures.Unit{}, t0, 3.0)
	if _, ok := invalidated[hOuter]; !ok {
		t.Fatalf("expected the outer derived handle to be invalidated transitively")
	}
}

func TestGetValueOptMissReportsFalse(t *testing.T) {
	e, _ := newTestEngine(t)
	b := fixtures.BlokFromEntityID(2)
	t0 := mustTime(t, "2024-01-01T00:00:00Z")
	if _, ok := e.GetValueOpt("vykon", b, t0); ok {
		t.Fatalf("expected a miss for a quantity never set")
	}
}

func TestMarketPriceDoesNotExtrapolatePastLastSample(t *testing.T) {
	e, provider := newTestEngine(t)
	t0 := mustTime(t, "2024-01-01T00:00:00Z")
	t1 := mustTime(t, "2024-01-01T01:00:00Z")

	provider.SetValue("cena", fixtures.Unit{}, t0, 2.5)

	if v, ok := e.GetValueOpt("cena", fixtures.Unit{}, t0); !ok || v != 2.5 {
		t.Fatalf("got %v, %v, want 2.5, true", v, ok)
	}
	if _, ok := e.GetValueOpt("cena", fixtures.Unit{}, t1); ok {
		t.Fatalf("expected a miss past the last recorded market price, since Unit-selector quantities don't extrapolate")
	}
}

func TestGetValuePanicsOnMissingQuantity(t *testing.T) {
	e, _ := newTestEngine(t)
	b := fixtures.BlokFromEntityID(3)
	t0 := mustTime(t, "2024-01-01T00:00:00Z")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected GetValue to panic on a missing quantity")
		}
	}()
	e.GetValue("vykon", b, t0)
}
