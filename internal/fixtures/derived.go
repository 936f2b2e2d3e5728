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

package fixtures

import (
	"github.com/ampiato/tem/internal/clock"
	"github.com/ampiato/tem/internal/tem"
)

// Vykon is a leaf accessor: the instantaneous output reported for a block.
// Leaf accessors read straight through to the engine and record whatever
// dependency tracking is already open; they're never wrapped in
// RegisterFn themselves.
func Vykon(e *tem.Engine[Selector], b Blok, t clock.Time) float64 {
	return e.GetValue("vykon", b, t)
}

// Cena is a leaf accessor for the market clearing price.
func Cena(e *tem.Engine[Selector], t clock.Time) float64 {
	return e.GetValue("cena", Unit{}, t)
}

// Vynos is a derived quantity: a block's revenue at t, its output times the
// market price. This is the builder-API equivalent of what a macro-based
// codegen step would otherwise stamp out per derived function: a call to
// RegisterFn naming the quantity and supplying its body as a closure, with
// every read inside that closure automatically wired as a dependency edge.
func Vynos(e *tem.Engine[Selector], b Blok, t clock.Time) float64 {
	return e.RegisterFn("vynos", b, t, func() float64 {
		return Vykon(e, b, t) * Cena(e, t)
	})
}
