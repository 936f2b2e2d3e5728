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

// Package quantity defines the identity of a single value in the evaluation
// graph and the contract points schema-glue code implements to plug a
// concrete domain (its selector variants and entity references) into the
// engine.
package quantity

import "github.com/ampiato/tem/internal/clock"

// Triple identifies one quantity: a named series, at a particular selector
// (e.g. "which entity"), at a particular time. Two reads of the same
// (Name, Selector, T) are the same node in the dependency graph.
type Triple[Sel comparable] struct {
	Name     string
	Selector Sel
	T        clock.Time
}

// Unit is the selector variant for quantities that aren't keyed by any
// entity -- every generated selector union must include it so
// schema-independent quantities (e.g. a market-wide price) have somewhere
// to live.
type Unit struct{}

// EntityRef is implemented by generated entity-identifier types (e.g. a
// particular power block or meter). Reconstructing a value from the integer
// identifier a tuple column carries on the wire is not part of this
// interface; schema-glue code supplies its own constructor function for
// that (e.g. fixtures.BlokFromEntityID).
type EntityRef interface {
	comparable
	EntityName() string
	ID() int64
}
