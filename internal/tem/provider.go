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

// Package tem is the evaluator façade: it ties the value store, dependency
// graph, frame stack and replication pipeline together into the single
// entry point application code drives.
package tem

import (
	"context"

	"github.com/ampiato/tem/internal/clock"
	"github.com/jackc/pglogrepl"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ValueProvider is implemented by generated schema-glue code: it owns the
// actual time-series storage (backed by internal/ts containers) for every
// named quantity a particular schema defines, keyed by selector.
type ValueProvider[Sel comparable] interface {
	// LoadFromPool populates the provider's leaf series from the database,
	// e.g. reading recent history for each table it backs. Called once at
	// engine construction.
	LoadFromPool(ctx context.Context, pool *pgxpool.Pool) error

	// SetValue records v for the named quantity at (selector, t). Called by
	// the transaction applier as replicated rows arrive.
	SetValue(name string, selector Sel, t clock.Time, v float64)

	// GetValue returns the value for the named quantity at (selector, t).
	// It panics if no value exists -- callers that can tolerate a miss use
	// GetValueOpt instead.
	GetValue(name string, selector Sel, t clock.Time) float64

	// GetValueOpt returns the value for the named quantity at (selector, t)
	// and whether one was found.
	GetValueOpt(name string, selector Sel, t clock.Time) (float64, bool)
}

// Table is the per-row view a schema-glue TableFactory produces from a
// decoded tuple: which quantity selector it belongs to, what instant it's
// valid at, and the named columns it carries.
type Table[Sel comparable] interface {
	Selector() Sel
	Time() clock.Time
	Values() []ColumnValue
}

// ColumnValue is one decoded, named scalar column from a row.
type ColumnValue struct {
	Name  string
	Value float64
}

// TableFactory decodes a replicated tuple for the named relation into a
// Table. Schema-glue code supplies one factory per engine that dispatches
// internally on relationName.
type TableFactory[Sel comparable] func(relationName string, tuple *pglogrepl.TupleData) (Table[Sel], error)
