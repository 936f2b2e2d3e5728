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

// Package fixtures implements a small, concrete schema-glue layer -- a
// Selector union, entity references, and a ValueProvider -- for a toy
// power-plant domain: named generating blocks report instantaneous output,
// and the market reports a clearing price. It exists to exercise the
// engine end to end in tests and to document the shape schema-glue code
// written against internal/tem is expected to take.
package fixtures

import (
	"context"
	"fmt"

	"github.com/ampiato/tem/internal/clock"
	"github.com/ampiato/tem/internal/errs"
	"github.com/ampiato/tem/internal/pgoutput"
	"github.com/ampiato/tem/internal/quantity"
	"github.com/ampiato/tem/internal/tem"
	"github.com/ampiato/tem/internal/ts"
	"github.com/jackc/pglogrepl"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Selector is the closed union of ways a quantity can be keyed: either
// Unit (no entity -- market-wide quantities) or Blok (a single generating
// block).
type Selector interface {
	isSelector()
}

// Unit selects a quantity with no entity, such as a market-wide price. It
// embeds the shared quantity.Unit marker every generated selector union is
// expected to include.
type Unit struct {
	quantity.Unit
}

func (Unit) isSelector() {}

// Blok selects a quantity that belongs to one generating block.
type Blok struct {
	id int64
}

func (Blok) isSelector() {}

// EntityName implements quantity.EntityRef.
func (Blok) EntityName() string { return "blok" }

// ID implements quantity.EntityRef.
func (b Blok) ID() int64 { return b.id }

// BlokFromEntityID reconstructs a Blok selector from the wire identifier
// carried on a replicated row.
func BlokFromEntityID(id int64) Blok { return Blok{id: id} }

// Provider is a ValueProvider backed by per-quantity time series, storage
// kind chosen the way every schema-glue provider must choose it: a
// quantity keyed by an entity selector (Blok) holds its last value between
// updates, so it's backed by ts.Changes; a quantity with no selector
// (Unit) is only meaningful at the instants it was actually produced, so
// it's backed by ts.Dense.
type Provider struct {
	changes map[string]map[Selector]*ts.Changes[float64]
	dense   map[string]*ts.Dense[float64]
}

var _ tem.ValueProvider[Selector] = (*Provider)(nil)

// NewProvider returns an empty provider.
func NewProvider() *Provider {
	return &Provider{
		changes: make(map[string]map[Selector]*ts.Changes[float64]),
		dense:   make(map[string]*ts.Dense[float64]),
	}
}

// LoadFromPool would read recent history for every table this schema backs.
// The toy fixture has no backing tables to read, so it's a no-op; a real
// schema-glue provider issues one query per leaf series here.
func (p *Provider) LoadFromPool(_ context.Context, _ *pgxpool.Pool) error {
	return nil
}

func (p *Provider) changesFor(name string, selector Selector) *ts.Changes[float64] {
	bySel, ok := p.changes[name]
	if !ok {
		bySel = make(map[Selector]*ts.Changes[float64])
		p.changes[name] = bySel
	}
	s, ok := bySel[selector]
	if !ok {
		s = ts.NewChanges[float64]()
		bySel[selector] = s
	}
	return s
}

func (p *Provider) denseFor(name string) *ts.Dense[float64] {
	d, ok := p.dense[name]
	if !ok {
		d = ts.NewDense[float64]()
		p.dense[name] = d
	}
	return d
}

// SetValue implements tem.ValueProvider.
func (p *Provider) SetValue(name string, selector Selector, t clock.Time, v float64) {
	if _, isUnit := selector.(Unit); isUnit {
		p.denseFor(name).Set(t, v)
		return
	}
	p.changesFor(name, selector).Set(t, v)
}

// GetValue implements tem.ValueProvider. It panics if no value exists --
// the loud-failure contract schema-glue leaves are expected to provide.
func (p *Provider) GetValue(name string, selector Selector, t clock.Time) float64 {
	v, ok := p.GetValueOpt(name, selector, t)
	if !ok {
		panic(fmt.Sprintf("fixtures: no value for %s(%v) at %s", name, selector, t))
	}
	return v
}

// GetValueOpt implements tem.ValueProvider.
func (p *Provider) GetValueOpt(name string, selector Selector, t clock.Time) (float64, bool) {
	if _, isUnit := selector.(Unit); isUnit {
		d, ok := p.dense[name]
		if !ok {
			return 0, false
		}
		return d.Get(t)
	}
	bySel, ok := p.changes[name]
	if !ok {
		return 0, false
	}
	s, ok := bySel[selector]
	if !ok {
		return 0, false
	}
	return s.Get(t)
}

// Table names this schema understands on the wire.
const (
	TableBlokVykon = "blok_vykon" // instantaneous output of one block, MW
	TableMarket    = "market"     // market-wide clearing price, CZK/MWh
)

// blokVykonRow is the decoded form of one blok_vykon row: block id,
// instant, and its reported output.
type blokVykonRow struct {
	blok  Blok
	t     clock.Time
	vykon float64
}

func (r blokVykonRow) Selector() Selector        { return r.blok }
func (r blokVykonRow) Time() clock.Time          { return r.t }
func (r blokVykonRow) Values() []tem.ColumnValue { return []tem.ColumnValue{{Name: "vykon", Value: r.vykon}} }

// marketRow is the decoded form of one market row: instant and clearing
// price.
type marketRow struct {
	t     clock.Time
	price float64
}

func (r marketRow) Selector() Selector        { return Unit{} }
func (r marketRow) Time() clock.Time          { return r.t }
func (r marketRow) Values() []tem.ColumnValue { return []tem.ColumnValue{{Name: "cena", Value: r.price}} }

// TableFactory decodes a replicated tuple for this schema's two tables.
// Column order follows CREATE TABLE declaration order, matching how
// pgoutput lays out a tuple's columns.
func TableFactory(relationName string, tuple *pglogrepl.TupleData) (tem.Table[Selector], error) {
	switch relationName {
	case TableBlokVykon:
		if len(tuple.Columns) != 3 {
			return nil, &errs.UnexpectedColumnCount{RelationName: relationName, Expected: 3, Actual: len(tuple.Columns)}
		}
		blokID, err := pgoutput.DecodeEntityID("blok_id", tuple.Columns[0])
		if err != nil {
			return nil, err
		}
		t, err := pgoutput.DecodeTime("cas", tuple.Columns[1])
		if err != nil {
			return nil, err
		}
		vykon, err := pgoutput.DecodeFloat64("vykon", tuple.Columns[2])
		if err != nil {
			return nil, err
		}
		return blokVykonRow{blok: BlokFromEntityID(blokID), t: t, vykon: vykon}, nil

	case TableMarket:
		if len(tuple.Columns) != 2 {
			return nil, &errs.UnexpectedColumnCount{RelationName: relationName, Expected: 2, Actual: len(tuple.Columns)}
		}
		t, err := pgoutput.DecodeTime("cas", tuple.Columns[0])
		if err != nil {
			return nil, err
		}
		price, err := pgoutput.DecodeFloat64("cena", tuple.Columns[1])
		if err != nil {
			return nil, err
		}
		return marketRow{t: t, price: price}, nil

	default:
		return nil, &errs.UnknownTable{RelationName: relationName}
	}
}
