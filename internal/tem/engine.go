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

package tem

import (
	"context"

	"github.com/ampiato/tem/internal/clock"
	"github.com/ampiato/tem/internal/errs"
	"github.com/ampiato/tem/internal/graph"
	"github.com/ampiato/tem/internal/metrics"
	"github.com/ampiato/tem/internal/quantity"
	"github.com/ampiato/tem/internal/replication"
	"github.com/ampiato/tem/internal/trace"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Engine is the single entry point for reading, deriving and replicating
// quantities. It is not safe for concurrent use: every method runs to
// completion against a single-threaded graph and store, the same
// cooperative-scheduling discipline this was ported from relies on. Only
// FromPool, SyncChanges and StopReplication perform I/O and may yield to
// the caller's scheduler; every other method is pure computation.
type Engine[Sel comparable] struct {
	provider ValueProvider[Sel]
	factory  TableFactory[Sel]
	graph    *graph.Graph[quantity.Triple[Sel]]
	stack    *trace.Stack
	subs     map[graph.Handle]struct{}
	repl     *replication.Session
	log      *logrus.Entry
}

// FromPool constructs an engine against provider, loading its leaf series
// from pool. When replicationEnabled is true, a logical-replication
// session is also established so SyncChanges can later pull incremental
// changes.
func FromPool[Sel comparable](
	ctx context.Context,
	pool *pgxpool.Pool,
	provider ValueProvider[Sel],
	factory TableFactory[Sel],
	replicationEnabled bool,
) (*Engine[Sel], error) {
	log := logrus.WithField("component", "tem.Engine")

	if err := provider.LoadFromPool(ctx, pool); err != nil {
		return nil, err
	}

	e := &Engine[Sel]{
		provider: provider,
		factory:  factory,
		graph:    graph.New[quantity.Triple[Sel]](),
		stack:    trace.NewStack(),
		subs:     make(map[graph.Handle]struct{}),
		log:      log,
	}

	if replicationEnabled {
		sess, err := replication.New(ctx, pool)
		if err != nil {
			return nil, err
		}
		e.repl = sess
	}

	log.WithField("replication", replicationEnabled).Debug("engine constructed")
	return e, nil
}

// GetValue returns the value of the named quantity at (selector, t),
// recording a dependency edge if this call happens inside a RegisterFn
// body. It panics if the provider has no value for the quantity -- the
// same fail-loudly contract the provider itself exposes.
func (e *Engine[Sel]) GetValue(name string, selector Sel, t clock.Time) float64 {
	v := e.provider.GetValue(name, selector, t)
	e.recordRead(name, selector, t)
	return v
}

// GetValueOpt returns the value of the named quantity at (selector, t) and
// whether it exists, recording a dependency edge the same way GetValue
// does.
func (e *Engine[Sel]) GetValueOpt(name string, selector Sel, t clock.Time) (float64, bool) {
	v, ok := e.provider.GetValueOpt(name, selector, t)
	e.recordRead(name, selector, t)
	return v, ok
}

func (e *Engine[Sel]) recordRead(name string, selector Sel, t clock.Time) {
	h := e.graph.Intern(quantity.Triple[Sel]{Name: name, Selector: selector, T: t})
	e.stack.RecordDep(h)
}

// RegisterFn evaluates a derived quantity's body, recording every read it
// performs (directly, or transitively through nested RegisterFn calls) as a
// dependency of (name, selector, t), then records this quantity itself as
// read by whatever frame is currently open one level up. This is the only
// way a derived value enters the graph with incoming edges from its inputs.
func (e *Engine[Sel]) RegisterFn(name string, selector Sel, t clock.Time, body func() float64) float64 {
	h := e.graph.Intern(quantity.Triple[Sel]{Name: name, Selector: selector, T: t})
	e.stack.EnterFrame()
	v := body()
	deps := e.stack.LeaveFrame()
	for dep := range deps {
		e.graph.AddEdge(dep, h)
	}
	e.stack.RecordDep(h)
	return v
}

// Subscribe marks (name, selector, t) as a handle whose invalidation the
// caller wants to observe, returning the stable handle to pass to
// Unsubscribe. Subsequent Update calls that transitively reach this handle
// include it in their returned invalidation set.
func (e *Engine[Sel]) Subscribe(name string, selector Sel, t clock.Time) graph.Handle {
	h := e.graph.Intern(quantity.Triple[Sel]{Name: name, Selector: selector, T: t})
	e.subs[h] = struct{}{}
	return h
}

// Unsubscribe removes a handle from the subscribed set. Unlike the source
// this was ported from (which left it unimplemented), this removes the
// handle from future invalidation walks; it does not remove the node or its
// edges from the graph, since other reads may still depend on it.
func (e *Engine[Sel]) Unsubscribe(h graph.Handle) {
	delete(e.subs, h)
}

// Update records a new leaf value and walks the dependency graph forward
// from it, returning the subscribed handles the change transitively
// reaches. A quantity nobody has ever read or subscribed to has no node in
// the graph, so its updates return an empty set cheaply.
func (e *Engine[Sel]) Update(name string, selector Sel, t clock.Time, v float64) map[graph.Handle]struct{} {
	e.provider.SetValue(name, selector, t, v)

	invalidated := make(map[graph.Handle]struct{})
	h, ok := e.graph.Lookup(quantity.Triple[Sel]{Name: name, Selector: selector, T: t})
	if !ok {
		return invalidated
	}

	visited := make(map[graph.Handle]struct{})
	stack := []graph.Handle{h}
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}
		if _, subscribed := e.subs[cur]; subscribed {
			invalidated[cur] = struct{}{}
		}
		stack = append(stack, e.graph.EdgesOut(cur)...)
	}
	metrics.InvalidatedHandles.Add(float64(len(invalidated)))
	return invalidated
}

// SyncChanges pulls pending replicated transactions and applies them
// atomically, returning the union of subscribed handles invalidated across
// the whole batch. It returns errs.ErrReplicationNotEnabled if the engine
// was constructed without replication.
func (e *Engine[Sel]) SyncChanges(ctx context.Context) (map[graph.Handle]struct{}, error) {
	if e.repl == nil {
		return nil, errs.ErrReplicationNotEnabled
	}
	timer := metrics.StartTimer(metrics.SyncDuration)
	defer timer.Stop()

	msgs, err := e.repl.GrabChanges(ctx)
	if err != nil {
		metrics.ReplicationErrors.Inc()
		return nil, err
	}

	app := &applier[Sel]{engine: e, factory: e.factory, log: e.log}
	invalidated, err := app.Apply(msgs)
	if err != nil {
		metrics.ReplicationErrors.Inc()
		return nil, err
	}
	return invalidated, nil
}

// StopReplication tears down the replication session, dropping its slot
// and publication. It is a no-op if replication was never enabled.
func (e *Engine[Sel]) StopReplication(ctx context.Context) error {
	if e.repl == nil {
		return nil
	}
	err := e.repl.Close(ctx)
	e.repl = nil
	return err
}

// GraphSize reports the number of quantities currently tracked, for
// observability.
func (e *Engine[Sel]) GraphSize() int {
	return e.graph.Len()
}
