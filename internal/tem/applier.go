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
	"github.com/ampiato/tem/internal/errs"
	"github.com/ampiato/tem/internal/graph"
	"github.com/jackc/pglogrepl"
	"github.com/sirupsen/logrus"
)

// applier replays one batch of replication messages against an engine,
// enforcing Begin/.../Commit transaction boundaries the same way the
// serial, transaction-preserving event sink this was ported from does:
// a whole transaction is buffered and applied atomically, and the
// invalidation sets of every row touched are unioned into one result.
type applier[Sel comparable] struct {
	engine  *Engine[Sel]
	factory TableFactory[Sel]
	log     *logrus.Entry
}

// Apply processes msgs, which may span zero or more complete transactions,
// and returns the union of subscribed handles invalidated across all of
// them. Any message outside of an open transaction other than Begin is an
// ordering violation and is reported as an error.
func (a *applier[Sel]) Apply(msgs []pglogrepl.Message) (map[graph.Handle]struct{}, error) {
	invalidated := make(map[graph.Handle]struct{})
	var pending []pglogrepl.Message
	inTx := false

	for _, msg := range msgs {
		switch m := msg.(type) {
		case *pglogrepl.BeginMessage:
			if inTx {
				return nil, &errs.OutOfOrderMessage{Detail: "Begin received while a transaction was already open"}
			}
			inTx = true
			pending = pending[:0]
		case *pglogrepl.CommitMessage:
			if !inTx {
				return nil, &errs.OutOfOrderMessage{Detail: "Commit received without a matching Begin"}
			}
			set, err := a.applyPending(pending)
			if err != nil {
				return nil, err
			}
			for h := range set {
				invalidated[h] = struct{}{}
			}
			pending = nil
			inTx = false
		default:
			if !inTx {
				return nil, &errs.OutOfOrderMessage{Detail: "data message received outside of a transaction"}
			}
			pending = append(pending, msg)
		}
	}

	if inTx {
		return nil, &errs.OutOfOrderMessage{Detail: "stream ended with a transaction still open"}
	}
	return invalidated, nil
}

// applyPending replays the buffered messages of a single transaction,
// mapping each Relation message's OID to its name so Insert/Update messages
// (which only carry a relation OID) can be resolved to a table name.
func (a *applier[Sel]) applyPending(pending []pglogrepl.Message) (map[graph.Handle]struct{}, error) {
	invalidated := make(map[graph.Handle]struct{})
	relationNames := make(map[uint32]string)

	for _, msg := range pending {
		switch m := msg.(type) {
		case *pglogrepl.RelationMessage:
			relationNames[m.RelationID] = m.RelationName
		case *pglogrepl.InsertMessage:
			if err := a.applyTuple(relationNames[m.RelationID], m.Tuple, invalidated); err != nil {
				return nil, err
			}
		case *pglogrepl.UpdateMessage:
			if err := a.applyTuple(relationNames[m.RelationID], m.NewTuple, invalidated); err != nil {
				return nil, err
			}
		case *pglogrepl.DeleteMessage, *pglogrepl.TruncateMessage:
			// deletions and truncations have no scalar value to feed into
			// the graph; quantities are append-only time series.
			a.log.WithField("type", m).Trace("ignoring delete/truncate message")
		default:
			a.log.WithField("type", m).Trace("ignoring unhandled message type")
		}
	}
	return invalidated, nil
}

func (a *applier[Sel]) applyTuple(
	relationName string, tuple *pglogrepl.TupleData, invalidated map[graph.Handle]struct{},
) error {
	if relationName == "" {
		return &errs.OutOfOrderMessage{Detail: "data message referenced a relation with no preceding Relation message"}
	}
	table, err := a.factory(relationName, tuple)
	if err != nil {
		return err
	}
	sel := table.Selector()
	t := table.Time()
	for _, cv := range table.Values() {
		for h := range a.engine.Update(cv.Name, sel, t, cv.Value) {
			invalidated[h] = struct{}{}
		}
	}
	return nil
}
