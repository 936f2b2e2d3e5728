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

// Package errs collects the error values and types the evaluator and
// replication pipeline can return. Plain infrastructure failures (a failed
// query, a bad connection) are wrapped with github.com/pkg/errors at the
// point they occur rather than given a dedicated type here.
package errs

import "fmt"

// ErrReplicationNotEnabled is returned by SyncChanges when the engine was
// constructed without a replication session.
var ErrReplicationNotEnabled = fmt.Errorf("tem: replication not enabled for this engine")

// UnknownTable is returned when a Relation message or tuple names a table
// the schema-glue TableFactory doesn't recognize.
type UnknownTable struct {
	RelationName string
}

func (e *UnknownTable) Error() string {
	return fmt.Sprintf("tem: unknown table %q", e.RelationName)
}

// UnexpectedColumnCount is returned when a tuple's column count doesn't
// match what the schema-glue decoder for that table expects.
type UnexpectedColumnCount struct {
	RelationName string
	Expected     int
	Actual       int
}

func (e *UnexpectedColumnCount) Error() string {
	return fmt.Sprintf("tem: table %q expected %d columns, got %d", e.RelationName, e.Expected, e.Actual)
}

// UnsupportedColumnValue is returned when a tuple column is null or an
// unchanged-toast placeholder where a scalar was required.
type UnsupportedColumnValue struct {
	Column string
	Reason string
}

func (e *UnsupportedColumnValue) Error() string {
	return fmt.Sprintf("tem: column %q: %s", e.Column, e.Reason)
}

// OutOfOrderMessage is returned when the replication stream violates the
// Begin/data/Commit ordering the applier requires.
type OutOfOrderMessage struct {
	Detail string
}

func (e *OutOfOrderMessage) Error() string {
	return fmt.Sprintf("tem: out-of-order replication message: %s", e.Detail)
}
