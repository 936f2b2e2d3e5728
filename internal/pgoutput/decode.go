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

// Package pgoutput decodes the scalar column types the engine understands
// out of pgoutput tuple columns. Message framing and the TupleData layout
// itself are handled by github.com/jackc/pglogrepl; this package only adds
// the typed scalar decoding that library leaves to the caller, following the
// Decode contract of the replication pipeline this was ported from.
package pgoutput

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/ampiato/tem/internal/clock"
	"github.com/ampiato/tem/internal/errs"
	"github.com/jackc/pglogrepl"
)

// columnValue classifies a TupleDataColumn the same way the wire protocol
// does: 'n' null, 'u' unchanged TOAST, 't' text, 'b' binary.
func columnValue(name string, col *pglogrepl.TupleDataColumn) ([]byte, bool, error) {
	switch col.DataType {
	case 'n':
		return nil, false, &errs.UnsupportedColumnValue{Column: name, Reason: "column is null"}
	case 'u':
		return nil, false, &errs.UnsupportedColumnValue{Column: name, Reason: "unchanged TOAST value was not sent"}
	case 't':
		return col.Data, false, nil
	case 'b':
		return col.Data, true, nil
	default:
		return nil, false, &errs.UnsupportedColumnValue{Column: name, Reason: "unrecognized column data type tag"}
	}
}

// DecodeInt64 decodes a signed 64-bit integer column.
func DecodeInt64(name string, col *pglogrepl.TupleDataColumn) (int64, error) {
	data, binaryForm, err := columnValue(name, col)
	if err != nil {
		return 0, err
	}
	if binaryForm {
		if len(data) != 8 {
			return 0, &errs.UnsupportedColumnValue{Column: name, Reason: "binary int8 must be 8 bytes"}
		}
		return int64(binary.BigEndian.Uint64(data)), nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, &errs.UnsupportedColumnValue{Column: name, Reason: "malformed text int8: " + err.Error()}
	}
	return v, nil
}

// DecodeFloat32 decodes a 32-bit floating point column.
func DecodeFloat32(name string, col *pglogrepl.TupleDataColumn) (float32, error) {
	data, binaryForm, err := columnValue(name, col)
	if err != nil {
		return 0, err
	}
	if binaryForm {
		if len(data) != 4 {
			return 0, &errs.UnsupportedColumnValue{Column: name, Reason: "binary float4 must be 4 bytes"}
		}
		return math.Float32frombits(binary.BigEndian.Uint32(data)), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 32)
	if err != nil {
		return 0, &errs.UnsupportedColumnValue{Column: name, Reason: "malformed text float4: " + err.Error()}
	}
	return float32(v), nil
}

// DecodeFloat64 decodes a 64-bit floating point column.
func DecodeFloat64(name string, col *pglogrepl.TupleDataColumn) (float64, error) {
	data, binaryForm, err := columnValue(name, col)
	if err != nil {
		return 0, err
	}
	if binaryForm {
		if len(data) != 8 {
			return 0, &errs.UnsupportedColumnValue{Column: name, Reason: "binary float8 must be 8 bytes"}
		}
		return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, &errs.UnsupportedColumnValue{Column: name, Reason: "malformed text float8: " + err.Error()}
	}
	return v, nil
}

// DecodeTime decodes a timestamptz column. Binary form carries microseconds
// since the Postgres epoch (2000-01-01); text form is RFC3339-compatible.
func DecodeTime(name string, col *pglogrepl.TupleDataColumn) (clock.Time, error) {
	data, binaryForm, err := columnValue(name, col)
	if err != nil {
		return clock.Time{}, err
	}
	if binaryForm {
		if len(data) != 8 {
			return clock.Time{}, &errs.UnsupportedColumnValue{Column: name, Reason: "binary timestamptz must be 8 bytes"}
		}
		micros := int64(binary.BigEndian.Uint64(data))
		return clock.FromMicrosecondsSincePostgresEpoch(micros), nil
	}
	t, err := clock.FromRFC3339(strings.TrimSpace(string(data)))
	if err != nil {
		return clock.Time{}, &errs.UnsupportedColumnValue{Column: name, Reason: "malformed text timestamptz: " + err.Error()}
	}
	return t, nil
}

// DecodeEntityID decodes the bare int64 identifier of an entity-reference
// column. Schema-glue code turns the identifier into a concrete EntityRef
// via its own FromEntityID constructor; this package has no way to
// construct domain types itself.
func DecodeEntityID(name string, col *pglogrepl.TupleDataColumn) (int64, error) {
	return DecodeInt64(name, col)
}
