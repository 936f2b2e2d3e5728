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

package pgoutput

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/jackc/pglogrepl"
)

func TestDecodeInt64Text(t *testing.T) {
	col := &pglogrepl.TupleDataColumn{DataType: 't', Data: []byte("42")}
	v, err := DecodeInt64("n", col)
	if err != nil || v != 42 {
		t.Fatalf("got %d, %v", v, err)
	}
}

func TestDecodeInt64Binary(t *testing.T) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(int64(-7)))
	col := &pglogrepl.TupleDataColumn{DataType: 'b', Data: buf}
	v, err := DecodeInt64("n", col)
	if err != nil || v != -7 {
		t.Fatalf("got %d, %v", v, err)
	}
}

func TestDecodeFloat64Binary(t *testing.T) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(3.5))
	col := &pglogrepl.TupleDataColumn{DataType: 'b', Data: buf}
	v, err := DecodeFloat64("n", col)
	if err != nil || v != 3.5 {
		t.Fatalf("got %v, %v", v, err)
	}
}

func TestDecodeNullIsError(t *testing.T) {
	col := &pglogrepl.TupleDataColumn{DataType: 'n'}
	if _, err := DecodeFloat64("n", col); err == nil {
		t.Fatalf("expected an error decoding a null column")
	}
}

func TestDecodeUnchangedToastIsError(t *testing.T) {
	col := &pglogrepl.TupleDataColumn{DataType: 'u'}
	if _, err := DecodeFloat64("n", col); err == nil {
		t.Fatalf("expected an error decoding an unchanged-toast column")
	}
}

func TestDecodeTimeBinaryUsesCorrectedPostgresEpoch(t *testing.T) {
	// zero microseconds since the postgres epoch is 2000-01-01T00:00:00Z
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, 0)
	col := &pglogrepl.TupleDataColumn{DataType: 'b', Data: buf}
	tm, err := DecodeTime("t", col)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := tm.String(); got != "2000-01-01T00:00:00Z" {
		t.Fatalf("got %s, want 2000-01-01T00:00:00Z", got)
	}
}

func TestDecodeTimeText(t *testing.T) {
	col := &pglogrepl.TupleDataColumn{DataType: 't', Data: []byte("2024-03-15T12:00:00Z")}
	tm, err := DecodeTime("t", col)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := tm.String(); got != "2024-03-15T12:00:00Z" {
		t.Fatalf("got %s", got)
	}
}
