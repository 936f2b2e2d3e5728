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

// Package replication manages a single logical-replication slot and
// publication on the source database: creating them, polling for pending
// changes through pg_logical_slot_get_binary_changes, and tearing them down
// again. It deliberately polls through a plain SQL function call rather
// than opening a streaming replication connection (the approach
// jackc/pglogrepl's own StartReplication helpers are built around) -- the
// source this was ported from used the same polling approach, and it keeps
// the session on an ordinary (non-replication-mode) connection acquired
// from the pool and then detached from it.
package replication

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pglogrepl"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const outputPlugin = "pgoutput"

// Session owns one logical-replication slot and publication for the
// lifetime of an engine.
type Session struct {
	conn        *pgx.Conn
	slotName    string
	publication string
	log         *logrus.Entry
}

// New acquires a dedicated connection from pool, detaching it so the pool
// no longer manages its lifecycle, and provisions a temporary replication
// slot and an ALL TABLES publication on it.
func New(ctx context.Context, pool *pgxpool.Pool) (*Session, error) {
	pooled, err := pool.Acquire(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	conn := pooled.Hijack()

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	publication := fmt.Sprintf("tem_pub_%s", suffix)
	slotName := fmt.Sprintf("tem_slot_%s", suffix)

	log := logrus.WithFields(logrus.Fields{
		"component":   "replication.Session",
		"slot":        slotName,
		"publication": publication,
	})

	if _, err := conn.Exec(ctx, fmt.Sprintf("DROP PUBLICATION IF EXISTS %s", publication)); err != nil {
		_ = conn.Close(ctx)
		return nil, errors.Wrap(err, "dropping stale publication")
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("CREATE PUBLICATION %s FOR ALL TABLES", publication)); err != nil {
		_ = conn.Close(ctx)
		return nil, errors.Wrap(err, "creating publication")
	}
	if _, err := conn.Exec(ctx, "SELECT pg_create_logical_replication_slot($1, $2, true)", slotName, outputPlugin); err != nil {
		_ = conn.Close(ctx)
		return nil, errors.Wrap(err, "creating logical replication slot")
	}

	log.Debug("replication session established")
	return &Session{conn: conn, slotName: slotName, publication: publication, log: log}, nil
}

// GrabChanges polls the slot for any transactions recorded since the last
// call, decoding each row's pgoutput payload into a typed message.
func (s *Session) GrabChanges(ctx context.Context) ([]pglogrepl.Message, error) {
	rows, err := s.conn.Query(
		ctx,
		`SELECT data FROM pg_logical_slot_get_binary_changes($1, NULL, NULL,
			'proto_version', '1', 'publication_names', $2)`,
		s.slotName, s.publication,
	)
	if err != nil {
		return nil, errors.Wrap(err, "grabbing replication changes")
	}
	defer rows.Close()

	var out []pglogrepl.Message
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "scanning replication row")
		}
		msg, err := pglogrepl.Parse(data)
		if err != nil {
			return nil, errors.Wrap(err, "decoding pgoutput message")
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating replication rows")
	}
	s.log.WithField("messages", len(out)).Trace("grabbed replication changes")
	return out, nil
}

// Close drops the slot and publication and releases the underlying
// connection.
func (s *Session) Close(ctx context.Context) error {
	defer func() { _ = s.conn.Close(ctx) }()

	if _, err := s.conn.Exec(ctx, "SELECT pg_drop_replication_slot($1)", s.slotName); err != nil {
		s.log.WithError(err).Warn("failed to drop replication slot during cleanup")
	}
	if _, err := s.conn.Exec(ctx, fmt.Sprintf("DROP PUBLICATION IF EXISTS %s", s.publication)); err != nil {
		s.log.WithError(err).Warn("failed to drop publication during cleanup")
		return errors.Wrap(err, "dropping publication")
	}
	return nil
}
