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

package config

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// OpenPool is the convenience constructor §6 of the specification this
// package implements calls for: it uses cfg.DatabaseURL when set by flags
// (falling back to DATABASE_URL otherwise) and retries the initial ping on
// a fixed backoff, the same startup-wait discipline the connection-pool
// helpers this was adapted from use for a database that may still be
// coming up (e.g. in a container that was just started alongside it).
func OpenPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	url := cfg.DatabaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		return nil, errors.New("no database URL: set --databaseURL or DATABASE_URL")
	}

	log := logrus.WithField("component", "config.OpenPool")

	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing database URL")
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "opening connection pool")
	}

	const maxAttempts = 10
	for attempt := 1; ; attempt++ {
		if err := pool.Ping(ctx); err == nil {
			break
		} else if attempt >= maxAttempts {
			pool.Close()
			return nil, errors.Wrap(err, "could not ping the database")
		} else {
			log.WithError(err).Info("waiting for database to become ready")
			select {
			case <-ctx.Done():
				pool.Close()
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}

	log.Debug("connection pool established")
	return pool, nil
}
