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

// Package config is the ambient configuration surface for standalone use of
// the engine: which database to connect to and whether to enable
// replication. It follows the Bind/Preflight shape used throughout the
// pipeline this was ported from, so callers embedding the engine in a
// larger flag set can compose it the same way.
package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Config holds the engine's connection and replication settings.
type Config struct {
	// DatabaseURL is consulted by the convenience pool constructor only;
	// callers that already manage their own *pgxpool.Pool never need it.
	DatabaseURL string
	Replication bool
}

// Bind registers the config's flags on flags.
func (c *Config) Bind(flags *pflag.FlagSet) {
	flags.StringVar(
		&c.DatabaseURL,
		"databaseURL",
		"",
		"a postgres connection string; also read from the DATABASE_URL environment variable")
	flags.BoolVar(
		&c.Replication,
		"replication",
		false,
		"enable logical-replication sync of incremental changes")
}

// Preflight validates the config after flags and environment variables have
// been applied.
func (c *Config) Preflight() error {
	if c.DatabaseURL == "" {
		return errors.New("databaseURL unset")
	}
	return nil
}
