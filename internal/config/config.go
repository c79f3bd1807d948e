// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the ArcREST
// tooling. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, and an optional
// JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Site holds the ArcGIS site address and the credentials used to
	// acquire tokens against it.
	Site Site `envPrefix:"SITE_"`

	// Client holds HTTP behaviour settings for the outbound transport.
	Client Client `envPrefix:"CLIENT_"`

	// Replica holds polling and export settings for asynchronous replica
	// jobs.
	Replica Replica `envPrefix:"REPLICA_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged under the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Site identifies the remote ArcGIS site and how to authenticate against it.
// Either a username/password pair (tokens are generated on demand) or a
// pre-acquired token may be supplied; with neither, requests go out
// anonymously.
type Site struct {
	// URL is the site root, e.g. "https://gis.example.com/arcgis".
	// Env: SITE_URL
	URL string `env:"URL"`

	// Username and Password are the credentials for generateToken.
	// Env: SITE_USERNAME, SITE_PASSWORD
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`

	// Token is a pre-acquired token used instead of generating one.
	// Env: SITE_TOKEN
	Token string `env:"TOKEN"`

	// Referer binds generated tokens to a referer header value instead of
	// the caller's IP.
	// Env: SITE_REFERER
	Referer string `env:"REFERER"`
}

// Client holds outbound HTTP behaviour settings.
type Client struct {
	// RequestTimeout bounds a single round trip (e.g. "30s", "1m").
	// Env: CLIENT_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RetryCount is how many times a failed request is retried; zero
	// disables retries.
	// Env: CLIENT_RETRY_COUNT
	RetryCount int `env:"RETRY_COUNT"`

	// RetryWaitTime is the pause between retries (e.g. "500ms").
	// Env: CLIENT_RETRY_WAIT_TIME
	RetryWaitTime time.Duration `env:"RETRY_WAIT_TIME"`
}

// Replica holds settings for asynchronous replica jobs: how their status
// resources are polled and where exported files land.
type Replica struct {
	// PollInitialInterval is the delay before the first status re-poll.
	// Env: REPLICA_POLL_INITIAL_INTERVAL
	PollInitialInterval time.Duration `env:"POLL_INITIAL_INTERVAL"`

	// PollMaxInterval caps the delay between polls as backoff grows.
	// Env: REPLICA_POLL_MAX_INTERVAL
	PollMaxInterval time.Duration `env:"POLL_MAX_INTERVAL"`

	// PollMaxElapsedTime bounds the whole wait for one job.
	// Env: REPLICA_POLL_MAX_ELAPSED_TIME
	PollMaxElapsedTime time.Duration `env:"POLL_MAX_ELAPSED_TIME"`

	// OutDir is the directory exported replica files are downloaded into.
	// Env: REPLICA_OUT_DIR
	OutDir string `env:"OUT_DIR"`
}

// GetStructuredConfig loads, merges, and validates the tooling configuration
// from all available sources. Sources are merged in priority order, highest
// first, and a field set by a higher source is never overwritten:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
