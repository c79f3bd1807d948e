// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

// Package connection provides the transport layer for talking to an ArcGIS
// style REST site.
//
// The primary abstraction is [Connection], which decouples the service
// bindings from the underlying HTTP stack. The package ships one
// implementation, [SiteConnection], which owns request encoding, token
// lifecycle, and the mapping of transport-level failures to the sentinel
// errors defined in errors.go, so callers can use [errors.Is] regardless of
// transport details (e.g. [ErrUnauthorized] for 401, [ErrNotFound] for 404).
package connection

import (
	"context"

	"github.com/akochman/ArcREST/models"
)

//go:generate mockgen -source=connection.go -destination=../internal/mock/connection_mock.go -package=mock

// Connection defines what the service bindings need from a transport: encoded
// GET and POST requests returning decoded JSON records, file downloads, and
// the site root for diagnostics.
//
// pathOrURL may be a path relative to the site root or an absolute URL;
// absolute URLs bypass the configured base.
type Connection interface {
	// Get issues a GET request with params encoded into the query string
	// and decodes the JSON response body. Bodies that are a bare JSON array
	// are returned as a record with the array under the "items" key.
	Get(ctx context.Context, pathOrURL string, params models.Params) (models.Record, error)

	// Post issues a POST request with postdata form-encoded, switching to
	// multipart encoding when files are attached, and decodes the JSON
	// response body.
	Post(ctx context.Context, pathOrURL string, postdata models.Params, files ...models.File) (models.Record, error)

	// Download streams the body of rawURL into a file under outDir and
	// returns the full path written. The file name comes from the
	// Content-Disposition header when present, otherwise from the URL.
	Download(ctx context.Context, rawURL string, params models.Params, outDir string) (string, error)

	// URL returns the site root the connection was built with.
	URL() string
}
