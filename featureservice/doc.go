// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

// Package featureservice binds a remote feature service and its layers.
//
// A FeatureService wraps the service endpoint: metadata, service-wide
// queries and the replica lifecycle. FeatureLayer and TableLayer wrap a
// single child endpoint and expose queries, feature edits, calculations
// and attachments. All metadata is fetched lazily on first use and cached
// until Refresh is called.
//
// Every operation takes a context.Context and performs at most one round
// trip, except replica creation which can post the job and then poll its
// status resource until the job reaches a terminal state.
package featureservice
