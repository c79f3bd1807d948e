// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

package models

import (
	"strconv"
	"time"
)

// Parameter names under which a geometry filter's spatial relationship is
// sent. Service-level queries use the short spelling, layer-level queries the
// long one.
const (
	SpatialRelKeyService = "spatialRel"
	SpatialRelKeyLayer   = "spatialRelationship"
)

// GeometryFilter narrows an operation to features matching a spatial
// predicate.
type GeometryFilter struct {
	// Geometry is the filter geometry: an Envelope, a raw geometry mapping,
	// or any JSON-encodable geometry value.
	Geometry any
	// GeometryType names the geometry's type, one of the Geometry* constants.
	GeometryType string
	// SpatialRel is the predicate, one of the SpatialRel* constants.
	SpatialRel string
	// InSR is the spatial reference of Geometry: a well-known ID, a
	// SpatialReference, or a raw mapping. Omitted from the request when nil.
	InSR any
}

// NewEnvelopeFilter returns a filter selecting features that intersect env.
// The envelope's spatial reference, when set, doubles as the input reference.
func NewEnvelopeFilter(env Envelope) *GeometryFilter {
	f := &GeometryFilter{
		Geometry:     env,
		GeometryType: GeometryEnvelope,
		SpatialRel:   SpatialRelIntersects,
	}
	if env.SpatialReference != nil {
		f.InSR = *env.SpatialReference
	}
	return f
}

// ApplyTo copies the filter onto p under the canonical parameter names.
// relKey selects the spelling of the spatial-relationship key, one of
// SpatialRelKeyService or SpatialRelKeyLayer.
func (f *GeometryFilter) ApplyTo(p Params, relKey string) {
	if f == nil {
		return
	}
	p["geometry"] = f.Geometry
	p["geometryType"] = f.GeometryType
	p[relKey] = f.SpatialRel
	if f.InSR != nil {
		p["inSR"] = f.InSR
	}
}

// TimeFilter restricts an operation to a time instant or range.
type TimeFilter struct {
	Start time.Time
	End   time.Time
}

// NewTimeFilter returns a filter covering the closed range [start, end].
func NewTimeFilter(start, end time.Time) *TimeFilter {
	return &TimeFilter{Start: start, End: end}
}

// Value renders the filter in the epoch-milliseconds form the service
// expects: "start,end" for a range, a single value for an instant.
func (t *TimeFilter) Value() string {
	if t == nil {
		return ""
	}
	start := strconv.FormatInt(t.Start.UnixMilli(), 10)
	if t.End.IsZero() {
		return start
	}
	return start + "," + strconv.FormatInt(t.End.UnixMilli(), 10)
}

// Statistic types accepted in a StatisticDefinition.
const (
	StatisticCount  = "count"
	StatisticSum    = "sum"
	StatisticMin    = "min"
	StatisticMax    = "max"
	StatisticAvg    = "avg"
	StatisticStdDev = "stddev"
	StatisticVar    = "var"
)

// StatisticDefinition describes one output statistic of a layer query.
type StatisticDefinition struct {
	StatisticType         string `json:"statisticType"`
	OnStatisticField      string `json:"onStatisticField"`
	OutStatisticFieldName string `json:"outStatisticFieldName,omitempty"`
}
