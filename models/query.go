package models

import (
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// JoinIDs renders an object-id list in the comma-delimited wire form.
func JoinIDs(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// ServiceQuery holds the parameters of a service-level query, which runs
// across layers.
type ServiceQuery struct {
	// LayerDefs maps layer ids to per-layer where clauses.
	LayerDefs map[int]string
	// Geometry filters the query spatially.
	Geometry *GeometryFilter
	// Time filters the query temporally.
	Time *TimeFilter
	// OutSR is the wanted output spatial reference: a well-known ID, a
	// SpatialReference, or a raw mapping. Omitted when nil.
	OutSR any

	ReturnGeometry  bool
	ReturnIDsOnly   bool
	ReturnCountOnly bool
	ReturnZ         bool
	ReturnM         bool
}

// NewServiceQuery returns a query with the service defaults: geometry
// returned, everything else off.
func NewServiceQuery() *ServiceQuery {
	return &ServiceQuery{ReturnGeometry: true}
}

// LayerQuery holds the parameters of a single-layer query.
type LayerQuery struct {
	// Where is the attribute filter. Defaults to "1=1" via NewLayerQuery.
	Where string
	// OutFields is the comma-delimited output field list, "*" for all.
	OutFields string
	// ObjectIDs restricts the query to the listed features.
	ObjectIDs []int
	// Time filters the query temporally.
	Time *TimeFilter
	// Geometry filters the query spatially.
	Geometry *GeometryFilter
	// GroupByFields lists the fields statistics are grouped by.
	GroupByFields string
	// Statistics requests server-side statistics instead of raw features.
	Statistics []StatisticDefinition
	// ResultOffset and ResultRecordCount page through large result sets.
	// Sent only when set, so an explicit zero offset stays expressible.
	ResultOffset      *int
	ResultRecordCount *int
	// Extra passes parameters with no structured field here (outSR,
	// orderByFields, ...) through verbatim. Extras override the base clause
	// and flag parameters; the structured optional fields override extras.
	Extra Params

	ReturnGeometry   bool
	ReturnIDsOnly    bool
	ReturnCountOnly  bool
	ReturnDistinct   bool
	ReturnExtentOnly bool
}

// NewLayerQuery returns a query with the layer defaults: every feature, every
// field, geometry included.
func NewLayerQuery() *LayerQuery {
	return &LayerQuery{
		Where:          "1=1",
		OutFields:      "*",
		ReturnGeometry: true,
	}
}

// RelatedRecordsQuery holds the parameters of a related-records query.
// Optional fields are sent only when set.
type RelatedRecordsQuery struct {
	ObjectIDs            []int
	RelationshipID       int
	OutFields            string
	DefinitionExpression string
	GDBVersion           string
	// OutSR is the spatial reference of the returned geometry: a
	// SpatialReference or a raw mapping. Omitted when nil.
	OutSR              any
	MaxAllowableOffset *float64
	GeometryPrecision  *int
	ReturnGeometry     bool
	ReturnZ            *bool
	ReturnM            *bool
}

// NewRelatedRecordsQuery returns a query for the features related to
// objectIDs through the given relationship, with all fields selected and
// geometry included.
func NewRelatedRecordsQuery(relationshipID int, objectIDs ...int) *RelatedRecordsQuery {
	return &RelatedRecordsQuery{
		RelationshipID: relationshipID,
		ObjectIDs:      objectIDs,
		OutFields:      "*",
		ReturnGeometry: true,
	}
}

// Validate reports whether the query is complete enough to send.
func (q RelatedRecordsQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.ObjectIDs, validation.Required),
	)
}
