package models

// Geometry type identifiers understood by feature services.
const (
	GeometryPoint      = "esriGeometryPoint"
	GeometryMultipoint = "esriGeometryMultipoint"
	GeometryPolyline   = "esriGeometryPolyline"
	GeometryPolygon    = "esriGeometryPolygon"
	GeometryEnvelope   = "esriGeometryEnvelope"
)

// Spatial relationships accepted by geometry filters.
const (
	SpatialRelIntersects         = "esriSpatialRelIntersects"
	SpatialRelContains           = "esriSpatialRelContains"
	SpatialRelCrosses            = "esriSpatialRelCrosses"
	SpatialRelEnvelopeIntersects = "esriSpatialRelEnvelopeIntersects"
	SpatialRelIndexIntersects    = "esriSpatialRelIndexIntersects"
	SpatialRelOverlaps           = "esriSpatialRelOverlaps"
	SpatialRelTouches            = "esriSpatialRelTouches"
	SpatialRelWithin             = "esriSpatialRelWithin"
)

// SpatialReference identifies a coordinate system by well-known ID or by
// well-known text.
type SpatialReference struct {
	WKID       int    `json:"wkid,omitempty"`
	LatestWKID int    `json:"latestWkid,omitempty"`
	WKT        string `json:"wkt,omitempty"`
}

// SpatialRefValue coerces the loosely typed spatial-reference inputs accepted
// by the query operations into a wire value. Structured references and raw
// mappings pass through; anything else yields nil and the caller omits the
// parameter.
func SpatialRefValue(v any) any {
	switch sr := v.(type) {
	case nil:
		return nil
	case SpatialReference:
		return sr
	case *SpatialReference:
		if sr == nil {
			return nil
		}
		return *sr
	case map[string]any:
		return sr
	case Params:
		return map[string]any(sr)
	case int:
		return sr
	case string:
		if sr == "" {
			return nil
		}
		return sr
	default:
		return nil
	}
}

// Envelope is an axis-aligned bounding box.
type Envelope struct {
	XMin             float64           `json:"xmin"`
	YMin             float64           `json:"ymin"`
	XMax             float64           `json:"xmax"`
	YMax             float64           `json:"ymax"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}
