package models

import "errors"

// ErrInvalidFeatures is returned when an edit operation receives a feature
// payload that is neither a feature mapping nor a list of feature mappings.
var ErrInvalidFeatures = errors.New("features must be a feature mapping or a list of feature mappings")

// Feature is a single feature-service record: attribute values plus an
// optional geometry.
type Feature struct {
	Attributes map[string]any `json:"attributes,omitempty"`
	Geometry   any            `json:"geometry,omitempty"`
}

// NormalizeFeatures coerces the shapes accepted by the edit operations into a
// flat list: a single Feature or raw mapping becomes a one-element list, and
// lists pass through with every element checked. The elements keep their
// original form so the wire encoding of a single feature and of a one-element
// list is identical.
func NormalizeFeatures(v any) ([]any, error) {
	switch f := v.(type) {
	case Feature:
		return []any{f}, nil
	case *Feature:
		if f == nil {
			return nil, ErrInvalidFeatures
		}
		return []any{*f}, nil
	case map[string]any:
		return []any{f}, nil
	case Params:
		return []any{map[string]any(f)}, nil
	case []Feature:
		out := make([]any, len(f))
		for i := range f {
			out[i] = f[i]
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(f))
		for i := range f {
			out[i] = f[i]
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(f))
		for _, el := range f {
			switch e := el.(type) {
			case Feature, map[string]any, Params:
				out = append(out, el)
			case *Feature:
				if e == nil {
					return nil, ErrInvalidFeatures
				}
				out = append(out, *e)
			default:
				return nil, ErrInvalidFeatures
			}
		}
		return out, nil
	default:
		return nil, ErrInvalidFeatures
	}
}
