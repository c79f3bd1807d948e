package models

import "errors"

// ErrInvalidCalcExpression is returned when a calculate operation receives an
// expression payload that is neither an expression mapping nor a list of
// expression mappings.
var ErrInvalidCalcExpression = errors.New("calc expressions must be an expression mapping or a list of expression mappings")

// SQL dialects accepted by the calculate operation.
const (
	SQLFormatStandard = "standard"
	SQLFormatNative   = "native"
)

// EditOptions carries the optional parameters shared by the feature edit
// operations.
type EditOptions struct {
	// GDBVersion names the geodatabase version edits apply to. Empty means
	// the default version.
	GDBVersion string
	// RollbackOnFailure undoes the whole edit when any single feature fails.
	RollbackOnFailure bool
}

// NewEditOptions returns the edit defaults: default geodatabase version,
// rollback on failure enabled.
func NewEditOptions() *EditOptions {
	return &EditOptions{RollbackOnFailure: true}
}

// DeleteOptions selects the features a delete operation removes. Any
// combination of id list, where clause and geometry filter may be set.
type DeleteOptions struct {
	ObjectIDs         []int
	Where             string
	Geometry          *GeometryFilter
	GDBVersion        string
	RollbackOnFailure bool
}

// NewDeleteOptions returns the delete defaults with rollback on failure
// enabled. Callers must still set at least one selector.
func NewDeleteOptions() *DeleteOptions {
	return &DeleteOptions{RollbackOnFailure: true}
}

// ApplyEditsOptions batches adds, updates and deletes into one atomic call.
// Deletes are accepted only as a comma-delimited id string; adds and updates
// take feature lists.
type ApplyEditsOptions struct {
	Adds              []Feature
	Updates           []Feature
	Deletes           string
	GDBVersion        string
	UseGlobalIDs      bool
	RollbackOnFailure bool
}

// NewApplyEditsOptions returns the batch-edit defaults with rollback on
// failure enabled.
func NewApplyEditsOptions() *ApplyEditsOptions {
	return &ApplyEditsOptions{RollbackOnFailure: true}
}

// CalcExpression assigns one field a literal value or the result of a SQL
// expression.
type CalcExpression struct {
	Field         string `json:"field"`
	Value         any    `json:"value,omitempty"`
	SQLExpression string `json:"sqlExpression,omitempty"`
}

// NormalizeCalcExpressions coerces the shapes accepted by the calculate
// operation into a flat list, mirroring NormalizeFeatures.
func NormalizeCalcExpressions(v any) ([]any, error) {
	switch e := v.(type) {
	case CalcExpression:
		return []any{e}, nil
	case *CalcExpression:
		if e == nil {
			return nil, ErrInvalidCalcExpression
		}
		return []any{*e}, nil
	case map[string]any:
		return []any{e}, nil
	case Params:
		return []any{map[string]any(e)}, nil
	case []CalcExpression:
		out := make([]any, len(e))
		for i := range e {
			out[i] = e[i]
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(e))
		for i := range e {
			out[i] = e[i]
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(e))
		for _, el := range e {
			switch x := el.(type) {
			case CalcExpression, map[string]any, Params:
				out = append(out, el)
			case *CalcExpression:
				if x == nil {
					return nil, ErrInvalidCalcExpression
				}
				out = append(out, *x)
			default:
				return nil, ErrInvalidCalcExpression
			}
		}
		return out, nil
	default:
		return nil, ErrInvalidCalcExpression
	}
}
