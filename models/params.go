package models

// Params holds the parameters of a single feature-service request. Values may
// be scalars or composite values (maps, slices, structs); the connection layer
// owns the wire encoding. Keys that are never set are never sent.
type Params map[string]any

// Record is a decoded JSON response body.
type Record map[string]any

// Str returns the string value stored under key, or "" when the key is absent
// or holds a non-string value.
func (r Record) Str(key string) string {
	if r == nil {
		return ""
	}
	s, _ := r[key].(string)
	return s
}

// Has reports whether key is present in the record.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// File describes a local file attached to a multipart request.
type File struct {
	// Param is the multipart form field name.
	Param string
	// Name is the file name reported to the server. Defaults to the base
	// name of Path when empty.
	Name string
	// Path is the local path of the file to send.
	Path string
}
