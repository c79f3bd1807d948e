package connection

import "errors"

// Sentinel transport errors. mapHTTPError wraps the matching sentinel with
// the response body so callers can both errors.Is and read the detail.
var (
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrInternalServer     = errors.New("internal server error")
	ErrBadGateway         = errors.New("bad gateway")
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrDecode marks a response body that is not valid JSON.
	ErrDecode = errors.New("decode response")

	// ErrTokenRequest marks a failed token acquisition.
	ErrTokenRequest = errors.New("token request failed")
)
