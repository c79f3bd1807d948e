package featureservice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akochman/ArcREST/models"
)

var (
	// ErrSyncNotSupported is returned when a replica is requested from a
	// service that has sync disabled and no Extract capability.
	ErrSyncNotSupported = errors.New("sync is not enabled and the service does not support extraction")

	// ErrAttachmentsNotSupported is returned by attachment edits on layers
	// whose metadata does not declare attachment support.
	ErrAttachmentsNotSupported = errors.New("attachments are not supported for this feature service")

	// ErrNotImplemented marks operations that are declared but not wired to
	// the remote API yet.
	ErrNotImplemented = errors.New("operation is not implemented")

	// ErrMissingStatusURL is returned when an asynchronous job response does
	// not tell the client where to poll.
	ErrMissingStatusURL = errors.New("job response carries no status url")

	// ErrPollTimeout is returned when a job is still running after the poll
	// policy's whole time budget was spent.
	ErrPollTimeout = errors.New("job polling budget exhausted")
)

// ServerError is a failure the service reports inside an otherwise successful
// response body, under the top-level "error" key.
type ServerError struct {
	Code    int
	Message string
	Details []string
}

func (e *ServerError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("server error %d: %s (%s)", e.Code, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// serverErrorFromRecord extracts a ServerError when rec carries an error key,
// nil otherwise.
func serverErrorFromRecord(rec models.Record) *ServerError {
	raw, found := rec["error"]
	if !found {
		return nil
	}
	body, ok := raw.(map[string]any)
	if !ok {
		return &ServerError{Message: fmt.Sprintf("%v", raw)}
	}

	serr := &ServerError{}
	if code, ok := body["code"].(float64); ok {
		serr.Code = int(code)
	}
	if msg, ok := body["message"].(string); ok {
		serr.Message = msg
	}
	if details, ok := body["details"].([]any); ok {
		for _, d := range details {
			if s, ok := d.(string); ok {
				serr.Details = append(serr.Details, s)
			}
		}
	}
	return serr
}
