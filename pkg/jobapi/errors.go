package jobapi

import (
	"errors"
	"net/http"

	"github.com/sportolo/jobs/pkg/jobqueue"
)

// Binding errors
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrMissingContentType   = errors.New("missing content type")
	ErrBodyTooLarge         = errors.New("request body too large")
)

// HTTPError pairs a status code with a stable error code.
type HTTPError struct {
	Status int
	Code   string
}

func (e HTTPError) Error() string {
	return e.Code
}

var (
	errBadRequest       = HTTPError{Status: http.StatusBadRequest, Code: "bad_request"}
	errNotFound         = HTTPError{Status: http.StatusNotFound, Code: "job_not_found"}
	errConflict         = HTTPError{Status: http.StatusConflict, Code: "idempotency_conflict"}
	errUnprocessable    = HTTPError{Status: http.StatusUnprocessableEntity, Code: "invalid_request"}
	errUnknownPipeline  = HTTPError{Status: http.StatusUnprocessableEntity, Code: "unknown_pipeline"}
	errUnsupportedMedia = HTTPError{Status: http.StatusUnsupportedMediaType, Code: "unsupported_media_type"}
	errTooLarge         = HTTPError{Status: http.StatusRequestEntityTooLarge, Code: "request_entity_too_large"}
	errInternal         = HTTPError{Status: http.StatusInternalServerError, Code: "internal_error"}
)

// httpErrorFor maps domain and binding errors to an HTTP error.
func httpErrorFor(err error) HTTPError {
	switch {
	case errors.Is(err, jobqueue.ErrJobNotFound):
		return errNotFound
	case errors.Is(err, jobqueue.ErrIdempotencyConflict):
		return errConflict
	case errors.Is(err, jobqueue.ErrUnknownPipeline):
		return errUnknownPipeline
	case errors.Is(err, jobqueue.ErrInvalidArgument):
		return errUnprocessable
	case errors.Is(err, ErrBodyTooLarge):
		return errTooLarge
	case errors.Is(err, ErrUnsupportedMediaType), errors.Is(err, ErrMissingContentType):
		return errUnsupportedMedia
	case errors.Is(err, ErrInvalidJSON):
		return errBadRequest
	default:
		return errInternal
	}
}
