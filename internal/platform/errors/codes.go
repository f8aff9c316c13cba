// Package errors provides structured error handling for confide.space.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Admission errors
	CodeEmptyText      Code = "EMPTY_TEXT"
	CodeTextTooLong    Code = "TEXT_TOO_LONG"
	CodeContentBlocked Code = "CONTENT_BLOCKED"
	CodeRateLimit      Code = "RATE_LIMIT"
	CodeActorRequired  Code = "ACTOR_REQUIRED"

	// Feed errors
	CodeNearRequiresCoordinates Code = "NEAR_REQUIRES_COORDINATES"
	CodeInvalidCursor           Code = "INVALID_CURSOR"
	CodeInvalidFeedMode         Code = "INVALID_FEED_MODE"

	// Submission input errors
	CodeInvalidRequest        Code = "INVALID_REQUEST"
	CodeCoordinatesIncomplete Code = "COORDINATES_INCOMPLETE"

	// Place resolution errors
	CodePlaceQueryInvalid Code = "PLACE_QUERY_INVALID"
	CodePlaceLookupFailed Code = "PLACE_LOOKUP_FAILED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// UnprocessableEntity - the submission itself is rejected
	case CodeEmptyText,
		CodeTextTooLong,
		CodeContentBlocked:
		return http.StatusUnprocessableEntity

	// BadRequest - malformed or incomplete input
	case CodeActorRequired,
		CodeNearRequiresCoordinates,
		CodeInvalidCursor,
		CodeInvalidFeedMode,
		CodeInvalidRequest,
		CodeCoordinatesIncomplete,
		CodePlaceQueryInvalid:
		return http.StatusBadRequest

	case CodeRateLimit:
		return http.StatusTooManyRequests

	case CodeNotFound:
		return http.StatusNotFound

	case CodePlaceLookupFailed:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
