package domain

import "net/http"

// Error is a request-level failure carrying the HTTP status code and the
// description that go into the failure response body.
type Error struct {
	Code        int
	Description string
}

func (e *Error) Error() string {
	return e.Description
}

// Request failure conditions. Quota and protocol violations fail the whole
// request even when some files were already accepted.
var (
	ErrBadContentLength = &Error{Code: http.StatusBadRequest, Description: "bad content length"}
	ErrBadContentType   = &Error{Code: http.StatusBadRequest, Description: "bad content type"}
	ErrBadField         = &Error{Code: http.StatusBadRequest, Description: "bad field name"}
	ErrTooManyFiles     = &Error{Code: http.StatusBadRequest, Description: "too many files"}
	ErrNoInput          = &Error{Code: http.StatusBadRequest, Description: "no input files"}
	ErrPayloadTooLarge  = &Error{Code: http.StatusRequestEntityTooLarge, Description: "payload too large"}
	ErrInternal         = &Error{Code: http.StatusInternalServerError, Description: "internal server error"}
)
