package shopapi

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned for any non-2xx answer from the API.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Code, e.Message)
}

func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

func IsClientError(err error) bool {
	code, ok := StatusCode(err)
	return ok && code >= http.StatusBadRequest && code < http.StatusInternalServerError
}
