package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Client operations.
//
// They can be checked with errors.Is():
//
//	if errors.Is(err, api.ErrStatus) {
//	    // the server answered with a non-2xx status
//	}
var (
	// ErrTransport is returned when the request could not be sent or the
	// response could not be read (connection refused, reset, ctx cancelled).
	ErrTransport = errors.New("request failed")

	// ErrStatus is returned when the server answered with a non-2xx status.
	// The concrete error is a *StatusError.
	ErrStatus = errors.New("unexpected status")

	// ErrMalformed is returned when a success response body is not the
	// expected JSON.
	ErrMalformed = errors.New("malformed response")
)

// StatusError describes a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int

	// Detail is the server's "detail" message, empty when the body had none
	// or could not be parsed.
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// Unwrap makes errors.Is(err, ErrStatus) true.
func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// Detail returns the server-provided detail message carried by err, if any.
func Detail(err error) (string, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail, true
	}
	return "", false
}

// IsNotFound returns true if the server answered 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == 404
}

// parseDetail extracts the "detail" member of an error body. A string is
// returned as is; a validation list ([{"msg": ...}, ...]) is joined with
// "; ". Anything else yields "".
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
