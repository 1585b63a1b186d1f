// Package v1 holds the wire types of the method API: the response envelope
// and the status-code table.
package v1

import "net/http"

// Error strings returned when a failure carries no field-level detail.
var statusText = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusUnprocessableEntity: "Invalid Request",
	http.StatusInternalServerError: "Internal Server Error",
}

// StatusText returns the canonical error string for a status code.
func StatusText(code int) string {
	if s, ok := statusText[code]; ok {
		return s
	}
	return "Unknown Error"
}

// Response is the envelope of every reply: a result payload on success, or an
// error (a string, or the ordered list of field errors) on failure.
type Response struct {
	Response any `json:"response,omitempty"`
	Error    any `json:"error,omitempty"`
	Code     int `json:"code"`
}

// OK wraps a method result payload.
func OK(payload any) Response {
	return Response{Response: payload, Code: http.StatusOK}
}

// Err builds an error response. A nil detail falls back to the status table
// string; validation failures pass their accumulated error list instead.
func Err(code int, detail any) Response {
	if detail == nil {
		detail = StatusText(code)
	}
	return Response{Error: detail, Code: code}
}
