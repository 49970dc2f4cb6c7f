// Package httputil provides helpers for rendering gateway responses: plain
// text bodies for errors and JSON bodies for batch results.
package httputil

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	lfserr "github.com/lfsgate/lfsgate/internal/errors"
)

// textContentType is used for every error body.
const textContentType = "text/plain; charset=utf-8"

// RequestIDHeader carries the per-request identifier set by the server middleware.
const RequestIDHeader = "X-Request-Id"

// WriteText writes body as plain text with the given status. Unlike
// http.Error, no trailing newline is appended.
func WriteText(w http.ResponseWriter, status int, body string) {
	h := w.Header()
	h.Set("Content-Type", textContentType)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// WriteError renders a gateway error: its status and its client-facing
// message. The cause attached to the error is never written.
func WriteError(w http.ResponseWriter, e *lfserr.Error) {
	WriteText(w, e.HTTPStatus, e.Message)
}

// WriteJSON marshals v and writes it with the given status and content type.
// Marshaling happens before the header is written so that a failure can
// still be reported as a 500.
func WriteJSON(w http.ResponseWriter, status int, contentType string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		WriteError(w, lfserr.ErrInternalError)
		return err
	}
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// FormatTimeHTTP formats a time.Time as an HTTP date per RFC 7231
// (e.g., "Mon, 02 Jan 2006 15:04:05 GMT").
func FormatTimeHTTP(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
