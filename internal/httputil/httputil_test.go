package httputil

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	lfserr "github.com/lfsgate/lfsgate/internal/errors"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, lfserr.ErrInvalidJSON.WithCause(fmt.Errorf("secret detail")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := rec.Body.String(); got != "Invalid JSON" {
		t.Errorf("body = %q, want %q", got, "Invalid JSON")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteJSON(rec, http.StatusOK, "application/vnd.git-lfs+json", map[string]string{"transfer": "basic"})
	if err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != `{"transfer":"basic"}` {
		t.Errorf("body = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.git-lfs+json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestWriteJSONMarshalFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteJSON(rec, http.StatusOK, "application/json", math.Inf(1)); err == nil {
		t.Fatal("WriteJSON(+Inf) succeeded, want error")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := rec.Body.String(); got != "Internal Server Error" {
		t.Errorf("body = %q", got)
	}
}

func TestFormatTimeHTTP(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.FixedZone("X", 3600))
	if got := FormatTimeHTTP(ts); got != "Tue, 05 Mar 2024 13:07:09 GMT" {
		t.Errorf("FormatTimeHTTP() = %q", got)
	}
}
