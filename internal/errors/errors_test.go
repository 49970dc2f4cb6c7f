package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err     *Error
		status  int
		message string
	}{
		{ErrNotFound, 404, "Not Found"},
		{ErrUnauthorized, 401, "Unauthorized"},
		{ErrInvalidBucketFormat, 400, "Invalid bucket format"},
		{ErrInvalidJSON, 400, "Invalid JSON"},
		{ErrUnsupportedOperation, 400, "Unsupported operation"},
		{ErrInternalError, 500, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.status)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.message)
			}
		})
	}
}

func TestWithCauseKeepsIdentity(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := ErrInvalidJSON.WithCause(cause)

	if err == ErrInvalidJSON {
		t.Fatal("WithCause returned the shared value instead of a copy")
	}
	if ErrInvalidJSON.Err != nil {
		t.Fatal("WithCause mutated the predefined error")
	}
	if !stderrors.Is(err, ErrInvalidJSON) {
		t.Error("errors.Is(err, ErrInvalidJSON) = false")
	}
	if stderrors.Is(err, ErrUnsupportedOperation) {
		t.Error("errors.Is(err, ErrUnsupportedOperation) = true")
	}
	if !stderrors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
}

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("validating: %w", ErrUnauthorized)
	if got := From(wrapped); got != ErrUnauthorized {
		t.Errorf("From(wrapped) = %v, want ErrUnauthorized", got)
	}

	plain := stderrors.New("boom")
	got := From(plain)
	if got.HTTPStatus != 500 || got.Message != "Internal Server Error" {
		t.Errorf("From(plain) = %v, want internal error", got)
	}
	if !stderrors.Is(got, plain) {
		t.Error("From(plain) lost the cause")
	}
}
