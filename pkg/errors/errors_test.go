package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConflict, "test message: %s", "value")

	if err.Code != ErrCodeConflict {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeConflict)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "CONFLICT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeSchema, cause, "failed to decode")

	if err.Code != ErrCodeSchema {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSchema)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNotFound,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeSchema, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeSchema,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvariant, "test"),
			expected: ErrCodeInvariant,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage_WrappedCause(t *testing.T) {
	err := Wrap(ErrCodeSchema, New(ErrCodeNotFound, "character %q", "Romeo"), "page 3")
	want := `page 3: character "Romeo"`
	if got := UserMessage(err); got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
}

func TestCodeHelpers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		fn   func(error) bool
	}{
		{"conflict", New(ErrCodeConflict, "x"), IsConflict},
		{"not found", New(ErrCodeNotFound, "x"), IsNotFound},
		{"schema", New(ErrCodeSchema, "x"), IsSchema},
		{"invariant", New(ErrCodeInvariant, "x"), IsInvariant},
		{"canceled", New(ErrCodeCanceled, "x"), IsCanceled},
		{"wrapped conflict", fmt.Errorf("outer: %w", New(ErrCodeConflict, "x")), IsConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.fn(tt.err) {
				t.Errorf("helper returned false for %v", tt.err)
			}
		})
	}

	if IsConflict(New(ErrCodeNotFound, "x")) {
		t.Error("IsConflict(NOT_FOUND) = true, want false")
	}
}
