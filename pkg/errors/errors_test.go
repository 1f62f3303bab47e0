package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeManifestNotFound, "no manifest in %s", "course.zip")

	if err.Code != ErrCodeManifestNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeManifestNotFound)
	}

	if err.Message != "no manifest in course.zip" {
		t.Errorf("Message = %v, want %v", err.Message, "no manifest in course.zip")
	}

	expected := "MANIFEST_NOT_FOUND: no manifest in course.zip"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := Wrap(ErrCodeCorruptArchive, cause, "archive could not be opened")

	if err.Code != ErrCodeCorruptArchive {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeCorruptArchive)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

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
			err:      New(ErrCodeMalformedXML, "test"),
			code:     ErrCodeMalformedXML,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeMalformedXML, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeNetwork,
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
			err:      New(ErrCodeCorruptArchive, "test"),
			expected: ErrCodeCorruptArchive,
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

func TestIsFatal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeCorruptArchive, "x"), true},
		{New(ErrCodeManifestNotFound, "x"), true},
		{New(ErrCodeMalformedXML, "x"), true},
		{New(ErrCodeNetwork, "x"), false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.want {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestStage(t *testing.T) {
	if got := Stage(ErrCodeCorruptArchive); got != "archive" {
		t.Errorf("Stage(CORRUPT_ARCHIVE) = %q", got)
	}
	if got := Stage(ErrCodeMalformedXML); got != "manifest parsing" {
		t.Errorf("Stage(MALFORMED_XML) = %q", got)
	}
	if got := Stage(ErrCodeNetwork); got != "" {
		t.Errorf("Stage(NETWORK_ERROR) = %q, want empty", got)
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
			name:     "Error with cause",
			err:      Wrap(ErrCodeMalformedXML, errors.New("unexpected EOF"), "manifest is not valid XML"),
			expected: "manifest is not valid XML (unexpected EOF)",
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
