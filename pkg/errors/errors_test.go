package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			err:      New(CodeEmptyClass, "class 7 has no members"),
			expected: "[EMPTY_CLASS] class 7 has no members",
		},
		{
			name:     "with underlying error",
			err:      Wrap(CodeIO, "reading egraph file", errors.New("unexpected EOF")),
			expected: "[IO_ERROR] reading egraph file: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(CodeUnextractable, "search exhausted", underlying)

	unwrapped := err.Unwrap()
	assert.Equal(t, underlying, unwrapped)
}

func TestAppError_Is(t *testing.T) {
	err1 := New(CodeEmptyClass, "error 1")
	err2 := New(CodeEmptyClass, "error 2")
	err3 := New(CodeUnextractable, "error 3")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestIsEmptyClassError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "empty class error",
			err:      ErrEmptyClass,
			expected: true,
		},
		{
			name:     "wrapped empty class error",
			err:      Wrap(CodeEmptyClass, "class 3 empty", errors.New("no members")),
			expected: true,
		},
		{
			name:     "other error",
			err:      ErrUnextractable,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsEmptyClassError(tt.err))
		})
	}
}

func TestIsUnextractableError(t *testing.T) {
	assert.True(t, IsUnextractableError(ErrUnextractable))
	assert.False(t, IsUnextractableError(ErrEmptyClass))
}

func TestIsInvalidConfigError(t *testing.T) {
	assert.True(t, IsInvalidConfigError(ErrInvalidConfig))
	assert.False(t, IsInvalidConfigError(ErrEmptyClass))
}

func TestIsIOError(t *testing.T) {
	assert.True(t, IsIOError(ErrIO))
	assert.False(t, IsIOError(ErrEmptyClass))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "app error",
			err:      New(CodeEmptyClass, "empty"),
			expected: CodeEmptyClass,
		},
		{
			name:     "wrapped app error",
			err:      Wrap(CodeIO, "read failed", errors.New("inner")),
			expected: CodeIO,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: CodeUnknown,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCode(tt.err))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "app error",
			err:      New(CodeEmptyClass, "class has no members"),
			expected: "class has no members",
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: "standard error",
		},
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorMessage(tt.err))
		})
	}
}
