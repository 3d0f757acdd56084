package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	plain := New(ErrKindInvalidInput, "snapshot is nil")
	assert.Equal(t, "[invalid_input] snapshot is nil", plain.Error())

	wrapped := Wrap(ErrKindTimeout, "read columns", context.DeadlineExceeded)
	assert.Equal(t, "[timeout] read columns: context deadline exceeded", wrapped.Error())
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"not found", New(ErrKindNotFound, "x"), IsNotFound},
		{"timeout", New(ErrKindTimeout, "x"), IsTimeout},
		{"connection", New(ErrKindConnectionFailed, "x"), IsConnectionFailed},
		{"query", New(ErrKindQueryFailed, "x"), IsQueryFailed},
		{"invalid input", New(ErrKindInvalidInput, "x"), IsInvalidInput},
		{"permission", New(ErrKindPermissionDenied, "x"), IsPermissionDenied},
		{"unparseable type", Newf(ErrKindUnparseableType, "type %q", "(5)"), IsUnparseableType},
		{"write", New(ErrKindWriteFailed, "x"), IsWriteFailed},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(ErrKindUnparseableType, "x")), IsUnparseableType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.pred(tt.err))
		})
	}
}

func TestKindOf_Foreign(t *testing.T) {
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, ErrKindUnknown, KindOf(nil))
	assert.False(t, IsNotFound(errors.New("plain")))
}
