package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	assert.Equal(t, "[config] database name is required",
		New(ErrKindConfig, "database name is required").Error())

	cause := errors.New("dial tcp: connection refused")
	assert.Equal(t, "[connection_failed] ping failed: dial tcp: connection refused",
		Wrap(ErrKindConnectionFailed, "ping failed", cause).Error())
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
		{"input", New(ErrKindInvalidInput, "x"), IsInvalidInput},
		{"permission", New(ErrKindPermissionDenied, "x"), IsPermissionDenied},
		{"unsupported type", New(ErrKindUnsupportedType, "x"), IsUnsupportedType},
		{"config", New(ErrKindConfig, "x"), IsConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.pred(tt.err))
			assert.True(t, tt.pred(fmt.Errorf("outer: %w", tt.err)), "predicate must see through wrapping")
			assert.False(t, tt.pred(errors.New("plain")))
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := Wrap(ErrKindQueryFailed, "query failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrKindUnknown, KindOf(nil))
	assert.Equal(t, "unknown", ErrKind(99).String())
}
