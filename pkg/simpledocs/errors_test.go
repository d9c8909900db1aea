package simpledocs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docsys/simple-docs/pkg/simpledocs"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect simpledocs.Kind
	}{
		{
			name:   "typed error carries its kind",
			err:    simpledocs.NewError(simpledocs.KindForbidden, "nope"),
			expect: simpledocs.KindForbidden,
		},
		{
			name:   "wrapped typed error still classifies",
			err:    fmt.Errorf("outer: %w", simpledocs.NewError(simpledocs.KindNotFound, "gone")),
			expect: simpledocs.KindNotFound,
		},
		{
			name:   "document sentinel classifies as not found",
			err:    simpledocs.ErrDocumentNotFound,
			expect: simpledocs.KindNotFound,
		},
		{
			name:   "user sentinel classifies as not found",
			err:    simpledocs.ErrUserNotFound,
			expect: simpledocs.KindNotFound,
		},
		{
			name:   "untyped errors collapse to internal",
			err:    errors.New("boom"),
			expect: simpledocs.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, simpledocs.KindOf(tt.err))
		})
	}
}

func TestWrapErrorUnwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := simpledocs.WrapError(simpledocs.KindInternal, "load document", inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "load document")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestValidationErrorDetails(t *testing.T) {
	err := simpledocs.NewValidationError("validation failed", map[string]any{"name": "required"})

	var typed *simpledocs.Error
	assert.ErrorAs(t, err, &typed)
	assert.Equal(t, simpledocs.KindBadRequest, typed.Kind)
	assert.Equal(t, "required", typed.Details["name"])
}
