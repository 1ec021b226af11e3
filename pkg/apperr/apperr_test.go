package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindUpstream, http.StatusBadGateway},
		{KindUnexpected, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestFromWrapped(t *testing.T) {
	base := Conflict(CodeInsufficientStock, "Insufficient stock for Diya")
	wrapped := fmt.Errorf("place order: %w", base)

	got := From(wrapped)
	require.NotNil(t, got)
	assert.Same(t, base, got)
	assert.Equal(t, CodeInsufficientStock, CodeOf(wrapped))
}

func TestFromUnknown(t *testing.T) {
	got := From(errors.New("boom"))
	assert.Equal(t, KindUnexpected, got.Kind)
	assert.Equal(t, CodeUnexpected, got.Code)
	assert.Equal(t, "boom", got.Message)
	assert.Nil(t, From(nil))
	assert.Equal(t, "", CodeOf(nil))
}

func TestIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound(CodeOrderNotFound, "Order not found"))

	assert.True(t, errors.Is(err, New(KindNotFound, CodeOrderNotFound, "")))
	assert.False(t, errors.Is(err, New(KindNotFound, CodeProductNotFound, "")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Upstream(cause, CodeMailDelivery, "Failed to send email")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp")
	assert.Equal(t, http.StatusBadGateway, err.Kind.Status())
}
