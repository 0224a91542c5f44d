package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"cosmetica/internal/apperr"
)

func TestStatusByKind(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, apperr.Unauthenticated("x").Status())
	assert.Equal(t, http.StatusForbidden, apperr.Forbidden("x").Status())
	assert.Equal(t, http.StatusBadRequest, apperr.InvalidRequest("x").Status())
	assert.Equal(t, http.StatusNotFound, apperr.NotFound("x").Status())
	assert.Equal(t, http.StatusConflict, apperr.Conflict("x").Status())
	assert.Equal(t, http.StatusInternalServerError, apperr.Internal(nil).Status())
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := apperr.Internal(cause)
	assert.Equal(t, "Internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("create: %w", apperr.InvalidRequest("Invalid items format"))
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
	assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(errors.New("plain")))
}
