package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WrappedInChain(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("allocate: %w", NewInternal(cause))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(err))
}

func TestNewUnresolvableReference(t *testing.T) {
	err := NewUnresolvableReference("lead")

	assert.True(t, HasCode(err, CodeUnresolvableReference))
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, "lead", err.Details["kind"])
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("order", "x")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.True(t, IsConcurrentModification(NewConcurrentModification("counter", "k")))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))

	err := NewValidation("bad").WithDetail("field", "date")
	assert.Equal(t, "date", err.Details["field"])
	assert.Equal(t, "VALIDATION_ERROR: bad", err.Error())
}
