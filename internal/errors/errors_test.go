package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, AlreadyReported().Status)
	assert.Equal(t, http.StatusTooManyRequests, CooldownActive(10).Status)
	assert.Equal(t, http.StatusNotFound, NotFound("post").Status)
	assert.Equal(t, http.StatusUnprocessableEntity, ValidationError("content", "too long").Status)
}

func TestTransactionConflictIsRetryable(t *testing.T) {
	err := TransactionConflict("reporting")
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, ErrTxConflict, err.Code)
	assert.Contains(t, err.Message, "try again")
}

func TestCooldownActiveCarriesRetryAfter(t *testing.T) {
	err := CooldownActive(42)
	assert.Equal(t, 42, err.RetryAfter)
	assert.Contains(t, err.Message, "42s")
}

func TestUnknownCodeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("SOMETHING_NEW").StatusCode())
}

func TestWithDetails(t *testing.T) {
	err := BadRequest("nope").WithDetails("field was missing")
	assert.Equal(t, "field was missing", err.Details)
	assert.Equal(t, ErrBadRequest, err.Code)
}
