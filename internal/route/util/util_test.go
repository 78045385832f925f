package util

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/pkg/lax"
)

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind   apperror.Kind
		status int
	}{
		{apperror.KindValidation, http.StatusBadRequest},
		{apperror.KindUnauthorized, http.StatusUnauthorized},
		{apperror.KindInsufficientFunds, http.StatusPaymentRequired},
		{apperror.KindNotFound, http.StatusNotFound},
		{apperror.KindConflict, http.StatusConflict},
		{apperror.KindInsufficientHoldings, http.StatusConflict},
		{apperror.KindInfrastructure, http.StatusInternalServerError},
	}

	for _, test := range tests {
		assert.Equal(t, test.status, StatusForKind(test.kind))
	}
}

func TestErrorResponseViolations(t *testing.T) {
	var violations apperror.Violations
	violations = violations.Check(false, "username", "must be between 5 and 15 characters")
	violations = violations.Check(false, "email", "must be between 10 and 30 characters")

	response := ErrorResponse(zap.NewNop().Sugar(), violations.OrNil())

	assert.Equal(t, http.StatusBadRequest, response.Status)

	parts, ok := response.Data.([]lax.IssueDescription)
	require.True(t, ok)
	require.Len(t, parts, 2)
	assert.Equal(t, "username", parts[0].Path)
}

func TestErrorResponseEngineError(t *testing.T) {
	response := ErrorResponse(zap.NewNop().Sugar(), apperror.NotFound("trade not found"))

	assert.Equal(t, http.StatusNotFound, response.Status)
	assert.Equal(t, "trade not found", response.Data)
}

func TestErrorResponseHidesInternalDetails(t *testing.T) {
	response := ErrorResponse(zap.NewNop().Sugar(), errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, response.Status)
	assert.Equal(t, "Internal Server Error", response.Data)
}

func TestPathID(t *testing.T) {
	httpRequest := mux.SetURLVars(httptest.NewRequest("GET", "/trade/42", nil), map[string]string{"id": "42"})
	request := &lax.Request{Request: httpRequest}

	id, err := PathID(request, "id")

	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestPathIDInvalid(t *testing.T) {
	for _, value := range []string{"", "abc", "-1", "0"} {
		httpRequest := mux.SetURLVars(httptest.NewRequest("GET", "/trade/x", nil), map[string]string{"id": value})
		request := &lax.Request{Request: httpRequest}

		_, err := PathID(request, "id")

		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	}
}
