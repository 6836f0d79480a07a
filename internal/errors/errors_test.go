package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("conexión rechazada")
	envelope := WrapExternalService(cause, "CMS no disponible")

	require.Contains(t, envelope.Error(), "EXTERNAL_SERVICE_ERROR")
	require.Contains(t, envelope.Error(), "conexión rechazada")
	require.True(t, stderrors.Is(envelope, cause))
}

func TestHTTPStatusFromCode(t *testing.T) {
	cases := map[string]int{
		"INVALID_INPUT":          http.StatusBadRequest,
		"NOT_FOUND":              http.StatusNotFound,
		"UNAUTHORIZED":           http.StatusUnauthorized,
		"FORBIDDEN":              http.StatusForbidden,
		"RATE_LIMITED":           http.StatusTooManyRequests,
		"TIMEOUT":                http.StatusGatewayTimeout,
		"EXTERNAL_SERVICE_ERROR": http.StatusBadGateway,
		"SERVICE_UNAVAILABLE":    http.StatusServiceUnavailable,
		"ALGO_DESCONOCIDO":       http.StatusInternalServerError,
	}
	for code, want := range cases {
		require.Equal(t, want, HTTPStatusFromCode(code), code)
	}
}

func TestRespondWithErrorWritesEnvelopeBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)

	RespondWithError(rec, req, NewInvalidInputError("la consulta es demasiado corta"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "INVALID_INPUT", body.Error.Code)
	require.Equal(t, "la consulta es demasiado corta", body.Error.Message)
	require.NotEmpty(t, body.Error.RequestID)
}

func TestRespondWithRateLimitedSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)

	RespondWithError(rec, req, NewRateLimitedError("demasiadas solicitudes", 90*time.Second))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "90", rec.Header().Get("Retry-After"))
}

func TestEnsureEnvelopeNormalizesPlainErrors(t *testing.T) {
	envelope := EnsureEnvelope(stderrors.New("algo falló"))
	require.Equal(t, "INTERNAL_ERROR", envelope.Code)

	passthrough := NewNotFoundError("no existe")
	require.Same(t, passthrough, EnsureEnvelope(passthrough))
}
