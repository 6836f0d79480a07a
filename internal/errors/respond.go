package errors

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/metrics"
	"github.com/notiva/notiva/internal/observability"
	"github.com/notiva/notiva/internal/server/middleware"
)

// HTTPErrorDetail captures the error body returned to callers.
type HTTPErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// HTTPErrorResponse wraps HTTPErrorDetail in the standard envelope structure.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// HTTPStatusFromCode resolves the HTTP status code for an error code.
func HTTPStatusFromCode(code string) int {
	switch code {
	case "INVALID_INPUT", "VALIDATION_FAILED":
		return http.StatusBadRequest
	case "NOT_FOUND":
		return http.StatusNotFound
	case "UNAUTHORIZED":
		return http.StatusUnauthorized
	case "FORBIDDEN":
		return http.StatusForbidden
	case "METHOD_NOT_ALLOWED":
		return http.StatusMethodNotAllowed
	case "CONFLICT":
		return http.StatusConflict
	case "RATE_LIMITED":
		return http.StatusTooManyRequests
	case "TIMEOUT":
		return http.StatusGatewayTimeout
	case "EXTERNAL_SERVICE_ERROR":
		return http.StatusBadGateway
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// EnsureEnvelope normalizes any error into an Envelope.
func EnsureEnvelope(err error) *Envelope {
	if err == nil {
		return NewInternalError("unexpected nil error")
	}
	if envelope, ok := err.(*Envelope); ok && envelope != nil {
		return envelope
	}
	return wrap("INTERNAL_ERROR", "unexpected error", err)
}

// RespondWithError normalizes the supplied error and writes a JSON response.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithEnvelope(w, r, EnsureEnvelope(err))
}

// RespondWithEnvelope finalizes the envelope, logs it, emits metrics,
// and writes the JSON body.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *Envelope) {
	if w == nil || envelope == nil {
		return
	}

	if envelope.CorrelationID == "" {
		if r != nil {
			envelope.CorrelationID = middleware.GetRequestID(r.Context())
		}
		if envelope.CorrelationID == "" {
			envelope.CorrelationID = uuid.New().String()
		}
	}

	statusCode := HTTPStatusFromCode(envelope.Code)

	response := HTTPErrorResponse{
		Error: HTTPErrorDetail{
			Code:      envelope.Code,
			Message:   envelope.Message,
			Details:   envelope.Details,
			RequestID: envelope.CorrelationID,
		},
	}

	logHTTPError(envelope, statusCode)
	metrics.RecordError(envelope.Code, statusCode)

	if envelope.RetryAfter > 0 {
		seconds := int(envelope.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func logHTTPError(envelope *Envelope, statusCode int) {
	if observability.ServerLogger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", statusCode),
		zap.String("request_id", envelope.CorrelationID),
	}
	if envelope.wrapped != nil {
		fields = append(fields, zap.Error(envelope.wrapped))
	}

	switch {
	case statusCode >= 500:
		observability.ServerLogger.Error(envelope.Message, fields...)
	case statusCode == http.StatusTooManyRequests:
		observability.ServerLogger.Info(envelope.Message, fields...)
	default:
		observability.ServerLogger.Warn(envelope.Message, fields...)
	}
}
