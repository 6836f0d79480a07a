package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/metrics"
	"github.com/notiva/notiva/internal/observability"
)

// Recovery recovers from handler panics, logs the stack, and answers
// with the standard error body. The response never includes the panic
// value or the stack.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				metrics.PanicsTotal.Inc()

				requestID := GetRequestID(r.Context())
				if observability.ServerLogger != nil {
					observability.ServerLogger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("request_id", requestID),
						zap.String("endpoint", r.URL.Path),
						zap.String("stack", string(debug.Stack())),
					)
				}

				writePanicResponse(w, requestID)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type panicResponse struct {
	Error panicDetail `json:"error"`
}

type panicDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writePanicResponse writes the error body directly; the errors package
// imports this one, so the responder is not available here.
func writePanicResponse(w http.ResponseWriter, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(panicResponse{
		Error: panicDetail{
			Code:      "INTERNAL_ERROR",
			Message:   "unexpected internal error",
			RequestID: requestID,
		},
	})
}
