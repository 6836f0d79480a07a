package handlers

import (
	"net/http"
	"sync"

	apperrors "github.com/notiva/notiva/internal/errors"
)

// ErrorResponder writes the error envelope for a failed request. The
// server package installs its centralized handler at startup so every
// handler response carries the request correlation ID.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

var (
	responderMu   sync.RWMutex
	responderFunc ErrorResponder
)

// SetHTTPErrorResponder installs the responder used across this
// package. Passing nil restores the plain envelope writer.
func SetHTTPErrorResponder(responder ErrorResponder) {
	responderMu.Lock()
	defer responderMu.Unlock()
	responderFunc = responder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	responderMu.RLock()
	responder := responderFunc
	responderMu.RUnlock()

	if responder == nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	responder(w, r, err)
}
