package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/core/store"
	apperrors "github.com/notiva/notiva/internal/errors"
	"github.com/notiva/notiva/internal/metrics"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type subscribeRequest struct {
	Email        string `json:"email"`
	CaptchaToken string `json:"captcha_token"`
}

type subscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubscribeHandler serves POST /api/subscribe. Duplicate subscriptions
// are answered as success so the form stays idempotent and the list
// membership is not probeable.
func (a *API) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.gateCheck(w, r, "subscribe"); !ok {
		metrics.SubscriptionsTotal.WithLabelValues("throttled").Inc()
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(err, "cuerpo de suscripción inválido"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		metrics.SubscriptionsTotal.WithLabelValues("invalid_email").Inc()
		respondWithError(w, r, apperrors.NewInvalidInputError("dirección de correo inválida"))
		return
	}

	if a.Captcha != nil {
		valid, err := a.Captcha.Verify(r.Context(), req.CaptchaToken, clientIP(r))
		if err != nil {
			// Subscription mutates state, so verification outages reject.
			metrics.SubscriptionsTotal.WithLabelValues("captcha_error").Inc()
			respondWithError(w, r, apperrors.WrapExternalService(err, "no se pudo verificar el captcha"))
			return
		}
		if !valid {
			metrics.SubscriptionsTotal.WithLabelValues("captcha_rejected").Inc()
			respondWithError(w, r, apperrors.NewForbiddenError("captcha inválido"))
			return
		}
	}

	if err := a.Subscribers.AddSubscriber(r.Context(), email, false); err != nil {
		if errors.Is(err, store.ErrAlreadySubscribed) {
			metrics.SubscriptionsTotal.WithLabelValues("duplicate").Inc()
			respondJSON(w, http.StatusOK, subscribeResponse{Success: true, Message: "ya estás suscrito"})
			return
		}
		metrics.SubscriptionsTotal.WithLabelValues("error").Inc()
		if a.Logger != nil {
			a.Logger.Error("subscription failed", zap.Error(err))
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(err, "no se pudo completar la suscripción"))
		return
	}

	if a.Mailer != nil {
		a.Mailer.SendWelcomeAsync(email)
	}

	metrics.SubscriptionsTotal.WithLabelValues("subscribed").Inc()
	respondJSON(w, http.StatusCreated, subscribeResponse{Success: true, Message: "suscripción registrada"})
}
