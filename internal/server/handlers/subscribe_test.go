package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/notiva/notiva/internal/core/store"
	apperrors "github.com/notiva/notiva/internal/errors"
)

func postSubscribe(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(body))
	req.Header.Set("User-Agent", browserUA)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubscribeRegistersAndSendsWelcome(t *testing.T) {
	subscribers := &stubSubscribers{}
	mail := &stubMailer{}
	api := &API{Subscribers: subscribers, Captcha: &stubCaptcha{valid: true}, Mailer: mail}
	router := testRouter(api)

	rec := postSubscribe(router, `{"email":"Lector@Example.COM","captcha_token":"tok"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var resp subscribeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if len(subscribers.emails) != 1 || subscribers.emails[0] != "lector@example.com" {
		t.Fatalf("expected lowercased stored email, got %v", subscribers.emails)
	}
	if len(mail.sent) != 1 || mail.sent[0] != "lector@example.com" {
		t.Fatalf("expected welcome mail, got %v", mail.sent)
	}
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	api := &API{Subscribers: &stubSubscribers{}, Captcha: &stubCaptcha{valid: true}}
	router := testRouter(api)

	rec := postSubscribe(router, `{"email":"no-es-un-correo"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSubscribeRejectsFailedCaptcha(t *testing.T) {
	api := &API{Subscribers: &stubSubscribers{}, Captcha: &stubCaptcha{valid: false}}
	router := testRouter(api)

	rec := postSubscribe(router, `{"email":"lector@example.com","captcha_token":"bad"}`)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestSubscribeFailsClosedOnCaptchaOutage(t *testing.T) {
	api := &API{Subscribers: &stubSubscribers{}, Captcha: &stubCaptcha{err: errors.New("siteverify unreachable")}}
	router := testRouter(api)

	rec := postSubscribe(router, `{"email":"lector@example.com","captcha_token":"tok"}`)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}

	var body apperrors.HTTPErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Error.Code != "EXTERNAL_SERVICE_ERROR" {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR, got %s", body.Error.Code)
	}
}

func TestSubscribeTreatsDuplicateAsSuccess(t *testing.T) {
	mail := &stubMailer{}
	api := &API{
		Subscribers: &stubSubscribers{err: store.ErrAlreadySubscribed},
		Captcha:     &stubCaptcha{valid: true},
		Mailer:      mail,
	}
	router := testRouter(api)

	rec := postSubscribe(router, `{"email":"lector@example.com","captcha_token":"tok"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp subscribeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("duplicate must answer success, got %+v", resp)
	}
	if len(mail.sent) != 0 {
		t.Fatal("duplicate must not resend the welcome mail")
	}
}

func TestSubscribeThrottlesAggressiveClients(t *testing.T) {
	api := &API{
		Subscribers: &stubSubscribers{},
		Captcha:     &stubCaptcha{valid: true},
		Gate:        strictGate("subscribe"),
	}
	router := testRouter(api)

	first := postSubscribe(router, `{"email":"uno@example.com","captcha_token":"tok"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first subscription to pass, got %d", first.Code)
	}

	second := postSubscribe(router, `{"email":"dos@example.com","captcha_token":"tok"}`)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", second.Code)
	}
}
