package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/greenlink-logistics/dispatch-console/internal/gateway"
	"github.com/greenlink-logistics/dispatch-console/pkg/config"
	pkgerrors "github.com/greenlink-logistics/dispatch-console/pkg/errors"
	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

type stubAuthGateway struct {
	result   *gateway.AuthResult
	err      error
	lastCred gateway.Credentials
	lastReg  gateway.Registration
}

func (s *stubAuthGateway) Login(_ context.Context, creds gateway.Credentials) (*gateway.AuthResult, error) {
	s.lastCred = creds
	return s.result, s.err
}

func (s *stubAuthGateway) Register(_ context.Context, reg gateway.Registration) (*gateway.AuthResult, error) {
	s.lastReg = reg
	return s.result, s.err
}

type stubSessions struct {
	saved   map[string]string
	revoked []string
	saveErr error
}

func newStubSessions() *stubSessions {
	return &stubSessions{saved: map[string]string{}}
}

func (s *stubSessions) Save(_ context.Context, token, role string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[token] = role
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	return nil
}

func sessionCfg() config.SessionConfig {
	return config.SessionConfig{CookieName: "gl_token", TTL: 24 * time.Hour}
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthLoginOpensSessionAndSetsCookie(t *testing.T) {
	gw := &stubAuthGateway{result: &gateway.AuthResult{Token: "tok-1", Role: types.RoleDispatcher}}
	sessions := newStubSessions()
	handler := AuthLogin(gw, sessions, sessionCfg(), nil)

	body, _ := json.Marshal(map[string]string{"email": "dispatch@example.com", "password": "pw"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if sessions.saved["tok-1"] != "DISPATCHER" {
		t.Fatalf("expected session slot for tok-1, got %v", sessions.saved)
	}
	cookie := findCookie(t, rec, "gl_token")
	if cookie == nil || cookie.Value != "tok-1" {
		t.Fatalf("expected gl_token cookie, got %v", cookie)
	}
	if cookie.MaxAge != 86400 {
		t.Fatalf("expected 24h cookie, got max-age %d", cookie.MaxAge)
	}
}

func TestAuthLoginRejectsMalformedBody(t *testing.T) {
	handler := AuthLogin(&stubAuthGateway{}, newStubSessions(), sessionCfg(), nil)

	body, _ := json.Marshal(map[string]string{"email": "not-an-email", "password": ""})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthLoginPassesBackendFailureThrough(t *testing.T) {
	gw := &stubAuthGateway{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "backend rejected credentials")}
	handler := AuthLogin(gw, newStubSessions(), sessionCfg(), nil)

	body, _ := json.Marshal(map[string]string{"email": "dispatch@example.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRegisterEnforcesPasswordStrength(t *testing.T) {
	handler := AuthRegister(&stubAuthGateway{}, newStubSessions(), sessionCfg(), nil)

	body, _ := json.Marshal(map[string]string{
		"name":     "Sam",
		"email":    "sam@example.com",
		"password": "alllowercase1",
		"role":     "DRIVER",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRegisterOpensSession(t *testing.T) {
	gw := &stubAuthGateway{result: &gateway.AuthResult{Token: "tok-2", Role: types.RoleDriver}}
	sessions := newStubSessions()
	handler := AuthRegister(gw, sessions, sessionCfg(), nil)

	body, _ := json.Marshal(map[string]string{
		"name":     "Sam",
		"email":    "sam@example.com",
		"password": "Str0ng!Pass",
		"role":     "DRIVER",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if gw.lastReg.Role != types.RoleDriver {
		t.Fatalf("expected DRIVER registration, got %s", gw.lastReg.Role)
	}
	if sessions.saved["tok-2"] != "DRIVER" {
		t.Fatalf("expected session slot for tok-2, got %v", sessions.saved)
	}
}

func TestAuthLogoutRevokesAndClearsCookie(t *testing.T) {
	sessions := newStubSessions()
	handler := AuthLogout(sessions, sessionCfg(), nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "gl_token", Value: "tok-3"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "tok-3" {
		t.Fatalf("expected tok-3 revoked, got %v", sessions.revoked)
	}
	cookie := findCookie(t, rec, "gl_token")
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %v", cookie)
	}
}

func TestAuthLogoutWithoutSessionStillSucceeds(t *testing.T) {
	handler := AuthLogout(newStubSessions(), sessionCfg(), nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
