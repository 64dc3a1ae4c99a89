package controllers

import (
	"context"
	"net/http"
	"unicode"

	"github.com/greenlink-logistics/dispatch-console/api/responses"
	"github.com/greenlink-logistics/dispatch-console/api/validators"
	"github.com/greenlink-logistics/dispatch-console/internal/gateway"
	"github.com/greenlink-logistics/dispatch-console/internal/session"
	"github.com/greenlink-logistics/dispatch-console/pkg/config"
	pkgerrors "github.com/greenlink-logistics/dispatch-console/pkg/errors"
	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

// AuthGateway is the slice of the backend client the auth endpoints use.
type AuthGateway interface {
	Login(ctx context.Context, creds gateway.Credentials) (*gateway.AuthResult, error)
	Register(ctx context.Context, reg gateway.Registration) (*gateway.AuthResult, error)
}

// SessionWriter persists and revokes session slots.
type SessionWriter interface {
	Save(ctx context.Context, token, role string) error
	Revoke(ctx context.Context, token string) error
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=DISPATCHER DRIVER"`
}

// AuthLogin proxies credentials to the backend and opens a session.
func AuthLogin(gw AuthGateway, sessions SessionWriter, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gw == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth gateway unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := gw.Login(r.Context(), gateway.Credentials{Email: body.Email, Password: body.Password})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := sessions.Save(r.Context(), result.Token, string(result.Role)); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session"))
			return
		}

		session.SetCookie(w, cfg, result.Token)
		responses.WriteSuccess(w, result)
	}
}

// AuthRegister creates a backend account and opens its first session.
func AuthRegister(gw AuthGateway, sessions SessionWriter, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gw == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth gateway unavailable"))
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if details := passwordWeaknesses(body.Password); len(details) > 0 {
			err := pkgerrors.New(pkgerrors.CodeValidation, "password does not meet the security requirements").
				WithDetails(map[string]any{"password": details})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := gw.Register(r.Context(), gateway.Registration{
			Name:     body.Name,
			Email:    body.Email,
			Password: body.Password,
			Role:     types.Role(body.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := sessions.Save(r.Context(), result.Token, string(result.Role)); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session"))
			return
		}

		session.SetCookie(w, cfg, result.Token)
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AuthLogout revokes the caller's session slot and clears the cookie.
// Logging out without an active session is fine.
func AuthLogout(sessions SessionWriter, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := session.TokenFromRequest(r, cfg.CookieName); token != "" {
			if err := sessions.Revoke(r.Context(), token); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
				return
			}
		}

		session.ClearCookie(w, cfg)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// passwordWeaknesses mirrors the signup form's strength rules.
func passwordWeaknesses(password string) []string {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}
	if !hasSpecial {
		missing = append(missing, "one special character")
	}
	return missing
}
