package controllers

import (
	"context"
	"net/http"

	"github.com/greenlink-logistics/dispatch-console/api/responses"
	"github.com/greenlink-logistics/dispatch-console/api/validators"
	"github.com/greenlink-logistics/dispatch-console/internal/gateway"
	"github.com/greenlink-logistics/dispatch-console/internal/session"
	"github.com/greenlink-logistics/dispatch-console/pkg/config"
	pkgerrors "github.com/greenlink-logistics/dispatch-console/pkg/errors"
	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

// AccountGateway is the backend surface for the caller's own profile.
type AccountGateway interface {
	FetchAccount(ctx context.Context) (*types.AccountProfile, error)
	UpdateAccount(ctx context.Context, input gateway.UpdateAccountInput) (*types.AccountProfile, error)
	DeleteAccount(ctx context.Context) error
}

type updateAccountRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber"`
}

func GetAccount(gw AccountGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := gw.FetchAccount(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func UpdateAccount(gw AccountGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body updateAccountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := gw.UpdateAccount(r.Context(), gateway.UpdateAccountInput{
			Email:       body.Email,
			FullName:    body.FullName,
			PhoneNumber: body.PhoneNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// DeleteAccount removes the backend account, then tears the session down
// so the deleted user cannot keep acting on a live token.
func DeleteAccount(gw AccountGateway, sessions SessionWriter, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := gw.DeleteAccount(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if token := session.TokenFromContext(r.Context()); token != "" {
			if err := sessions.Revoke(r.Context(), token); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
				return
			}
		}

		session.ClearCookie(w, cfg)
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
