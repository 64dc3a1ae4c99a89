package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenlink-logistics/dispatch-console/api/responses"
	"github.com/greenlink-logistics/dispatch-console/internal/driverportal"
	pkgerrors "github.com/greenlink-logistics/dispatch-console/pkg/errors"
	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
)

// PortalService builds the driver's route view.
type PortalService interface {
	RouteView(ctx context.Context) (*driverportal.RouteView, error)
	MarkDelivered(ctx context.Context, orderID string) (*driverportal.RouteView, error)
}

// DriverRoute serves the signed-in driver's stop list.
func DriverRoute(portal PortalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := portal.RouteView(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DriverMarkDelivered records a completed delivery and returns the updated
// route view so the portal can advance to the next stop.
func DriverMarkDelivered(portal PortalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		view, err := portal.MarkDelivered(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
