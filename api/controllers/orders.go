package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenlink-logistics/dispatch-console/api/responses"
	"github.com/greenlink-logistics/dispatch-console/api/validators"
	"github.com/greenlink-logistics/dispatch-console/internal/gateway"
	pkgerrors "github.com/greenlink-logistics/dispatch-console/pkg/errors"
	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

// OrdersGateway is the backend surface for order management.
type OrdersGateway interface {
	ListOrders(ctx context.Context) ([]types.Order, error)
	CreateOrder(ctx context.Context, input gateway.CreateOrderInput) (*types.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

type createOrderRequest struct {
	Address            string   `json:"address"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	WeightKg           float64  `json:"weightKg" validate:"required,gt=0"`
	ServiceDurationMin int      `json:"serviceDurationMin" validate:"gte=0"`
}

func ListOrders(gw OrdersGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := gw.ListOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if orders == nil {
			orders = []types.Order{}
		}
		responses.WriteSuccess(w, orders)
	}
}

// CreateOrder accepts either a street address or an explicit coordinate
// pair; the backend geocodes addresses.
func CreateOrder(gw OrdersGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hasCoords := body.Latitude != nil && body.Longitude != nil
		if body.Address == "" && !hasCoords {
			err := pkgerrors.New(pkgerrors.CodeValidation, "an address or a coordinate pair is required")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := gw.CreateOrder(r.Context(), gateway.CreateOrderInput{
			Address:            body.Address,
			Latitude:           body.Latitude,
			Longitude:          body.Longitude,
			WeightKg:           body.WeightKg,
			ServiceDurationMin: body.ServiceDurationMin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func DeleteOrder(gw OrdersGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		if err := gw.DeleteOrder(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"id": orderID, "status": "deleted"})
	}
}
