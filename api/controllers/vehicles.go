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

// VehiclesGateway is the backend surface for fleet management.
type VehiclesGateway interface {
	ListVehicles(ctx context.Context) ([]types.Vehicle, error)
	CreateVehicle(ctx context.Context, input gateway.CreateVehicleInput) (*types.Vehicle, error)
	DeleteVehicle(ctx context.Context, vehicleID string) error
}

type createVehicleRequest struct {
	Name              string   `json:"name" validate:"required"`
	Address           string   `json:"address"`
	CapacityKg        float64  `json:"capacityKg" validate:"required,gt=0"`
	StartLat          *float64 `json:"startLat"`
	StartLon          *float64 `json:"startLon"`
	StartShiftMinutes int      `json:"startShiftMinutes" validate:"gte=0"`
	EndShiftMinutes   int      `json:"endShiftMinutes" validate:"gtefield=StartShiftMinutes"`
	Status            string   `json:"status" validate:"omitempty,oneof=AVAILABLE IN_TRANSIT MAINTENANCE"`
}

func ListVehicles(gw VehiclesGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicles, err := gw.ListVehicles(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if vehicles == nil {
			vehicles = []types.Vehicle{}
		}
		responses.WriteSuccess(w, vehicles)
	}
}

// CreateVehicle registers a vehicle. The depot may be given as an address
// or as start coordinates.
func CreateVehicle(gw VehiclesGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		hasStart := body.StartLat != nil && body.StartLon != nil
		if body.Address == "" && !hasStart {
			err := pkgerrors.New(pkgerrors.CodeValidation, "a depot address or start coordinates are required")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := gw.CreateVehicle(r.Context(), gateway.CreateVehicleInput{
			Name:              body.Name,
			Address:           body.Address,
			CapacityKg:        body.CapacityKg,
			StartLat:          body.StartLat,
			StartLon:          body.StartLon,
			StartShiftMinutes: body.StartShiftMinutes,
			EndShiftMinutes:   body.EndShiftMinutes,
			Status:            types.VehicleStatus(body.Status),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

func DeleteVehicle(gw VehiclesGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID := chi.URLParam(r, "vehicleId")
		if vehicleID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required"))
			return
		}

		if err := gw.DeleteVehicle(r.Context(), vehicleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"id": vehicleID, "status": "deleted"})
	}
}
