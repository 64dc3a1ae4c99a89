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

// DriversGateway is the backend surface for roster management.
type DriversGateway interface {
	ListDrivers(ctx context.Context) ([]types.Driver, error)
	CreateDriver(ctx context.Context, input gateway.CreateDriverInput) (*types.Driver, error)
	UpdateDriver(ctx context.Context, driverID string, input gateway.UpdateDriverInput) (*types.Driver, error)
	DeleteDriver(ctx context.Context, driverID string) error
}

type createDriverRequest struct {
	Name              string `json:"name" validate:"required"`
	Email             string `json:"email" validate:"omitempty,email"`
	LicenseID         string `json:"licenseId" validate:"required"`
	Phone             string `json:"phone" validate:"required"`
	HomeBase          string `json:"homeBase" validate:"required"`
	Status            string `json:"status" validate:"required,oneof=AVAILABLE ON_ROUTE OFF_DUTY"`
	AssignedVehicleID string `json:"assignedVehicleId"`
}

type updateDriverRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1"`
	LicenseID         *string `json:"licenseId" validate:"omitempty,min=1"`
	Phone             *string `json:"phone" validate:"omitempty,min=1"`
	HomeBase          *string `json:"homeBase" validate:"omitempty,min=1"`
	Status            *string `json:"status" validate:"omitempty,oneof=AVAILABLE ON_ROUTE OFF_DUTY"`
	AssignedVehicleID *string `json:"assignedVehicleId"`
	LastCheckIn       *string `json:"lastCheckIn"`
}

func ListDrivers(gw DriversGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drivers, err := gw.ListDrivers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if drivers == nil {
			drivers = []types.Driver{}
		}
		responses.WriteSuccess(w, drivers)
	}
}

func CreateDriver(gw DriversGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createDriverRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		driver, err := gw.CreateDriver(r.Context(), gateway.CreateDriverInput{
			Name:              body.Name,
			Email:             body.Email,
			LicenseID:         body.LicenseID,
			Phone:             body.Phone,
			HomeBase:          body.HomeBase,
			Status:            types.DriverStatus(body.Status),
			AssignedVehicleID: body.AssignedVehicleID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, driver)
	}
}

// UpdateDriver forwards a partial update. assignedVehicleId is always
// forwarded, so an absent or null value clears the assignment.
func UpdateDriver(gw DriversGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID := chi.URLParam(r, "driverId")
		if driverID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "driver id is required"))
			return
		}

		var body updateDriverRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := gateway.UpdateDriverInput{
			Name:              body.Name,
			LicenseID:         body.LicenseID,
			Phone:             body.Phone,
			HomeBase:          body.HomeBase,
			AssignedVehicleID: body.AssignedVehicleID,
			LastCheckIn:       body.LastCheckIn,
		}
		if body.Status != nil {
			status := types.DriverStatus(*body.Status)
			input.Status = &status
		}

		driver, err := gw.UpdateDriver(r.Context(), driverID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, driver)
	}
}

func DeleteDriver(gw DriversGateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driverID := chi.URLParam(r, "driverId")
		if driverID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "driver id is required"))
			return
		}

		if err := gw.DeleteDriver(r.Context(), driverID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"id": driverID, "status": "deleted"})
	}
}
