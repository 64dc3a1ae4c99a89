package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/greenlink-logistics/dispatch-console/api/responses"
	"github.com/greenlink-logistics/dispatch-console/internal/geometry"
	"github.com/greenlink-logistics/dispatch-console/internal/livestate"
	"github.com/greenlink-logistics/dispatch-console/internal/session"
	"github.com/greenlink-logistics/dispatch-console/pkg/config"
	pkgerrors "github.com/greenlink-logistics/dispatch-console/pkg/errors"
	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

// StateReader is the synchronizer surface the dashboard reads from.
type StateReader interface {
	EnsureIdentity(ctx context.Context, token string) error
	Snapshot() livestate.Snapshot
}

// PathBuilder turns routes and orders into drawable geometry.
type PathBuilder interface {
	Paths(ctx context.Context, routes []types.Route, orders []types.Order) []geometry.RoutePath
}

// OrderStats tallies order statuses for the dashboard header.
type OrderStats struct {
	Total      int `json:"total"`
	Unassigned int `json:"unassigned"`
	Assigned   int `json:"assigned"`
	Delivered  int `json:"delivered"`
}

// VehicleStats tallies vehicle statuses.
type VehicleStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	InTransit int `json:"inTransit"`
}

// MapView is the tile layer the frontend renders routes onto.
type MapView struct {
	TileURL     string `json:"tileUrl"`
	Attribution string `json:"attribution"`
}

// DashboardView is the full dispatcher dashboard payload.
type DashboardView struct {
	Orders        []types.Order        `json:"orders"`
	Vehicles      []types.Vehicle      `json:"vehicles"`
	Routes        []types.Route        `json:"routes"`
	RoutePaths    []geometry.RoutePath `json:"routePaths"`
	OrderStats    OrderStats           `json:"orderStats"`
	VehicleStats  VehicleStats         `json:"vehicleStats"`
	LastRefreshed *time.Time           `json:"lastRefreshed,omitempty"`
	Map           MapView              `json:"map"`
}

// Dashboard serves the dispatcher's live view. The identity check runs on
// every request so a token change resets the snapshot before it is read.
func Dashboard(state StateReader, paths PathBuilder, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := session.TokenFromContext(ctx)
		if err := state.EnsureIdentity(ctx, token); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh live state"))
			return
		}

		snap := state.Snapshot()

		view := DashboardView{
			Orders:       snap.Orders,
			Vehicles:     snap.Vehicles,
			Routes:       snap.Routes,
			RoutePaths:   paths.Paths(ctx, snap.Routes, snap.Orders),
			OrderStats:   tallyOrders(snap.Orders),
			VehicleStats: tallyVehicles(snap.Vehicles),
			Map: MapView{
				TileURL:     cfg.Map.TileURL,
				Attribution: cfg.Map.Attribution,
			},
		}
		if !snap.LastRefreshed.IsZero() {
			refreshed := snap.LastRefreshed
			view.LastRefreshed = &refreshed
		}
		if view.Orders == nil {
			view.Orders = []types.Order{}
		}
		if view.Vehicles == nil {
			view.Vehicles = []types.Vehicle{}
		}
		if view.Routes == nil {
			view.Routes = []types.Route{}
		}

		responses.WriteSuccess(w, view)
	}
}

func tallyOrders(orders []types.Order) OrderStats {
	stats := OrderStats{Total: len(orders)}
	for _, order := range orders {
		switch order.EffectiveStatus() {
		case types.OrderAssigned:
			stats.Assigned++
		case types.OrderDelivered:
			stats.Delivered++
		default:
			stats.Unassigned++
		}
	}
	return stats
}

func tallyVehicles(vehicles []types.Vehicle) VehicleStats {
	stats := VehicleStats{Total: len(vehicles)}
	for _, vehicle := range vehicles {
		switch vehicle.EffectiveStatus() {
		case types.VehicleInTransit:
			stats.InTransit++
		case types.VehicleAvailable:
			stats.Available++
		}
	}
	return stats
}
