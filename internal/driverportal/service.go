// Package driverportal shapes the driver-facing route view: today's stops
// ordered pending-first, the next stop to drive to, and delivery updates.
package driverportal

import (
	"context"

	pkgerrors "github.com/greenlink-logistics/dispatch-console/pkg/errors"
	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

// Gateway is the slice of the backend client the portal needs.
type Gateway interface {
	FetchDriverRoute(ctx context.Context) (*types.DriverRoute, error)
	FetchAccount(ctx context.Context) (*types.AccountProfile, error)
	MarkOrderDelivered(ctx context.Context, orderID string) error
}

// Stop is one stop in the driver's ordered work list.
type Stop struct {
	ID                 string            `json:"id"`
	Address            string            `json:"address,omitempty"`
	Latitude           *float64          `json:"latitude,omitempty"`
	Longitude          *float64          `json:"longitude,omitempty"`
	Status             types.OrderStatus `json:"status"`
	ServiceDurationMin int               `json:"serviceDurationMin,omitempty"`
}

// RouteView is the portal's route page model.
type RouteView struct {
	DriverName                string `json:"driverName"`
	VehicleName               string `json:"vehicleName"`
	RouteStatus               string `json:"routeStatus"`
	EstimatedRemainingMinutes *int   `json:"estimatedRemainingMinutes,omitempty"`
	Stops                     []Stop `json:"stops"`
	NextStop                  *Stop  `json:"nextStop,omitempty"`
}

// Service builds route views for signed-in drivers.
type Service struct {
	gateway Gateway
}

func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// RouteView fetches the driver's route and account and folds them into the
// page model. The account's full name wins over the route's driver name
// when present. Delivered stops sink to the back of the list; the next
// stop is the first undelivered one.
func (s *Service) RouteView(ctx context.Context) (*RouteView, error) {
	route, err := s.gateway.FetchDriverRoute(ctx)
	if err != nil {
		return nil, err
	}

	driverName := route.DriverName
	if account, accountErr := s.gateway.FetchAccount(ctx); accountErr == nil && account.FullName != "" {
		driverName = account.FullName
	}

	view := &RouteView{
		DriverName:                driverName,
		VehicleName:               route.VehicleName,
		RouteStatus:               defaultRouteStatus(route.RouteStatus),
		EstimatedRemainingMinutes: route.EstimatedRemainingMinutes,
		Stops:                     orderStops(route.Stops),
	}

	for i := range view.Stops {
		if view.Stops[i].Status != types.OrderDelivered {
			view.NextStop = &view.Stops[i]
			break
		}
	}
	return view, nil
}

// MarkDelivered records the delivery with the backend and returns the
// refreshed route view with the stop flipped.
func (s *Service) MarkDelivered(ctx context.Context, orderID string) (*RouteView, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if err := s.gateway.MarkOrderDelivered(ctx, orderID); err != nil {
		return nil, err
	}
	return s.RouteView(ctx)
}

// orderStops keeps each group's relative order while moving delivered
// stops behind everything still pending.
func orderStops(stops []types.DriverRouteStop) []Stop {
	pending := make([]Stop, 0, len(stops))
	delivered := make([]Stop, 0, len(stops))
	for _, stop := range stops {
		mapped := Stop{
			ID:                 stop.ID,
			Address:            stop.Address,
			Latitude:           stop.Latitude,
			Longitude:          stop.Longitude,
			Status:             stop.Status,
			ServiceDurationMin: stop.ServiceDurationMin,
		}
		if stop.Status == types.OrderDelivered {
			delivered = append(delivered, mapped)
		} else {
			pending = append(pending, mapped)
		}
	}
	return append(pending, delivered...)
}

func defaultRouteStatus(status string) string {
	if status == "" {
		return "PLANNED"
	}
	return status
}
