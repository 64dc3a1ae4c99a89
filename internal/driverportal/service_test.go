package driverportal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

type fakeGateway struct {
	route      *types.DriverRoute
	routeErr   error
	account    *types.AccountProfile
	accountErr error

	delivered []string
}

func (f *fakeGateway) FetchDriverRoute(context.Context) (*types.DriverRoute, error) {
	if f.routeErr != nil {
		return nil, f.routeErr
	}
	return f.route, nil
}

func (f *fakeGateway) FetchAccount(context.Context) (*types.AccountProfile, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	return f.account, nil
}

func (f *fakeGateway) MarkOrderDelivered(_ context.Context, orderID string) error {
	f.delivered = append(f.delivered, orderID)
	if f.route != nil {
		for i := range f.route.Stops {
			if f.route.Stops[i].ID == orderID {
				f.route.Stops[i].Status = types.OrderDelivered
			}
		}
	}
	return nil
}

func sampleRoute() *types.DriverRoute {
	eta := 42
	return &types.DriverRoute{
		DriverName:                "Route Driver",
		VehicleName:               "Van 7",
		RouteStatus:               "IN_PROGRESS",
		EstimatedRemainingMinutes: &eta,
		Stops: []types.DriverRouteStop{
			{ID: "o1", Status: types.OrderDelivered, Address: "1 First St"},
			{ID: "o2", Status: types.OrderAssigned, Address: "2 Second St"},
			{ID: "o3", Status: types.OrderAssigned, Address: "3 Third St"},
		},
	}
}

func TestRouteViewOrdersPendingFirst(t *testing.T) {
	service := NewService(&fakeGateway{route: sampleRoute(), account: &types.AccountProfile{}})

	view, err := service.RouteView(context.Background())
	require.NoError(t, err)

	require.Len(t, view.Stops, 3)
	assert.Equal(t, "o2", view.Stops[0].ID)
	assert.Equal(t, "o3", view.Stops[1].ID)
	assert.Equal(t, "o1", view.Stops[2].ID, "delivered stop sinks to the back")

	require.NotNil(t, view.NextStop)
	assert.Equal(t, "o2", view.NextStop.ID)
}

func TestRouteViewPrefersAccountFullName(t *testing.T) {
	gateway := &fakeGateway{
		route:   sampleRoute(),
		account: &types.AccountProfile{FullName: "Sam Porter"},
	}
	service := NewService(gateway)

	view, err := service.RouteView(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sam Porter", view.DriverName)
}

func TestRouteViewFallsBackToRouteDriverName(t *testing.T) {
	gateway := &fakeGateway{
		route:      sampleRoute(),
		accountErr: errors.New("account service down"),
	}
	service := NewService(gateway)

	view, err := service.RouteView(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Route Driver", view.DriverName)
	assert.Equal(t, "Van 7", view.VehicleName)
	require.NotNil(t, view.EstimatedRemainingMinutes)
	assert.Equal(t, 42, *view.EstimatedRemainingMinutes)
}

func TestRouteViewDefaultsRouteStatus(t *testing.T) {
	route := sampleRoute()
	route.RouteStatus = ""
	service := NewService(&fakeGateway{route: route, account: &types.AccountProfile{}})

	view, err := service.RouteView(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PLANNED", view.RouteStatus)
}

func TestRouteViewNoNextStopWhenAllDelivered(t *testing.T) {
	route := sampleRoute()
	for i := range route.Stops {
		route.Stops[i].Status = types.OrderDelivered
	}
	service := NewService(&fakeGateway{route: route, account: &types.AccountProfile{}})

	view, err := service.RouteView(context.Background())
	require.NoError(t, err)
	assert.Nil(t, view.NextStop)
}

func TestMarkDeliveredFlipsStop(t *testing.T) {
	gateway := &fakeGateway{route: sampleRoute(), account: &types.AccountProfile{}}
	service := NewService(gateway)

	view, err := service.MarkDelivered(context.Background(), "o2")
	require.NoError(t, err)

	assert.Equal(t, []string{"o2"}, gateway.delivered)
	require.NotNil(t, view.NextStop)
	assert.Equal(t, "o3", view.NextStop.ID)
}

func TestMarkDeliveredRequiresOrderID(t *testing.T) {
	service := NewService(&fakeGateway{route: sampleRoute()})

	_, err := service.MarkDelivered(context.Background(), "")
	assert.Error(t, err)
}
