package geometry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

type stubPathSource struct {
	path  [][2]float64
	err   error
	calls int
}

func (s *stubPathSource) RoutePath(_ context.Context, waypoints [][2]float64) ([][2]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.path != nil {
		return s.path, nil
	}
	return waypoints, nil
}

func decodeRoute(t *testing.T, raw string) types.Route {
	t.Helper()
	var route types.Route
	require.NoError(t, json.Unmarshal([]byte(raw), &route))
	return route
}

func coord(v float64) *float64 {
	return &v
}

func sampleOrders() []types.Order {
	return []types.Order{
		{ID: "o1", Latitude: coord(1), Longitude: coord(2), Status: types.OrderAssigned},
		{ID: "o2", Latitude: coord(3), Longitude: coord(4), Status: types.OrderAssigned},
	}
}

func TestResolveStopsFromBareIDs(t *testing.T) {
	route := decodeRoute(t, `{"id":"r1","stops":["o1","o2"]}`)

	points := ResolveStops(route, sampleOrders())
	assert.Equal(t, [][2]float64{{1, 2}, {3, 4}}, points)
}

func TestResolveStopsPrefersInlineCoordinates(t *testing.T) {
	route := decodeRoute(t, `{"id":"r1","stops":[{"id":"o1","latitude":9,"longitude":8},"o2"]}`)

	points := ResolveStops(route, sampleOrders())
	assert.Equal(t, [][2]float64{{9, 8}, {3, 4}}, points)
}

func TestResolveStopsPrefersOrderIDOverID(t *testing.T) {
	route := decodeRoute(t, `{"id":"r1","stops":[{"id":"o1","orderId":"o2"}]}`)

	points := ResolveStops(route, sampleOrders())
	assert.Equal(t, [][2]float64{{3, 4}}, points)
}

func TestResolveStopsDropsUnresolved(t *testing.T) {
	route := decodeRoute(t, `{"id":"r1","stops":["o1","ghost","o2"]}`)

	points := ResolveStops(route, sampleOrders())
	assert.Equal(t, [][2]float64{{1, 2}, {3, 4}}, points)
}

func TestResolveStopsFallsBackToOrdersField(t *testing.T) {
	route := decodeRoute(t, `{"id":"r1","orders":["o2","o1"]}`)

	points := ResolveStops(route, sampleOrders())
	assert.Equal(t, [][2]float64{{3, 4}, {1, 2}}, points)
}

func TestResolveStopsSkipsOrdersWithoutCoordinates(t *testing.T) {
	orders := []types.Order{{ID: "o1", Latitude: coord(1), Longitude: coord(2)}}
	route := decodeRoute(t, `{"id":"r1","stops":["o1","o3"]}`)

	points := ResolveStops(route, orders)
	assert.Equal(t, [][2]float64{{1, 2}}, points)
}

func TestResolveStopsSkipsNullCoordinateOrders(t *testing.T) {
	var orders []types.Order
	raw := `[{"id":"o1","latitude":null,"longitude":null},{"id":"o2","latitude":3,"longitude":4}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &orders))

	route := decodeRoute(t, `{"id":"r1","stops":["o1","o2"]}`)
	points := ResolveStops(route, orders)
	assert.Equal(t, [][2]float64{{3, 4}}, points)
}

func TestPathsSkipsShortRoutes(t *testing.T) {
	source := &stubPathSource{}
	service := NewService(source, nil)

	routes := []types.Route{decodeRoute(t, `{"id":"r1","stops":["o1"]}`)}
	paths := service.Paths(context.Background(), routes, sampleOrders())

	assert.Empty(t, paths)
	assert.Zero(t, source.calls)
}

func TestPathsFetchesGeometry(t *testing.T) {
	source := &stubPathSource{path: [][2]float64{{1, 2}, {2, 3}, {3, 4}}}
	service := NewService(source, nil)

	routes := []types.Route{decodeRoute(t, `{"id":"r1","stops":["o1","o2"]}`)}
	paths := service.Paths(context.Background(), routes, sampleOrders())

	require.Len(t, paths, 1)
	assert.Equal(t, "r1", paths[0].RouteID)
	assert.Len(t, paths[0].Points, 3)
	assert.False(t, paths[0].Fallback)
}

func TestPathsStraightLineOnRoutingFailure(t *testing.T) {
	source := &stubPathSource{err: errors.New("router down")}
	service := NewService(source, nil)

	routes := []types.Route{decodeRoute(t, `{"id":"r1","stops":["o1","o2"]}`)}
	paths := service.Paths(context.Background(), routes, sampleOrders())

	require.Len(t, paths, 1)
	assert.True(t, paths[0].Fallback)
	assert.Equal(t, [][2]float64{{1, 2}, {3, 4}}, paths[0].Points)
}

func TestPathsCachesPerRouteID(t *testing.T) {
	source := &stubPathSource{}
	service := NewService(source, nil)

	routes := []types.Route{decodeRoute(t, `{"id":"r1","stops":["o1","o2"]}`)}
	service.Paths(context.Background(), routes, sampleOrders())
	service.Paths(context.Background(), routes, sampleOrders())

	assert.Equal(t, 1, source.calls)
}

func TestPathsRefetchesWhenStopListChanges(t *testing.T) {
	source := &stubPathSource{}
	service := NewService(source, nil)

	first := []types.Route{decodeRoute(t, `{"id":"r1","stops":["o1","o2"]}`)}
	service.Paths(context.Background(), first, sampleOrders())

	second := []types.Route{decodeRoute(t, `{"id":"r1","stops":["o2","o1"]}`)}
	paths := service.Paths(context.Background(), second, sampleOrders())

	require.Len(t, paths, 1)
	assert.Equal(t, [][2]float64{{3, 4}, {1, 2}}, paths[0].Points)
	assert.Equal(t, 2, source.calls)
}

func TestPathsRefetchesWhenOrderGainsCoordinates(t *testing.T) {
	source := &stubPathSource{}
	service := NewService(source, nil)

	routes := []types.Route{decodeRoute(t, `{"id":"r1","stops":["o1","o2","o3"]}`)}
	pending := append(sampleOrders(), types.Order{ID: "o3"})
	first := service.Paths(context.Background(), routes, pending)
	require.Len(t, first, 1)
	assert.Len(t, first[0].Points, 2)

	geocoded := append(sampleOrders(), types.Order{ID: "o3", Latitude: coord(5), Longitude: coord(6)})
	second := service.Paths(context.Background(), routes, geocoded)
	require.Len(t, second, 1)
	assert.Equal(t, [][2]float64{{1, 2}, {3, 4}, {5, 6}}, second[0].Points)
	assert.Equal(t, 2, source.calls)
}

func TestPathsInvalidatesCacheOnRouteSetChange(t *testing.T) {
	source := &stubPathSource{}
	service := NewService(source, nil)

	first := []types.Route{decodeRoute(t, `{"id":"r1","stops":["o1","o2"]}`)}
	service.Paths(context.Background(), first, sampleOrders())

	second := []types.Route{
		decodeRoute(t, `{"id":"r1","stops":["o1","o2"]}`),
		decodeRoute(t, `{"id":"r2","stops":["o2","o1"]}`),
	}
	service.Paths(context.Background(), second, sampleOrders())

	assert.Equal(t, 3, source.calls)
}
