// Package geometry reconciles planned routes against the live order set and
// turns each route's stop sequence into a drawable coordinate path.
package geometry

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

// PathSource fetches road-following geometry through ordered waypoints.
type PathSource interface {
	RoutePath(ctx context.Context, waypoints [][2]float64) ([][2]float64, error)
}

// RoutePath is one route's drawable geometry.
type RoutePath struct {
	RouteID string       `json:"routeId"`
	Points  [][2]float64 `json:"points"`

	// Fallback is set when the routing service failed and the path is the
	// straight line through the resolved stops.
	Fallback bool `json:"fallback,omitempty"`
}

// cachedPath pairs a fetched path with the resolved points it was built
// from, so a route whose stop list or order coordinates change is refetched
// even when its id survives.
type cachedPath struct {
	pointsKey string
	path      RoutePath
}

// Service resolves stops to coordinates and caches geometry per route id.
// A cached entry is reused only while the route's resolved points are
// unchanged; any change to the set of route ids drops the cache wholesale.
type Service struct {
	source PathSource
	log    *logger.Logger

	mu        sync.Mutex
	cacheKey  string
	pathCache map[string]cachedPath
}

// NewService builds a geometry service over the given path source.
func NewService(source PathSource, log *logger.Logger) *Service {
	return &Service{
		source:    source,
		log:       log,
		pathCache: map[string]cachedPath{},
	}
}

// ResolveStops maps a route's stop sequence to coordinates against the
// given orders. Resolution per stop: inline coordinates win, then the
// orderId reference, then the id reference. Stops that resolve to nothing
// are dropped and the rest keep their order.
func ResolveStops(route types.Route, orders []types.Order) [][2]float64 {
	index := orderIndex(orders)
	stops := route.StopList()

	points := make([][2]float64, 0, len(stops))
	for _, stop := range stops {
		if stop.HasInlineCoordinates() {
			points = append(points, [2]float64{*stop.Latitude, *stop.Longitude})
			continue
		}
		if order, ok := lookupOrder(index, stop.OrderID); ok {
			points = append(points, [2]float64{*order.Latitude, *order.Longitude})
			continue
		}
		if order, ok := lookupOrder(index, stop.ID); ok {
			points = append(points, [2]float64{*order.Latitude, *order.Longitude})
		}
	}
	return points
}

// Paths returns drawable geometry for every route with at least two
// resolved stops. A cached entry is reused only while the route resolves
// to the same points; a routing failure degrades to the straight line
// through the resolved stops.
func (s *Service) Paths(ctx context.Context, routes []types.Route, orders []types.Order) []RoutePath {
	s.mu.Lock()
	key := routeSetKey(routes)
	if key != s.cacheKey {
		s.cacheKey = key
		s.pathCache = map[string]cachedPath{}
	}
	s.mu.Unlock()

	paths := make([]RoutePath, 0, len(routes))
	for _, route := range routes {
		points := ResolveStops(route, orders)
		if len(points) < 2 {
			continue
		}

		pk := pointsKey(points)
		s.mu.Lock()
		cached, ok := s.pathCache[route.ID]
		s.mu.Unlock()
		if ok && cached.pointsKey == pk {
			paths = append(paths, cached.path)
			continue
		}

		path := s.fetchPath(ctx, route.ID, points)
		s.mu.Lock()
		s.pathCache[route.ID] = cachedPath{pointsKey: pk, path: path}
		s.mu.Unlock()
		paths = append(paths, path)
	}
	return paths
}

func (s *Service) fetchPath(ctx context.Context, routeID string, points [][2]float64) RoutePath {
	if s.source != nil {
		fetched, err := s.source.RoutePath(ctx, points)
		if err == nil && len(fetched) > 0 {
			return RoutePath{RouteID: routeID, Points: fetched}
		}
		if err != nil && s.log != nil {
			ctx = s.log.WithRouteID(ctx, routeID)
			s.log.Warn(s.log.WithField(ctx, "error", err.Error()), "road geometry unavailable, drawing straight line")
		}
	}
	return RoutePath{RouteID: routeID, Points: points, Fallback: true}
}

// orderIndex keys orders by stringified id. Orders still waiting on
// geocoding carry no coordinates and are excluded so they can never
// resolve a stop.
func orderIndex(orders []types.Order) map[string]types.Order {
	index := make(map[string]types.Order, len(orders))
	for _, order := range orders {
		if order.ID == "" {
			continue
		}
		if !order.HasCoordinates() {
			continue
		}
		index[order.ID] = order
	}
	return index
}

func lookupOrder(index map[string]types.Order, key string) (types.Order, bool) {
	if key == "" {
		return types.Order{}, false
	}
	order, ok := index[key]
	return order, ok
}

func routeSetKey(routes []types.Route) string {
	ids := make([]string, 0, len(routes))
	for _, route := range routes {
		ids = append(ids, route.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

func pointsKey(points [][2]float64) string {
	var b strings.Builder
	for _, p := range points {
		b.WriteString(strconv.FormatFloat(p[0], 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p[1], 'f', -1, 64))
		b.WriteByte(';')
	}
	return b.String()
}
