// Package livestate keeps a shared snapshot of orders, vehicles and routes
// in sync with the backend: one loud initial refresh, then silent refreshes
// on an interval. Handlers read copies of the snapshot, never the backing
// slices.
package livestate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/greenlink-logistics/dispatch-console/internal/session"
	"github.com/greenlink-logistics/dispatch-console/pkg/config"
	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
	"github.com/greenlink-logistics/dispatch-console/pkg/metrics"
	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

const (
	modeLoud   = "loud"
	modeSilent = "silent"
)

// Fetcher is the slice of the gateway the synchronizer needs. ListRoutes
// carries no error because route listing degrades to empty on failure.
type Fetcher interface {
	ListOrders(ctx context.Context) ([]types.Order, error)
	ListVehicles(ctx context.Context) ([]types.Vehicle, error)
	ListRoutes(ctx context.Context) []types.Route
}

// Snapshot is a point-in-time copy of the synced state.
type Snapshot struct {
	Orders        []types.Order
	Vehicles      []types.Vehicle
	Routes        []types.Route
	LastRefreshed time.Time
}

// Synchronizer owns the snapshot and the refresh loop.
type Synchronizer struct {
	fetch    Fetcher
	interval time.Duration
	log      *logger.Logger
	metrics  *metrics.RefreshMetrics

	mu       sync.RWMutex
	snapshot Snapshot
	token    string
}

// New builds a synchronizer over the given fetcher.
func New(fetch Fetcher, cfg config.SyncConfig, log *logger.Logger, m *metrics.RefreshMetrics) *Synchronizer {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Synchronizer{
		fetch:    fetch,
		interval: interval,
		log:      log,
		metrics:  m,
	}
}

// Run performs one loud refresh, then refreshes silently every interval
// until the context is cancelled. The initial refresh's failure is logged
// but does not stop the loop; the next handler-driven identity check will
// retry loudly.
func (s *Synchronizer) Run(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil && s.log != nil {
		s.log.Error(ctx, "initial state refresh failed", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.refresh(ctx, modeSilent); err != nil && s.log != nil {
				s.log.Warn(s.log.WithField(ctx, "error", err.Error()), "silent state refresh failed")
			}
		}
	}
}

// Refresh runs one loud refresh cycle and surfaces its failures.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	return s.refresh(ctx, modeLoud)
}

// refresh fetches all three resources concurrently. Each fetch is
// independently fault tolerant: a failed resource keeps its prior value
// while the others update. The combined error covers the failed resources.
func (s *Synchronizer) refresh(ctx context.Context, mode string) error {
	start := time.Now()

	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token != "" {
		ctx = session.WithToken(ctx, token)
	}

	var (
		orders   []types.Order
		vehicles []types.Vehicle
		routes   []types.Route

		ordersErr   error
		vehiclesErr error
	)

	var group errgroup.Group
	group.Go(func() error {
		orders, ordersErr = s.fetch.ListOrders(ctx)
		return nil
	})
	group.Go(func() error {
		vehicles, vehiclesErr = s.fetch.ListVehicles(ctx)
		return nil
	})
	group.Go(func() error {
		routes = s.fetch.ListRoutes(ctx)
		return nil
	})
	_ = group.Wait()

	err := multierr.Combine(ordersErr, vehiclesErr)

	s.mu.Lock()
	if ordersErr == nil {
		s.snapshot.Orders = orders
	}
	if vehiclesErr == nil {
		s.snapshot.Vehicles = vehicles
	}
	s.snapshot.Routes = routes
	if err == nil {
		s.snapshot.LastRefreshed = time.Now()
	}
	s.mu.Unlock()

	s.metrics.ObserveDuration(mode, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(mode)
		return err
	}
	s.metrics.IncSuccess(mode)
	return nil
}

// EnsureIdentity compares the caller's token with the one the snapshot was
// built for. A differing non-empty token clears the snapshot synchronously
// and reloads loudly before returning, so one signed-in user never sees
// another's data.
func (s *Synchronizer) EnsureIdentity(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	s.mu.Lock()
	if s.token == token {
		s.mu.Unlock()
		return nil
	}
	s.token = token
	s.snapshot = Snapshot{}
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// ApplyOptimizedRoutes replaces the route set with a fresh plan and flips
// every order referenced by any returned stop list to ASSIGNED. Orders the
// plan does not reference are left untouched.
func (s *Synchronizer) ApplyOptimizedRoutes(routes []types.Route) {
	assigned := make(map[string]struct{})
	for _, route := range routes {
		for _, stop := range route.StopList() {
			if key := stop.Key(); key != "" {
				assigned[key] = struct{}{}
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Routes = routes
	for i, order := range s.snapshot.Orders {
		if _, ok := assigned[order.ID]; ok {
			s.snapshot.Orders[i].Status = types.OrderAssigned
		}
	}
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := Snapshot{LastRefreshed: s.snapshot.LastRefreshed}
	copied.Orders = append([]types.Order(nil), s.snapshot.Orders...)
	copied.Vehicles = append([]types.Vehicle(nil), s.snapshot.Vehicles...)
	copied.Routes = append([]types.Route(nil), s.snapshot.Routes...)
	return copied
}
