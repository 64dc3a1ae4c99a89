package controllers

import (
	"context"
	"net/http"

	"github.com/greenlink-logistics/dispatch-console/api/responses"
	pkgerrors "github.com/greenlink-logistics/dispatch-console/pkg/errors"
	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

// OptimizeGateway triggers the backend route solver.
type OptimizeGateway interface {
	OptimizeRoutes(ctx context.Context) ([]types.Route, error)
}

// RoutePlanApplier folds a fresh plan into the shared snapshot.
type RoutePlanApplier interface {
	ApplyOptimizedRoutes(routes []types.Route)
}

// OptimizeRoutes runs the solver and merges the plan optimistically: the
// snapshot's routes are replaced and referenced orders flip to assigned
// without waiting for the next refresh.
func OptimizeRoutes(gw OptimizeGateway, state RoutePlanApplier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gw == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "optimize gateway unavailable"))
			return
		}

		routes, err := gw.OptimizeRoutes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if routes == nil {
			routes = []types.Route{}
		}

		if state != nil {
			state.ApplyOptimizedRoutes(routes)
		}

		responses.WriteSuccess(w, routes)
	}
}
