package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenlink-logistics/dispatch-console/api/controllers"
	"github.com/greenlink-logistics/dispatch-console/api/middleware"
	"github.com/greenlink-logistics/dispatch-console/internal/driverportal"
	"github.com/greenlink-logistics/dispatch-console/internal/gateway"
	"github.com/greenlink-logistics/dispatch-console/internal/geometry"
	"github.com/greenlink-logistics/dispatch-console/internal/livestate"
	"github.com/greenlink-logistics/dispatch-console/internal/session"
	"github.com/greenlink-logistics/dispatch-console/pkg/config"
	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
	redisclient "github.com/greenlink-logistics/dispatch-console/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	Redis        *redisclient.Client
	Sessions     *session.Store
	Gateway      *gateway.Client
	State        *livestate.Synchronizer
	Paths        *geometry.Service
	DriverPortal *driverportal.Service
	Metrics      *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Redis, deps.Gateway))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(deps.Gateway, deps.Sessions, cfg.Session, logg))
		r.Post("/register", controllers.AuthRegister(deps.Gateway, deps.Sessions, cfg.Session, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.Session, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Session, deps.Sessions, logg))

		r.Get("/dashboard", controllers.Dashboard(deps.State, deps.Paths, cfg, logg))
		r.Post("/routes/optimize", controllers.OptimizeRoutes(deps.Gateway, deps.State, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Gateway, logg))
			r.Post("/", controllers.CreateOrder(deps.Gateway, logg))
			r.Delete("/{orderId}", controllers.DeleteOrder(deps.Gateway, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.ListVehicles(deps.Gateway, logg))
			r.Post("/", controllers.CreateVehicle(deps.Gateway, logg))
			r.Delete("/{vehicleId}", controllers.DeleteVehicle(deps.Gateway, logg))
		})

		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", controllers.ListDrivers(deps.Gateway, logg))
			r.Post("/", controllers.CreateDriver(deps.Gateway, logg))
			r.Put("/{driverId}", controllers.UpdateDriver(deps.Gateway, logg))
			r.Delete("/{driverId}", controllers.DeleteDriver(deps.Gateway, logg))
		})

		r.Route("/account", func(r chi.Router) {
			r.Get("/", controllers.GetAccount(deps.Gateway, logg))
			r.Put("/", controllers.UpdateAccount(deps.Gateway, logg))
			r.Delete("/", controllers.DeleteAccount(deps.Gateway, deps.Sessions, cfg.Session, logg))
		})

		r.Route("/driver", func(r chi.Router) {
			r.Get("/route", controllers.DriverRoute(deps.DriverPortal, logg))
			r.Patch("/orders/{orderId}/delivered", controllers.DriverMarkDelivered(deps.DriverPortal, logg))
		})
	})

	return r
}
