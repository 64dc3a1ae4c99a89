// Package gateway is the typed client for the logistics backend. Every
// request carries the bearer token threaded through the context by the
// session layer.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/greenlink-logistics/dispatch-console/internal/session"
	pkgerrors "github.com/greenlink-logistics/dispatch-console/pkg/errors"
	"github.com/greenlink-logistics/dispatch-console/pkg/logger"
	"github.com/greenlink-logistics/dispatch-console/pkg/metrics"
	"github.com/greenlink-logistics/dispatch-console/pkg/types"
)

const responseBodyReadLimit int64 = 2048

var errBaseURLRequired = errors.New("backend base url is required")

// Client wraps the backend REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiRoot    string
	log        *logger.Logger
	metrics    *metrics.GatewayMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger attaches a logger used for swallowed route-list failures.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithMetrics attaches per-resource request metrics.
func WithMetrics(m *metrics.GatewayMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a backend client rooted at the given base URL. Resource
// endpoints live under /api; auth endpoints live at the root.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		apiRoot:    trimmed + "/api",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the signup payload.
type Registration struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     types.Role `json:"role"`
}

// AuthResult is the backend's answer to login and register.
type AuthResult struct {
	Token string     `json:"token"`
	Role  types.Role `json:"role"`
}

// CreateOrderInput carries the fields accepted when creating an order.
// Either an address or explicit coordinates may be supplied.
type CreateOrderInput struct {
	Address            string   `json:"address,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	WeightKg           float64  `json:"weightKg"`
	ServiceDurationMin int      `json:"serviceDurationMin"`
}

type CreateVehicleInput struct {
	Name              string              `json:"name"`
	Address           string              `json:"address,omitempty"`
	CapacityKg        float64             `json:"capacityKg"`
	StartLat          *float64            `json:"startLat,omitempty"`
	StartLon          *float64            `json:"startLon,omitempty"`
	StartShiftMinutes int                 `json:"startShiftMinutes"`
	EndShiftMinutes   int                 `json:"endShiftMinutes"`
	Status            types.VehicleStatus `json:"status,omitempty"`
}

type CreateDriverInput struct {
	Name              string             `json:"name"`
	Email             string             `json:"email,omitempty"`
	LicenseID         string             `json:"licenseId"`
	Phone             string             `json:"phone"`
	HomeBase          string             `json:"homeBase"`
	Status            types.DriverStatus `json:"status"`
	AssignedVehicleID string             `json:"assignedVehicleId,omitempty"`
}

// UpdateDriverInput carries partial driver updates. assignedVehicleId is
// always forwarded; sending null clears the assignment.
type UpdateDriverInput struct {
	Name              *string             `json:"name,omitempty"`
	LicenseID         *string             `json:"licenseId,omitempty"`
	Phone             *string             `json:"phone,omitempty"`
	HomeBase          *string             `json:"homeBase,omitempty"`
	Status            *types.DriverStatus `json:"status,omitempty"`
	AssignedVehicleID *string             `json:"assignedVehicleId"`
	LastCheckIn       *string             `json:"lastCheckIn,omitempty"`
}

type UpdateAccountInput struct {
	Email       *string `json:"email,omitempty"`
	FullName    *string `json:"fullName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// Login exchanges credentials for a token and role.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/login", creds, &result, "auth"); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a backend account and returns its first token.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/auth/register", reg, &result, "auth"); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOrders fetches all orders visible to the caller's organization.
func (c *Client) ListOrders(ctx context.Context) ([]types.Order, error) {
	var orders []types.Order
	if err := c.do(ctx, http.MethodGet, c.apiRoot+"/orders", nil, &orders, "orders"); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*types.Order, error) {
	var order types.Order
	if err := c.do(ctx, http.MethodPost, c.apiRoot+"/orders", input, &order, "orders"); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodDelete, c.apiRoot+"/orders/"+orderID, nil, nil, "orders")
}

// ListVehicles fetches the fleet.
func (c *Client) ListVehicles(ctx context.Context) ([]types.Vehicle, error) {
	var vehicles []types.Vehicle
	if err := c.do(ctx, http.MethodGet, c.apiRoot+"/vehicles", nil, &vehicles, "vehicles"); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *Client) CreateVehicle(ctx context.Context, input CreateVehicleInput) (*types.Vehicle, error) {
	var vehicle types.Vehicle
	if err := c.do(ctx, http.MethodPost, c.apiRoot+"/vehicles", input, &vehicle, "vehicles"); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (c *Client) DeleteVehicle(ctx context.Context, vehicleID string) error {
	return c.do(ctx, http.MethodDelete, c.apiRoot+"/vehicles/"+vehicleID, nil, nil, "vehicles")
}

// ListRoutes fetches planned routes. The backend only exposes this endpoint
// on newer deployments, so any failure degrades to an empty set with a
// warning rather than an error.
func (c *Client) ListRoutes(ctx context.Context) []types.Route {
	var routes []types.Route
	if err := c.do(ctx, http.MethodGet, c.apiRoot+"/routes", nil, &routes, "routes"); err != nil {
		if c.log != nil {
			c.log.Warn(c.log.WithField(ctx, "error", err.Error()), "could not fetch routes")
		}
		return []types.Route{}
	}
	if routes == nil {
		routes = []types.Route{}
	}
	return routes
}

// OptimizeRoutes triggers the backend solver and returns the fresh plan.
func (c *Client) OptimizeRoutes(ctx context.Context) ([]types.Route, error) {
	var routes []types.Route
	if err := c.do(ctx, http.MethodPost, c.apiRoot+"/routes/optimize", nil, &routes, "routes"); err != nil {
		return nil, err
	}
	return routes, nil
}

// ListDrivers fetches the driver roster.
func (c *Client) ListDrivers(ctx context.Context) ([]types.Driver, error) {
	var drivers []types.Driver
	if err := c.do(ctx, http.MethodGet, c.apiRoot+"/drivers", nil, &drivers, "drivers"); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (c *Client) CreateDriver(ctx context.Context, input CreateDriverInput) (*types.Driver, error) {
	var driver types.Driver
	if err := c.do(ctx, http.MethodPost, c.apiRoot+"/drivers", input, &driver, "drivers"); err != nil {
		return nil, err
	}
	return &driver, nil
}

func (c *Client) UpdateDriver(ctx context.Context, driverID string, input UpdateDriverInput) (*types.Driver, error) {
	var driver types.Driver
	if err := c.do(ctx, http.MethodPut, c.apiRoot+"/drivers/"+driverID, input, &driver, "drivers"); err != nil {
		return nil, err
	}
	return &driver, nil
}

func (c *Client) DeleteDriver(ctx context.Context, driverID string) error {
	return c.do(ctx, http.MethodDelete, c.apiRoot+"/drivers/"+driverID, nil, nil, "drivers")
}

// FetchDriverRoute returns the route assigned to the calling driver.
func (c *Client) FetchDriverRoute(ctx context.Context) (*types.DriverRoute, error) {
	var route types.DriverRoute
	if err := c.do(ctx, http.MethodGet, c.apiRoot+"/driver/route", nil, &route, "driver"); err != nil {
		return nil, err
	}
	return &route, nil
}

// MarkOrderDelivered records a delivery completed by the calling driver.
func (c *Client) MarkOrderDelivered(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPatch, c.apiRoot+"/driver/orders/"+orderID+"/delivered", nil, nil, "driver")
}

// FetchAccount returns the calling user's profile.
func (c *Client) FetchAccount(ctx context.Context) (*types.AccountProfile, error) {
	var profile types.AccountProfile
	if err := c.do(ctx, http.MethodGet, c.apiRoot+"/account", nil, &profile, "account"); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateAccount(ctx context.Context, input UpdateAccountInput) (*types.AccountProfile, error) {
	var profile types.AccountProfile
	if err := c.do(ctx, http.MethodPut, c.apiRoot+"/account", input, &profile, "account"); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, c.apiRoot+"/account", nil, nil, "account")
}

// Ping checks backend reachability for readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiRoot+"/orders", nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build backend probe")
	}
	attachBearer(ctx, req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend unreachable")
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, body, out any, resource string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "gateway client not configured")
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build backend request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	attachBearer(ctx, req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveRequest(resource, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(resource)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute backend request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.metrics.IncFailure(resource)
		return statusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.IncFailure(resource)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend response")
	}
	return nil
}

func attachBearer(ctx context.Context, req *http.Request) {
	if token := session.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, cause, "backend rejected credentials")
	case http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, cause, "backend denied access")
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, "backend resource not found")
	case http.StatusConflict:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, "backend reported a conflict")
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, "backend rejected request")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "backend request failed")
	}
}
