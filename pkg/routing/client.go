// Package routing wraps an OSRM-compatible route service used to fetch
// road-following geometry for rendered routes.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/greenlink-logistics/dispatch-console/pkg/errors"
	"github.com/greenlink-logistics/dispatch-console/pkg/polyline"
)

const (
	defaultBaseURL              = "https://router.project-osrm.org"
	responseBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("routing base url is required")

// Client calls the OSRM driving profile for full-overview polylines.
type Client struct {
	httpClient *http.Client
	baseURL    string
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

// NewClient builds a routing client for the given OSRM base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = defaultBaseURL
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if client.baseURL == "" {
		return nil, errBaseURLRequired
	}

	return client, nil
}

// RoutePath fetches the driving path through the given (lat, lon) waypoints
// and returns it as a decoded coordinate sequence. OSRM expects
// longitude-first coordinates in the request path.
func (c *Client) RoutePath(ctx context.Context, waypoints [][2]float64) ([][2]float64, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "routing client not configured")
	}
	if len(waypoints) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least two waypoints are required")
	}

	coords := make([]string, 0, len(waypoints))
	for _, point := range waypoints {
		coords = append(coords, formatCoord(point[1])+","+formatCoord(point[0]))
	}
	url := fmt.Sprintf("%s/route/v1/driving/%s?overview=full&geometries=polyline",
		c.baseURL, strings.Join(coords, ";"))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build route request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute route request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"route request failed")
	}

	var apiResp struct {
		Routes []struct {
			Geometry string `json:"geometry"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode route response")
	}

	if len(apiResp.Routes) == 0 || apiResp.Routes[0].Geometry == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "route response carried no geometry")
	}

	path, err := polyline.Decode(apiResp.Routes[0].Geometry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode route geometry")
	}
	if len(path) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "route geometry decoded empty")
	}

	return path, nil
}

func formatCoord(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
