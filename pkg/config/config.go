package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "GREENLINK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "GREENLINK_APP_ENV"
	EnvPort         = "GREENLINK_APP_PORT"
	EnvAPIBaseURL   = "GREENLINK_API_BASE_URL"
	EnvPublicOrigin = "GREENLINK_PUBLIC_ORIGIN"
	EnvRedisURL     = "GREENLINK_REDIS_URL"
)

type Config struct {
	App     AppConfig
	Backend BackendConfig
	Routing RoutingConfig
	Redis   RedisConfig
	Session SessionConfig
	Sync    SyncConfig
	Map     MapConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GREENLINK_APP_ENV" required:"true"`
	Port         string `envconfig:"GREENLINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GREENLINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GREENLINK_LOG_WARN_STACK" default:"false"`

	// PublicOrigin is the origin the console is served from. The backend
	// location is derived from it when no explicit override is set.
	PublicOrigin string `envconfig:"GREENLINK_PUBLIC_ORIGIN" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type BackendConfig struct {
	BaseURL        string        `envconfig:"GREENLINK_API_BASE_URL"`
	RequestTimeout time.Duration `envconfig:"GREENLINK_API_REQUEST_TIMEOUT" default:"30s"`
}

const (
	consolePort = ":3000"
	backendPort = ":8080"
)

// Root resolves the backend root URL. An explicit override wins; otherwise
// the root is derived from the public origin by substituting the console
// port with the backend port.
func (b BackendConfig) Root(publicOrigin string) string {
	if trimmed := strings.TrimRight(strings.TrimSpace(b.BaseURL), "/"); trimmed != "" {
		return trimmed
	}
	origin := strings.TrimRight(strings.TrimSpace(publicOrigin), "/")
	if origin == "" {
		return "http://localhost" + backendPort
	}
	return strings.Replace(origin, consolePort, backendPort, 1)
}

type RoutingConfig struct {
	BaseURL        string        `envconfig:"GREENLINK_ROUTING_BASE_URL" default:"https://router.project-osrm.org"`
	Enabled        bool          `envconfig:"GREENLINK_ROUTING_ENABLED" default:"true"`
	RequestTimeout time.Duration `envconfig:"GREENLINK_ROUTING_REQUEST_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GREENLINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GREENLINK_REDIS_ADDR"`
	Password     string        `envconfig:"GREENLINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"GREENLINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GREENLINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GREENLINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GREENLINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GREENLINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GREENLINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	CookieName   string        `envconfig:"GREENLINK_SESSION_COOKIE_NAME" default:"gl_token"`
	TTL          time.Duration `envconfig:"GREENLINK_SESSION_TTL" default:"24h"`
	CookieSecure bool          `envconfig:"GREENLINK_SESSION_COOKIE_SECURE" default:"false"`
}

type SyncConfig struct {
	RefreshInterval time.Duration `envconfig:"GREENLINK_SYNC_REFRESH_INTERVAL" default:"15s"`
}

type MapConfig struct {
	TileURL     string `envconfig:"GREENLINK_MAP_TILE_URL" default:"https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"`
	Attribution string `envconfig:"GREENLINK_MAP_ATTRIBUTION" default:"&copy; OpenStreetMap contributors"`
}
