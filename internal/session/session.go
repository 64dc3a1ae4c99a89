// Package session holds the backend bearer token for a signed-in browser:
// a durable Redis slot keyed by the token plus the gl_token cookie. The
// token itself stays opaque; it is never validated here, only carried.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/greenlink-logistics/dispatch-console/pkg/config"
	redisclient "github.com/greenlink-logistics/dispatch-console/pkg/redis"
)

var ErrNoSession = errors.New("no active session")

type slotStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type slotKeyer interface {
	SessionKey(id string) string
}

// Store persists the role associated with an active bearer token.
type Store struct {
	store slotStore
	keyer slotKeyer
	ttl   time.Duration
}

// NewStore constructs a session store backed by Redis.
func NewStore(client *redisclient.Client, cfg config.SessionConfig) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Store{store: client, keyer: client, ttl: ttl}, nil
}

// Save records the role for the given token. The slot TTL is capped at the
// token's JWT expiry when one can be read without verification.
func (s *Store) Save(ctx context.Context, token, role string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	ttl := s.ttl
	if remaining, ok := tokenRemainingLifetime(token); ok && remaining < ttl {
		if remaining <= 0 {
			return fmt.Errorf("token already expired")
		}
		ttl = remaining
	}
	return s.store.Set(ctx, s.keyer.SessionKey(tokenDigest(token)), role, ttl)
}

// Role returns the role stored for the token, or ErrNoSession.
func (s *Store) Role(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrNoSession
	}
	role, err := s.store.Get(ctx, s.keyer.SessionKey(tokenDigest(token)))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return "", ErrNoSession
		}
		return "", err
	}
	return role, nil
}

// Revoke drops the slot for the token.
func (s *Store) Revoke(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.store.Del(ctx, s.keyer.SessionKey(tokenDigest(token)))
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// tokenRemainingLifetime peeks at a JWT exp claim without verifying the
// signature. Tokens that are not JWTs simply fall back to the default TTL.
func tokenRemainingLifetime(token string) (time.Duration, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, false
	}
	return time.Until(exp.Time), true
}

type tokenCtxKey struct{}

// WithToken threads the bearer token through a context for the gateway.
func WithToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// TokenFromContext returns the bearer token carried by the context, if any.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if token, ok := ctx.Value(tokenCtxKey{}).(string); ok {
		return token
	}
	return ""
}

// TokenFromRequest extracts the bearer token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw != "" {
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			return strings.TrimSpace(raw[7:])
		}
		return raw
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SetCookie writes the session cookie the browser keeps for 24 hours.
func SetCookie(w http.ResponseWriter, cfg config.SessionConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
	})
}

// ClearCookie expires the session cookie immediately.
func ClearCookie(w http.ResponseWriter, cfg config.SessionConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
	})
}
