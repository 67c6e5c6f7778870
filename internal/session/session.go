// Package session provides Valkey-backed HTTP session management.
// Sessions are identified by a secure cookie and stored as JSON in Valkey
// with automatic TTL expiry. Each session carries the upstream eFood API
// token of the signed-in user and never outlives that token.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"efoodadmin/internal/efood"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "efood_session"

	// DefaultTTL is the longest a session lives in Valkey before automatic expiry.
	DefaultTTL = 12 * time.Hour

	// PendingTTL bounds a session that is still waiting for its OTP code.
	PendingTTL = 10 * time.Minute

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// ErrTokenExpired is returned when a session would be created or updated
// with an upstream token that has already expired.
var ErrTokenExpired = errors.New("session: upstream token expired")

// Data holds the session payload stored in Valkey. It contains the
// authenticated user's identity, upstream token and OTP completion status.
type Data struct {
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	APIToken   string    `json:"api_token"`
	OTPPending bool      `json:"otp_pending"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (d *Data) IsAdmin() bool {
	return d.Role == efood.RoleAdmin
}

// Verified reports whether the user finished every login step.
func (d *Data) Verified() bool {
	return !d.OTPPending && d.APIToken != ""
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewStore creates a session store backed by the given Valkey client.
// Secure marks the cookie for TLS-only transport.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
		now:    time.Now,
	}
}

// ttlFor caps the session lifetime at the upstream token's expiry.
// Sessions waiting for an OTP code get PendingTTL.
func (s *Store) ttlFor(data *Data) time.Duration {
	if data.OTPPending {
		return min(s.ttl, PendingTTL)
	}
	if data.APIToken == "" {
		return s.ttl
	}
	return efood.TTL(data.APIToken, s.now(), s.ttl)
}

// Create generates a new session, stores it in Valkey, and sets the
// session cookie on the response. Returns the session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	ttl := s.ttlFor(data)
	if ttl <= 0 {
		return "", ErrTokenExpired
	}

	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = s.now()

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+id, payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})

	return id, nil
}

// Get retrieves session data from Valkey using the session ID from the
// request cookie. Returns nil if no valid session exists.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil // No cookie = no session (not an error)
	}

	payload, err := s.client.Get(ctx, keyPrefix+cookie.Value).Bytes()
	if err == redis.Nil {
		return nil, nil // Session expired or doesn't exist
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}

	return &data, nil
}

// Update replaces the session data in Valkey without changing the session
// ID or cookie. Resets the TTL, still capped by the token expiry.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return fmt.Errorf("session update: no cookie")
	}

	ttl := s.ttlFor(data)
	if ttl <= 0 {
		return ErrTokenExpired
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+cookie.Value, payload, ttl).Err(); err != nil {
		return fmt.Errorf("session update: %w", err)
	}

	return nil
}

// Destroy removes the session from Valkey and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil // No cookie, nothing to destroy
	}

	if err := s.client.Del(ctx, keyPrefix+cookie.Value).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}

	// Expire the cookie immediately.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		MaxAge:   -1,
	})

	return nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
