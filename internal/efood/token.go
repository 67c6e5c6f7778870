// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package efood

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenClaims holds the fields the dashboard reads from an upstream token.
type TokenClaims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// ParseToken reads the claims of an upstream JWT without verifying its
// signature. The upstream API remains the authority on validity; the
// claims only size the session lifetime and fill in a missing role.
func ParseToken(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	out := &TokenClaims{}
	if sub, ok := claims["sub"].(string); ok {
		out.Subject = sub
	} else if uid, ok := claims["user_id"]; ok {
		out.Subject = fmt.Sprint(uid)
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}

// TTL returns how long the token remains valid from now, capped at max.
// Tokens without an expiry, or that cannot be parsed, get max.
func TTL(token string, now time.Time, max time.Duration) time.Duration {
	claims, err := ParseToken(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return max
	}
	ttl := claims.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return 0
	}
	if ttl > max {
		return max
	}
	return ttl
}
