// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package efood

import (
	"context"
	"encoding/json"
	"net/http"
)

// User is the identity returned by the login endpoints.
type User struct {
	ID    json.Number `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Phone string      `json:"phone"`
}

// LoginResult is the response of both login steps. When OTPRequired is
// true, Token is empty and the caller must complete VerifyOTP.
type LoginResult struct {
	Token       string `json:"token"`
	Role        string `json:"role"`
	OTPRequired bool   `json:"otp_required"`
	User        User   `json:"user"`
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOTP completes a login that required a one-time password.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/verify-otp", "", nil, map[string]string{
		"email": email,
		"otp":   otp,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the token upstream. Failures are not fatal to the caller.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil, nil)
}
