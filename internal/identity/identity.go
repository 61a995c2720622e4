// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package identity derives the engine's auth/connectivity triple from a JWT
// supplied by the surrounding app. The engine never manages sessions or
// tokens; it only asks "who, and are we online".
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DustinBergman/workout-app-sub004/internal/syncer"
)

// ErrNoToken is returned by Token when the app has not supplied one.
var ErrNoToken = errors.New("no auth token set")

// Provider holds the current token and connectivity flag. The surrounding
// auth and connectivity collaborators update it; the sync engine reads it.
type Provider struct {
	secret []byte

	mu     sync.Mutex
	token  string
	online bool
}

// NewProvider creates a Provider validating tokens with the given HMAC secret.
func NewProvider(secret string) *Provider {
	return &Provider{secret: []byte(secret)}
}

// SetToken installs the current JWT. An empty token signs the user out.
func (p *Provider) SetToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
}

// SetOnline updates the connectivity flag.
func (p *Provider) SetOnline(online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = online
}

// Token returns the raw JWT for Authorization headers.
func (p *Provider) Token(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == "" {
		return "", ErrNoToken
	}
	return p.token, nil
}

var _ syncer.IdentityProvider = (*Provider)(nil)

// Identity parses the current token and reports the auth/connectivity triple.
// An invalid or expired token simply reads as unauthenticated.
func (p *Provider) Identity() syncer.Identity {
	p.mu.Lock()
	token := p.token
	online := p.online
	p.mu.Unlock()

	if token == "" {
		return syncer.Identity{IsOnline: online}
	}
	userID, err := p.parseSubject(token)
	if err != nil {
		return syncer.Identity{IsOnline: online}
	}
	return syncer.Identity{UserID: userID, IsAuthenticated: true, IsOnline: online}
}

func (p *Provider) parseSubject(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// MintToken issues a short-lived HS256 token for userID. Used by the
// simulator and tests; production tokens come from the real auth service.
func MintToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
