// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestIdentityFromValidToken(t *testing.T) {
	p := NewProvider(testSecret)
	token, err := MintToken(testSecret, "user-42", time.Hour)
	require.NoError(t, err)

	p.SetToken(token)
	p.SetOnline(true)

	id := p.Identity()
	require.True(t, id.IsAuthenticated)
	require.True(t, id.IsOnline)
	require.Equal(t, "user-42", id.UserID)
}

func TestExpiredTokenReadsAsUnauthenticated(t *testing.T) {
	p := NewProvider(testSecret)
	token, err := MintToken(testSecret, "user-42", -time.Minute)
	require.NoError(t, err)

	p.SetToken(token)
	p.SetOnline(true)

	id := p.Identity()
	require.False(t, id.IsAuthenticated)
	require.Empty(t, id.UserID)
	require.True(t, id.IsOnline, "connectivity is independent of auth")
}

func TestWrongSecretReadsAsUnauthenticated(t *testing.T) {
	p := NewProvider(testSecret)
	token, err := MintToken("some-other-secret", "user-42", time.Hour)
	require.NoError(t, err)

	p.SetToken(token)
	id := p.Identity()
	require.False(t, id.IsAuthenticated)
}

func TestEmptyTokenSignsOut(t *testing.T) {
	p := NewProvider(testSecret)
	token, err := MintToken(testSecret, "user-42", time.Hour)
	require.NoError(t, err)
	p.SetToken(token)
	p.SetToken("")

	id := p.Identity()
	require.False(t, id.IsAuthenticated)

	_, err = p.Token(context.Background())
	require.ErrorIs(t, err, ErrNoToken)
}
