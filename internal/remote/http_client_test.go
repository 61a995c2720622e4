// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
)

func staticToken(_ context.Context) (string, error) {
	return "test-token", nil
}

func TestHTTPClientFetchTemplates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/users/user-1/templates", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]domain.Template{{ID: "abc", Name: "Push Day"}})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, staticToken, nil)
	items, err := client.FetchTemplates(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Push Day", items[0].Name)
}

func TestHTTPClientInsertReturnsID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/users/user-1/sessions", r.URL.Path)
		var s domain.Session
		require.NoError(t, json.NewDecoder(r.Body).Decode(&s))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(insertResponse{ID: s.ID})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, staticToken, nil)
	id, err := client.InsertSession(context.Background(), "user-1", domain.Session{ID: "sess-1"})
	require.NoError(t, err)
	require.Equal(t, "sess-1", id)
}

func TestHTTPClientConflictMapsToErrDuplicateKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, staticToken, nil)
	_, err := client.InsertTemplate(context.Background(), "user-1", domain.Template{ID: "dup"})
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestHTTPClientUpsertWeightEntryTreatsConflictAsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/users/user-1/weight-entries/2024-01-01", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, staticToken, nil)
	err := client.UpsertWeightEntry(context.Background(), "user-1", domain.WeightEntry{Date: "2024-01-01", Weight: 80})
	require.NoError(t, err)
}

func TestHTTPClientMissingProfileIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, staticToken, nil)
	profile, err := client.FetchProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.Nil(t, profile)
}

func TestHTTPClientServerErrorIsSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, staticToken, nil)
	_, err := client.FetchSessions(context.Background(), "user-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}
