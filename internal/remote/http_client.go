// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
)

// HTTPClient talks to the backend REST API. Token is called per request so a
// refreshed JWT is always used.
type HTTPClient struct {
	BaseURL string
	Token   func(ctx context.Context) (string, error)
	HTTP    *http.Client
	logger  *slog.Logger
}

// NewHTTPClient creates a backend client for baseURL.
func NewHTTPClient(baseURL string, token func(ctx context.Context) (string, error), logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{},
		logger:  logger,
	}
}

var _ Client = (*HTTPClient)(nil)

// insertResponse is the body returned by collection POST endpoints.
type insertResponse struct {
	ID string `json:"id"`
}

// do issues one authorized JSON request. A nil out skips body decoding.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	token, err := c.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
	case http.StatusConflict:
		return ErrDuplicateKey
	case http.StatusNotFound:
		return ErrNotFound
	default:
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func userPath(userID, suffix string) string {
	return "/v1/users/" + url.PathEscape(userID) + suffix
}

func (c *HTTPClient) FetchTemplates(ctx context.Context, userID string) ([]domain.Template, error) {
	var items []domain.Template
	if err := c.do(ctx, http.MethodGet, userPath(userID, "/templates"), nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch templates: %w", err)
	}
	return items, nil
}

func (c *HTTPClient) InsertTemplate(ctx context.Context, userID string, t domain.Template) (string, error) {
	var resp insertResponse
	if err := c.do(ctx, http.MethodPost, userPath(userID, "/templates"), t, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *HTTPClient) UpdateTemplate(ctx context.Context, userID string, t domain.Template) error {
	return c.do(ctx, http.MethodPut, userPath(userID, "/templates/"+url.PathEscape(t.ID)), t, nil)
}

func (c *HTTPClient) DeleteTemplate(ctx context.Context, userID, id string) error {
	return c.do(ctx, http.MethodDelete, userPath(userID, "/templates/"+url.PathEscape(id)), nil, nil)
}

func (c *HTTPClient) SaveTemplateOrder(ctx context.Context, userID string, ids []string) error {
	return c.do(ctx, http.MethodPut, userPath(userID, "/templates/order"), ids, nil)
}

func (c *HTTPClient) FetchSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	var items []domain.Session
	if err := c.do(ctx, http.MethodGet, userPath(userID, "/sessions"), nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}
	return items, nil
}

func (c *HTTPClient) InsertSession(ctx context.Context, userID string, s domain.Session) (string, error) {
	var resp insertResponse
	if err := c.do(ctx, http.MethodPost, userPath(userID, "/sessions"), s, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *HTTPClient) InsertSessions(ctx context.Context, userID string, sessions []domain.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, userPath(userID, "/sessions/batch"), sessions, nil)
}

func (c *HTTPClient) UpdateSession(ctx context.Context, userID string, s domain.Session) error {
	return c.do(ctx, http.MethodPut, userPath(userID, "/sessions/"+url.PathEscape(s.ID)), s, nil)
}

func (c *HTTPClient) DeleteSession(ctx context.Context, userID, id string) error {
	return c.do(ctx, http.MethodDelete, userPath(userID, "/sessions/"+url.PathEscape(id)), nil, nil)
}

func (c *HTTPClient) SaveSessionOrder(ctx context.Context, userID string, ids []string) error {
	return c.do(ctx, http.MethodPut, userPath(userID, "/sessions/order"), ids, nil)
}

func (c *HTTPClient) FetchExercises(ctx context.Context, userID string) ([]domain.Exercise, error) {
	var items []domain.Exercise
	if err := c.do(ctx, http.MethodGet, userPath(userID, "/exercises"), nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch exercises: %w", err)
	}
	return items, nil
}

func (c *HTTPClient) InsertExercise(ctx context.Context, userID string, e domain.Exercise) (string, error) {
	var resp insertResponse
	if err := c.do(ctx, http.MethodPost, userPath(userID, "/exercises"), e, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *HTTPClient) UpdateExercise(ctx context.Context, userID string, e domain.Exercise) error {
	return c.do(ctx, http.MethodPut, userPath(userID, "/exercises/"+url.PathEscape(e.ID)), e, nil)
}

func (c *HTTPClient) DeleteExercise(ctx context.Context, userID, id string) error {
	return c.do(ctx, http.MethodDelete, userPath(userID, "/exercises/"+url.PathEscape(id)), nil, nil)
}

func (c *HTTPClient) FetchWeightEntries(ctx context.Context, userID string) ([]domain.WeightEntry, error) {
	var items []domain.WeightEntry
	if err := c.do(ctx, http.MethodGet, userPath(userID, "/weight-entries"), nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch weight entries: %w", err)
	}
	return items, nil
}

func (c *HTTPClient) UpsertWeightEntry(ctx context.Context, userID string, e domain.WeightEntry) error {
	// PUT by date: the server upserts on the (user, date) natural key.
	err := c.do(ctx, http.MethodPut, userPath(userID, "/weight-entries/"+url.PathEscape(e.Date)), e, nil)
	if errors.Is(err, ErrDuplicateKey) {
		return nil
	}
	return err
}

func (c *HTTPClient) DeleteWeightEntry(ctx context.Context, userID, date string) error {
	return c.do(ctx, http.MethodDelete, userPath(userID, "/weight-entries/"+url.PathEscape(date)), nil, nil)
}

func (c *HTTPClient) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodGet, userPath(userID, "/profile"), nil, &profile)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &profile, nil
}

func (c *HTTPClient) SaveProfile(ctx context.Context, userID string, prefs domain.Preferences) error {
	return c.do(ctx, http.MethodPut, userPath(userID, "/profile"), prefs, nil)
}
