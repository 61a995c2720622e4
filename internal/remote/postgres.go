// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
)

// PostgresClient implements Client directly against Postgres, for deployments
// where the app talks to its own database rather than a hosted REST backend.
// Entities are stored as jsonb payloads keyed by (user_id, id), weight entries
// by (user_id, entry_date).
type PostgresClient struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresClient wraps an existing pool.
func NewPostgresClient(pool *pgxpool.Pool, logger *slog.Logger) *PostgresClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClient{pool: pool, logger: logger}
}

var _ Client = (*PostgresClient)(nil)

// InitSchema creates the backend tables if they do not exist.
func (c *PostgresClient) InitSchema(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS workout_templates (
			user_id TEXT NOT NULL,
			id TEXT NOT NULL,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, id)
		);
		CREATE TABLE IF NOT EXISTS workout_sessions (
			user_id TEXT NOT NULL,
			id TEXT NOT NULL,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, id)
		);
		CREATE TABLE IF NOT EXISTS custom_exercises (
			user_id TEXT NOT NULL,
			id TEXT NOT NULL,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, id)
		);
		CREATE TABLE IF NOT EXISTS weight_entries (
			user_id TEXT NOT NULL,
			entry_date TEXT NOT NULL,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, entry_date)
		);
		CREATE TABLE IF NOT EXISTS user_profiles (
			user_id TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS collection_order (
			user_id TEXT NOT NULL,
			collection TEXT NOT NULL,
			ids JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, collection)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize backend schema: %w", err)
	}
	return nil
}

func fetchPayloads[T any](ctx context.Context, pool *pgxpool.Pool, table, userID string) ([]T, error) {
	rows, err := pool.Query(ctx, `SELECT payload FROM `+table+` WHERE user_id = $1 ORDER BY updated_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		var item T
		if err := json.Unmarshal(payload, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}
	return items, nil
}

func (c *PostgresClient) insertPayload(ctx context.Context, table, userID, id string, item any) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	tag, err := c.pool.Exec(ctx, `
		INSERT INTO `+table+` (user_id, id, payload) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, id) DO NOTHING
	`, userID, id, payload)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateKey
	}
	return nil
}

func (c *PostgresClient) updatePayload(ctx context.Context, table, userID, id string, item any) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	tag, err := c.pool.Exec(ctx, `
		UPDATE `+table+` SET payload = $3, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`, userID, id, payload)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *PostgresClient) deleteRow(ctx context.Context, table, userID, id string) error {
	_, err := c.pool.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func (c *PostgresClient) saveOrder(ctx context.Context, userID, collection string, ids []string) error {
	payload, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}
	_, err = c.pool.Exec(ctx, `
		INSERT INTO collection_order (user_id, collection, ids) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, collection) DO UPDATE SET ids = excluded.ids, updated_at = now()
	`, userID, collection, payload)
	if err != nil {
		return fmt.Errorf("failed to save %s order: %w", collection, err)
	}
	return nil
}

func (c *PostgresClient) FetchTemplates(ctx context.Context, userID string) ([]domain.Template, error) {
	return fetchPayloads[domain.Template](ctx, c.pool, "workout_templates", userID)
}

func (c *PostgresClient) InsertTemplate(ctx context.Context, userID string, t domain.Template) (string, error) {
	if err := c.insertPayload(ctx, "workout_templates", userID, t.ID, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

func (c *PostgresClient) UpdateTemplate(ctx context.Context, userID string, t domain.Template) error {
	return c.updatePayload(ctx, "workout_templates", userID, t.ID, t)
}

func (c *PostgresClient) DeleteTemplate(ctx context.Context, userID, id string) error {
	return c.deleteRow(ctx, "workout_templates", userID, id)
}

func (c *PostgresClient) SaveTemplateOrder(ctx context.Context, userID string, ids []string) error {
	return c.saveOrder(ctx, userID, "templates", ids)
}

func (c *PostgresClient) FetchSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	return fetchPayloads[domain.Session](ctx, c.pool, "workout_sessions", userID)
}

func (c *PostgresClient) InsertSession(ctx context.Context, userID string, s domain.Session) (string, error) {
	if err := c.insertPayload(ctx, "workout_sessions", userID, s.ID, s); err != nil {
		return "", err
	}
	return s.ID, nil
}

// InsertSessions batch-inserts sessions in one transaction. Rows that already
// exist are skipped, matching single-insert duplicate semantics.
func (c *PostgresClient) InsertSessions(ctx context.Context, userID string, sessions []domain.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		for _, s := range sessions {
			payload, err := json.Marshal(s)
			if err != nil {
				return fmt.Errorf("failed to encode session %s: %w", s.ID, err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO workout_sessions (user_id, id, payload) VALUES ($1, $2, $3)
				ON CONFLICT (user_id, id) DO NOTHING
			`, userID, s.ID, payload)
			if err != nil {
				return fmt.Errorf("failed to batch-insert session %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

func (c *PostgresClient) UpdateSession(ctx context.Context, userID string, s domain.Session) error {
	return c.updatePayload(ctx, "workout_sessions", userID, s.ID, s)
}

func (c *PostgresClient) DeleteSession(ctx context.Context, userID, id string) error {
	return c.deleteRow(ctx, "workout_sessions", userID, id)
}

func (c *PostgresClient) SaveSessionOrder(ctx context.Context, userID string, ids []string) error {
	return c.saveOrder(ctx, userID, "sessions", ids)
}

func (c *PostgresClient) FetchExercises(ctx context.Context, userID string) ([]domain.Exercise, error) {
	return fetchPayloads[domain.Exercise](ctx, c.pool, "custom_exercises", userID)
}

func (c *PostgresClient) InsertExercise(ctx context.Context, userID string, e domain.Exercise) (string, error) {
	if err := c.insertPayload(ctx, "custom_exercises", userID, e.ID, e); err != nil {
		return "", err
	}
	return e.ID, nil
}

func (c *PostgresClient) UpdateExercise(ctx context.Context, userID string, e domain.Exercise) error {
	return c.updatePayload(ctx, "custom_exercises", userID, e.ID, e)
}

func (c *PostgresClient) DeleteExercise(ctx context.Context, userID, id string) error {
	return c.deleteRow(ctx, "custom_exercises", userID, id)
}

func (c *PostgresClient) FetchWeightEntries(ctx context.Context, userID string) ([]domain.WeightEntry, error) {
	return fetchPayloads[domain.WeightEntry](ctx, c.pool, "weight_entries", userID)
}

func (c *PostgresClient) UpsertWeightEntry(ctx context.Context, userID string, e domain.WeightEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode weight entry: %w", err)
	}
	_, err = c.pool.Exec(ctx, `
		INSERT INTO weight_entries (user_id, entry_date, payload) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, entry_date) DO UPDATE SET payload = excluded.payload, updated_at = now()
	`, userID, e.Date, payload)
	if err != nil {
		return fmt.Errorf("failed to upsert weight entry: %w", err)
	}
	return nil
}

func (c *PostgresClient) DeleteWeightEntry(ctx context.Context, userID, date string) error {
	_, err := c.pool.Exec(ctx, `DELETE FROM weight_entries WHERE user_id = $1 AND entry_date = $2`, userID, date)
	if err != nil {
		return fmt.Errorf("failed to delete weight entry: %w", err)
	}
	return nil
}

func (c *PostgresClient) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	var payload []byte
	err := c.pool.QueryRow(ctx, `SELECT payload FROM user_profiles WHERE user_id = $1`, userID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	var prefs domain.Preferences
	if err := json.Unmarshal(payload, &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &Profile{UserID: userID, Preferences: prefs}, nil
}

func (c *PostgresClient) SaveProfile(ctx context.Context, userID string, prefs domain.Preferences) error {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = c.pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id, payload) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET payload = excluded.payload, updated_at = now()
	`, userID, payload)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
