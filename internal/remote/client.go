// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package remote defines the boundary to the backend: an opaque per-collection
// CRUD store. The sync engine never sees transport details; it programs
// against Client and treats duplicate-key collisions as success.
package remote

import (
	"context"
	"errors"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
)

var (
	// ErrDuplicateKey reports an insert that collided with an existing primary
	// key. Callers treat it as "already present" and move on.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound reports an update/delete against a missing row.
	ErrNotFound = errors.New("not found")
)

// Profile is the remote representation of user preferences.
type Profile struct {
	UserID string `json:"userId"`
	domain.Preferences
}

// Client is the full backend surface the sync engine depends on.
type Client interface {
	FetchTemplates(ctx context.Context, userID string) ([]domain.Template, error)
	InsertTemplate(ctx context.Context, userID string, t domain.Template) (string, error)
	UpdateTemplate(ctx context.Context, userID string, t domain.Template) error
	DeleteTemplate(ctx context.Context, userID, id string) error
	SaveTemplateOrder(ctx context.Context, userID string, ids []string) error

	FetchSessions(ctx context.Context, userID string) ([]domain.Session, error)
	InsertSession(ctx context.Context, userID string, s domain.Session) (string, error)
	InsertSessions(ctx context.Context, userID string, sessions []domain.Session) error
	UpdateSession(ctx context.Context, userID string, s domain.Session) error
	DeleteSession(ctx context.Context, userID, id string) error
	SaveSessionOrder(ctx context.Context, userID string, ids []string) error

	FetchExercises(ctx context.Context, userID string) ([]domain.Exercise, error)
	InsertExercise(ctx context.Context, userID string, e domain.Exercise) (string, error)
	UpdateExercise(ctx context.Context, userID string, e domain.Exercise) error
	DeleteExercise(ctx context.Context, userID, id string) error

	FetchWeightEntries(ctx context.Context, userID string) ([]domain.WeightEntry, error)
	UpsertWeightEntry(ctx context.Context, userID string, e domain.WeightEntry) error
	DeleteWeightEntry(ctx context.Context, userID, date string) error

	FetchProfile(ctx context.Context, userID string) (*Profile, error)
	SaveProfile(ctx context.Context, userID string, prefs domain.Preferences) error
}
