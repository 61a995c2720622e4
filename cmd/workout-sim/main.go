// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// workout-sim wires the sync engine end to end and drives a small
// offline-then-online scenario against a real backend: record a workout while
// offline, come online, and watch the cycle migrate, reconcile and push.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DustinBergman/workout-app-sub004/internal/config"
	"github.com/DustinBergman/workout-app-sub004/internal/domain"
	"github.com/DustinBergman/workout-app-sub004/internal/identity"
	"github.com/DustinBergman/workout-app-sub004/internal/remote"
	"github.com/DustinBergman/workout-app-sub004/internal/store"
	"github.com/DustinBergman/workout-app-sub004/internal/syncer"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(context.Background(), logger); err != nil {
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg := config.Load()

	st, err := store.Open(cfg.SQLitePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer st.Close()

	provider := identity.NewProvider(cfg.JWTSecret)
	token, err := identity.MintToken(cfg.JWTSecret, cfg.UserID, cfg.TokenTTL)
	if err != nil {
		return err
	}
	provider.SetToken(token)

	client, err := buildRemote(ctx, cfg, provider, logger)
	if err != nil {
		return err
	}

	outcome := func(o syncer.PushOutcome) {
		if o.Err != nil {
			logger.Warn("push outcome", "collection", o.Collection, "op", string(o.Op), "key", o.Key, "error", o.Err)
			return
		}
		logger.Info("push outcome", "collection", o.Collection, "op", string(o.Op), "key", o.Key)
	}
	orch := syncer.New(st, client, provider, outcome, logger)

	// Offline: record a session locally. Nothing reaches the backend yet.
	provider.SetOnline(false)
	if err := recordOfflineWorkout(ctx, st); err != nil {
		return err
	}
	orch.HandleConnectivity(ctx, false)
	status, _ := orch.Status()
	logger.Info("while offline", "status", string(status))

	// Online: the full cycle runs and catch-up pushes drain the backlog.
	provider.SetOnline(true)
	orch.HandleConnectivity(ctx, true)
	orch.WaitForPushes()

	status, msg := orch.Status()
	logger.Info("after reconnect", "status", string(status), "message", msg)
	return nil
}

func buildRemote(ctx context.Context, cfg config.Config, provider *identity.Provider, logger *slog.Logger) (remote.Client, error) {
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		client := remote.NewPostgresClient(pool, logger)
		if err := client.InitSchema(ctx); err != nil {
			return nil, err
		}
		return client, nil
	}
	return remote.NewHTTPClient(cfg.ServerURL, provider.Token, logger), nil
}

func recordOfflineWorkout(ctx context.Context, st *store.Store) error {
	state, err := st.Load(ctx)
	if err != nil {
		state = &domain.State{}
	}
	now := time.Now().UTC()
	done := now.Add(45 * time.Minute)
	state.Sessions = append(state.Sessions, domain.Session{
		ID: uuid.NewString(),
		Exercises: []domain.ExerciseInstance{
			{
				ExerciseID: "bench-press",
				Sets: []domain.SetRecord{
					{Category: domain.CategoryStrength, Strength: &domain.StrengthSet{Weight: 80, Unit: "kg", Reps: 8}},
					{Category: domain.CategoryStrength, Strength: &domain.StrengthSet{Weight: 80, Unit: "kg", Reps: 6}},
				},
			},
		},
		StartedAt:   now,
		CompletedAt: &done,
	})
	state.WeightEntries = append(state.WeightEntries, domain.WeightEntry{
		Date:   now.Format("2006-01-02"),
		Weight: 78.4,
		Unit:   "kg",
	})
	return st.Commit(ctx, state)
}
