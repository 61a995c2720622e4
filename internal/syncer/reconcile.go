// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
	"github.com/DustinBergman/workout-app-sub004/internal/remote"
)

// LocalOnly lists the entities present locally but unknown to the cloud after
// a reconciliation. Only entities with syntactically valid keys are included;
// anything with a legacy identifier predates the migrator and must not be
// pushed.
type LocalOnly struct {
	Templates     []domain.Template
	Sessions      []domain.Session
	Exercises     []domain.Exercise
	WeightEntries []domain.WeightEntry
}

// Empty reports whether there is nothing left to push.
func (l LocalOnly) Empty() bool {
	return len(l.Templates) == 0 && len(l.Sessions) == 0 &&
		len(l.Exercises) == 0 && len(l.WeightEntries) == 0
}

// ReconcileResult carries the unified state plus the catch-up push list.
type ReconcileResult struct {
	State     *domain.State
	LocalOnly LocalOnly
}

// Reconciler unifies a freshly fetched remote snapshot with local state.
// Cloud wins on key collision; local-only items are preserved.
type Reconciler struct {
	remote remote.Client
	logger *slog.Logger
}

// NewReconciler creates a Reconciler over the given backend.
func NewReconciler(client remote.Client, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{remote: client, logger: logger}
}

// Reconcile fetches every collection concurrently and merges it with local.
// The fetch is all-or-nothing: any collection failing aborts the whole
// reconciliation and no partial state is returned.
func (r *Reconciler) Reconcile(ctx context.Context, userID string, local *domain.State) (*ReconcileResult, error) {
	var (
		cloudTemplates []domain.Template
		cloudSessions  []domain.Session
		cloudExercises []domain.Exercise
		cloudWeights   []domain.WeightEntry
		cloudProfile   *remote.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cloudTemplates, err = r.remote.FetchTemplates(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		cloudSessions, err = r.remote.FetchSessions(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		cloudExercises, err = r.remote.FetchExercises(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		cloudWeights, err = r.remote.FetchWeightEntries(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		cloudProfile, err = r.remote.FetchProfile(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reconciliation fetch failed: %w", err)
	}

	merged := local.Clone()
	var localOnly LocalOnly

	merged.Templates, localOnly.Templates = mergeByKey(cloudTemplates, local.Templates,
		func(t domain.Template) string { return t.ID }, hasValidID)
	merged.Sessions, localOnly.Sessions = mergeByKey(cloudSessions, local.Sessions,
		func(s domain.Session) string { return s.ID }, hasValidID)
	merged.CustomExercises, localOnly.Exercises = mergeByKey(cloudExercises, local.CustomExercises,
		func(e domain.Exercise) string { return e.ID }, hasValidID)
	merged.WeightEntries, localOnly.WeightEntries = mergeByKey(cloudWeights, local.WeightEntries,
		func(w domain.WeightEntry) string { return w.Date }, hasValidDate)
	merged.Preferences = mergePreferences(local.Preferences, cloudProfile)

	r.logger.Info("reconciliation complete",
		"templates", len(merged.Templates),
		"sessions", len(merged.Sessions),
		"exercises", len(merged.CustomExercises),
		"weight_entries", len(merged.WeightEntries),
		"local_only_templates", len(localOnly.Templates),
		"local_only_sessions", len(localOnly.Sessions),
		"local_only_exercises", len(localOnly.Exercises),
		"local_only_weight_entries", len(localOnly.WeightEntries))

	return &ReconcileResult{State: merged, LocalOnly: localOnly}, nil
}

// mergeByKey unions a cloud collection with the local one. The result is the
// cloud items (authoritative for any shared key) followed by local-only items
// in their local order. A key appears at most once in the merged collection:
// if local rows duplicate a key (the historical duplicate-row defect), only
// the first survives. localOnly is additionally filtered by pushable so
// legacy-keyed rows never reach the remote schema.
func mergeByKey[T any](cloud, local []T, key func(T) string, pushable func(string) bool) (merged []T, localOnly []T) {
	known := make(map[string]struct{}, len(cloud))
	for _, item := range cloud {
		known[key(item)] = struct{}{}
	}

	merged = append(merged, cloud...)
	for _, item := range local {
		k := key(item)
		if _, ok := known[k]; ok {
			continue
		}
		known[k] = struct{}{}
		merged = append(merged, item)
		if pushable(k) {
			localOnly = append(localOnly, item)
		}
	}
	return merged, localOnly
}

func hasValidDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// mergePreferences applies the remote profile field-by-field over local
// preferences. Fields the profile leaves unset keep their local value.
func mergePreferences(local domain.Preferences, profile *remote.Profile) domain.Preferences {
	if profile == nil {
		return local
	}
	out := local
	if profile.Unit != nil {
		out.Unit = profile.Unit
	}
	if profile.WeekStartsOn != nil {
		out.WeekStartsOn = profile.WeekStartsOn
	}
	if profile.RestTimerSec != nil {
		out.RestTimerSec = profile.RestTimerSec
	}
	if profile.ShowBodyMap != nil {
		out.ShowBodyMap = profile.ShowBodyMap
	}
	if profile.NotifyWorkouts != nil {
		out.NotifyWorkouts = profile.NotifyWorkouts
	}
	if profile.ThemePreference != nil {
		out.ThemePreference = profile.ThemePreference
	}
	return out
}
