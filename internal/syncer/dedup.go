// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
	"github.com/DustinBergman/workout-app-sub004/internal/remote"
	"github.com/DustinBergman/workout-app-sub004/internal/store"
)

// TemplateDedupFlag gates the one-time duplicate-row repair. It lives in the
// flag table, not the snapshot, so a full data reset does not re-run the pass.
const TemplateDedupFlag = "template_exercise_dedup_v1"

// Deduper repairs templates that accumulated duplicate exercise rows from a
// defect in an earlier release.
type Deduper struct {
	store  *store.Store
	remote remote.Client
	logger *slog.Logger
}

// NewDeduper creates a Deduper.
func NewDeduper(st *store.Store, client remote.Client, logger *slog.Logger) *Deduper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduper{store: st, remote: client, logger: logger}
}

// Run executes the repair at most once per installation. A failed repair is
// logged and the flag is still set, so a persistently failing repair is not
// retried on every launch. Run never propagates errors into the sync cycle.
func (d *Deduper) Run(ctx context.Context, userID string) {
	done, err := d.store.Flag(ctx, TemplateDedupFlag)
	if err != nil {
		d.logger.Warn("dedup flag check failed, skipping repair", "error", err)
		return
	}
	if done {
		return
	}

	if err := d.repair(ctx, userID); err != nil {
		d.logger.Warn("template dedup repair failed", "error", err)
	}

	if err := d.store.SetFlag(ctx, TemplateDedupFlag); err != nil {
		d.logger.Warn("failed to set dedup flag", "error", err)
	}
}

func (d *Deduper) repair(ctx context.Context, userID string) error {
	state, err := d.store.Load(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return err
	}

	repaired := state.Clone()
	var changed []string
	for i := range repaired.Templates {
		deduped, removed := dedupeExerciseRows(repaired.Templates[i].Exercises)
		if removed > 0 {
			repaired.Templates[i].Exercises = deduped
			changed = append(changed, repaired.Templates[i].ID)
			d.logger.Info("removed duplicate exercise rows",
				"template", repaired.Templates[i].ID, "removed", removed)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	for _, t := range repaired.Templates {
		if !containsID(changed, t.ID) {
			continue
		}
		if err := d.remote.UpdateTemplate(ctx, userID, t); err != nil && !errors.Is(err, remote.ErrNotFound) {
			return err
		}
	}

	// Re-fetch so local and remote agree on the repaired rows.
	cloudTemplates, err := d.remote.FetchTemplates(ctx, userID)
	if err != nil {
		return err
	}
	repaired.Templates, _ = mergeByKey(cloudTemplates, repaired.Templates,
		func(t domain.Template) string { return t.ID }, hasValidID)

	return d.store.Commit(ctx, repaired)
}

// dedupeExerciseRows keeps the first row per exercise id. The defect only
// ever duplicated existing rows, so dropping later occurrences restores the
// intended list.
func dedupeExerciseRows(specs []domain.ExerciseSpec) ([]domain.ExerciseSpec, int) {
	seen := make(map[string]struct{}, len(specs))
	out := specs[:0:0]
	removed := 0
	for _, spec := range specs {
		if _, ok := seen[spec.ExerciseID]; ok {
			removed++
			continue
		}
		seen[spec.ExerciseID] = struct{}{}
		out = append(out, spec)
	}
	return out, removed
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
