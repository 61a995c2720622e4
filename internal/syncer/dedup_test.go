// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
)

func templateWithDuplicateRows() domain.Template {
	spec := domain.ExerciseSpec{
		ExerciseID: "bench-press",
		Category:   domain.CategoryStrength,
		Strength:   &domain.StrengthTarget{Sets: 3, Reps: 8, RestSec: 120},
	}
	return domain.Template{
		ID:        uuid.NewString(),
		Name:      "Push Day",
		Exercises: []domain.ExerciseSpec{spec, spec, {ExerciseID: "overhead-press", Category: domain.CategoryStrength, Strength: &domain.StrengthTarget{Sets: 3, Reps: 10}}},
	}
}

func TestDedupRemovesDuplicateRowsAndRunsOnce(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore(t)
	rec := newRecorderClient()

	broken := templateWithDuplicateRows()
	rec.Templates = []domain.Template{broken}
	require.NoError(t, st.Commit(ctx, &domain.State{Templates: []domain.Template{broken}}))

	d := NewDeduper(st, rec, nil)

	// First launch: repair, push, re-fetch, flag set.
	d.Run(ctx, "user-1")

	state, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Templates[0].Exercises, 2)
	require.Equal(t, 1, rec.CallCount("UpdateTemplate"))
	require.Equal(t, 1, rec.CallCount("FetchTemplates"))

	flag, err := st.Flag(ctx, TemplateDedupFlag)
	require.NoError(t, err)
	require.True(t, flag)

	// Second launch: flag-gated, no further remote traffic.
	d.Run(ctx, "user-1")
	require.Equal(t, 1, rec.CallCount("FetchTemplates"))
	require.Equal(t, 1, rec.CallCount("UpdateTemplate"))
}

func TestDedupFlagSetEvenWhenRepairFails(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore(t)
	rec := newRecorderClient()
	rec.FailWith("UpdateTemplate", errNetwork)

	broken := templateWithDuplicateRows()
	require.NoError(t, st.Commit(ctx, &domain.State{Templates: []domain.Template{broken}}))

	d := NewDeduper(st, rec, nil)
	d.Run(ctx, "user-1")

	// The repair failed, but the flag advanced so a failing repair is not
	// hammered on every launch.
	flag, err := st.Flag(ctx, TemplateDedupFlag)
	require.NoError(t, err)
	require.True(t, flag)

	// Local state is unchanged by the failed repair.
	state, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Templates[0].Exercises, 3)
}

func TestDedupNoDuplicatesMeansNoRemoteTraffic(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore(t)
	rec := newRecorderClient()

	clean := domain.Template{
		ID: uuid.NewString(),
		Exercises: []domain.ExerciseSpec{
			{ExerciseID: "squat", Category: domain.CategoryStrength, Strength: &domain.StrengthTarget{Sets: 5, Reps: 5}},
		},
	}
	require.NoError(t, st.Commit(ctx, &domain.State{Templates: []domain.Template{clean}}))

	NewDeduper(st, rec, nil).Run(ctx, "user-1")

	require.Empty(t, rec.Calls())
	flag, err := st.Flag(ctx, TemplateDedupFlag)
	require.NoError(t, err)
	require.True(t, flag)
}
