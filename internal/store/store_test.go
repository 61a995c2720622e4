// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestLoadWithoutCommitReturnsErrNoSnapshot(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Load(context.Background())
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestCommitLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	unit := "kg"
	state := &domain.State{
		Templates: []domain.Template{{ID: uuid.NewString(), Name: "Push Day"}},
		Sessions:  []domain.Session{{ID: uuid.NewString()}},
		WeightEntries: []domain.WeightEntry{
			{Date: "2024-05-01", Weight: 81.5, Unit: "kg"},
		},
		Preferences:       domain.Preferences{Unit: &unit},
		WorkoutGoal:       4,
		CurrentWeek:       2,
		HasCompletedIntro: true,
	}
	require.NoError(t, st.Commit(ctx, state))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, state.Templates[0].Name, loaded.Templates[0].Name)
	require.Equal(t, state.WeightEntries, loaded.WeightEntries)
	require.Equal(t, "kg", *loaded.Preferences.Unit)
	require.Equal(t, 4, loaded.WorkoutGoal)
	require.True(t, loaded.HasCompletedIntro)
}

func TestCommitOverwritesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Commit(ctx, &domain.State{WorkoutGoal: 3}))
	require.NoError(t, st.Commit(ctx, &domain.State{WorkoutGoal: 5}))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, loaded.WorkoutGoal)
}

func TestObserversNotifiedOnCommit(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	var seen []*domain.State
	st.Observe(func(s *domain.State) { seen = append(seen, s) })

	state := &domain.State{WorkoutGoal: 3}
	require.NoError(t, st.Commit(ctx, state))
	require.Len(t, seen, 1)
	require.Same(t, state, seen[0])
}

func TestFlagsSurviveSnapshotReset(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Commit(ctx, &domain.State{}))
	require.NoError(t, st.SetFlag(ctx, "template_exercise_dedup_v1"))

	require.NoError(t, st.Reset(ctx))

	_, err := st.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	flag, err := st.Flag(ctx, "template_exercise_dedup_v1")
	require.NoError(t, err)
	require.True(t, flag, "flags live outside the snapshot and survive a reset")
}

func TestSetFlagIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.SetFlag(ctx, "some_flag"))
	require.NoError(t, st.SetFlag(ctx, "some_flag"))

	flag, err := st.Flag(ctx, "some_flag")
	require.NoError(t, err)
	require.True(t, flag)
}

func TestMalformedSnapshotFailsValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	// Bypass Commit and plant a blob that is JSON but not a snapshot.
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO app_state (id, payload, schema_version, updated_at)
		VALUES (1, '{"state": {"templates": [{"name": "no id"}]}}', 1, '2024-01-01T00:00:00Z')
	`)
	require.NoError(t, err)

	_, err = st.Load(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "schema")
}
