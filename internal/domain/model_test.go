// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExerciseSpecValidate(t *testing.T) {
	strength := ExerciseSpec{
		ExerciseID: "bench-press",
		Category:   CategoryStrength,
		Strength:   &StrengthTarget{Sets: 3, Reps: 8},
	}
	require.NoError(t, strength.Validate())

	cardio := ExerciseSpec{
		ExerciseID: "treadmill-run",
		Category:   CategoryCardio,
		Cardio:     &CardioTarget{Kind: "run", Mode: CardioModeDistance, TargetDistanceM: 5000},
	}
	require.NoError(t, cardio.Validate())

	bothBranches := ExerciseSpec{
		ExerciseID: "bench-press",
		Category:   CategoryStrength,
		Strength:   &StrengthTarget{Sets: 3},
		Cardio:     &CardioTarget{},
	}
	require.Error(t, bothBranches.Validate())

	missingBranch := ExerciseSpec{ExerciseID: "squat", Category: CategoryStrength}
	require.Error(t, missingBranch.Validate())

	unknown := ExerciseSpec{ExerciseID: "squat", Category: "mobility"}
	require.Error(t, unknown.Validate())
}

func TestIsBuiltinExercise(t *testing.T) {
	require.True(t, IsBuiltinExercise("bench-press"))
	require.True(t, IsBuiltinExercise("rowing-machine"))
	require.False(t, IsBuiltinExercise("3f0e9c3a-0000-0000-0000-000000000000"))
	require.False(t, IsBuiltinExercise("my custom lift"))
}

func TestCloneIsDeep(t *testing.T) {
	tmpl := Template{
		ID:        "t1",
		Exercises: []ExerciseSpec{{ExerciseID: "squat", Category: CategoryStrength, Strength: &StrengthTarget{Sets: 5, Reps: 5}}},
	}
	active := Session{ID: "s-active", Exercises: []ExerciseInstance{{ExerciseID: "squat"}}}
	state := &State{
		Templates:     []Template{tmpl},
		Sessions:      []Session{{ID: "s1", Exercises: []ExerciseInstance{{ExerciseID: "bench-press", Sets: []SetRecord{{Category: CategoryStrength, Strength: &StrengthSet{Weight: 60, Unit: "kg", Reps: 10}}}}}}},
		ActiveSession: &active,
		WeightEntries: []WeightEntry{{Date: "2024-01-01", Weight: 80}},
	}

	clone := state.Clone()
	clone.Templates[0].Exercises[0].ExerciseID = "deadlift"
	clone.Sessions[0].Exercises[0].Sets[0] = SetRecord{Category: CategoryStrength, Strength: &StrengthSet{Weight: 100, Unit: "kg", Reps: 1}}
	clone.ActiveSession.ID = "changed"
	clone.WeightEntries[0].Weight = 99

	require.Equal(t, "squat", state.Templates[0].Exercises[0].ExerciseID)
	require.Equal(t, 60.0, state.Sessions[0].Exercises[0].Sets[0].Strength.Weight)
	require.Equal(t, "s-active", state.ActiveSession.ID)
	require.Equal(t, 80.0, state.WeightEntries[0].Weight)
}

func TestCloneNil(t *testing.T) {
	var state *State
	require.Nil(t, state.Clone())
}
