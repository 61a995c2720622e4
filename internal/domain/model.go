// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package domain defines the entity types held in the local store and
// exchanged with the remote backend.
package domain

import (
	"fmt"
	"time"
)

// ExerciseCategory tags an exercise spec or set record as strength or cardio.
type ExerciseCategory string

const (
	CategoryStrength ExerciseCategory = "strength"
	CategoryCardio   ExerciseCategory = "cardio"
)

// CardioMode selects which target/actual figures a cardio entry tracks.
type CardioMode string

const (
	CardioModeDistance CardioMode = "distance"
	CardioModeDuration CardioMode = "duration"
	CardioModeCalories CardioMode = "calories"
)

// StrengthTarget holds the per-exercise prescription for a strength movement.
type StrengthTarget struct {
	Sets    int `json:"sets"`
	Reps    int `json:"reps"`
	RestSec int `json:"restSec"`
}

// CardioTarget holds the prescription for a cardio movement. Only the field
// selected by Mode is meaningful.
type CardioTarget struct {
	Kind            string     `json:"kind"` // e.g. "run", "row", "bike"
	Mode            CardioMode `json:"mode"`
	TargetDistanceM float64    `json:"targetDistanceM,omitempty"`
	TargetDuration  int        `json:"targetDurationSec,omitempty"`
	TargetCalories  int        `json:"targetCalories,omitempty"`
}

// ExerciseSpec is one ordered entry of a template. It is a tagged union over
// Category: exactly one of Strength/Cardio is set.
type ExerciseSpec struct {
	ExerciseID string           `json:"exerciseId"`
	Category   ExerciseCategory `json:"category"`
	Strength   *StrengthTarget  `json:"strength,omitempty"`
	Cardio     *CardioTarget    `json:"cardio,omitempty"`
}

// Validate checks the tagged-union invariant.
func (s ExerciseSpec) Validate() error {
	switch s.Category {
	case CategoryStrength:
		if s.Strength == nil || s.Cardio != nil {
			return fmt.Errorf("exercise spec %s: strength category requires strength target only", s.ExerciseID)
		}
	case CategoryCardio:
		if s.Cardio == nil || s.Strength != nil {
			return fmt.Errorf("exercise spec %s: cardio category requires cardio target only", s.ExerciseID)
		}
	default:
		return fmt.Errorf("exercise spec %s: unknown category %q", s.ExerciseID, s.Category)
	}
	return nil
}

// Template is a reusable workout plan.
type Template struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Kind       string         `json:"kind"` // e.g. "push", "pull", "legs", "custom"
	Exercises  []ExerciseSpec `json:"exercises"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	CopiedFrom *string        `json:"copiedFrom,omitempty"`
}

// StrengthSet is one completed strength set.
type StrengthSet struct {
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit"` // "kg" or "lb"
	Reps   int     `json:"reps"`
}

// CardioSet is one completed cardio effort.
type CardioSet struct {
	DistanceM   float64 `json:"distanceM,omitempty"`
	Calories    int     `json:"calories,omitempty"`
	DurationSec int     `json:"durationSec"`
}

// SetRecord is a completed set, tagged the same way as ExerciseSpec.
type SetRecord struct {
	Category ExerciseCategory `json:"category"`
	Strength *StrengthSet     `json:"strength,omitempty"`
	Cardio   *CardioSet       `json:"cardio,omitempty"`
}

// ExerciseInstance is one exercise performed inside a session, referencing
// either a builtin exercise id or a custom Exercise id.
type ExerciseInstance struct {
	ExerciseID string      `json:"exerciseId"`
	Sets       []SetRecord `json:"sets"`
}

// Session is one recorded workout.
type Session struct {
	ID          string             `json:"id"`
	TemplateID  *string            `json:"templateId,omitempty"`
	Exercises   []ExerciseInstance `json:"exercises"`
	StartedAt   time.Time          `json:"startedAt"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
}

// Exercise is a user-defined movement. Builtin movements are not stored here;
// they live in the fixed vocabulary (see builtin.go).
type Exercise struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    ExerciseCategory `json:"category"`
	MuscleGroup string           `json:"muscleGroup,omitempty"`
	Equipment   string           `json:"equipment,omitempty"`
	CardioKind  string           `json:"cardioKind,omitempty"`
}

// WeightEntry is a body-weight sample. Date is the natural key, one entry per
// user per day, formatted "2006-01-02".
type WeightEntry struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit"`
}

// Preferences is a flat settings record. Pointer fields distinguish "unset"
// from zero so a remote profile merge can leave local values alone.
type Preferences struct {
	Unit            *string `json:"unit,omitempty"` // "kg" or "lb"
	WeekStartsOn    *int    `json:"weekStartsOn,omitempty"`
	RestTimerSec    *int    `json:"restTimerSec,omitempty"`
	ShowBodyMap     *bool   `json:"showBodyMap,omitempty"`
	NotifyWorkouts  *bool   `json:"notifyWorkouts,omitempty"`
	ThemePreference *string `json:"themePreference,omitempty"`
}

// State is the full local snapshot persisted as one versioned blob.
type State struct {
	Templates         []Template    `json:"templates"`
	Sessions          []Session     `json:"sessions"`
	ActiveSession     *Session      `json:"activeSession,omitempty"`
	Preferences       Preferences   `json:"preferences"`
	CustomExercises   []Exercise    `json:"customExercises"`
	WeightEntries     []WeightEntry `json:"weightEntries"`
	WorkoutGoal       int           `json:"workoutGoal"`
	CurrentWeek       int           `json:"currentWeek"`
	HasCompletedIntro bool          `json:"hasCompletedIntro"`
}

// Clone returns a deep copy of the state. The sync engine never mutates a
// snapshot it was handed; it derives a new one.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Templates = cloneTemplates(s.Templates)
	out.Sessions = cloneSessions(s.Sessions)
	if s.ActiveSession != nil {
		act := cloneSession(*s.ActiveSession)
		out.ActiveSession = &act
	}
	out.CustomExercises = append([]Exercise(nil), s.CustomExercises...)
	out.WeightEntries = append([]WeightEntry(nil), s.WeightEntries...)
	return &out
}

func cloneTemplates(in []Template) []Template {
	if in == nil {
		return nil
	}
	out := make([]Template, len(in))
	for i, t := range in {
		out[i] = t
		out[i].Exercises = append([]ExerciseSpec(nil), t.Exercises...)
	}
	return out
}

func cloneSession(in Session) Session {
	out := in
	out.Exercises = make([]ExerciseInstance, len(in.Exercises))
	for i, ex := range in.Exercises {
		out.Exercises[i] = ex
		out.Exercises[i].Sets = append([]SetRecord(nil), ex.Sets...)
	}
	return out
}

func cloneSessions(in []Session) []Session {
	if in == nil {
		return nil
	}
	out := make([]Session, len(in))
	for i, s := range in {
		out[i] = cloneSession(s)
	}
	return out
}
