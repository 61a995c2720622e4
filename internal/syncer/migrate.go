// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"github.com/google/uuid"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
)

// hasValidID reports whether id parses as a UUID. Early releases keyed
// entities with arbitrary tokens; those rows cannot be uploaded until re-keyed.
func hasValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// MigrateIdentifiers rewrites every legacy non-UUID identifier in state to a
// freshly minted UUID and fixes up all exercise references that pointed at a
// re-keyed custom exercise. Builtin exercise slugs are left alone. When
// nothing needs rewriting the input pointer is returned unchanged so
// downstream change detection stays quiet.
//
// The pass is purely local and idempotent: a second run over its own output
// finds only valid identifiers and returns the same pointer.
func MigrateIdentifiers(state *domain.State) (*domain.State, bool) {
	exerciseRemap := map[string]string{}
	for _, ex := range state.CustomExercises {
		if !hasValidID(ex.ID) {
			exerciseRemap[ex.ID] = uuid.NewString()
		}
	}
	templateRemap := map[string]string{}
	for _, t := range state.Templates {
		if !hasValidID(t.ID) {
			templateRemap[t.ID] = uuid.NewString()
		}
	}

	needsRewrite := len(exerciseRemap) > 0 || len(templateRemap) > 0
	if !needsRewrite {
		for _, s := range state.Sessions {
			if !hasValidID(s.ID) {
				needsRewrite = true
				break
			}
		}
	}
	if !needsRewrite && state.ActiveSession != nil && !hasValidID(state.ActiveSession.ID) {
		needsRewrite = true
	}
	if !needsRewrite {
		return state, false
	}

	out := state.Clone()

	for i := range out.CustomExercises {
		if newID, ok := exerciseRemap[out.CustomExercises[i].ID]; ok {
			out.CustomExercises[i].ID = newID
		}
	}

	for i := range out.Templates {
		t := &out.Templates[i]
		if newID, ok := templateRemap[t.ID]; ok {
			t.ID = newID
		}
		for j := range t.Exercises {
			remapExerciseRef(&t.Exercises[j].ExerciseID, exerciseRemap)
		}
	}

	for i := range out.Sessions {
		rewriteSession(&out.Sessions[i], exerciseRemap, templateRemap)
	}
	if out.ActiveSession != nil {
		rewriteSession(out.ActiveSession, exerciseRemap, templateRemap)
	}

	return out, true
}

func rewriteSession(s *domain.Session, exerciseRemap, templateRemap map[string]string) {
	if !hasValidID(s.ID) {
		s.ID = uuid.NewString()
	}
	// The provenance link must follow a re-keyed template. Clone shares the
	// pointer with the input state, so swap in a fresh one.
	if s.TemplateID != nil {
		if newID, ok := templateRemap[*s.TemplateID]; ok {
			tid := newID
			s.TemplateID = &tid
		}
	}
	for i := range s.Exercises {
		remapExerciseRef(&s.Exercises[i].ExerciseID, exerciseRemap)
	}
}

// remapExerciseRef rewrites a reference to a re-keyed custom exercise.
// Builtin slugs never appear in the remap, so they pass through untouched.
func remapExerciseRef(ref *string, exerciseRemap map[string]string) {
	if domain.IsBuiltinExercise(*ref) {
		return
	}
	if newID, ok := exerciseRemap[*ref]; ok {
		*ref = newID
	}
}
