// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package domain

// Builtin exercises ship with the app under fixed slug identifiers. They are
// not UUIDs on purpose: the slugs are stable across installs and releases, are
// never uploaded as rows of their own, and must never be re-keyed.
var builtinExercises = map[string]struct{}{
	"bench-press":       {},
	"incline-bench":     {},
	"overhead-press":    {},
	"lateral-raise":     {},
	"squat":             {},
	"front-squat":       {},
	"leg-press":         {},
	"romanian-deadlift": {},
	"deadlift":          {},
	"barbell-row":       {},
	"lat-pulldown":      {},
	"pull-up":           {},
	"bicep-curl":        {},
	"tricep-extension":  {},
	"leg-curl":          {},
	"leg-extension":     {},
	"calf-raise":        {},
	"hip-thrust":        {},
	"plank":             {},
	"crunch":            {},
	"treadmill-run":     {},
	"outdoor-run":       {},
	"stationary-bike":   {},
	"rowing-machine":    {},
	"stair-climber":     {},
	"elliptical":        {},
	"jump-rope":         {},
	"swimming":          {},
}

// IsBuiltinExercise reports whether id belongs to the fixed builtin vocabulary.
func IsBuiltinExercise(id string) bool {
	_, ok := builtinExercises[id]
	return ok
}
