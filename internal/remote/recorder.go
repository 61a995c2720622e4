// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"sync"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
)

// Call is one recorded invocation against the Recorder.
type Call struct {
	Method string // e.g. "InsertTemplate", "SaveSessionOrder"
	Key    string // entity id, weight date, or empty
}

// Recorder is an in-memory Client used by tests and the simulator. It stores
// items per collection, records every call, and can be told to fail specific
// methods.
type Recorder struct {
	mu sync.Mutex

	Templates     []domain.Template
	Sessions      []domain.Session
	Exercises     []domain.Exercise
	WeightEntries []domain.WeightEntry
	Profile       *Profile

	calls    []Call
	failWith map[string]error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{failWith: map[string]error{}}
}

var _ Client = (*Recorder)(nil)

// FailWith makes every subsequent call of the named method return err.
func (r *Recorder) FailWith(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith[method] = err
}

// Calls returns a copy of the recorded call log.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallCount returns how many times the named method was invoked.
func (r *Recorder) CallCount(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (r *Recorder) record(method, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Key: key})
	return r.failWith[method]
}

func (r *Recorder) FetchTemplates(_ context.Context, _ string) ([]domain.Template, error) {
	if err := r.record("FetchTemplates", ""); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Template(nil), r.Templates...), nil
}

func (r *Recorder) InsertTemplate(_ context.Context, _ string, t domain.Template) (string, error) {
	if err := r.record("InsertTemplate", t.ID); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Templates {
		if existing.ID == t.ID {
			return "", ErrDuplicateKey
		}
	}
	r.Templates = append(r.Templates, t)
	return t.ID, nil
}

func (r *Recorder) UpdateTemplate(_ context.Context, _ string, t domain.Template) error {
	if err := r.record("UpdateTemplate", t.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Templates {
		if existing.ID == t.ID {
			r.Templates[i] = t
			return nil
		}
	}
	return ErrNotFound
}

func (r *Recorder) DeleteTemplate(_ context.Context, _ string, id string) error {
	if err := r.record("DeleteTemplate", id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Templates {
		if existing.ID == id {
			r.Templates = append(r.Templates[:i], r.Templates[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *Recorder) SaveTemplateOrder(_ context.Context, _ string, _ []string) error {
	return r.record("SaveTemplateOrder", "")
}

func (r *Recorder) FetchSessions(_ context.Context, _ string) ([]domain.Session, error) {
	if err := r.record("FetchSessions", ""); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Session(nil), r.Sessions...), nil
}

func (r *Recorder) InsertSession(_ context.Context, _ string, s domain.Session) (string, error) {
	if err := r.record("InsertSession", s.ID); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Sessions {
		if existing.ID == s.ID {
			return "", ErrDuplicateKey
		}
	}
	r.Sessions = append(r.Sessions, s)
	return s.ID, nil
}

func (r *Recorder) InsertSessions(_ context.Context, _ string, sessions []domain.Session) error {
	if err := r.record("InsertSessions", ""); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
outer:
	for _, s := range sessions {
		for _, existing := range r.Sessions {
			if existing.ID == s.ID {
				continue outer
			}
		}
		r.Sessions = append(r.Sessions, s)
	}
	return nil
}

func (r *Recorder) UpdateSession(_ context.Context, _ string, s domain.Session) error {
	if err := r.record("UpdateSession", s.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Sessions {
		if existing.ID == s.ID {
			r.Sessions[i] = s
			return nil
		}
	}
	return ErrNotFound
}

func (r *Recorder) DeleteSession(_ context.Context, _ string, id string) error {
	if err := r.record("DeleteSession", id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Sessions {
		if existing.ID == id {
			r.Sessions = append(r.Sessions[:i], r.Sessions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *Recorder) SaveSessionOrder(_ context.Context, _ string, _ []string) error {
	return r.record("SaveSessionOrder", "")
}

func (r *Recorder) FetchExercises(_ context.Context, _ string) ([]domain.Exercise, error) {
	if err := r.record("FetchExercises", ""); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Exercise(nil), r.Exercises...), nil
}

func (r *Recorder) InsertExercise(_ context.Context, _ string, e domain.Exercise) (string, error) {
	if err := r.record("InsertExercise", e.ID); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Exercises {
		if existing.ID == e.ID {
			return "", ErrDuplicateKey
		}
	}
	r.Exercises = append(r.Exercises, e)
	return e.ID, nil
}

func (r *Recorder) UpdateExercise(_ context.Context, _ string, e domain.Exercise) error {
	if err := r.record("UpdateExercise", e.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Exercises {
		if existing.ID == e.ID {
			r.Exercises[i] = e
			return nil
		}
	}
	return ErrNotFound
}

func (r *Recorder) DeleteExercise(_ context.Context, _ string, id string) error {
	if err := r.record("DeleteExercise", id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.Exercises {
		if existing.ID == id {
			r.Exercises = append(r.Exercises[:i], r.Exercises[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *Recorder) FetchWeightEntries(_ context.Context, _ string) ([]domain.WeightEntry, error) {
	if err := r.record("FetchWeightEntries", ""); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.WeightEntry(nil), r.WeightEntries...), nil
}

func (r *Recorder) UpsertWeightEntry(_ context.Context, _ string, e domain.WeightEntry) error {
	if err := r.record("UpsertWeightEntry", e.Date); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.WeightEntries {
		if existing.Date == e.Date {
			r.WeightEntries[i] = e
			return nil
		}
	}
	r.WeightEntries = append(r.WeightEntries, e)
	return nil
}

func (r *Recorder) DeleteWeightEntry(_ context.Context, _ string, date string) error {
	if err := r.record("DeleteWeightEntry", date); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.WeightEntries {
		if existing.Date == date {
			r.WeightEntries = append(r.WeightEntries[:i], r.WeightEntries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *Recorder) FetchProfile(_ context.Context, _ string) (*Profile, error) {
	if err := r.record("FetchProfile", ""); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Profile == nil {
		return nil, nil
	}
	copied := *r.Profile
	return &copied, nil
}

func (r *Recorder) SaveProfile(_ context.Context, userID string, prefs domain.Preferences) error {
	if err := r.record("SaveProfile", ""); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Profile = &Profile{UserID: userID, Preferences: prefs}
	return nil
}
