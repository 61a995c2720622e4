// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
	"github.com/DustinBergman/workout-app-sub004/internal/observability"
	"github.com/DustinBergman/workout-app-sub004/internal/remote"
)

// PushOp classifies an incremental push.
type PushOp string

const (
	OpAdd     PushOp = "add"
	OpUpdate  PushOp = "update"
	OpDelete  PushOp = "delete"
	OpReorder PushOp = "reorder"
)

// PushOutcome reports the result of one incremental push. Err is nil on
// success; duplicate-key collisions are reported as success.
type PushOutcome struct {
	Collection string
	Op         PushOp
	Key        string
	Err        error
}

// OutcomeFunc receives push outcomes. It is called from push goroutines.
type OutcomeFunc func(PushOutcome)

type subscriberMode int

const (
	modeDisabled subscriberMode = iota
	modeEnabled
	modeSuppressed
)

// Subscriber watches committed store states and pushes incremental changes to
// the backend. It is an explicit state object: disabled until auth and
// connectivity hold, suppressed while a full reconciliation is writing
// cloud-origin data, enabled otherwise.
//
// The baseline is the last observed snapshot. Enable and Resume reset it to
// the current state, so data that just arrived from the cloud is never
// mistaken for a pending local change.
type Subscriber struct {
	remote  remote.Client
	logger  *slog.Logger
	outcome OutcomeFunc

	mu     sync.Mutex
	mode   subscriberMode
	userID string
	prev   *domain.State

	wg sync.WaitGroup
}

// NewSubscriber creates a disabled Subscriber. outcome may be nil.
func NewSubscriber(client remote.Client, outcome OutcomeFunc, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{remote: client, logger: logger, outcome: outcome, mode: modeDisabled}
}

// Enable starts observing for userID with baseline set to current.
func (s *Subscriber) Enable(userID string, current *domain.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = modeEnabled
	s.userID = userID
	s.prev = current.Clone()
}

// Disable stops all pushing and drops the baseline. Reached from any state on
// sign-out or connectivity loss.
func (s *Subscriber) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = modeDisabled
	s.prev = nil
}

// Suppress skips all pushes until Resume. Used while a reconciliation is
// committing cloud-origin state.
func (s *Subscriber) Suppress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != modeDisabled {
		s.mode = modeSuppressed
	}
}

// Resume lifts suppression and resets the baseline to current in one step.
// Must be called only after the reconciled state has been committed.
func (s *Subscriber) Resume(userID string, current *domain.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = modeEnabled
	s.userID = userID
	s.prev = current.Clone()
}

// Suppressed reports whether pushes are currently being skipped.
func (s *Subscriber) Suppressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode == modeSuppressed
}

// Flush blocks until all in-flight pushes have completed. Test helper; the
// app itself abandons outstanding pushes on teardown.
func (s *Subscriber) Flush() {
	s.wg.Wait()
}

// Observe diffs the newly committed state against the baseline and pushes the
// differences. Intended to be registered as a store observer.
func (s *Subscriber) Observe(state *domain.State) {
	s.mu.Lock()
	if s.mode != modeEnabled || s.prev == nil {
		s.mu.Unlock()
		return
	}
	prev := s.prev
	userID := s.userID
	s.prev = state.Clone()
	s.mu.Unlock()

	s.diffTemplates(userID, prev.Templates, state.Templates)
	s.diffSessions(userID, prev.Sessions, state.Sessions)
	s.diffExercises(userID, prev.CustomExercises, state.CustomExercises)
	s.diffWeightEntries(userID, prev.WeightEntries, state.WeightEntries)
	s.diffPreferences(userID, prev.Preferences, state.Preferences)
}

// push runs fn on its own goroutine. Failures are logged and reported, never
// propagated; a duplicate key counts as success.
func (s *Subscriber) push(collection string, op PushOp, key string, fn func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := fn(context.Background())
		if errors.Is(err, remote.ErrDuplicateKey) {
			err = nil
		}
		if err != nil {
			s.logger.Warn("incremental push failed",
				"collection", collection, "op", string(op), "key", key, "error", err)
		}
		observability.RecordPush(collection, string(op), err)
		if s.outcome != nil {
			s.outcome(PushOutcome{Collection: collection, Op: op, Key: key, Err: err})
		}
	}()
}

// sameJSON compares two values by their JSON encoding. Entities round-trip
// through JSON at every boundary, so encoding equality is content equality.
func sameJSON(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}

// sameIDSet reports whether two keyed slices contain the same keys, and
// whether their order differs.
func sameIDSet(prevIDs, curIDs []string) (same bool, reordered bool) {
	if len(prevIDs) != len(curIDs) {
		return false, false
	}
	set := make(map[string]struct{}, len(prevIDs))
	for _, id := range prevIDs {
		set[id] = struct{}{}
	}
	orderDiffers := false
	for i, id := range curIDs {
		if _, ok := set[id]; !ok {
			return false, false
		}
		if prevIDs[i] != id {
			orderDiffers = true
		}
	}
	return true, orderDiffers
}

func (s *Subscriber) diffTemplates(userID string, prev, cur []domain.Template) {
	prevByID := make(map[string]domain.Template, len(prev))
	prevIDs := make([]string, 0, len(prev))
	for _, t := range prev {
		prevByID[t.ID] = t
		prevIDs = append(prevIDs, t.ID)
	}
	curIDs := make([]string, 0, len(cur))
	for _, t := range cur {
		curIDs = append(curIDs, t.ID)
	}

	if same, reordered := sameIDSet(prevIDs, curIDs); same && reordered {
		ids := append([]string(nil), curIDs...)
		s.push("templates", OpReorder, "", func(ctx context.Context) error {
			return s.remote.SaveTemplateOrder(ctx, userID, ids)
		})
	}

	curByID := make(map[string]struct{}, len(cur))
	for _, t := range cur {
		curByID[t.ID] = struct{}{}
		prevT, existed := prevByID[t.ID]
		switch {
		case !existed:
			item := t
			s.push("templates", OpAdd, t.ID, func(ctx context.Context) error {
				_, err := s.remote.InsertTemplate(ctx, userID, item)
				return err
			})
		case !sameJSON(prevT, t):
			item := t
			s.push("templates", OpUpdate, t.ID, func(ctx context.Context) error {
				return s.remote.UpdateTemplate(ctx, userID, item)
			})
		}
	}
	for _, t := range prev {
		if _, ok := curByID[t.ID]; !ok {
			id := t.ID
			s.push("templates", OpDelete, id, func(ctx context.Context) error {
				return s.remote.DeleteTemplate(ctx, userID, id)
			})
		}
	}
}

func (s *Subscriber) diffSessions(userID string, prev, cur []domain.Session) {
	prevByID := make(map[string]domain.Session, len(prev))
	prevIDs := make([]string, 0, len(prev))
	for _, sess := range prev {
		prevByID[sess.ID] = sess
		prevIDs = append(prevIDs, sess.ID)
	}
	curIDs := make([]string, 0, len(cur))
	for _, sess := range cur {
		curIDs = append(curIDs, sess.ID)
	}

	if same, reordered := sameIDSet(prevIDs, curIDs); same && reordered {
		ids := append([]string(nil), curIDs...)
		s.push("sessions", OpReorder, "", func(ctx context.Context) error {
			return s.remote.SaveSessionOrder(ctx, userID, ids)
		})
	}

	curByID := make(map[string]struct{}, len(cur))
	for _, sess := range cur {
		curByID[sess.ID] = struct{}{}
		prevS, existed := prevByID[sess.ID]
		switch {
		case !existed:
			item := sess
			s.push("sessions", OpAdd, sess.ID, func(ctx context.Context) error {
				_, err := s.remote.InsertSession(ctx, userID, item)
				return err
			})
		case !sameJSON(prevS, sess):
			item := sess
			s.push("sessions", OpUpdate, sess.ID, func(ctx context.Context) error {
				return s.remote.UpdateSession(ctx, userID, item)
			})
		}
	}
	// Sessions are rarely hard-deleted in normal use, but the mechanism is the
	// same as for templates.
	for _, sess := range prev {
		if _, ok := curByID[sess.ID]; !ok {
			id := sess.ID
			s.push("sessions", OpDelete, id, func(ctx context.Context) error {
				return s.remote.DeleteSession(ctx, userID, id)
			})
		}
	}
}

func (s *Subscriber) diffExercises(userID string, prev, cur []domain.Exercise) {
	prevByID := make(map[string]domain.Exercise, len(prev))
	for _, e := range prev {
		prevByID[e.ID] = e
	}
	curByID := make(map[string]struct{}, len(cur))
	for _, e := range cur {
		curByID[e.ID] = struct{}{}
		prevE, existed := prevByID[e.ID]
		switch {
		case !existed:
			item := e
			s.push("exercises", OpAdd, e.ID, func(ctx context.Context) error {
				_, err := s.remote.InsertExercise(ctx, userID, item)
				return err
			})
		case !sameJSON(prevE, e):
			item := e
			s.push("exercises", OpUpdate, e.ID, func(ctx context.Context) error {
				return s.remote.UpdateExercise(ctx, userID, item)
			})
		}
	}
	for _, e := range prev {
		if _, ok := curByID[e.ID]; !ok {
			id := e.ID
			s.push("exercises", OpDelete, id, func(ctx context.Context) error {
				return s.remote.DeleteExercise(ctx, userID, id)
			})
		}
	}
}

func (s *Subscriber) diffWeightEntries(userID string, prev, cur []domain.WeightEntry) {
	prevByDate := make(map[string]domain.WeightEntry, len(prev))
	for _, w := range prev {
		prevByDate[w.Date] = w
	}
	curByDate := make(map[string]struct{}, len(cur))
	for _, w := range cur {
		curByDate[w.Date] = struct{}{}
		prevW, existed := prevByDate[w.Date]
		op := OpAdd
		if existed {
			if sameJSON(prevW, w) {
				continue
			}
			op = OpUpdate
		}
		item := w
		s.push("weight_entries", op, w.Date, func(ctx context.Context) error {
			return s.remote.UpsertWeightEntry(ctx, userID, item)
		})
	}
	for _, w := range prev {
		if _, ok := curByDate[w.Date]; !ok {
			date := w.Date
			s.push("weight_entries", OpDelete, date, func(ctx context.Context) error {
				return s.remote.DeleteWeightEntry(ctx, userID, date)
			})
		}
	}
}

func (s *Subscriber) diffPreferences(userID string, prev, cur domain.Preferences) {
	if sameJSON(prev, cur) {
		return
	}
	prefs := cur
	s.push("profile", OpUpdate, "", func(ctx context.Context) error {
		return s.remote.SaveProfile(ctx, userID, prefs)
	})
}
