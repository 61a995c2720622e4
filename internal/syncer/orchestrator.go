// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package syncer implements the offline-first synchronization engine: the
// identifier migrator, merge reconciler, change subscriber, one-time
// deduplication repair and the orchestrator that sequences them.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
	"github.com/DustinBergman/workout-app-sub004/internal/observability"
	"github.com/DustinBergman/workout-app-sub004/internal/remote"
	"github.com/DustinBergman/workout-app-sub004/internal/store"
)

// Status is the externally visible sync state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSynced  Status = "synced"
	StatusError   Status = "error"
	StatusOffline Status = "offline"
)

// Identity is the auth/connectivity triple the engine consumes. Session and
// token management live outside the engine.
type Identity struct {
	UserID          string
	IsAuthenticated bool
	IsOnline        bool
}

// IdentityProvider supplies the current identity on demand.
type IdentityProvider interface {
	Identity() Identity
}

// Orchestrator sequences migration, reconciliation, deduplication and the
// change subscriber across connectivity and auth transitions.
type Orchestrator struct {
	store      *store.Store
	remote     remote.Client
	identity   IdentityProvider
	subscriber *Subscriber
	reconciler *Reconciler
	deduper    *Deduper
	logger     *slog.Logger
	outcome    OutcomeFunc

	mu        sync.Mutex
	status    Status
	statusMsg string

	pushWG sync.WaitGroup
}

// New wires an Orchestrator over the store and backend, registering its
// subscriber as a store observer.
func New(st *store.Store, client remote.Client, identity IdentityProvider, outcome OutcomeFunc, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		store:      st,
		remote:     client,
		identity:   identity,
		subscriber: NewSubscriber(client, outcome, logger),
		reconciler: NewReconciler(client, logger),
		deduper:    NewDeduper(st, client, logger),
		logger:     logger,
		outcome:    outcome,
		status:     StatusIdle,
	}
	st.Observe(o.subscriber.Observe)
	return o
}

// Subscriber exposes the change subscriber, mainly for tests.
func (o *Orchestrator) Subscriber() *Subscriber {
	return o.subscriber
}

// Status returns the current status and, for StatusError, a message.
func (o *Orchestrator) Status() (Status, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status, o.statusMsg
}

func (o *Orchestrator) setStatus(status Status, msg string) {
	o.mu.Lock()
	o.status = status
	o.statusMsg = msg
	o.mu.Unlock()
}

// HandleConnectivity reacts to an online/offline transition. Going offline
// disables the subscriber; coming back online while authenticated re-triggers
// a full cycle.
func (o *Orchestrator) HandleConnectivity(ctx context.Context, online bool) {
	if !online {
		o.subscriber.Disable()
		o.setStatus(StatusOffline, "")
		return
	}
	if err := o.SyncNow(ctx); err != nil {
		o.logger.Warn("sync after reconnect failed", "error", err)
	}
}

// HandleSignOut disables all pushing and returns to idle.
func (o *Orchestrator) HandleSignOut() {
	o.subscriber.Disable()
	o.setStatus(StatusIdle, "")
}

// SyncNow runs one full cycle: suppress subscriber, migrate identifiers,
// reconcile against the cloud, commit, run the one-time dedup repair, resume
// the subscriber with a fresh baseline, then fire catch-up pushes for
// local-only items. Only a reconciliation fetch failure is surfaced; the
// local store is left at its last-known-good state in that case.
func (o *Orchestrator) SyncNow(ctx context.Context) error {
	id := o.identity.Identity()
	if !id.IsAuthenticated {
		o.subscriber.Disable()
		o.setStatus(StatusIdle, "")
		observability.RecordCycle("unauthenticated")
		return nil
	}
	if !id.IsOnline {
		o.subscriber.Disable()
		o.setStatus(StatusOffline, "")
		observability.RecordCycle("offline")
		return nil
	}

	o.setStatus(StatusSyncing, "")
	o.subscriber.Suppress()

	local, err := o.store.Load(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		local = &domain.State{}
	} else if err != nil {
		return o.fail(id, local, fmt.Errorf("failed to load local state: %w", err))
	}

	// Legacy identifiers are not valid remote primary keys, so the rewrite
	// must land before anything is pushed.
	migrated, changed := MigrateIdentifiers(local)
	if changed {
		if err := o.store.Commit(ctx, migrated); err != nil {
			return o.fail(id, local, fmt.Errorf("failed to commit migrated state: %w", err))
		}
		o.logger.Info("legacy identifiers migrated")
	}

	result, err := o.reconciler.Reconcile(ctx, id.UserID, migrated)
	if err != nil {
		return o.fail(id, migrated, err)
	}
	if err := o.store.Commit(ctx, result.State); err != nil {
		return o.fail(id, migrated, fmt.Errorf("failed to commit reconciled state: %w", err))
	}

	o.deduper.Run(ctx, id.UserID)

	// Baseline must reflect whatever is committed right now, after the dedup
	// pass and strictly before suppression is lifted. Resume does both under
	// one lock.
	current, err := o.store.Load(ctx)
	if err != nil {
		current = result.State
	}
	o.subscriber.Resume(id.UserID, current)

	o.pushLocalOnly(id.UserID, result.LocalOnly)

	o.setStatus(StatusSynced, "")
	observability.RecordCycle("synced")
	observability.RecordSynced(time.Now())
	return nil
}

// fail records a cycle failure. The subscriber resumes against the last
// committed state so later local edits still sync.
func (o *Orchestrator) fail(id Identity, lastGood *domain.State, err error) error {
	if lastGood != nil {
		o.subscriber.Resume(id.UserID, lastGood)
	} else {
		o.subscriber.Disable()
	}
	o.setStatus(StatusError, err.Error())
	observability.RecordCycle("error")
	o.logger.Error("sync cycle failed", "error", err)
	return err
}

// pushLocalOnly uploads items the cloud has never seen, fire-and-forget.
// Failures are logged and picked up again by the next full reconciliation,
// which re-discovers the items as still local-only.
func (o *Orchestrator) pushLocalOnly(userID string, items LocalOnly) {
	if items.Empty() {
		return
	}
	o.pushWG.Add(1)
	go func() {
		defer o.pushWG.Done()
		ctx := context.Background()

		for _, t := range items.Templates {
			_, err := o.remote.InsertTemplate(ctx, userID, t)
			o.reportCatchUp("templates", t.ID, err)
		}
		if len(items.Sessions) > 0 {
			err := o.remote.InsertSessions(ctx, userID, items.Sessions)
			o.reportCatchUp("sessions", "", err)
		}
		for _, e := range items.Exercises {
			_, err := o.remote.InsertExercise(ctx, userID, e)
			o.reportCatchUp("exercises", e.ID, err)
		}
		for _, w := range items.WeightEntries {
			err := o.remote.UpsertWeightEntry(ctx, userID, w)
			o.reportCatchUp("weight_entries", w.Date, err)
		}
	}()
}

func (o *Orchestrator) reportCatchUp(collection, key string, err error) {
	if errors.Is(err, remote.ErrDuplicateKey) {
		err = nil
	}
	if err != nil {
		o.logger.Warn("catch-up push failed", "collection", collection, "key", key, "error", err)
	}
	observability.RecordPush(collection, string(OpAdd), err)
	if o.outcome != nil {
		o.outcome(PushOutcome{Collection: collection, Op: OpAdd, Key: key, Err: err})
	}
}

// WaitForPushes blocks until all in-flight pushes (incremental and catch-up)
// finish. Test helper.
func (o *Orchestrator) WaitForPushes() {
	o.pushWG.Wait()
	o.subscriber.Flush()
}
