// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DustinBergman/workout-app-sub004/internal/domain"
)

type staticIdentity struct {
	mu sync.Mutex
	id Identity
}

func (s *staticIdentity) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *staticIdentity) set(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

func TestSyncNowUnauthenticatedIsNoop(t *testing.T) {
	st := newMemoryStore(t)
	rec := newRecorderClient()
	ident := &staticIdentity{id: Identity{IsOnline: true}}

	o := New(st, rec, ident, nil, nil)
	require.NoError(t, o.SyncNow(context.Background()))

	status, _ := o.Status()
	require.Equal(t, StatusIdle, status)
	require.Empty(t, rec.Calls(), "no remote traffic without an identity")
}

func TestSyncNowOfflineSetsOfflineStatus(t *testing.T) {
	st := newMemoryStore(t)
	rec := newRecorderClient()
	ident := &staticIdentity{id: Identity{UserID: "user-1", IsAuthenticated: true}}

	o := New(st, rec, ident, nil, nil)
	require.NoError(t, o.SyncNow(context.Background()))

	status, _ := o.Status()
	require.Equal(t, StatusOffline, status)
	require.Empty(t, rec.Calls())
}

func TestFullCycleMigratesReconcilesAndPushesLocalOnly(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore(t)
	rec := newRecorderClient()
	ident := &staticIdentity{id: Identity{UserID: "user-1", IsAuthenticated: true, IsOnline: true}}

	cloudTemplate := domain.Template{ID: uuid.NewString(), Name: "From Cloud"}
	rec.Templates = []domain.Template{cloudTemplate}

	offlineSession := domain.Session{ID: uuid.NewString()}
	require.NoError(t, st.Commit(ctx, &domain.State{
		Sessions:  []domain.Session{offlineSession},
		Templates: []domain.Template{{ID: "legacy-template-key", Name: "Old Plan"}},
	}))

	log := &outcomeLog{}
	o := New(st, rec, ident, log.record, nil)
	require.NoError(t, o.SyncNow(ctx))
	o.WaitForPushes()

	status, msg := o.Status()
	require.Equal(t, StatusSynced, status)
	require.Empty(t, msg)

	state, err := st.Load(ctx)
	require.NoError(t, err)

	// Cloud template hydrated, legacy template migrated to a UUID and kept.
	require.Len(t, state.Templates, 2)
	for _, tmpl := range state.Templates {
		require.NoError(t, uuid.Validate(tmpl.ID))
	}

	// The offline session reached the backend via the catch-up batch.
	require.Equal(t, 1, rec.CallCount("InsertSessions"))
	require.Len(t, rec.Sessions, 1)
	require.Equal(t, offlineSession.ID, rec.Sessions[0].ID)

	// The migrated template is local-only and was pushed too.
	require.Equal(t, 1, rec.CallCount("InsertTemplate"))

	for _, outcome := range log.all() {
		require.NoError(t, outcome.Err)
	}
}

func TestFetchFailureSurfacesErrorAndKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore(t)
	rec := newRecorderClient()
	rec.FailWith("FetchSessions", errNetwork)
	ident := &staticIdentity{id: Identity{UserID: "user-1", IsAuthenticated: true, IsOnline: true}}

	committed := &domain.State{Templates: []domain.Template{{ID: uuid.NewString(), Name: "Mine"}}}
	require.NoError(t, st.Commit(ctx, committed))

	o := New(st, rec, ident, nil, nil)
	err := o.SyncNow(ctx)
	require.ErrorIs(t, err, errNetwork)

	status, msg := o.Status()
	require.Equal(t, StatusError, status)
	require.NotEmpty(t, msg)

	state, loadErr := st.Load(ctx)
	require.NoError(t, loadErr)
	require.Equal(t, committed.Templates[0].Name, state.Templates[0].Name, "local store untouched")
}

func TestCycleSuppressesSubscriberUntilBaselineReset(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore(t)
	rec := newRecorderClient()
	rec.Templates = []domain.Template{{ID: uuid.NewString(), Name: "Cloud Plan"}}
	ident := &staticIdentity{id: Identity{UserID: "user-1", IsAuthenticated: true, IsOnline: true}}

	o := New(st, rec, ident, nil, nil)
	require.NoError(t, o.SyncNow(ctx))
	o.WaitForPushes()

	// The cloud-origin template that was just committed must not have been
	// re-pushed as if it were a local change.
	require.Zero(t, rec.CallCount("InsertTemplate"))
	require.Zero(t, rec.CallCount("UpdateTemplate"))

	// A genuinely new local mutation after the cycle pushes exactly once.
	state, err := st.Load(ctx)
	require.NoError(t, err)
	next := state.Clone()
	next.Templates = append(next.Templates, domain.Template{ID: uuid.NewString(), Name: "New Local"})
	require.NoError(t, st.Commit(ctx, next))
	o.WaitForPushes()

	require.Equal(t, 1, rec.CallCount("InsertTemplate"))
}

func TestConnectivityTransitions(t *testing.T) {
	ctx := context.Background()
	st := newMemoryStore(t)
	rec := newRecorderClient()
	ident := &staticIdentity{id: Identity{UserID: "user-1", IsAuthenticated: true, IsOnline: false}}

	o := New(st, rec, ident, nil, nil)

	o.HandleConnectivity(ctx, false)
	status, _ := o.Status()
	require.Equal(t, StatusOffline, status)

	ident.set(Identity{UserID: "user-1", IsAuthenticated: true, IsOnline: true})
	o.HandleConnectivity(ctx, true)
	status, _ = o.Status()
	require.Equal(t, StatusSynced, status)

	o.HandleSignOut()
	status, _ = o.Status()
	require.Equal(t, StatusIdle, status)
}
