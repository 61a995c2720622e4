// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DustinBergman/workout-app-sub004/internal/remote"
	"github.com/DustinBergman/workout-app-sub004/internal/store"
)

var errNetwork = errors.New("network unreachable")

func newRecorderClient() *remote.Recorder {
	return remote.NewRecorder()
}

func newMemoryStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}
