// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package observability exposes prometheus collectors for the sync engine.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	syncCyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_app",
		Subsystem: "sync",
		Name:      "cycles_total",
		Help:      "Full sync cycles by result (synced, error, offline, unauthenticated).",
	}, []string{"result"})
	pushesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_app",
		Subsystem: "sync",
		Name:      "pushes_total",
		Help:      "Incremental pushes by collection, operation and outcome.",
	}, []string{"collection", "op", "outcome"})
	lastSyncedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workout_app",
		Subsystem: "sync",
		Name:      "last_synced_timestamp_seconds",
		Help:      "Unix timestamp of the last successful full sync cycle.",
	})
)

func init() {
	prometheus.MustRegister(syncCyclesTotal, pushesTotal, lastSyncedGauge)
}

// RecordCycle counts one completed sync cycle.
func RecordCycle(result string) {
	syncCyclesTotal.WithLabelValues(result).Inc()
}

// RecordPush counts one incremental push.
func RecordPush(collection, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	pushesTotal.WithLabelValues(collection, op, outcome).Inc()
}

// RecordSynced updates the last-synced watermark.
func RecordSynced(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastSyncedGauge.Set(float64(ts.Unix()))
}
