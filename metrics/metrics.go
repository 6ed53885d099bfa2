// Copyright 2025 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package metrics holds the Prometheus collectors of the server. They are
// registered on the default registry, which the diagnostics server exposes
// on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "psionic"

var (
	// Connections counts handled connections by outcome.
	Connections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_total",
		Help:      "Handled connections by outcome.",
	}, []string{"outcome"})

	// Notifications counts notifications received by the hub, by kind.
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Change notifications received by the hub.",
	}, []string{"kind"})

	// Deliveries counts per-subscriber delivery attempts, by result.
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Notification deliveries to subscribers.",
	}, []string{"result"})

	// Subscribers is the current number of live subscriptions.
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "subscribers",
		Help:      "Live websocket subscriptions.",
	})

	// PendingJobs is the number of jobs waiting for a free worker.
	PendingJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_pending_jobs",
		Help:      "Jobs queued for the worker pool.",
	})

	// PanickedJobs counts jobs that panicked inside a worker.
	PanickedJobs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pool_panicked_jobs_total",
		Help:      "Jobs that panicked inside a worker.",
	})
)
