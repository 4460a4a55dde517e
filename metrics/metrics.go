// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shadow_board"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rooms_created_total",
		Help:      "Rooms created.",
	})

	// RoomsClosed counts rooms closed because their host left.
	RoomsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rooms_closed_total",
		Help:      "Rooms closed by host departure.",
	})

	// MembershipsEnded is labelled by the final membership status (left, kicked).
	MembershipsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "memberships_ended_total",
		Help:      "Memberships ended, by final status.",
	}, []string{"status"})

	// QuestionTransitions is labelled by the status entered and the cause
	// (start, end, superseded, expired).
	QuestionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "question_transitions_total",
		Help:      "Question status transitions, by new status and cause.",
	}, []string{"status", "cause"})

	VotesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_submitted_total",
		Help:      "Votes recorded, by question type.",
	}, []string{"question_type"})

	// VotesRejected is labelled by the error code returned to the voter.
	VotesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_rejected_total",
		Help:      "Vote submissions rejected, by error code.",
	}, []string{"code"})

	// Invites is labelled by outcome (sent, delivery_failed, accepted).
	Invites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invites_total",
		Help:      "Invitation events, by outcome.",
	}, []string{"outcome"})
)

// ObserveRequest records one served request. route is the ServeMux pattern
// that matched; requests that matched nothing are grouped under "unmatched".
func ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
