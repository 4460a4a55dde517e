// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics holds the Prometheus collectors for the API.

HTTP traffic is recorded by middleware.WithLogging through ObserveRequest,
labelled with the ServeMux pattern rather than the raw path so room codes and
question ids do not explode cardinality.

Domain counters are incremented by the services:

	metrics.VotesSubmitted.WithLabelValues(q.QuestionType).Inc()
	metrics.QuestionTransitions.WithLabelValues("completed", "expired").Inc()

The router exposes the default registry at GET /metrics.
*/
package metrics
