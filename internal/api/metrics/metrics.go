// Package metrics defines and registers the custom Prometheus metrics for the
// site records API. It is the single source of truth for metric names, labels
// and help strings; registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "site_records"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RecordsSubmittedTotal counts records entering the workflow.
// Label:
//   - kind: "progress" or "payment"
var RecordsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_submitted_total",
		Help:      "Total number of records submitted, by kind.",
	},
	[]string{"kind"},
)

// TransitionsTotal counts completed review transitions.
// Labels:
//   - kind:     "progress" or "payment"
//   - decision: "approved" or "rejected"
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of review transitions, by kind and decision.",
	},
	[]string{"kind", "decision"},
)

// TransitionConflictsTotal counts transitions rejected because the record had
// already left the pending state (concurrent-reviewer losers included).
var TransitionConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transition_conflicts_total",
		Help:      "Total number of transitions refused on a non-pending record.",
	},
)

// CommentsTotal counts appended comments.
// Label:
//   - kind: "progress" or "payment"
var CommentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_total",
		Help:      "Total number of comments appended, by record kind.",
	},
	[]string{"kind"},
)

// BundleJobsTotal counts attachment bundle builds.
// Label:
//   - result: "ok" or "error"
var BundleJobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bundle_jobs_total",
		Help:      "Total number of attachment bundle jobs processed, by result.",
	},
	[]string{"result"},
)
