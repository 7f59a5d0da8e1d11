package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvitationsDispatched counts invitation creations by batch outcome (created|skipped|failed).
	InvitationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewlink_invitations_dispatched_total",
			Help: "Total number of invitation dispatch outcomes",
		},
		[]string{"outcome"},
	)

	// InvitationResponses counts worker responses by decision (accepted|rejected).
	InvitationResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewlink_invitation_responses_total",
			Help: "Total number of invitation responses",
		},
		[]string{"decision"},
	)

	// JobTransitions counts job lifecycle transitions by action and result (ok|denied).
	JobTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewlink_job_transitions_total",
			Help: "Total number of job lifecycle transition attempts",
		},
		[]string{"action", "result"},
	)

	// NotificationsEmitted counts notification gateway deliveries by result (delivered|failed).
	NotificationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewlink_notifications_emitted_total",
			Help: "Total number of notification emissions",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crewlink_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
