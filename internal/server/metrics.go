package server

import "github.com/prometheus/client_golang/prometheus"

var (
	wizardsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_wizards_started_total",
			Help: "Total number of wizard sessions started",
		},
		[]string{"flow"},
	)
	wizardsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_wizards_finished_total",
			Help: "Total number of wizard sessions finished",
		},
		[]string{"flow"},
	)
	stepsCommitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_steps_committed_total",
			Help: "Total number of step transitions committed",
		},
		[]string{"flow"},
	)
	remoteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_remote_failures_total",
			Help: "Total number of classified remote step failures",
		},
		[]string{"category"},
	)
	draftsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_drafts_saved_total",
			Help: "Total number of drafts saved",
		},
	)
	draftsResumed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_drafts_resumed_total",
			Help: "Total number of wizard sessions resumed from drafts",
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_active_sessions",
			Help: "Number of open wizard sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(
		wizardsStarted,
		wizardsFinished,
		stepsCommitted,
		remoteFailures,
		draftsSaved,
		draftsResumed,
		activeSessions,
	)
}
