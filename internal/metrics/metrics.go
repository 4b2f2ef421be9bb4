// Package metrics defines the prometheus instruments for the signal gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignalsTotal counts inbound signals by terminal outcome
	SignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_signals_total",
			Help: "Total number of inbound signals by outcome",
		},
		[]string{"outcome"},
	)

	// AuthResults counts webhook authentication attempts by result
	AuthResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_auth_results_total",
			Help: "Total number of webhook authentication attempts by result",
		},
		[]string{"result"},
	)

	// CredentialResolutions counts successful resolutions by schema generation
	CredentialResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_credential_resolutions_total",
			Help: "Total number of credential resolutions by source generation",
		},
		[]string{"source"},
	)

	// DispatchDuration tracks trading-client handoff time
	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_dispatch_duration_seconds",
			Help:    "Trading client dispatch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
