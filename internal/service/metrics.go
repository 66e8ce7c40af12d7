package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// recomputeDuration tracks how long one belief recompute takes
	recomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ise_recompute_duration_seconds",
		Help:    "Belief recompute duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	// recomputeTotal counts recomputes by result
	recomputeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ise_recompute_total",
		Help: "Total belief recomputes by result",
	}, []string{"result"})

	// tradesTotal counts trade attempts by side and result
	tradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ise_trades_total",
		Help: "Total trade attempts by side and result",
	}, []string{"side", "result"})

	// arbitrageOpportunities counts opportunities reported by scans
	arbitrageOpportunities = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ise_arbitrage_opportunities_total",
		Help: "Total arbitrage opportunities found",
	})

	// poolsSettled counts pools frozen by status
	poolsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ise_pools_settled_total",
		Help: "Total pools resolved or expired by final status",
	}, []string{"status"})

	// expirerRuns counts expirer passes by result
	expirerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ise_expirer_runs_total",
		Help: "Total pool expirer passes by result",
	}, []string{"result"})
)
