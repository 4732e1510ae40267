package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchasesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wellcare_purchases_created_total",
		Help: "Package purchases created.",
	})

	SessionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellcare_sessions_recorded_total",
		Help: "Service usage events recorded, by service type and billing kind.",
	}, []string{"service_type", "kind"})

	ConsumeRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellcare_consume_rejections_total",
		Help: "Rejected credit draws, by reason.",
	}, []string{"reason"})

	ExpirySweepMarked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wellcare_expiry_sweep_marked_total",
		Help: "Purchases stamped expired by the nightly sweep.",
	})
)
