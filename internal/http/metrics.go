package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aptcost_record_mutations_total",
		Help: "Record mutations processed, by action.",
	}, []string{"action"})

	exportDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aptcost_export_downloads_total",
		Help: "Workbook exports served.",
	})

	authFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aptcost_auth_failures_total",
		Help: "Rejected passphrase attempts.",
	})
)
