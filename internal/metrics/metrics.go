package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PageRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aqidash_page_renders_total",
			Help: "Total dashboard page and partial renders",
		},
		[]string{"page"},
	)

	RenderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aqidash_render_latency_seconds",
			Help:    "Render pass latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"page"},
	)

	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aqidash_dataset_loads_total",
			Help: "Total dataset loads by source and outcome",
		},
		[]string{"source", "status"},
	)

	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aqidash_dataset_records",
			Help: "Record count of the active dataset",
		},
	)
)
