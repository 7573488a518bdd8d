package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pandero_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pandero_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "route"})

	SchedulesComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pandero_schedules_computed_total",
		Help: "Member schedules computed, by outcome",
	}, []string{"outcome"})

	PaymentsReviewed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pandero_payments_reviewed_total",
		Help: "Payments moved out of pending, by resulting status",
	}, []string{"status"})

	SheetRowsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pandero_sheet_rows_imported_total",
		Help: "Spreadsheet rows imported into storage, by tab",
	}, []string{"tab"})

	SheetRowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pandero_sheet_rows_skipped_total",
		Help: "Spreadsheet rows skipped as malformed, by tab",
	}, []string{"tab"})
)
