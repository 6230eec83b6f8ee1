//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2024 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects store traffic of the indexing engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Requests         *prometheus.CounterVec
	Faults           *prometheus.CounterVec
	ChunkDurations   *prometheus.HistogramVec
	SearchDurations  *prometheus.HistogramVec
	InFlightRequests prometheus.Gauge
	OpenConnections  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	return &Metrics{
		Requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvindex",
			Name:      "requests_total",
			Help:      "Number of store sub-requests dispatched",
		}, []string{"operation"}),
		Faults: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvindex",
			Name:      "faults_total",
			Help:      "Number of store sub-requests that failed or timed out",
		}, []string{"operation"}),
		ChunkDurations: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kvindex",
			Name:      "chunk_duration_seconds",
			Help:      "Duration of one bulk write chunk from dispatch to drain",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"operation"}),
		SearchDurations: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kvindex",
			Name:      "search_duration_seconds",
			Help:      "Duration of a search by evaluation path",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		InFlightRequests: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "kvindex",
			Name:      "inflight_requests",
			Help:      "Number of store sub-requests currently pending",
		}),
		OpenConnections: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "kvindex",
			Name:      "metrics_open_connections",
			Help:      "Number of open connections to the metrics endpoint",
		}),
	}
}

func (m *Metrics) Dispatched(operation string, n int) {
	if m == nil {
		return
	}

	m.Requests.WithLabelValues(operation).Add(float64(n))
}

func (m *Metrics) Faulted(operation string) {
	if m == nil {
		return
	}

	m.Faults.WithLabelValues(operation).Inc()
}

func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}

	m.InFlightRequests.Inc()
}

func (m *Metrics) RequestDone() {
	if m == nil {
		return
	}

	m.InFlightRequests.Dec()
}

func (m *Metrics) ObserveChunk(operation string, took time.Duration) {
	if m == nil {
		return
	}

	m.ChunkDurations.WithLabelValues(operation).Observe(took.Seconds())
}

func (m *Metrics) ObserveSearch(path string, took time.Duration) {
	if m == nil {
		return
	}

	m.SearchDurations.WithLabelValues(path).Observe(took.Seconds())
}
