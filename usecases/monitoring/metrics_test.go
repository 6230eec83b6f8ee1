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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	m.Dispatched("bulk_index_build", 3)
	m.Faulted("bulk_index_build")
	m.RequestStarted()
	m.RequestStarted()
	m.RequestDone()
	m.ObserveChunk("write_hash", 20*time.Millisecond)
	m.ObserveSearch("refine", time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.Requests.WithLabelValues("bulk_index_build")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Faults.WithLabelValues("bulk_index_build")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InFlightRequests))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ChunkDurations))

	count, err := testutil.GatherAndCount(reg, "kvindex_search_duration_seconds")
	require.Nil(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.Nil(t, NewMetrics(nil))

	assert.NotPanics(t, func() {
		m.Dispatched("write_hash", 1)
		m.Faulted("write_hash")
		m.RequestStarted()
		m.RequestDone()
		m.ObserveChunk("write_hash", time.Second)
		m.ObserveSearch("single", time.Second)
	})
}

func TestRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert.Equal(t, NoopRegisterer{}, Registerer(false, reg))
	assert.Equal(t, NoopRegisterer{}, Registerer(true, nil))
	assert.Equal(t, prometheus.Registerer(reg), Registerer(true, reg))

	m := NewMetrics(Registerer(false, reg))
	m.Dispatched("search", 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("search")))

	families, err := reg.Gather()
	require.Nil(t, err)
	assert.Empty(t, families)
}
