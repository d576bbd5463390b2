package batch

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.observeRequest(kindEmbedding, nil)
	m.observeRequest(kindEmbedding, errors.New("x"))
	m.observeBatch(kindEmbedding, time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(kindEmbedding, outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(kindEmbedding, outcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.batchDuration))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice fails")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeRequest(kindChat, nil)
		m.observeRetry(kindChat)
		m.observeCacheHits(kindChat, 3)
		m.observePacingSleep()
		m.observeBatch(kindChat, time.Now())
	})
}
