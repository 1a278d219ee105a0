package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r.Metrics)

	r.Metrics.FramesReceived.WithLabelValues("SERVICE_STATUS").Inc()
	r.Metrics.ActionsDelivered.Add(2)

	families, err := r.Prometheus().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["handlink_frames_received_total"])
	assert.True(t, names["handlink_pipeline_delivered_total"])
	assert.True(t, names["go_goroutines"])
}

func TestUnregisteredMetricsCount(t *testing.T) {
	m := New()
	m.Resolved.WithLabelValues("config", "Success").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolved.WithLabelValues("config", "Success")))
}
