package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTranslation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTranslation(OutcomeSuccess, 200*time.Millisecond)
	m.ObserveTranslation(OutcomeSuccess, 300*time.Millisecond)
	m.ObserveTranslation(OutcomeGenerationError, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TranslationRequests().WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TranslationRequests().WithLabelValues(OutcomeGenerationError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TranslationRequests().WithLabelValues(OutcomeDecodeError)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveTranslation(OutcomeSuccess, time.Second)
		m.ObserveGeneration("text", time.Second)
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveGeneration("image", 2*time.Second)

	server := httptest.NewServer(Handler(reg))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `genstudio_generation_duration_seconds_count{kind="image"} 1`)
}
