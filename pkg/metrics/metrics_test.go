package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecordGeneration(t *testing.T) {
	labels := map[string]string{"provider": "deepseek", "outcome": "ok"}
	before := counterValue(t, "tripwise_itinerary_generations_total", labels)
	RecordGeneration("deepseek", "ok", 2*time.Second)
	assert.Equal(t, before+1, counterValue(t, "tripwise_itinerary_generations_total", labels))
}

func TestRecordExternalCall(t *testing.T) {
	RecordExternalCall("amap", "geocode", errors.New("boom"))
	value := counterValue(t, "tripwise_external_calls_total",
		map[string]string{"service": "amap", "operation": "geocode", "success": "false"})
	assert.GreaterOrEqual(t, value, 1.0)
}

func TestHandlerExposesCollectors(t *testing.T) {
	RequestStarted()
	RequestFinished("GET", "/api/health", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tripwise_http_requests_total")
}
