package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/caseguard/riskmatrix/pkg/service/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManager_Evaluations(t *testing.T) {
	m := metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()))

	m.ObserveEvaluation(types.TrafficLightRed, 20*time.Millisecond)
	m.ObserveEvaluation(types.TrafficLightRed, 10*time.Millisecond)
	m.ObserveEvaluation(types.TrafficLightGreen, time.Millisecond)
	m.IncActivation("tenant-a")
	m.IncSerializationDegraded()

	gt.Value(t, testutil.CollectAndCount(m.Registry(), "riskmatrix_evaluations_total")).Equal(3)

	body := scrape(t, m)
	gt.String(t, body).Contains(`riskmatrix_evaluations_total{traffic_light="RED"} 2`)
	gt.String(t, body).Contains(`riskmatrix_evaluations_total{traffic_light="GREEN"} 1`)
	gt.String(t, body).Contains(`riskmatrix_evaluations_total{traffic_light="YELLOW"} 0`)
	gt.String(t, body).Contains(`riskmatrix_config_activations_total{tenant_id="tenant-a"} 1`)
	gt.String(t, body).Contains(`riskmatrix_snapshot_serialization_degraded_total 1`)
	gt.String(t, body).Contains(`riskmatrix_evaluation_duration_seconds_count 3`)
}

func TestManager_Namespace(t *testing.T) {
	m := metrics.NewManager(metrics.WithNamespace("custom"), metrics.WithHistogramBuckets([]float64{0.1, 1}))
	m.IncSerializationDegraded()

	gt.String(t, scrape(t, m)).Contains("custom_snapshot_serialization_degraded_total 1")
}

func TestManager_Middleware(t *testing.T) {
	m := metrics.NewManager()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/cases/{caseID}/risk/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"c1", "c2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/"+id+"/risk/latest", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	body := scrape(t, m)
	gt.String(t, body).Contains(`riskmatrix_http_requests_total{method="GET",route="/api/v1/cases/{caseID}/risk/latest",status="404"} 2`)
}

func scrape(t *testing.T, m *metrics.Manager) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	data, err := io.ReadAll(rec.Body)
	gt.NoError(t, err).Required()
	return string(data)
}
