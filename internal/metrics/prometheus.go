package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type prometheusObserver struct {
	backend  string
	duration *prometheus.HistogramVec
	features prometheus.Gauge
}

var (
	storeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lingoflow_store_operation_seconds",
		Help:    "Duration of feature store operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "op", "status"})
	featureGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lingoflow_features",
		Help: "Number of features seen by the last unfiltered list.",
	})
)

// NewPrometheusObserver labels every observation with the given backend name.
func NewPrometheusObserver(backend string) StoreObserver {
	return &prometheusObserver{
		backend:  backend,
		duration: storeDuration,
		features: featureGauge,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (p *prometheusObserver) ObserveStoreOp(op, status string, seconds float64) {
	p.duration.WithLabelValues(p.backend, op, status).Observe(seconds)
}

func (p *prometheusObserver) SetFeatureCount(n int) {
	p.features.Set(float64(n))
}
