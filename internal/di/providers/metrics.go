package providers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven-server/internal/metrics"
)

// Metrics bundles the collector with the registry it is registered on so
// the HTTP layer can expose the same series the services record.
type Metrics struct {
	Collector *metrics.Collector
	Registry  *prometheus.Registry
}

// Handler returns the Prometheus scrape handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return metrics.Handler(m.Registry)
}

// ProvideMetrics provides the Prometheus collector and registry.
func ProvideMetrics(i do.Injector) (*Metrics, error) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	return &Metrics{
		Collector: collector,
		Registry:  registry,
	}, nil
}
