package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/avelir/registration-service/internal/infra/config"
)

// Provider holds the service metrics.
type Provider struct {
	requestCounter     prometheus.Counter
	registrationsTotal *prometheus.CounterVec
	activationsTotal   *prometheus.CounterVec
}

var (
	provider *Provider
	once     sync.Once
)

// Attach registers the service metrics and returns a provider handle. The
// metrics live on the default registry, so registration happens once per
// process regardless of how many times Attach is called.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	once.Do(func() {
		provider = &Provider{
			requestCounter: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "signup",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			}),
			registrationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "signup",
				Name:      "registrations_total",
				Help:      "Signup attempts by workflow and outcome",
			}, []string{"workflow", "outcome"}),
			activationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "signup",
				Name:      "activations_total",
				Help:      "Activation attempts by workflow and outcome",
			}, []string{"workflow", "outcome"}),
		}
	})

	return provider, nil
}

// RequestCounter exposes the HTTP request metric.
func (p *Provider) RequestCounter() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.requestCounter
}

// ObserveRegistration records one signup attempt.
func (p *Provider) ObserveRegistration(workflow, outcome string) {
	if p == nil {
		return
	}
	p.registrationsTotal.WithLabelValues(workflow, outcome).Inc()
}

// ObserveActivation records one activation attempt.
func (p *Provider) ObserveActivation(workflow, outcome string) {
	if p == nil {
		return
	}
	p.activationsTotal.WithLabelValues(workflow, outcome).Inc()
}
