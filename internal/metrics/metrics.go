package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics for the ticket frontend.
// All methods are safe on a nil *Metrics so components can run without metrics.
type Metrics struct {
	Registry            *prometheus.Registry
	TicketSubmissions   *prometheus.CounterVec
	RoundStatusFailures prometheus.Counter
	LiveImages          prometheus.Gauge
	FormSessions        prometheus.Gauge
}

// New creates the metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		TicketSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loto_ticket_submissions_total",
			Help: "Ticket submissions by outcome",
		}, []string{"outcome"}),
		RoundStatusFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "loto_round_status_failures_total",
			Help: "Failed fetches of the current round status",
		}),
		LiveImages: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loto_ticket_images_live",
			Help: "Ticket confirmation images currently held in memory",
		}),
		FormSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "loto_form_sessions",
			Help: "Open ticket form sessions",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveSubmission counts one finished submission; outcome is "success" or an error kind.
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.TicketSubmissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRoundStatusFailures() {
	if m == nil {
		return
	}
	m.RoundStatusFailures.Inc()
}

func (m *Metrics) SetLiveImages(n int) {
	if m == nil {
		return
	}
	m.LiveImages.Set(float64(n))
}

func (m *Metrics) SetFormSessions(n int) {
	if m == nil {
		return
	}
	m.FormSessions.Set(float64(n))
}
