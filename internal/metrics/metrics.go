// Package metrics expõe os contadores Prometheus das chamadas aos bancos e da API
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

// Resultados de uma chamada ao banco
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"    // banco respondeu com status de erro
	OutcomeUnreachable = "unreachable" // nenhuma resposta (rede/TLS)
)

// Metrics agrupa os coletores registrados
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registra os coletores em reg. Em produção reg é prometheus.DefaultRegisterer;
// nos testes, um prometheus.NewRegistry() isolado.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pix_gateway",
			Name:      "upstream_requests_total",
			Help:      "Chamadas feitas às APIs dos bancos.",
		}, []string{"bank", "operation", "outcome"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pix_gateway",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duração das chamadas às APIs dos bancos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"bank", "operation"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pix_gateway",
			Name:      "http_requests_total",
			Help:      "Requisições recebidas pela API.",
		}, []string{"method", "route", "status"}),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// ObserveUpstream registra uma chamada ao banco. É seguro chamar com m nil.
func (m *Metrics) ObserveUpstream(bank domain.Bank, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(string(bank), operation, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(string(bank), operation).Observe(elapsed.Seconds())
}

// ObserveHTTP registra uma requisição recebida
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serve o endpoint /metrics do registro usado em New
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
