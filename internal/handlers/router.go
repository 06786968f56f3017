package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/logger"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/metrics"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/ports"
)

// NewRouter monta todas as rotas da API
func NewRouter(registry *ports.Registry, log logger.Sugared, m *metrics.Metrics) chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID())
	r.Use(Recover(log))
	r.Use(AccessLog(log, m))

	health := NewHealthHandler(registry)
	r.Get("/health-check", health.HealthCheck)
	r.Get("/health", health.HealthCheck)
	r.Handle("/metrics", m.Handler())

	NewPixHandler(registry, log).Routes(r)

	return r
}
