// Package main é o ponto de entrada do gateway PIX
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/adapters/bank"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/certs"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/config"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/handlers"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/logger"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/metrics"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/telemetry"
)

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Getenv("APP_ENV"), "info").Fatalw("Erro ao carregar configurações", "error", err)
	}

	log := logger.New(cfg.Env, cfg.LogLevel)
	defer log.Sync()

	log.Infow("Iniciando API PIX", "env", cfg.Env, "certs", cfg.Certs.Root)

	shutdownTracing, err := telemetry.Init(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatalw("Erro ao iniciar telemetria", "error", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Agentes TLS: novos a cada chamada, salvo CERTS_CACHE_TTL > 0
	agents := certs.NewFactory(certs.NewStore(cfg), certs.WithCache(cfg.Certs.CacheSize, cfg.Certs.CacheTTL))

	registry, err := bank.NewRegistry(cfg, agents, bank.WithLogger(log), bank.WithMetrics(m))
	if err != nil {
		log.Fatalw("Erro ao inicializar bancos", "error", err)
	}
	for _, b := range registry.Banks() {
		log.Infow("Banco habilitado", "bank", b.DisplayName(), "endpoint", cfg.Bank(b).Endpoint)
	}

	router := handlers.NewRouter(registry, log, m)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(router, "api-pix"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Servidor rodando", "addr", srv.Addr, "health", "/health-check")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Erro ao iniciar servidor", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Erro ao encerrar servidor", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Errorw("Erro ao encerrar telemetria", "error", err)
	}
	log.Info("Servidor encerrado")
}
