// Package telemetry inicializa o OpenTelemetry para as chamadas aos bancos
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/config"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/logger"
)

// Exportadores aceitos em OTEL_TRACES_EXPORTER
const (
	ExporterNone   = ""
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
)

// Shutdown descarrega os spans pendentes
type Shutdown func(context.Context) error

// Init configura o TracerProvider global. Sem exportador, os spans criados
// pelo otelhttp ficam no provider no-op padrão e nada é enviado.
func Init(ctx context.Context, cfg config.TelemetryConfig, log logger.Sugared) (Shutdown, error) {
	exporter, err := newExporter(ctx, strings.ToLower(cfg.Exporter))
	if err != nil {
		return nil, err
	}
	if exporter == nil {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Infow("OpenTelemetry inicializado", "exporter", cfg.Exporter, "service", cfg.ServiceName)
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	switch name {
	case ExporterNone, "none":
		return nil, nil
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case ExporterOTLP:
		// endpoint e headers vêm de OTEL_EXPORTER_OTLP_* como no SDK
		return otlptracehttp.New(ctx)
	}
	return nil, fmt.Errorf("exportador de traces desconhecido: %q", name)
}
