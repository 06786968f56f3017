package handlers

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/logger"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/metrics"
)

type ctxKey string

// CtxKeyRequestID guarda o id da requisição no contexto
const CtxKeyRequestID ctxKey = "reqid"

// RequestIDFrom retorna o id da requisição, se houver
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyRequestID).(string)
	return id
}

// RequestID propaga X-Request-Id ou gera um novo
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), CtxKeyRequestID, id)))
		})
	}
}

// Recover converte panics em 500 com o envelope de erro
func Recover(log logger.Sugared) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Errorw("panic", "err", rec, "stack", string(debug.Stack()))
					writeError(w, log, errInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog registra cada requisição e alimenta as métricas HTTP
func AccessLog(log logger.Sugared, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			m.ObserveHTTP(r.Method, route, status)
			log.Infow("request",
				"method", r.Method,
				"route", route,
				"status", status,
				"duration", time.Since(start),
				"empresa", r.Header.Get(HeaderEmpresa),
				"request_id", RequestIDFrom(r.Context()),
			)
		})
	}
}

var errInternal = errors.New("erro interno")
