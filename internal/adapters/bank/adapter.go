package bank

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/certs"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/config"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/logger"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/metrics"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/ports"
)

// Operações, usadas em logs, métricas e erros
const (
	OpAuthenticate = "authenticate"
	OpCreateCharge = "createCharge"
	OpFindOne      = "findOne"
	OpFindMany     = "findMany"
	OpFindQRCode   = "findQrCode"
)

// maxResponseSize limita o corpo lido de cada resposta do banco
const maxResponseSize = 10 << 20

// TransportFunc monta o RoundTripper de uma chamada a partir do agente TLS
type TransportFunc func(agent *certs.Agent) http.RoundTripper

// Adapter implementa ports.PixProvider para um banco descrito por um Profile
type Adapter struct {
	profile    Profile
	cfg        config.BankConfig
	agents     *certs.Factory
	normalizer *Normalizer

	log       logger.Sugared
	metrics   *metrics.Metrics
	transport TransportFunc
}

// Option configura o Adapter
type Option func(*Adapter)

// WithLogger define o logger do adaptador
func WithLogger(log logger.Sugared) Option {
	return func(a *Adapter) { a.log = log }
}

// WithMetrics registra as chamadas no Prometheus
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithTransport substitui o transporte padrão (testes e gravação de fitas).
// O agente TLS continua sendo construído antes de cada chamada.
func WithTransport(fn TransportFunc) Option {
	return func(a *Adapter) { a.transport = fn }
}

// NewAdapter cria o adaptador de um banco
func NewAdapter(p Profile, cfg config.BankConfig, agents *certs.Factory, opts ...Option) (*Adapter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%sENDPOINT é obrigatório", p.Bank.EnvPrefix())
	}
	if agents == nil {
		return nil, errors.New("fábrica de agentes TLS é obrigatória")
	}

	normalizer, err := NewNormalizer(p)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultUpstreamTimeout
	}

	a := &Adapter{
		profile:    p,
		cfg:        cfg,
		agents:     agents,
		normalizer: normalizer,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Bank retorna o banco atendido
func (a *Adapter) Bank() domain.Bank {
	return a.profile.Bank
}

// call é uma chamada HTTP ao banco
type call struct {
	op     string
	method string
	url    string
	header http.Header
	body   []byte
	tenant string
}

// do constrói o agente TLS, executa a chamada e normaliza falhas.
// Erros de certificado são devolvidos sem conversão: nenhuma chamada sai sem identidade TLS.
func (a *Adapter) do(ctx context.Context, c call) ([]byte, error) {
	agent, err := a.agents.Build(ctx, a.profile.Identity(), c.tenant)
	if err != nil {
		a.log.Errorw("Erro ao montar agente TLS",
			"bank", a.profile.Bank,
			"op", c.op,
			"empresa", c.tenant,
			"error", err,
		)
		return nil, err
	}

	client, release := a.client(agent)
	defer release()

	var reqBody io.Reader
	if c.body != nil {
		reqBody = bytes.NewReader(c.body)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, c.url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar requisição: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		a.metrics.ObserveUpstream(a.profile.Bank, c.op, metrics.OutcomeUnreachable, time.Since(start))
		a.log.Warnw("Banco inacessível",
			"bank", a.profile.Bank,
			"op", c.op,
			"error", err,
		)
		return nil, unreachable(a.profile.Bank, c.op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		a.metrics.ObserveUpstream(a.profile.Bank, c.op, metrics.OutcomeUnreachable, time.Since(start))
		return nil, unreachable(a.profile.Bank, c.op, fmt.Errorf("erro ao ler resposta: %w", err))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		a.metrics.ObserveUpstream(a.profile.Bank, c.op, metrics.OutcomeRejected, time.Since(start))
		bankErr := a.normalizer.Normalize(c.op, resp.StatusCode, respBody)
		a.log.Warnw("Banco rejeitou a requisição",
			"bank", a.profile.Bank,
			"op", c.op,
			"status", resp.StatusCode,
			"kind", bankErr.Kind,
			"message", bankErr.Message,
		)
		return nil, bankErr
	}

	a.metrics.ObserveUpstream(a.profile.Bank, c.op, metrics.OutcomeOK, time.Since(start))
	return respBody, nil
}

// client cria um http.Client exclusivo para a chamada; release fecha as conexões ociosas
func (a *Adapter) client(agent *certs.Agent) (*http.Client, func()) {
	if a.transport != nil {
		client := &http.Client{Timeout: a.cfg.Timeout, Transport: a.transport(agent)}
		return client, client.CloseIdleConnections
	}

	base := agent.Transport()
	client := &http.Client{
		Timeout: a.cfg.Timeout,
		Transport: otelhttp.NewTransport(base,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return fmt.Sprintf("%s %s", a.profile.Bank, r.Method)
			}),
		),
	}
	return client, base.CloseIdleConnections
}

// endpoint monta a URL de um recurso do banco, com a chave de aplicação quando exigida
func (a *Adapter) endpoint(path string, query url.Values, opts domain.CallOptions) string {
	return a.withQuery(a.cfg.Endpoint+path, query, opts)
}

func (a *Adapter) withQuery(base string, query url.Values, opts domain.CallOptions) string {
	if a.profile.AppKeyParam != "" && opts.AppKey != "" {
		if query == nil {
			query = url.Values{}
		}
		query.Set(a.profile.AppKeyParam, opts.AppKey)
	}
	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

// requireToken rejeita localmente chamadas sem token
func (a *Adapter) requireToken(op, token string) error {
	if token == "" {
		e := NewValidationError("token de acesso não informado", http.StatusUnauthorized)
		e.Bank = a.profile.Bank
		e.Op = op
		return e
	}
	return nil
}

var _ ports.PixProvider = (*Adapter)(nil)
