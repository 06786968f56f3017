package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/logger"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/ports"
)

// Headers lidos das requisições, mantidos com a grafia do contrato público
const (
	HeaderClientID      = "clientID"
	HeaderClientSecret  = "clientSecret"
	HeaderEmpresa       = "empresa"
	HeaderAppKey        = "developer_application_key"
	HeaderAuthorization = "Authorization"
)

// maxBodySize limita o corpo de uma cobrança recebida
const maxBodySize = 1 << 20

// PixHandler expõe as operações PIX de todos os bancos registrados
type PixHandler struct {
	registry *ports.Registry
	log      logger.Sugared
}

// NewPixHandler cria o handler PIX
func NewPixHandler(registry *ports.Registry, log logger.Sugared) *PixHandler {
	return &PixHandler{registry: registry, log: log}
}

// Routes monta as rotas /{bank}/... no router
func (h *PixHandler) Routes(r chi.Router) {
	r.Route("/{bank}", func(r chi.Router) {
		r.Post("/token", h.Token)
		r.Post("/cobranca", h.CreateCharge)
		r.Get("/cobranca", h.FindMany)
		r.Get("/cobranca/{identifier}", h.FindOne)
		r.Get("/qrcode/{identifier}", h.FindQRCode)
	})
}

// Token troca clientID/clientSecret por um token do banco.
// Endpoint: POST /{bank}/token
func (h *PixHandler) Token(w http.ResponseWriter, r *http.Request) {
	provider, err := h.provider(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	creds := domain.Credentials{
		ClientID:     r.Header.Get(HeaderClientID),
		ClientSecret: r.Header.Get(HeaderClientSecret),
	}

	token, err := provider.Authenticate(r.Context(), creds, callOptions(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeRaw(w, token.Raw)
}

// CreateCharge cria uma cobrança imediata.
// Endpoint: POST /{bank}/cobranca
func (h *PixHandler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	provider, err := h.provider(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, h.log, badRequest("Erro ao ler requisição"))
		return
	}
	defer r.Body.Close()

	var req domain.ChargeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, h.log, badRequest("Corpo da cobrança inválido", err.Error()))
		return
	}
	req.TxID = r.URL.Query().Get("txid")

	result, err := provider.CreateCharge(r.Context(), r.Header.Get(HeaderAuthorization), &req, callOptions(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeRaw(w, result)
}

// FindOne consulta uma cobrança pelo identificador.
// Endpoint: GET /{bank}/cobranca/{identifier}
func (h *PixHandler) FindOne(w http.ResponseWriter, r *http.Request) {
	provider, err := h.provider(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	result, err := provider.FindOne(r.Context(), r.Header.Get(HeaderAuthorization), chi.URLParam(r, "identifier"), callOptions(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeRaw(w, result)
}

// FindMany lista as cobranças do período.
// Endpoint: GET /{bank}/cobranca?inicio=&fim=
func (h *PixHandler) FindMany(w http.ResponseWriter, r *http.Request) {
	provider, err := h.provider(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	q, err := parseChargesQuery(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	result, err := provider.FindMany(r.Context(), r.Header.Get(HeaderAuthorization), q, callOptions(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeRaw(w, result)
}

// FindQRCode consulta um QR Code pelo identificador.
// Endpoint: GET /{bank}/qrcode/{identifier}
func (h *PixHandler) FindQRCode(w http.ResponseWriter, r *http.Request) {
	provider, err := h.provider(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	result, err := provider.FindQRCode(r.Context(), r.Header.Get(HeaderAuthorization), chi.URLParam(r, "identifier"), callOptions(r))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeRaw(w, result)
}

func (h *PixHandler) provider(r *http.Request) (ports.PixProvider, error) {
	b, ok := domain.ParseBank(chi.URLParam(r, "bank"))
	if !ok {
		return nil, ports.ErrBankNotConfigured
	}
	return h.registry.Get(b)
}

func callOptions(r *http.Request) domain.CallOptions {
	return domain.CallOptions{
		Tenant: r.Header.Get(HeaderEmpresa),
		AppKey: r.Header.Get(HeaderAppKey),
	}
}

// parseChargesQuery lê inicio/fim e os filtros opcionais da listagem
func parseChargesQuery(r *http.Request) (domain.ChargesQuery, error) {
	values := r.URL.Query()
	var q domain.ChargesQuery

	raw := values.Get("inicio")
	if raw == "" {
		return q, badRequest("Parâmetro inicio é obrigatório", "inicio")
	}
	inicio, err := parseDate(raw)
	if err != nil {
		return q, badRequest("Parâmetro inicio inválido", "inicio")
	}
	q.Inicio = inicio

	if raw := values.Get("fim"); raw != "" {
		fim, err := parseDate(raw)
		if err != nil {
			return q, badRequest("Parâmetro fim inválido", "fim")
		}
		q.Fim = &fim
	}

	q.CPF = values.Get("cpf")
	q.CNPJ = values.Get("cnpj")
	q.Status = values.Get("status")

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"paginacao.paginaAtual", &q.PaginaAtual},
		{"paginacao.itensPorPagina", &q.ItensPorPagina},
	} {
		raw := values.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, badRequest(fmt.Sprintf("Parâmetro %s inválido", p.name), p.name)
		}
		*p.dst = &n
	}

	return q, nil
}

// parseDate aceita RFC 3339 (com ou sem fração) ou apenas a data
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
