package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/adapters/bank"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/certs"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/logger"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/metrics"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/ports"
)

// fakeProvider registra os argumentos recebidos e devolve respostas fixas
type fakeProvider struct {
	bank domain.Bank
	err  error
	body json.RawMessage

	creds  domain.Credentials
	opts   domain.CallOptions
	token  string
	charge *domain.ChargeRequest
	id     string
	query  domain.ChargesQuery
}

func (f *fakeProvider) Bank() domain.Bank { return f.bank }

func (f *fakeProvider) Authenticate(_ context.Context, creds domain.Credentials, opts domain.CallOptions) (*domain.AccessToken, error) {
	f.creds, f.opts = creds, opts
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AccessToken{AccessToken: "tok", Raw: f.body}, nil
}

func (f *fakeProvider) CreateCharge(_ context.Context, token string, req *domain.ChargeRequest, opts domain.CallOptions) (json.RawMessage, error) {
	f.token, f.charge, f.opts = token, req, opts
	return f.body, f.err
}

func (f *fakeProvider) FindOne(_ context.Context, token, txid string, opts domain.CallOptions) (json.RawMessage, error) {
	f.token, f.id, f.opts = token, txid, opts
	return f.body, f.err
}

func (f *fakeProvider) FindMany(_ context.Context, token string, q domain.ChargesQuery, opts domain.CallOptions) (json.RawMessage, error) {
	f.token, f.query, f.opts = token, q, opts
	return f.body, f.err
}

func (f *fakeProvider) FindQRCode(_ context.Context, token, id string, opts domain.CallOptions) (json.RawMessage, error) {
	f.token, f.id, f.opts = token, id, opts
	return f.body, f.err
}

func newTestRouter(providers ...ports.PixProvider) http.Handler {
	registry := ports.NewRegistry()
	for _, p := range providers {
		registry.Register(p)
	}
	return NewRouter(registry, logger.Nop(), metrics.New(prometheus.NewRegistry()))
}

func serve(h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestToken(t *testing.T) {
	const raw = `{"access_token":"tok","expires_in":3600,"extra":"mantido"}`
	p := &fakeProvider{bank: domain.BankSicoob, body: json.RawMessage(raw)}
	h := newTestRouter(p)

	w := serve(h, http.MethodPost, "/sicoob/token", "", map[string]string{
		HeaderClientID:     "id",
		HeaderClientSecret: "secret",
		HeaderEmpresa:      "empresa-a",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Body.String() != raw {
		t.Errorf("body = %s, want bank body unchanged", w.Body.String())
	}
	if p.creds.ClientID != "id" || p.creds.ClientSecret != "secret" {
		t.Errorf("creds = %+v", p.creds)
	}
	if p.opts.Tenant != "empresa-a" {
		t.Errorf("tenant = %q", p.opts.Tenant)
	}
}

func TestCreateCharge(t *testing.T) {
	p := &fakeProvider{bank: domain.BankBancoBrasil, body: json.RawMessage(`{"txid":"abc"}`)}
	h := newTestRouter(p)

	w := serve(h, http.MethodPost, "/bancobrasil/cobranca?txid=abc",
		`{"valor":{"original":77.77},"chave":"chave-pix"}`,
		map[string]string{
			HeaderAuthorization: "Bearer tok",
			HeaderEmpresa:       "empresa-a",
			HeaderAppKey:        "app-key",
		})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if p.token != "Bearer tok" {
		t.Errorf("token = %q, want header unchanged", p.token)
	}
	if p.charge.TxID != "abc" || p.charge.Valor.Original != "77.77" || p.charge.Chave != "chave-pix" {
		t.Errorf("charge = %+v", p.charge)
	}
	if p.opts.AppKey != "app-key" {
		t.Errorf("app key = %q", p.opts.AppKey)
	}
}

func TestCreateCharge_InvalidBody(t *testing.T) {
	p := &fakeProvider{bank: domain.BankSicoob}
	w := serve(newTestRouter(p), http.MethodPost, "/sicoob/cobranca", `{"valor":`, nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", resp.Code)
	}
	if p.charge != nil {
		t.Error("provider called with invalid body")
	}
}

func TestFindOne(t *testing.T) {
	p := &fakeProvider{bank: domain.BankItau, body: json.RawMessage(`{"status":"CONCLUIDA"}`)}
	w := serve(newTestRouter(p), http.MethodGet, "/itau/cobranca/txid-123", "", map[string]string{
		HeaderAuthorization: "Bearer tok",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != `{"status":"CONCLUIDA"}` {
		t.Errorf("body = %s", w.Body.String())
	}
	if p.id != "txid-123" {
		t.Errorf("txid = %q", p.id)
	}
}

func TestFindMany(t *testing.T) {
	p := &fakeProvider{bank: domain.BankSicredi, body: json.RawMessage(`{"cobs":[]}`)}
	w := serve(newTestRouter(p), http.MethodGet,
		"/sicredi/cobranca?inicio=2024-01-01T10:00:00.500Z&fim=2024-01-02&status=ATIVA&paginacao.paginaAtual=1",
		"", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	wantInicio := time.Date(2024, 1, 1, 10, 0, 0, 500_000_000, time.UTC)
	if !p.query.Inicio.Equal(wantInicio) {
		t.Errorf("inicio = %v, want %v", p.query.Inicio, wantInicio)
	}
	if p.query.Fim == nil || !p.query.Fim.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("fim = %v", p.query.Fim)
	}
	if p.query.Status != "ATIVA" {
		t.Errorf("status = %q", p.query.Status)
	}
	if p.query.PaginaAtual == nil || *p.query.PaginaAtual != 1 {
		t.Errorf("paginaAtual = %v", p.query.PaginaAtual)
	}
}

func TestFindMany_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing inicio", "", "inicio"},
		{"invalid inicio", "?inicio=ontem", "inicio"},
		{"invalid fim", "?inicio=2024-01-01&fim=amanha", "fim"},
		{"invalid page", "?inicio=2024-01-01&paginacao.itensPorPagina=-1", "paginacao.itensPorPagina"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(newTestRouter(&fakeProvider{bank: domain.BankSicoob}), http.MethodGet, "/sicoob/cobranca"+tt.query, "", nil)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			resp := decodeError(t, w)
			fields, _ := resp.Errors.([]interface{})
			if len(fields) != 1 || fields[0] != tt.field {
				t.Errorf("errors = %v, want [%s]", resp.Errors, tt.field)
			}
		})
	}
}

func TestFindQRCode(t *testing.T) {
	p := &fakeProvider{bank: domain.BankBancoBrasil, body: json.RawMessage(`{"qrcode":"000201"}`)}
	w := serve(newTestRouter(p), http.MethodGet, "/bancobrasil/qrcode/qr-1", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if p.id != "qr-1" {
		t.Errorf("id = %q", p.id)
	}
}

func TestErrorEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{
			name:        "validation error",
			err:         bank.NewValidationError("Token expirado", http.StatusUnauthorized),
			wantCode:    http.StatusUnauthorized,
			wantMessage: "Impossible to validate credentials: Token expirado",
		},
		{
			name:        "requisition failed keeps bank status",
			err:         bank.NewRequisitionFailedError("x bad", http.StatusUnprocessableEntity),
			wantCode:    http.StatusUnprocessableEntity,
			wantMessage: "Impossible to continue: x bad",
		},
		{
			name:        "requisition failed without status",
			err:         &bank.Error{Kind: bank.KindRequisitionFailed, Message: "?"},
			wantCode:    http.StatusInternalServerError,
			wantMessage: "Impossible to continue: ?",
		},
		{
			name:     "certificate error",
			err:      &certs.Error{Kind: certs.ErrCertificateMissing, Bank: domain.BankItau, Path: "certs/itau.pem"},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{bank: domain.BankItau, err: tt.err}
			w := serve(newTestRouter(p), http.MethodGet, "/itau/cobranca/abc", "", nil)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			resp := decodeError(t, w)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", resp.Code, tt.wantCode)
			}
			if tt.wantMessage != "" && resp.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
			}
			if resp.Message == "" {
				t.Error("message is empty")
			}
		})
	}
}

func TestUnknownBank(t *testing.T) {
	h := newTestRouter(&fakeProvider{bank: domain.BankSicoob})

	for _, path := range []string{"/nubank/token", "/itau/token"} {
		w := serve(h, http.MethodPost, path, "", nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, w.Code)
		}
		if resp := decodeError(t, w); resp.Code != http.StatusNotFound {
			t.Errorf("%s: code = %d", path, resp.Code)
		}
	}
}
