package bank

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/certs"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/config"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/testutil"
)

const testTenant = "empresa-teste"

// recorded guarda o que o banco falso recebeu
type recorded struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

// harness sobe um banco falso em HTTP e um adaptador apontando para ele.
// O agente TLS é construído normalmente a partir de certificados de teste.
type harness struct {
	server  *httptest.Server
	adapter *Adapter
	certDir string // onde o certificado do banco foi gravado

	mu       sync.Mutex
	requests []recorded
	agents   []*certs.Agent
}

func newHarness(t *testing.T, b domain.Bank, handler http.HandlerFunc, opts ...Option) *harness {
	t.Helper()

	h := &harness{}
	h.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		h.mu.Lock()
		h.requests = append(h.requests, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		h.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(h.server.Close)

	profile, ok := ProfileFor(b)
	if !ok {
		t.Fatalf("no profile for %s", b)
	}

	root := t.TempDir()
	bc := writeMaterial(t, root, profile)
	h.certDir = root
	if profile.TenantScoped {
		h.certDir = filepath.Join(root, testTenant)
	}
	bc.Endpoint = h.server.URL + "/api"
	bc.AuthEndpoint = h.server.URL + "/auth/token"
	if b == domain.BankItau {
		bc.AuthEndpoint = h.server.URL + "/sts"
	}
	bc.Timeout = 5 * time.Second

	agents := certs.NewFactory(certs.NewStore(&config.Config{
		Certs: config.CertsConfig{Root: root},
		Banks: map[string]config.BankConfig{string(b): bc},
	}))

	opts = append([]Option{WithTransport(func(agent *certs.Agent) http.RoundTripper {
		h.mu.Lock()
		h.agents = append(h.agents, agent)
		h.mu.Unlock()
		return &http.Transport{}
	})}, opts...)

	adapter, err := NewAdapter(profile, bc, agents, opts...)
	if err != nil {
		t.Fatalf("NewAdapter() error = %v", err)
	}
	h.adapter = adapter
	return h
}

// writeMaterial grava o certificado exigido pelo layout do banco
func writeMaterial(t *testing.T, root string, p Profile) config.BankConfig {
	t.Helper()

	dir := root
	if p.TenantScoped {
		dir = filepath.Join(root, testTenant)
	}

	switch p.Layout {
	case certs.LayoutCA:
		testutil.WriteFile(t, filepath.Join(dir, "ca.pem"), testutil.CertFixture(t, testutil.CAFile))
		return config.BankConfig{Cert: "ca.pem"}
	case certs.LayoutCertKey:
		testutil.WriteFile(t, filepath.Join(dir, "client.pem"), testutil.CertFixture(t, testutil.ClientCertFile))
		testutil.WriteFile(t, filepath.Join(dir, "client.key"), testutil.CertFixture(t, testutil.ClientKeyFile))
		return config.BankConfig{Cert: "client.pem", Key: "client.key"}
	default:
		testutil.WriteFile(t, filepath.Join(dir, "bundle.pfx"), testutil.CertFixture(t, testutil.ClientPFXFile))
		return config.BankConfig{Cert: "bundle.pfx", CertPassphrase: testutil.PFXPassphrase}
	}
}

func (h *harness) calls() []recorded {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]recorded(nil), h.requests...)
}

func (h *harness) last(t *testing.T) recorded {
	t.Helper()
	calls := h.calls()
	if len(calls) == 0 {
		t.Fatal("bank received no request")
	}
	return calls[len(calls)-1]
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

var testOptions = domain.CallOptions{Tenant: testTenant, AppKey: "app-key-123"}

var (
	wantTokenPath = map[domain.Bank]string{
		domain.BankItau:        "/sts/oauth/token",
		domain.BankBradesco:    "/api/auth/server/oauth/token",
		domain.BankSicoob:      "/auth/token",
		domain.BankSicredi:     "/auth/token",
		domain.BankBancoBrasil: "/auth/token",
		domain.BankAilos:       "/auth/token",
		domain.BankEfi:         "/api/oauth/token",
	}
	wantCreatePath = map[domain.Bank]string{
		domain.BankItau:        "/api/v2/cob/",
		domain.BankBradesco:    "/api/v2/cob-emv",
		domain.BankSicoob:      "/api/cob",
		domain.BankSicredi:     "/api/cob",
		domain.BankBancoBrasil: "/api/cob",
		domain.BankAilos:       "/api/cob",
		domain.BankEfi:         "/api/v2/cob",
	}
	wantLookupPath = map[domain.Bank]string{
		domain.BankItau:        "/api/v2/cob",
		domain.BankBradesco:    "/api/v2/cob",
		domain.BankSicoob:      "/api/cob",
		domain.BankSicredi:     "/api/cob",
		domain.BankBancoBrasil: "/api/cob",
		domain.BankAilos:       "/api/cob",
		domain.BankEfi:         "/api/v2/cob",
	}
)
