package certs

import (
	"context"
	"crypto"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"hash"
	"net/http"
	"os"
	"time"

	"golang.org/x/crypto/pkcs12"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

// Layout define como o banco exige a identidade TLS
type Layout int

const (
	// LayoutPKCS12 usa um bundle .pfx/.p12 com senha
	LayoutPKCS12 Layout = iota
	// LayoutCertKey usa certificado e chave PEM separados, sem senha
	LayoutCertKey
	// LayoutCA só fixa a CA do servidor, sem certificado de cliente
	LayoutCA
)

func (l Layout) String() string {
	switch l {
	case LayoutPKCS12:
		return "pkcs12"
	case LayoutCertKey:
		return "cert+key"
	case LayoutCA:
		return "ca"
	}
	return fmt.Sprintf("layout(%d)", int(l))
}

// Identity descreve o material TLS exigido por um banco
type Identity struct {
	Bank         domain.Bank
	Layout       Layout
	TenantScoped bool // certificado isolado por empresa (<CERTS_DIR>/<empresa>/...)
}

// Agent é a credencial TLS de uma chamada, ligada a um único par (banco, empresa)
type Agent struct {
	Bank        domain.Bank
	Tenant      string
	Layout      Layout
	TLS         *tls.Config
	Fingerprint string // SHA-256 do material lido do disco
}

// Transport cria um transporte HTTP exclusivo para o agente
func (a *Agent) Transport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     a.TLS.Clone(),
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	}
}

// HasClientCertificate indica se o agente apresenta certificado de cliente (mTLS)
func (a *Agent) HasClientCertificate() bool {
	return a.TLS != nil && len(a.TLS.Certificates) > 0
}

// Factory constrói agentes TLS a partir do Store.
// Sem cache, o material é relido do disco a cada chamada.
type Factory struct {
	store *Store
	cache *agentCache
}

// Option configura a Factory
type Option func(*Factory)

// WithCache habilita um cache limitado por tamanho e TTL, chaveado por (banco, empresa).
// ttl <= 0 mantém o comportamento padrão de agente novo por chamada.
func WithCache(size int, ttl time.Duration) Option {
	return func(f *Factory) {
		if ttl > 0 {
			f.cache = newAgentCache(size, ttl)
		}
	}
}

// NewFactory cria uma Factory de agentes
func NewFactory(store *Store, opts ...Option) *Factory {
	f := &Factory{store: store}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Build resolve o material do banco/empresa e constrói o agente.
// Bancos com certificado por empresa exigem tenant; os demais o ignoram.
func (f *Factory) Build(ctx context.Context, id Identity, tenant string) (*Agent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !id.TenantScoped {
		tenant = ""
	} else if tenant == "" {
		return nil, &Error{
			Kind:   ErrCertificateNotFound,
			Bank:   id.Bank,
			Reason: "header empresa é obrigatório para " + id.Bank.DisplayName(),
		}
	}

	key := cacheKey(id.Bank, tenant)
	if f.cache != nil {
		if agent, ok := f.cache.get(key); ok {
			return agent, nil
		}
	}

	agent, err := f.build(id, tenant)
	if err != nil {
		if f.cache != nil {
			f.cache.remove(key)
		}
		return nil, err
	}

	if f.cache != nil {
		f.cache.add(key, agent)
	}
	return agent, nil
}

// Invalidate descarta o agente em cache do par (banco, empresa)
func (f *Factory) Invalidate(b domain.Bank, tenant string) {
	if f.cache != nil {
		f.cache.remove(cacheKey(b, tenant))
	}
}

func (f *Factory) build(id Identity, tenant string) (*Agent, error) {
	m := &material{bank: id.Bank, tenant: tenant, hash: sha256.New()}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	switch id.Layout {
	case LayoutPKCS12:
		data, path, err := m.read(f.store, KindPFX)
		if err != nil {
			return nil, err
		}
		cert, err := decodePKCS12(data, f.store.Passphrase(id.Bank))
		if err != nil {
			return nil, m.invalid(path, err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}

	case LayoutCertKey:
		certPEM, certPath, err := m.read(f.store, KindCert)
		if err != nil {
			return nil, err
		}
		keyPEM, _, err := m.read(f.store, KindKey)
		if err != nil {
			return nil, err
		}
		cert, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return nil, m.invalid(certPath, err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}

	case LayoutCA:
	default:
		return nil, fmt.Errorf("layout de certificado desconhecido: %v", id.Layout)
	}

	// CA do servidor: obrigatória no layout CA, opcional nos demais (<BANCO>_CA)
	if id.Layout == LayoutCA || f.store.banks[id.Bank].CA != "" {
		caPEM, caPath, err := m.read(f.store, KindCA)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, m.invalid(caPath, errors.New("nenhum certificado PEM encontrado"))
		}
		tlsConfig.RootCAs = pool
	}

	return &Agent{
		Bank:        id.Bank,
		Tenant:      tenant,
		Layout:      id.Layout,
		TLS:         tlsConfig,
		Fingerprint: hex.EncodeToString(m.hash.Sum(nil)),
	}, nil
}

// material acumula o hash de tudo que foi lido para montar o agente
type material struct {
	bank   domain.Bank
	tenant string
	hash   hash.Hash
}

func (m *material) read(store *Store, kind Kind) ([]byte, string, error) {
	path, err := store.Resolve(Ref{Bank: m.bank, Tenant: m.tenant, Kind: kind})
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, &Error{
			Kind:   ErrCertificateMissing,
			Bank:   m.bank,
			Tenant: m.tenant,
			Path:   path,
			Err:    err,
		}
	}
	_, _ = m.hash.Write(data)
	return data, path, nil
}

func (m *material) invalid(path string, err error) error {
	return &Error{
		Kind:   ErrCertificateInvalid,
		Bank:   m.bank,
		Tenant: m.tenant,
		Path:   path,
		Err:    err,
	}
}

// decodePKCS12 carrega um bundle .p12/.pfx para mTLS.
// Bundles com a cadeia da CA não passam pelo Decode (que exige exatamente
// um certificado e uma chave) e são convertidos via ToPEM.
func decodePKCS12(data []byte, password string) (tls.Certificate, error) {
	privateKey, certificate, err := pkcs12.Decode(data, password)
	if err == nil {
		return tls.Certificate{
			Certificate: [][]byte{certificate.Raw},
			PrivateKey:  privateKey,
			Leaf:        certificate,
		}, nil
	}
	if errors.Is(err, pkcs12.ErrIncorrectPassword) {
		return tls.Certificate{}, fmt.Errorf("senha do certificado incorreta: %w", err)
	}

	blocks, pemErr := pkcs12.ToPEM(data, password)
	if pemErr != nil {
		return tls.Certificate{}, fmt.Errorf("erro ao decodificar certificado PKCS12: %w", err)
	}
	return chainFromPEM(blocks)
}

// chainFromPEM monta o tls.Certificate com a folha (par da chave) primeiro
func chainFromPEM(blocks []*pem.Block) (tls.Certificate, error) {
	var (
		key   crypto.Signer
		certs []*x509.Certificate
	)
	for _, b := range blocks {
		switch b.Type {
		case "CERTIFICATE":
			c, err := x509.ParseCertificate(b.Bytes)
			if err != nil {
				return tls.Certificate{}, fmt.Errorf("erro ao ler certificado do bundle: %w", err)
			}
			certs = append(certs, c)
		case "PRIVATE KEY":
			k, err := parsePrivateKey(b.Bytes)
			if err != nil {
				return tls.Certificate{}, err
			}
			key = k
		}
	}
	if key == nil {
		return tls.Certificate{}, errors.New("bundle PKCS12 sem chave privada")
	}

	var out tls.Certificate
	out.PrivateKey = key
	for _, c := range certs {
		pub, ok := c.PublicKey.(interface{ Equal(crypto.PublicKey) bool })
		if ok && pub.Equal(key.Public()) && out.Leaf == nil {
			out.Leaf = c
			out.Certificate = append([][]byte{c.Raw}, out.Certificate...)
			continue
		}
		out.Certificate = append(out.Certificate, c.Raw)
	}
	if out.Leaf == nil {
		return tls.Certificate{}, errors.New("bundle PKCS12 sem certificado correspondente à chave")
	}
	return out, nil
}

func parsePrivateKey(der []byte) (crypto.Signer, error) {
	if k, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return k, nil
	}
	if k, err := x509.ParseECPrivateKey(der); err == nil {
		return k, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("chave privada do bundle não reconhecida: %w", err)
	}
	signer, ok := k.(crypto.Signer)
	if !ok {
		return nil, errors.New("chave privada do bundle não suporta assinatura")
	}
	return signer, nil
}
