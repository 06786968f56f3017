// Package ports define as interfaces (portas) para adaptadores externos
// Seguindo o padrão Hexagonal Architecture / Ports & Adapters
package ports

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

// ──────────────────────────────────────────────
// Provider interfaces
// ──────────────────────────────────────────────

// PixProvider define a interface comum a todos os bancos PIX.
// As respostas de sucesso são repassadas sem alteração; falhas chegam
// normalizadas em um dos dois tipos de erro do adaptador.
type PixProvider interface {
	// Bank identifica a instituição atendida
	Bank() domain.Bank

	// Authenticate obtém um token OAuth2 com as credenciais do integrador
	Authenticate(ctx context.Context, creds domain.Credentials, opts domain.CallOptions) (*domain.AccessToken, error)

	// CreateCharge cria uma cobrança PIX imediata
	CreateCharge(ctx context.Context, token string, req *domain.ChargeRequest, opts domain.CallOptions) (json.RawMessage, error)

	// FindOne consulta uma cobrança pelo txid
	FindOne(ctx context.Context, token, txid string, opts domain.CallOptions) (json.RawMessage, error)

	// FindMany lista cobranças em um intervalo de datas
	FindMany(ctx context.Context, token string, q domain.ChargesQuery, opts domain.CallOptions) (json.RawMessage, error)

	// FindQRCode consulta os dados de um QR Code, quando o banco oferece a consulta
	FindQRCode(ctx context.Context, token, id string, opts domain.CallOptions) (json.RawMessage, error)
}

// ──────────────────────────────────────────────
// Registry
// ──────────────────────────────────────────────

// ErrBankNotConfigured indica banco sem endpoint configurado
var ErrBankNotConfigured = errors.New("banco não configurado")

// Registry guarda os provedores habilitados por banco
type Registry struct {
	mu        sync.RWMutex
	providers map[domain.Bank]PixProvider
}

// NewRegistry cria um registro vazio
func NewRegistry() *Registry {
	return &Registry{providers: make(map[domain.Bank]PixProvider)}
}

// Register adiciona (ou substitui) o provedor do banco
func (r *Registry) Register(p PixProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Bank()] = p
}

// Get retorna o provedor do banco
func (r *Registry) Get(b domain.Bank) (PixProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[b]
	if !ok {
		return nil, ErrBankNotConfigured
	}
	return p, nil
}

// Banks lista os bancos registrados na ordem de domain.Banks
func (r *Registry) Banks() []domain.Bank {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Bank
	for _, b := range domain.Banks() {
		if _, ok := r.providers[b]; ok {
			out = append(out, b)
		}
	}
	return out
}
