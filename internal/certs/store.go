// Package certs resolve o material TLS de cada banco e empresa e constrói
// os agentes (tls.Config) usados nas chamadas aos bancos.
//
// O layout em disco é:
//
//	<CERTS_DIR>/<arquivo>            bancos sem certificado por empresa
//	<CERTS_DIR>/<empresa>/<arquivo>  bancos com certificado por empresa
//
// Os nomes dos arquivos vêm da configuração (<BANCO>_CERT, <BANCO>_KEY, <BANCO>_CA).
// A resolução falha fechada: sem arquivo declarado ou existente, não há agente.
package certs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/config"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

// Kind é o tipo de material referenciado
type Kind string

const (
	KindCert Kind = "cert"
	KindKey  Kind = "key"
	KindPFX  Kind = "pfx"
	KindCA   Kind = "ca"
)

// Ref identifica um arquivo de material TLS (banco, empresa, tipo).
// Tenant vazio significa o diretório raiz.
type Ref struct {
	Bank   domain.Bank
	Tenant string
	Kind   Kind
}

// Store resolve referências para caminhos sob o diretório de certificados
type Store struct {
	root  string
	banks map[domain.Bank]config.BankConfig
}

// NewStore cria um Store a partir da configuração carregada no início do processo
func NewStore(cfg *config.Config) *Store {
	banks := make(map[domain.Bank]config.BankConfig, len(cfg.Banks))
	for _, b := range domain.Banks() {
		banks[b] = cfg.Bank(b)
	}
	return &Store{
		root:  cfg.Certs.Root,
		banks: banks,
	}
}

// Passphrase retorna a senha do bundle PKCS12 do banco (pode ser vazia)
func (s *Store) Passphrase(b domain.Bank) string {
	return s.banks[b].CertPassphrase
}

// Declared retorna o nome de arquivo declarado para o tipo de material
func (s *Store) Declared(b domain.Bank, kind Kind) string {
	bc := s.banks[b]
	switch kind {
	case KindCert, KindPFX:
		return bc.Cert
	case KindKey:
		return bc.Key
	case KindCA:
		// Bancos que só exigem CA (Itaú) declaram o arquivo em <BANCO>_CERT
		if bc.CA != "" {
			return bc.CA
		}
		return bc.Cert
	}
	return ""
}

// Resolve retorna o caminho do arquivo referenciado.
// Falha com ErrCertificateNotFound quando a configuração não declara o arquivo
// e com ErrCertificateMissing quando o arquivo não existe.
func (s *Store) Resolve(ref Ref) (string, error) {
	name := s.Declared(ref.Bank, ref.Kind)
	if name == "" {
		return "", &Error{
			Kind:   ErrCertificateNotFound,
			Bank:   ref.Bank,
			Tenant: ref.Tenant,
			Reason: "defina " + envName(ref.Bank, ref.Kind),
		}
	}

	dir := s.root
	if ref.Tenant != "" {
		if !validTenant(ref.Tenant) {
			return "", &Error{
				Kind:   ErrCertificateNotFound,
				Bank:   ref.Bank,
				Tenant: ref.Tenant,
				Reason: "empresa inválida",
			}
		}
		dir = filepath.Join(dir, ref.Tenant)
	}

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", &Error{
			Kind:   ErrCertificateMissing,
			Bank:   ref.Bank,
			Tenant: ref.Tenant,
			Path:   path,
		}
	}

	return path, nil
}

// validTenant aceita apenas um elemento de caminho simples
func validTenant(tenant string) bool {
	if tenant == "." || tenant == ".." {
		return false
	}
	if strings.ContainsAny(tenant, `/\`+"\x00") {
		return false
	}
	return filepath.Base(tenant) == tenant
}

func envName(b domain.Bank, kind Kind) string {
	switch kind {
	case KindKey:
		return b.EnvPrefix() + "KEY"
	case KindCA:
		return b.EnvPrefix() + "CA ou " + b.EnvPrefix() + "CERT"
	}
	return b.EnvPrefix() + "CERT"
}
