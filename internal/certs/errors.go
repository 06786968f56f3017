package certs

import (
	"errors"
	"fmt"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

// Erros sentinela de certificado. São erros de implantação: nenhuma chamada
// ao banco prossegue sem a identidade TLS exigida.
var (
	// ErrCertificateNotFound indica que a configuração não declara qual arquivo usar
	ErrCertificateNotFound = errors.New("certificado não declarado")

	// ErrCertificateMissing indica que o arquivo declarado não existe no disco
	ErrCertificateMissing = errors.New("certificado não encontrado")

	// ErrCertificateInvalid indica que o arquivo existe mas não pôde ser decodificado
	ErrCertificateInvalid = errors.New("certificado inválido")
)

// Error representa uma falha ao resolver ou carregar material TLS
type Error struct {
	Kind   error // um dos erros sentinela acima
	Bank   domain.Bank
	Tenant string
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Reason != "" {
		msg += fmt.Sprintf(" (%s)", e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap permite errors.Is contra o sentinela e contra a causa
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// IsNotFound retorna true se o certificado não foi declarado na configuração
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCertificateNotFound)
}

// IsMissing retorna true se o arquivo declarado não existe
func IsMissing(err error) bool {
	return errors.Is(err, ErrCertificateMissing)
}

// IsInvalid retorna true se o material existe mas é inutilizável
func IsInvalid(err error) bool {
	return errors.Is(err, ErrCertificateInvalid)
}

// IsCertificateError retorna true para qualquer falha de material TLS
func IsCertificateError(err error) bool {
	var certErr *Error
	return errors.As(err, &certErr)
}
