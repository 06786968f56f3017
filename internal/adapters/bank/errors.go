package bank

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

// Kind é a classe de um erro normalizado
type Kind int

const (
	// KindValidation indica credencial rejeitada pelo banco (401)
	KindValidation Kind = iota + 1
	// KindRequisitionFailed indica qualquer outra falha da chamada ao banco
	KindRequisitionFailed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindRequisitionFailed:
		return "RequisitionFailedError"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Erros sentinela para comparação com errors.Is
var (
	// ErrValidation casa com qualquer *Error de KindValidation
	ErrValidation = errors.New("impossible to validate credentials")

	// ErrRequisitionFailed casa com qualquer *Error de KindRequisitionFailed
	ErrRequisitionFailed = errors.New("impossible to continue")
)

// Error é a falha normalizada devolvida por todas as operações do adaptador
type Error struct {
	Kind        Kind
	Message     string
	Status      int // status HTTP a devolver ao chamador
	Bank        domain.Bank
	Op          string
	Unreachable bool  // o banco não respondeu (rede/TLS)
	Err         error // causa de transporte, quando houver
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		return "Impossible to validate credentials: " + e.Message
	default:
		return "Impossible to continue: " + e.Message
	}
}

// Is permite errors.Is(err, ErrValidation) e errors.Is(err, ErrRequisitionFailed)
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrRequisitionFailed:
		return e.Kind == KindRequisitionFailed
	}
	return false
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus retorna o status a devolver ao chamador (500 quando desconhecido)
func (e *Error) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// NewValidationError cria um erro de credencial
func NewValidationError(message string, status int) *Error {
	return &Error{Kind: KindValidation, Message: message, Status: status}
}

// NewRequisitionFailedError cria um erro de requisição
func NewRequisitionFailedError(message string, status int) *Error {
	return &Error{Kind: KindRequisitionFailed, Message: message, Status: status}
}

// IsValidation retorna true se o banco rejeitou as credenciais
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsRequisitionFailed retorna true para qualquer outra falha do banco
func IsRequisitionFailed(err error) bool {
	return errors.Is(err, ErrRequisitionFailed)
}

// IsUnreachable retorna true se o banco não chegou a responder
func IsUnreachable(err error) bool {
	var bankErr *Error
	if errors.As(err, &bankErr) {
		return bankErr.Unreachable
	}
	return false
}

// unreachable classifica falhas sem resposta HTTP
func unreachable(b domain.Bank, op string, err error) *Error {
	return &Error{
		Kind:        KindRequisitionFailed,
		Message:     err.Error(),
		Status:      http.StatusServiceUnavailable,
		Bank:        b,
		Op:          op,
		Unreachable: true,
		Err:         err,
	}
}
