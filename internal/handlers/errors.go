package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/adapters/bank"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/logger"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/ports"
)

// ErrorResponse é o envelope de erro devolvido por todas as rotas
type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

// RequestError indica entrada inválida na requisição recebida
type RequestError struct {
	Message string
	Fields  []string
}

func (e *RequestError) Error() string {
	return e.Message
}

func badRequest(message string, fields ...string) *RequestError {
	return &RequestError{Message: message, Fields: fields}
}

// statusFor mapeia erros da aplicação para status HTTP.
// Erros de certificado e demais falhas internas caem em 500.
func statusFor(err error) int {
	var bankErr *bank.Error
	var reqErr *RequestError
	switch {
	case errors.As(err, &bankErr):
		return bankErr.HTTPStatus()
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrBankNotConfigured):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError escreve o envelope {code, message, errors} e registra a falha
func writeError(w http.ResponseWriter, log logger.Sugared, err error) {
	resp := ErrorResponse{
		Code:    statusFor(err),
		Message: err.Error(),
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) && len(reqErr.Fields) > 0 {
		resp.Errors = reqErr.Fields
	}

	log.Errorw(resp.Message, "code", resp.Code)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	json.NewEncoder(w).Encode(resp)
}

// writeRaw repassa o corpo do banco sem alteração
func writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
