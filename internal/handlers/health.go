// Package handlers contém os handlers HTTP da aplicação
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/ports"
)

// HealthHandler responde ao health check com os bancos habilitados
type HealthHandler struct {
	registry *ports.Registry
}

// NewHealthHandler cria o handler de health check
func NewHealthHandler(registry *ports.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// HealthCheck endpoint para verificar se o servidor está funcionando
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	banks := make([]string, 0)
	for _, b := range h.registry.Banks() {
		banks = append(banks, string(b))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"service": "api-pix",
		"banks":   banks,
	})
}
