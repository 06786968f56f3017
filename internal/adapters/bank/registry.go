package bank

import (
	"fmt"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/certs"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/config"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/ports"
)

// NewRegistry cria um adaptador para cada banco habilitado na configuração
func NewRegistry(cfg *config.Config, agents *certs.Factory, opts ...Option) (*ports.Registry, error) {
	registry := ports.NewRegistry()
	for _, b := range cfg.EnabledBanks() {
		profile, ok := ProfileFor(b)
		if !ok {
			return nil, fmt.Errorf("banco sem perfil: %s", b)
		}
		adapter, err := NewAdapter(profile, cfg.Bank(b), agents, opts...)
		if err != nil {
			return nil, err
		}
		registry.Register(adapter)
	}
	return registry, nil
}
