package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultExpiration é a expiração aplicada quando a cobrança chega sem calendário (2 horas)
const DefaultExpiration = 7200

// Calendario define o calendário de uma cobrança PIX
type Calendario struct {
	Expiracao int `json:"expiracao"` // Tempo em segundos até expirar
}

// Devedor representa os dados do devedor/pagador
type Devedor struct {
	CPF  string `json:"cpf,omitempty"`
	CNPJ string `json:"cnpj,omitempty"`
	Nome string `json:"nome"`
}

// Valor representa o valor da cobrança
type Valor struct {
	Original Amount `json:"original"`
}

// Amount é um valor decimal enviado como texto (ex: "100.00").
// Na entrada aceita também número JSON, preservando os dígitos recebidos.
type Amount string

// UnmarshalJSON aceita "77.77" ou 77.77
func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("valor.original inválido: %s", data)
	}
	*a = Amount(n.String())
	return nil
}

// InfoAdicional representa um par nome/valor exibido ao pagador
type InfoAdicional struct {
	Nome  string `json:"nome"`
	Valor string `json:"valor"`
}

// ChargeRequest é a cobrança imediata no formato comum a todos os bancos.
// O TxID não é serializado: quando presente ele vai na URL (PUT /cob/{txid}).
type ChargeRequest struct {
	TxID               string          `json:"-"`
	Calendario         *Calendario     `json:"calendario,omitempty"`
	Devedor            *Devedor        `json:"devedor,omitempty"`
	Valor              Valor           `json:"valor"`
	Chave              string          `json:"chave"` // Chave PIX do recebedor
	SolicitacaoPagador string          `json:"solicitacaoPagador,omitempty"`
	InfoAdicionais     []InfoAdicional `json:"infoAdicionais,omitempty"`
}

// ApplyDefaults preenche o calendário com a expiração padrão quando ausente
func (r *ChargeRequest) ApplyDefaults() {
	if r.Calendario == nil {
		r.Calendario = &Calendario{}
	}
	if r.Calendario.Expiracao <= 0 {
		r.Calendario.Expiracao = DefaultExpiration
	}
}

// ChargesQuery é o filtro de listagem de cobranças
type ChargesQuery struct {
	Inicio time.Time
	Fim    *time.Time

	// Filtros opcionais do padrão BCB
	CPF            string
	CNPJ           string
	Status         string
	PaginaAtual    *int
	ItensPorPagina *int
}

// CallOptions carrega os dados de roteamento de cada chamada
type CallOptions struct {
	Tenant string // header "empresa": seleciona o certificado da empresa
	AppKey string // developer_application_key (Banco do Brasil)
}

// Credentials são as credenciais OAuth2 client-credentials do integrador
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// AccessToken representa a resposta do endpoint de autenticação OAuth2.
// Raw preserva o corpo original devolvido pelo banco.
type AccessToken struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"`
	Scope       string          `json:"scope"`
	Raw         json.RawMessage `json:"-"`
}
