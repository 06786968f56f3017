package bank

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

// Authenticate troca as credenciais do integrador por um token OAuth2 (client credentials).
// O gateway não guarda o token: o chamador o reenvia em cada operação.
func (a *Adapter) Authenticate(ctx context.Context, creds domain.Credentials, opts domain.CallOptions) (*domain.AccessToken, error) {
	if creds.ClientID == "" {
		e := NewValidationError("clientID não informado", http.StatusUnauthorized)
		e.Bank = a.profile.Bank
		e.Op = OpAuthenticate
		return nil, e
	}

	flow := a.profile.Token
	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	header.Set("Accept", "application/json")
	if flow.Auth == TokenAuthBasic {
		credentials := base64.StdEncoding.EncodeToString(
			[]byte(fmt.Sprintf("%s:%s", creds.ClientID, creds.ClientSecret)),
		)
		header.Set("Authorization", "Basic "+credentials)
	}

	body, err := a.do(ctx, call{
		op:     OpAuthenticate,
		method: http.MethodPost,
		url:    a.withQuery(a.tokenURL(), nil, opts),
		header: header,
		body:   []byte(tokenForm(flow, creds).Encode()),
		tenant: opts.Tenant,
	})
	if err != nil {
		return nil, err
	}

	token, err := parseToken(body)
	if err != nil {
		e := NewRequisitionFailedError(err.Error(), http.StatusBadGateway)
		e.Bank = a.profile.Bank
		e.Op = OpAuthenticate
		return nil, e
	}

	a.log.Infow("Token criado com sucesso",
		"bank", a.profile.Bank,
		"empresa", opts.Tenant,
		"expires_in", token.ExpiresIn,
	)
	return token, nil
}

// tokenURL resolve o endpoint de token do banco
func (a *Adapter) tokenURL() string {
	base := a.cfg.AuthEndpoint
	if a.profile.Token.OnEndpoint || base == "" {
		base = a.cfg.Endpoint
	}
	return base + a.profile.Token.Path
}

// tokenForm monta o corpo x-www-form-urlencoded do pedido de token
func tokenForm(flow TokenFlow, creds domain.Credentials) url.Values {
	form := url.Values{}
	if flow.GrantType {
		form.Set("grant_type", "client_credentials")
	}
	if flow.ClientIDField != "" {
		form.Set(flow.ClientIDField, creds.ClientID)
	}
	if flow.ClientSecretField != "" {
		form.Set(flow.ClientSecretField, creds.ClientSecret)
	}
	if flow.Scope != "" {
		form.Set("scope", flow.Scope)
	}
	return form
}

// tokenResponse aceita expires_in como número ou texto
type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   json.RawMessage `json:"expires_in"`
	Scope       string          `json:"scope"`
}

func parseToken(body []byte) (*domain.AccessToken, error) {
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("resposta de autenticação inválida: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("resposta de autenticação sem access_token")
	}

	return &domain.AccessToken{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresIn:   parseExpiresIn(resp.ExpiresIn),
		Scope:       resp.Scope,
		Raw:         json.RawMessage(body),
	}, nil
}

func parseExpiresIn(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(n)
}
