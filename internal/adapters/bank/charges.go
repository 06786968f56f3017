package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

// Formatos de data aceitos pelos bancos na listagem de cobranças
const (
	layoutSeconds = "2006-01-02T15:04:05Z"
	layoutMillis  = "2006-01-02T15:04:05.000Z"
)

// CreateCharge cria uma cobrança imediata. Sem calendário, a expiração padrão
// (7200 s) é aplicada antes do envio. Com TxID, usa PUT <cob>/{txid}.
func (a *Adapter) CreateCharge(ctx context.Context, token string, req *domain.ChargeRequest, opts domain.CallOptions) (json.RawMessage, error) {
	if err := a.requireToken(OpCreateCharge, token); err != nil {
		return nil, err
	}
	if req == nil {
		req = &domain.ChargeRequest{}
	}
	req.ApplyDefaults()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar cobrança: %w", err)
	}

	method := http.MethodPost
	path := a.profile.CreatePath
	if req.TxID != "" {
		method = http.MethodPut
		path = strings.TrimRight(path, "/") + "/" + url.PathEscape(req.TxID)
	}

	body, err := a.do(ctx, call{
		op:     OpCreateCharge,
		method: method,
		url:    a.endpoint(path, nil, opts),
		header: jsonHeader(token),
		body:   payload,
		tenant: opts.Tenant,
	})
	if err != nil {
		return nil, err
	}

	a.log.Infow("Cobrança criada com sucesso",
		"bank", a.profile.Bank,
		"empresa", opts.Tenant,
		"txid", req.TxID,
	)
	return json.RawMessage(body), nil
}

// FindOne consulta uma cobrança pelo txid
func (a *Adapter) FindOne(ctx context.Context, token, txid string, opts domain.CallOptions) (json.RawMessage, error) {
	if err := a.requireToken(OpFindOne, token); err != nil {
		return nil, err
	}

	body, err := a.do(ctx, call{
		op:     OpFindOne,
		method: http.MethodGet,
		url:    a.endpoint(a.profile.LookupPath+"/"+url.PathEscape(txid), nil, opts),
		header: jsonHeader(token),
		tenant: opts.Tenant,
	})
	if err != nil {
		return nil, err
	}

	a.log.Infow("Cobrança encontrada",
		"bank", a.profile.Bank,
		"txid", txid,
	)
	return json.RawMessage(body), nil
}

// FindMany lista cobranças criadas entre inicio e fim
func (a *Adapter) FindMany(ctx context.Context, token string, q domain.ChargesQuery, opts domain.CallOptions) (json.RawMessage, error) {
	if err := a.requireToken(OpFindMany, token); err != nil {
		return nil, err
	}

	body, err := a.do(ctx, call{
		op:     OpFindMany,
		method: http.MethodGet,
		url:    a.endpoint(a.profile.LookupPath, a.chargesQuery(q), opts),
		header: jsonHeader(token),
		tenant: opts.Tenant,
	})
	if err != nil {
		return nil, err
	}

	a.log.Infow("Cobranças encontradas",
		"bank", a.profile.Bank,
		"inicio", q.Inicio,
	)
	return json.RawMessage(body), nil
}

// FindQRCode consulta os dados de um QR Code (Banco do Brasil)
func (a *Adapter) FindQRCode(ctx context.Context, token, id string, opts domain.CallOptions) (json.RawMessage, error) {
	if a.profile.QRCodePath == "" {
		e := NewRequisitionFailedError(
			fmt.Sprintf("consulta de QR Code não disponível para %s", a.profile.Bank.DisplayName()),
			http.StatusNotImplemented,
		)
		e.Bank = a.profile.Bank
		e.Op = OpFindQRCode
		return nil, e
	}
	if err := a.requireToken(OpFindQRCode, token); err != nil {
		return nil, err
	}

	body, err := a.do(ctx, call{
		op:     OpFindQRCode,
		method: http.MethodGet,
		url:    a.endpoint(a.profile.QRCodePath+"/"+url.PathEscape(id), nil, opts),
		header: jsonHeader(token),
		tenant: opts.Tenant,
	})
	if err != nil {
		return nil, err
	}

	a.log.Infow("QR Code encontrado",
		"bank", a.profile.Bank,
		"id", id,
	)
	return json.RawMessage(body), nil
}

// chargesQuery monta os parâmetros da listagem no padrão BCB
func (a *Adapter) chargesQuery(q domain.ChargesQuery) url.Values {
	values := url.Values{}
	values.Set("inicio", a.formatDate(q.Inicio))
	if q.Fim != nil {
		values.Set("fim", a.formatDate(*q.Fim))
	}
	if q.CPF != "" {
		values.Set("cpf", q.CPF)
	}
	if q.CNPJ != "" {
		values.Set("cnpj", q.CNPJ)
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.PaginaAtual != nil {
		values.Set("paginacao.paginaAtual", strconv.Itoa(*q.PaginaAtual))
	}
	if q.ItensPorPagina != nil {
		values.Set("paginacao.itensPorPagina", strconv.Itoa(*q.ItensPorPagina))
	}
	return values
}

// formatDate converte para UTC; bancos com precisão de segundos descartam a fração
func (a *Adapter) formatDate(t time.Time) string {
	if a.profile.SecondPrecision {
		return t.UTC().Truncate(time.Second).Format(layoutSeconds)
	}
	return t.UTC().Format(layoutMillis)
}

// jsonHeader repassa o token exatamente como recebido do chamador
func jsonHeader(token string) http.Header {
	header := http.Header{}
	header.Set("Authorization", token)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	return header
}
