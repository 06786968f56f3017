// Package bank implementa o adaptador PIX genérico usado por todas as instituições.
//
// Cada banco é descrito por um Profile: layout do certificado, variação do fluxo
// OAuth2 client-credentials, caminhos de cobrança e onde o banco coloca a
// mensagem de erro. O mesmo Adapter atende Itaú, Bradesco, Sicoob, Sicredi,
// Banco do Brasil, Ailos e Efí.
//
// # Autenticação
//
// Todas as chamadas usam TLS com a identidade do banco (mTLS com .pfx/.p12 ou
// certificado e chave PEM; no Itaú apenas a CA fixada). O agente TLS é montado
// pelo pacote certs antes de cada chamada; sem certificado nenhuma requisição sai.
//
// # Início Rápido
//
//	agents := certs.NewFactory(certs.NewStore(cfg))
//	profile, _ := bank.ProfileFor(domain.BankSicoob)
//	adapter, err := bank.NewAdapter(profile, cfg.Bank(domain.BankSicoob), agents)
//
//	token, err := adapter.Authenticate(ctx, domain.Credentials{ClientID: "id"}, domain.CallOptions{})
//	cob, err := adapter.CreateCharge(ctx, "Bearer "+token.AccessToken, &domain.ChargeRequest{
//	    Valor: domain.Valor{Original: "10.00"},
//	    Chave: "chave-pix",
//	}, domain.CallOptions{})
//
// # Tratamento de Erros
//
// Falhas do banco chegam normalizadas em *Error:
//
//	if bank.IsValidation(err) {
//	    // 401: credenciais ou token rejeitados
//	}
//	if bank.IsRequisitionFailed(err) {
//	    // demais status; 503 quando o banco não respondeu
//	}
//
// Erros de certificado (certs.IsNotFound, certs.IsMissing) não são convertidos.
package bank
