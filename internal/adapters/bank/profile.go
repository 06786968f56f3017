package bank

import (
	"fmt"

	"github.com/jmespath/go-jmespath"

	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/certs"
	"github.com/Sisplan-Sistemas/Api-Pix-Bradesco/internal/domain"
)

// TokenAuth define onde vão as credenciais no pedido de token
type TokenAuth int

const (
	// TokenAuthBasic envia client_id:client_secret no header Authorization
	TokenAuthBasic TokenAuth = iota
	// TokenAuthForm envia as credenciais apenas no corpo do formulário
	TokenAuthForm
)

// ViolationStyle define como cada item de "violacoes" é exibido
type ViolationStyle int

const (
	// ViolationsIgnored descarta a lista de violações
	ViolationsIgnored ViolationStyle = iota
	// ViolationsReason usa apenas a razão de cada violação
	ViolationsReason
	// ViolationsDetailed usa "field: X, value: Y, reason: Z"
	ViolationsDetailed
)

// TokenFlow descreve a variação OAuth2 client-credentials do banco
type TokenFlow struct {
	Auth TokenAuth

	// OnEndpoint monta a URL a partir de <BANCO>_ENDPOINT em vez de <BANCO>_AUTH_ENDPOINT
	OnEndpoint bool
	Path       string // sufixo acrescentado à URL base

	GrantType         bool   // envia grant_type=client_credentials
	ClientIDField     string // nome do campo com o client id no corpo ("" = não envia)
	ClientSecretField string
	Scope             string
}

// ErrorShape descreve onde cada banco coloca a mensagem de erro.
// As expressões são JMESPath avaliadas sobre o corpo JSON da resposta;
// vale a primeira que resultar em texto não vazio.
type ErrorShape struct {
	Credential []string // mensagens de 401
	Detail     []string // mensagens dos demais status
	Violations string   // lista de violações anexada à mensagem
	Style      ViolationStyle
}

// Profile é o registro que parametriza o adaptador genérico para um banco
type Profile struct {
	Bank         domain.Bank
	Layout       certs.Layout
	TenantScoped bool

	Token TokenFlow

	CreatePath string // POST de cobrança imediata
	LookupPath string // GET de cobrança(s)
	QRCodePath string // consulta de QR Code ("" = não suportado)

	// AppKeyParam é o nome do parâmetro de query com a chave de aplicação do integrador
	AppKeyParam string

	// SecondPrecision trunca inicio/fim em segundos na listagem
	SecondPrecision bool

	Errors ErrorShape
}

// Identity retorna o material TLS exigido pelo banco
func (p Profile) Identity() certs.Identity {
	return certs.Identity{Bank: p.Bank, Layout: p.Layout, TenantScoped: p.TenantScoped}
}

const (
	scopeSicoob = "cob.read cob.write cobv.write cobv.read lotecobv.write lotecobv.read pix.write pix.read " +
		"webhook.read webhook.write payloadlocation.write payloadlocation.read"
	scopeSicredi     = "cob.read+cob.write+pix.read"
	scopeBancoBrasil = "cob.write cob.read pix.write pix.read"
	scopeAilos       = "cob.write cob.read pix.write pix.read qrcode.write qrcode.read"
)

var profiles = map[domain.Bank]Profile{
	domain.BankItau: {
		Bank:   domain.BankItau,
		Layout: certs.LayoutCA,
		Token: TokenFlow{
			Auth:      TokenAuthBasic,
			Path:      "/oauth/token",
			GrantType: true,
		},
		CreatePath:      "/v2/cob/",
		LookupPath:      "/v2/cob",
		SecondPrecision: true,
		Errors: ErrorShape{
			Credential: []string{"error_description"},
			Detail:     []string{"detail"},
		},
	},
	domain.BankBradesco: {
		Bank:         domain.BankBradesco,
		Layout:       certs.LayoutPKCS12,
		TenantScoped: true,
		Token: TokenFlow{
			Auth:       TokenAuthBasic,
			OnEndpoint: true,
			Path:       "/auth/server/oauth/token",
			GrantType:  true,
		},
		CreatePath: "/v2/cob-emv",
		LookupPath: "/v2/cob",
		Errors: ErrorShape{
			Credential: []string{"error_description", "message"},
			Detail:     []string{"detail", "message"},
		},
	},
	domain.BankSicoob: {
		Bank:   domain.BankSicoob,
		Layout: certs.LayoutPKCS12,
		Token: TokenFlow{
			Auth:          TokenAuthForm,
			GrantType:     true,
			ClientIDField: "client_id",
			Scope:         scopeSicoob,
		},
		CreatePath: "/cob",
		LookupPath: "/cob",
		Errors: ErrorShape{
			Credential: []string{"error_description", "detail.detail || detail"},
			Detail:     []string{"detail.detail || detail"},
			Violations: "violacoes",
			Style:      ViolationsDetailed,
		},
	},
	domain.BankSicredi: {
		Bank:   domain.BankSicredi,
		Layout: certs.LayoutCertKey,
		Token: TokenFlow{
			Auth:      TokenAuthBasic,
			GrantType: true,
			Scope:     scopeSicredi,
		},
		CreatePath: "/cob",
		LookupPath: "/cob",
		Errors: ErrorShape{
			Credential: []string{"error_description", "detail.detail || detail"},
			Detail:     []string{"detail.detail || detail"},
			Violations: "violacoes",
			Style:      ViolationsDetailed,
		},
	},
	domain.BankBancoBrasil: {
		Bank:         domain.BankBancoBrasil,
		Layout:       certs.LayoutPKCS12,
		TenantScoped: true,
		Token: TokenFlow{
			Auth:              TokenAuthBasic,
			GrantType:         true,
			ClientIDField:     "Client_Id",
			ClientSecretField: "Client_Secret",
			Scope:             scopeBancoBrasil,
		},
		CreatePath:  "/cob",
		LookupPath:  "/cob",
		QRCodePath:  "/qrcode/consulta",
		AppKeyParam: "gw-app-key",
		Errors: ErrorShape{
			Credential: []string{"error_description", "detail"},
			Detail:     []string{"detail"},
			Violations: "violacoes",
			Style:      ViolationsReason,
		},
	},
	domain.BankAilos: {
		Bank:   domain.BankAilos,
		Layout: certs.LayoutPKCS12,
		Token: TokenFlow{
			Auth:              TokenAuthForm,
			ClientIDField:     "Client_Id",
			ClientSecretField: "Client_Secret",
			Scope:             scopeAilos,
		},
		CreatePath: "/cob",
		LookupPath: "/cob",
		Errors: ErrorShape{
			Credential: []string{"error_description", "detail"},
			Detail:     []string{"detail"},
			Violations: "violacoes",
			Style:      ViolationsReason,
		},
	},
	domain.BankEfi: {
		Bank:   domain.BankEfi,
		Layout: certs.LayoutPKCS12,
		Token: TokenFlow{
			Auth:       TokenAuthBasic,
			OnEndpoint: true,
			Path:       "/oauth/token",
			GrantType:  true,
		},
		CreatePath:      "/v2/cob",
		LookupPath:      "/v2/cob",
		SecondPrecision: true,
		Errors: ErrorShape{
			Credential: []string{"error_description", "mensagem"},
			Detail:     []string{"mensagem", "nome"},
		},
	},
}

// ProfileFor retorna o perfil de um banco suportado
func ProfileFor(b domain.Bank) (Profile, bool) {
	p, ok := profiles[b]
	return p, ok
}

// compiledShape guarda as expressões JMESPath já compiladas
type compiledShape struct {
	credential []*jmespath.JMESPath
	detail     []*jmespath.JMESPath
	violations *jmespath.JMESPath
	style      ViolationStyle
}

func (s ErrorShape) compile() (*compiledShape, error) {
	out := &compiledShape{style: s.Style}

	var err error
	if out.credential, err = compileAll(s.Credential); err != nil {
		return nil, err
	}
	if out.detail, err = compileAll(s.Detail); err != nil {
		return nil, err
	}
	if s.Violations != "" && s.Style != ViolationsIgnored {
		if out.violations, err = jmespath.Compile(s.Violations); err != nil {
			return nil, fmt.Errorf("expressão de violações inválida %q: %w", s.Violations, err)
		}
	}
	return out, nil
}

func compileAll(exprs []string) ([]*jmespath.JMESPath, error) {
	out := make([]*jmespath.JMESPath, 0, len(exprs))
	for _, expr := range exprs {
		c, err := jmespath.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("expressão de erro inválida %q: %w", expr, err)
		}
		out = append(out, c)
	}
	return out, nil
}
