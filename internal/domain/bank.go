// Package domain contém as entidades de domínio da aplicação
package domain

import "strings"

// Bank identifica uma instituição financeira atendida pelo gateway
type Bank string

const (
	BankItau        Bank = "itau"
	BankBradesco    Bank = "bradesco"
	BankSicoob      Bank = "sicoob"
	BankSicredi     Bank = "sicredi"
	BankBancoBrasil Bank = "bancobrasil"
	BankAilos       Bank = "ailos"
	BankEfi         Bank = "efi"
)

// Banks retorna todos os bancos suportados, na ordem em que as rotas são montadas
func Banks() []Bank {
	return []Bank{
		BankItau,
		BankBradesco,
		BankSicoob,
		BankSicredi,
		BankBancoBrasil,
		BankAilos,
		BankEfi,
	}
}

// ParseBank converte o identificador usado nas rotas em um Bank
func ParseBank(s string) (Bank, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, b := range Banks() {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// EnvPrefix retorna o prefixo das variáveis de ambiente do banco (ex: BANCO_BRASIL_)
func (b Bank) EnvPrefix() string {
	if b == BankBancoBrasil {
		return "BANCO_BRASIL_"
	}
	return strings.ToUpper(string(b)) + "_"
}

// DisplayName retorna o nome da instituição para logs e mensagens
func (b Bank) DisplayName() string {
	switch b {
	case BankItau:
		return "Itaú"
	case BankBradesco:
		return "Bradesco"
	case BankSicoob:
		return "Sicoob"
	case BankSicredi:
		return "Sicredi"
	case BankBancoBrasil:
		return "Banco do Brasil"
	case BankAilos:
		return "Ailos"
	case BankEfi:
		return "Efí"
	}
	return string(b)
}
