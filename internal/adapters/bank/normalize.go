package bank

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmespath/go-jmespath"
)

// Normalizer converte respostas de erro do banco em *Error
type Normalizer struct {
	profile Profile
	shape   *compiledShape
}

// NewNormalizer compila as expressões de erro do perfil
func NewNormalizer(p Profile) (*Normalizer, error) {
	shape, err := p.Errors.compile()
	if err != nil {
		return nil, fmt.Errorf("perfil %s: %w", p.Bank, err)
	}
	return &Normalizer{profile: p, shape: shape}, nil
}

// Normalize classifica uma resposta de erro:
// 401 vira ValidationError, qualquer outro status vira RequisitionFailedError
// com o status original. Sem mensagem no corpo, usa o texto do status HTTP.
func (n *Normalizer) Normalize(op string, status int, body []byte) *Error {
	var doc interface{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &doc); err != nil {
			doc = nil
		}
	}

	var e *Error
	if status == http.StatusUnauthorized {
		e = NewValidationError(firstString(n.shape.credential, doc), status)
	} else {
		e = NewRequisitionFailedError(n.detailMessage(doc), status)
	}

	if e.Message == "" && doc == nil {
		e.Message = plainBody(body)
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("status %d", status)
	}

	e.Bank = n.profile.Bank
	e.Op = op
	return e
}

func (n *Normalizer) detailMessage(doc interface{}) string {
	detail := firstString(n.shape.detail, doc)
	if n.shape.violations == nil {
		return detail
	}

	violations := renderViolations(n.shape.violations, n.shape.style, doc)
	switch {
	case detail == "":
		return violations
	case violations == "":
		return detail
	}
	return detail + " " + violations
}

// firstString devolve o primeiro resultado textual não vazio
func firstString(exprs []*jmespath.JMESPath, doc interface{}) string {
	if doc == nil {
		return ""
	}
	for _, expr := range exprs {
		v, err := expr.Search(doc)
		if err != nil {
			continue
		}
		if s := asText(v); s != "" {
			return s
		}
	}
	return ""
}

func renderViolations(expr *jmespath.JMESPath, style ViolationStyle, doc interface{}) string {
	if doc == nil {
		return ""
	}
	v, err := expr.Search(doc)
	if err != nil {
		return ""
	}
	items, ok := v.([]interface{})
	if !ok {
		return ""
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch style {
		case ViolationsReason:
			s = violationReason(item)
		case ViolationsDetailed:
			s = violationDetailed(item)
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "; ")
}

func violationReason(item interface{}) string {
	m, ok := item.(map[string]interface{})
	if !ok {
		return asText(item)
	}
	return asText(m["razao"])
}

func violationDetailed(item interface{}) string {
	m, ok := item.(map[string]interface{})
	if !ok {
		return asText(item)
	}

	var parts []string
	if s := asText(m["propriedade"]); s != "" {
		parts = append(parts, "field: "+s)
	}
	if s := asText(m["valor"]); s != "" {
		parts = append(parts, "value: "+s)
	}
	if s := asText(m["razao"]); s != "" {
		parts = append(parts, "reason: "+s)
	}
	return strings.Join(parts, ", ")
}

// asText aceita strings e escalares; objetos e listas não são mensagem
func asText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64, bool:
		return fmt.Sprint(t)
	}
	return ""
}

// plainBody aproveita corpos de erro em texto puro, descartando HTML
func plainBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" || strings.HasPrefix(s, "<") || len(s) > 512 {
		return ""
	}
	return s
}
