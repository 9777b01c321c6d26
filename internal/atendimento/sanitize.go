package atendimento

import (
	"strings"
	"time"
	"unicode"
)

// Sanitize normaliza os campos antes da validação: remove espaços das pontas,
// colapsa espaços internos em nome/profissional e descarta caracteres de controle
// das observações (mantendo quebras de linha e tabulação).
func Sanitize(in Input) Input {
	out := Input{
		Nome:         collapseSpaces(in.Nome),
		Profissional: collapseSpaces(in.Profissional),
		Data:         normalizeDate(in.Data),
		Tipo:         Tipo(strings.TrimSpace(string(in.Tipo))),
		Observacoes:  strings.TrimSpace(stripControl(in.Observacoes)),
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// normalizeDate aceita "YYYY-MM-DD" ou um timestamp RFC3339 (como o enviado por
// Date.toISOString) e devolve apenas a parte da data.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= len(DateLayout) {
		return s
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Format(DateLayout)
	}
	return s
}
