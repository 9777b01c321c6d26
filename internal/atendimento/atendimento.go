// Package atendimento define o registro de atendimento psicossocial e suas regras de validação.
package atendimento

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Tipo é a categoria do atendimento prestado.
type Tipo string

const (
	TipoPsicologico       Tipo = "Psicológico"
	TipoPedagogico        Tipo = "Pedagógico"
	TipoAssistenciaSocial Tipo = "Assistência Social"
)

// Tipos lista os tipos aceitos, na ordem exibida no formulário.
var Tipos = []Tipo{TipoPsicologico, TipoPedagogico, TipoAssistenciaSocial}

// Valid reports whether t is one of the enumerated tipos.
func (t Tipo) Valid() bool {
	for _, v := range Tipos {
		if t == v {
			return true
		}
	}
	return false
}

// DateLayout é o formato de "data" no JSON e no banco (data::text).
const DateLayout = "2006-01-02"

var ErrInvalidID = errors.New("invalid id")

type Atendimento struct {
	ID           int64     `json:"id"`
	Nome         string    `json:"nome"`
	Profissional string    `json:"profissional"`
	Data         string    `json:"data"`
	Tipo         Tipo      `json:"tipo"`
	Observacoes  string    `json:"observacoes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input carries the writable fields of POST and PUT bodies.
type Input struct {
	Nome         string `json:"nome" validate:"required,min=2"`
	Profissional string `json:"profissional" validate:"required,min=2"`
	Data         string `json:"data" validate:"required,isodate,notfuture"`
	Tipo         Tipo   `json:"tipo" validate:"required,tipo"`
	Observacoes  string `json:"observacoes" validate:"max=500"`
}

// ParseID converte o segmento de rota em id; apenas inteiros positivos são aceitos.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
