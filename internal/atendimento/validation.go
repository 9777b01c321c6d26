package atendimento

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError agrupa as regras violadas por campo (nome do campo no JSON -> mensagem).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator aplica as regras de um atendimento. "Hoje" é avaliado no fuso configurado.
type Validator struct {
	v   *validator.Validate
	loc *time.Location
	now func() time.Time
}

// NewValidator returns a Validator that judges future dates in loc (UTC when nil).
func NewValidator(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	val := &Validator{
		v:   validator.New(validator.WithRequiredStructEnabled()),
		loc: loc,
		now: time.Now,
	}
	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = val.v.RegisterValidation("tipo", func(fl validator.FieldLevel) bool {
		return Tipo(fl.Field().String()).Valid()
	})
	_ = val.v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	_ = val.v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return !val.isFuture(fl.Field().String())
	})
	return val
}

// SetClock replaces the time source; tests use it to pin "today".
func (val *Validator) SetClock(now func() time.Time) { val.now = now }

// Today returns the current date in the validator's time zone.
func (val *Validator) Today() string {
	return val.now().In(val.loc).Format(DateLayout)
}

func (val *Validator) isFuture(date string) bool {
	d, err := time.ParseInLocation(DateLayout, date, val.loc)
	if err != nil {
		return false
	}
	today, _ := time.ParseInLocation(DateLayout, val.Today(), val.loc)
	return d.After(today)
}

// Validate devolve *ValidationError com todas as violações, ou nil.
func (val *Validator) Validate(in Input) error {
	err := val.v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate atendimento: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "min":
		return fmt.Sprintf("deve ter ao menos %s caracteres", fe.Param())
	case "max":
		return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
	case "isodate":
		return "data inválida (use AAAA-MM-DD)"
	case "notfuture":
		return "data não pode estar no futuro"
	case "tipo":
		return "tipo deve ser Psicológico, Pedagógico ou Assistência Social"
	}
	return "valor inválido"
}
