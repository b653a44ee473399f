package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/justestif/go-spotify-mcp/internal/outcome"
)

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
)

// Param declares one tool argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Enum        []string
	Min, Max    int
	Default     any
}

// Args holds validated arguments. Values are string, int or bool
// according to the declared type.
type Args map[string]any

// String returns the string argument k.
func (a Args) String(k string) string {
	s, _ := a[k].(string)
	return s
}

// Int returns the integer argument k.
func (a Args) Int(k string) int {
	n, _ := a[k].(int)
	return n
}

// Bool returns the boolean argument k.
func (a Args) Bool(k string) bool {
	b, _ := a[k].(bool)
	return b
}

// bind validates raw against params, applying defaults. Unknown keys are
// ignored.
func bind(params []Param, raw map[string]any) (Args, *outcome.Outcome) {
	args := make(Args, len(params))
	for _, p := range params {
		v, present := raw[p.Name]
		if !present || v == nil {
			if p.Required {
				return nil, invalid("Parámetro requerido faltante: %s", p.Name)
			}
			if p.Default != nil {
				args[p.Name] = p.Default
			}
			continue
		}

		val, fail := p.coerce(v)
		if fail != nil {
			return nil, fail
		}
		args[p.Name] = val
	}
	return args, nil
}

func (p Param) coerce(v any) (any, *outcome.Outcome) {
	switch p.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, invalid("Parámetro '%s' debe ser texto", p.Name)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			if p.Required {
				return nil, invalid("Parámetro requerido faltante: %s", p.Name)
			}
			return p.Default, nil
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return nil, invalid("Valor inválido para '%s': '%s'. Opciones válidas: %s",
				p.Name, s, strings.Join(p.Enum, ", "))
		}
		return s, nil

	case TypeInteger:
		n, ok := toInt(v)
		if !ok {
			return nil, invalid("Parámetro '%s' debe ser un número entero", p.Name)
		}
		if n < p.Min || n > p.Max {
			return nil, invalid("Parámetro '%s' debe estar entre %d y %d", p.Name, p.Min, p.Max)
		}
		return n, nil

	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, invalid("Parámetro '%s' debe ser verdadero o falso", p.Name)
		}
		return b, nil
	}
	return nil, invalid("Tipo de parámetro no soportado: %s", p.Type)
}

// toInt accepts JSON numbers with no fractional part.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func invalid(format string, a ...any) *outcome.Outcome {
	o := outcome.Fail(outcome.KindValidation, fmt.Sprintf(format, a...))
	return &o
}
