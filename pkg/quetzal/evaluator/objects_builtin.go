package evaluator

import (
	"fmt"
)

func init() {
	RegisterObjectProvider("Persona", personaProvider)
}

// personaProvider backs the Persona object type.
var personaProvider = ObjectProvider{
	Fields: []string{"nombre", "edad"},
	Methods: map[string]ObjectMethod{
		"saludar": {
			Fn: func(f map[string]Value, _ []Value, _ *Interpreter) (Value, error) {
				return &String{Value: "Hola, soy " + fieldText(f, "nombre")}, nil
			},
			Arity:       "0",
			Description: "Saludo con el nombre",
		},
		"presentar": {
			Fn: func(f map[string]Value, _ []Value, _ *Interpreter) (Value, error) {
				return &String{Value: fmt.Sprintf("%s tiene %s años", fieldText(f, "nombre"), fieldText(f, "edad"))}, nil
			},
			Arity:       "0",
			Description: "Nombre y edad en una frase",
		},
		"cumplir_anios": {
			Fn: func(f map[string]Value, _ []Value, _ *Interpreter) (Value, error) {
				edad, ok := f["edad"].(*Integer)
				if !ok {
					got := f["edad"]
					if got == nil {
						got = VOID
					}
					return nil, newArgTypeError("cumplir_anios", 0, "entero", got)
				}
				next := &Integer{Value: edad.Value + 1}
				f["edad"] = next
				return next, nil
			},
			Arity:       "0",
			Mutates:     true,
			Description: "Incrementa la edad en uno",
		},
	},
}

func fieldText(fields map[string]Value, name string) string {
	if v, ok := fields[name]; ok {
		return v.Inspect()
	}
	return VOID.Inspect()
}
