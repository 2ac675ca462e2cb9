package evaluator

import (
	"strings"
)

func init() {
	RegisterMethodRegistry(LIST_VAL, listMethodRegistry)
	RegisterMethodRegistry(MAP_VAL, mapMethodRegistry)
}

// listMethodRegistry holds the builtin methods of lista values.
var listMethodRegistry = MethodRegistry{
	"agregar": {
		Mutate:      listPush,
		Arity:       "1",
		Description: "Agrega un elemento al final",
	},
	"longitud": {
		Fn: func(r Value, _ []Value, _ *Interpreter) (Value, error) {
			return &Integer{Value: int64(len(r.(*List).Elements))}, nil
		},
		Arity:       "0",
		Description: "Número de elementos",
	},
	"cadena": {
		Fn:          convertToString,
		Arity:       "0",
		Description: "Representación como cadena",
	},
	"unir": {
		Fn:          listJoin,
		Arity:       "1",
		Description: "Une los elementos con un separador",
	},
	"unir_lineas": {
		Fn: func(r Value, _ []Value, in *Interpreter) (Value, error) {
			return listJoin(r, []Value{&String{Value: "\n"}}, in)
		},
		Arity:       "0",
		Description: "Une los elementos con saltos de línea",
	},
	"contiene": {
		Fn:          listContains,
		Arity:       "1",
		Description: "Verdadero si algún elemento es igual al argumento",
	},
	"obtener": {
		Fn:          listGet,
		Arity:       "1",
		Description: "Elemento en la posición dada",
	},
}

func listPush(r Value, args []Value, _ *Interpreter) (Value, Value, error) {
	l := r.(*List)
	els := make([]Value, len(l.Elements), len(l.Elements)+1)
	copy(els, l.Elements)
	updated := &List{Elements: append(els, Copy(args[0]))}
	return updated, updated, nil
}

func listJoin(r Value, args []Value, _ *Interpreter) (Value, error) {
	sep, err := argString("unir", args, 0)
	if err != nil {
		return nil, err
	}
	l := r.(*List)
	parts := make([]string, len(l.Elements))
	for i, el := range l.Elements {
		parts[i] = el.Inspect()
	}
	return &String{Value: strings.Join(parts, sep)}, nil
}

func listContains(r Value, args []Value, _ *Interpreter) (Value, error) {
	for _, el := range r.(*List).Elements {
		if valuesEqual(el, args[0]) {
			return TRUE, nil
		}
	}
	return FALSE, nil
}

func listGet(r Value, args []Value, _ *Interpreter) (Value, error) {
	i, err := argInt("obtener", args, 0)
	if err != nil {
		return nil, err
	}
	return indexValue(r, &Integer{Value: i})
}

// mapMethodRegistry holds the builtin methods of jsn values.
var mapMethodRegistry = MethodRegistry{
	"cadena": {
		Fn:          convertToString,
		Arity:       "0",
		Description: "Representación como cadena",
	},
	"longitud": {
		Fn: func(r Value, _ []Value, _ *Interpreter) (Value, error) {
			return &Integer{Value: int64(len(r.(*Map).Pairs))}, nil
		},
		Arity:       "0",
		Description: "Número de claves",
	},
	"claves": {
		Fn: func(r Value, _ []Value, _ *Interpreter) (Value, error) {
			return stringsToList(r.(*Map).Keys()), nil
		},
		Arity:       "0",
		Description: "Lista ordenada de claves",
	},
	"contiene": {
		Fn: func(r Value, args []Value, _ *Interpreter) (Value, error) {
			key, err := argString("contiene", args, 0)
			if err != nil {
				return nil, err
			}
			_, ok := r.(*Map).Pairs[key]
			return nativeBoolToBoolean(ok), nil
		},
		Arity:       "1",
		Description: "Verdadero si la clave existe",
	},
	"obtener": {
		Fn: func(r Value, args []Value, _ *Interpreter) (Value, error) {
			return indexValue(r, args[0])
		},
		Arity:       "1",
		Description: "Valor de una clave",
	},
}
