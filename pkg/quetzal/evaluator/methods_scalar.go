package evaluator

import (
	"strconv"
	"strings"
)

func init() {
	RegisterMethodRegistry(INTEGER_VAL, scalarMethodRegistry)
	RegisterMethodRegistry(FLOAT_VAL, scalarMethodRegistry)
	RegisterMethodRegistry(BOOLEAN_VAL, scalarMethodRegistry)
	RegisterMethodRegistry(VOID_VAL, MethodRegistry{
		"cadena": {Fn: convertToString, Arity: "0", Description: "Devuelve \"vacio\""},
	})
}

// scalarMethodRegistry holds the conversions shared by entero, número and bool.
var scalarMethodRegistry = MethodRegistry{
	"cadena": {Fn: convertToString, Arity: "0", Description: "Convierte a cadena"},
	"entero": {Fn: convertToInteger, Arity: "0", Description: "Convierte a entero, truncando"},
	"numero": {Fn: convertToNumber, Arity: "0", Description: "Convierte a número"},
	"bool":   {Fn: convertToBool, Arity: "0", Description: "Convierte a bool"},
}

func convertToString(r Value, _ []Value, _ *Interpreter) (Value, error) {
	if s, ok := r.(*String); ok {
		return s, nil
	}
	return &String{Value: r.Inspect()}, nil
}

func convertToInteger(r Value, _ []Value, _ *Interpreter) (Value, error) {
	switch v := r.(type) {
	case *Integer:
		return v, nil
	case *Float:
		return &Integer{Value: int64(v.Value)}, nil
	case *Boolean:
		if v.Value {
			return &Integer{Value: 1}, nil
		}
		return &Integer{Value: 0}, nil
	case *String:
		text := strings.TrimSpace(v.Value)
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, newConversionError("entero", v.Value)
		}
		return &Integer{Value: i}, nil
	}
	return nil, newConversionError("entero", r.Inspect())
}

// convertToNumber parses strings as a float when they carry a decimal point
// or exponent and as an integer otherwise, so "42" stays entero.
func convertToNumber(r Value, _ []Value, _ *Interpreter) (Value, error) {
	switch v := r.(type) {
	case *Integer:
		return &Float{Value: float64(v.Value)}, nil
	case *Float:
		return v, nil
	case *String:
		return parseNumber(v.Value)
	}
	return nil, newConversionError("número", r.Inspect())
}

func parseNumber(raw string) (Value, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, newConversionError("número", raw)
	}
	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, newConversionError("número", raw)
		}
		return &Float{Value: f}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, newConversionError("número", raw)
	}
	return &Integer{Value: i}, nil
}

func convertToBool(r Value, _ []Value, _ *Interpreter) (Value, error) {
	switch v := r.(type) {
	case *Boolean:
		return v, nil
	case *Integer:
		return nativeBoolToBoolean(v.Value != 0), nil
	case *Float:
		return nativeBoolToBoolean(v.Value != 0), nil
	case *String:
		switch strings.TrimSpace(v.Value) {
		case "verdadero":
			return TRUE, nil
		case "falso":
			return FALSE, nil
		}
		return nil, newConversionError("bool", v.Value)
	}
	return nil, newConversionError("bool", r.Inspect())
}
