package evaluator

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func init() {
	RegisterMethodRegistry(STRING_VAL, stringMethodRegistry)
}

// stringMethodRegistry holds the builtin methods of cadena values.
var stringMethodRegistry = MethodRegistry{
	"longitud": {
		Fn:          stringLength,
		Arity:       "0",
		Description: "Número de caracteres",
	},
	"esta_vacia": {
		Fn: func(r Value, _ []Value, _ *Interpreter) (Value, error) {
			return nativeBoolToBoolean(r.(*String).Value == ""), nil
		},
		Arity:       "0",
		Description: "Verdadero si la cadena no tiene caracteres",
	},
	"buscar": {
		Fn:          stringFind,
		Arity:       "1",
		Description: "Posición de la primera aparición, o -1",
	},
	"contiene": {
		Fn:          stringPredicate("contiene", strings.Contains),
		Arity:       "1",
		Description: "Verdadero si contiene la subcadena",
	},
	"empieza_con": {
		Fn:          stringPredicate("empieza_con", strings.HasPrefix),
		Arity:       "1",
		Description: "Verdadero si empieza con el prefijo",
	},
	"termina_con": {
		Fn:          stringPredicate("termina_con", strings.HasSuffix),
		Arity:       "1",
		Description: "Verdadero si termina con el sufijo",
	},
	"contar_ocurrencias": {
		Fn:          stringCount,
		Arity:       "1",
		Description: "Número de apariciones sin solapamiento",
	},
	"a_mayusculas": {
		Fn: func(r Value, _ []Value, in *Interpreter) (Value, error) {
			return &String{Value: cases.Upper(in.language()).String(r.(*String).Value)}, nil
		},
		Arity:       "0",
		Description: "Convierte a mayúsculas",
	},
	"a_minusculas": {
		Fn: func(r Value, _ []Value, in *Interpreter) (Value, error) {
			return &String{Value: cases.Lower(in.language()).String(r.(*String).Value)}, nil
		},
		Arity:       "0",
		Description: "Convierte a minúsculas",
	},
	"capitalizar": {
		Fn:          stringCapitalize,
		Arity:       "0",
		Description: "Primera letra en mayúscula",
	},
	"recortar": {
		Fn: func(r Value, _ []Value, _ *Interpreter) (Value, error) {
			return &String{Value: strings.TrimSpace(r.(*String).Value)}, nil
		},
		Arity:       "0",
		Description: "Quita espacios al inicio y al final",
	},
	"repetir": {
		Fn:          stringRepeat,
		Arity:       "1",
		Description: "Repite la cadena n veces",
	},
	"invertir": {
		Fn:          stringReverse,
		Arity:       "0",
		Description: "Invierte el orden de los caracteres",
	},
	"reemplazar": {
		Fn:          stringReplace,
		Arity:       "2",
		Description: "Reemplaza todas las apariciones",
	},
	"subcadena": {
		Fn:          stringSubstring,
		Arity:       "1-2",
		Description: "Subcadena desde inicio con longitud opcional",
	},
	"dividir": {
		Fn:          stringSplit,
		Arity:       "1",
		Description: "Divide por un separador",
	},
	"partir_lineas": {
		Fn:          stringSplitLines,
		Arity:       "0",
		Description: "Divide en líneas",
	},
	"comparar": {
		Fn:          stringCompare,
		Arity:       "1",
		Description: "Comparación de tres vías: -1, 0 o 1",
	},
	"igual_sin_caso": {
		Fn:          stringEqualFold,
		Arity:       "1",
		Description: "Igualdad sin distinguir mayúsculas",
	},
	"codificar_base64": {
		Fn: func(r Value, _ []Value, _ *Interpreter) (Value, error) {
			return &String{Value: encodeBase64(r.(*String).Value)}, nil
		},
		Arity:       "0",
		Description: "Codifica en base64 estándar",
	},
	"decodificar_base64": {
		Fn: func(r Value, _ []Value, _ *Interpreter) (Value, error) {
			s, err := decodeBase64(r.(*String).Value)
			if err != nil {
				return nil, err
			}
			return &String{Value: s}, nil
		},
		Arity:       "0",
		Description: "Decodifica base64 estándar",
	},
	"codificar_uri": {
		Fn: func(r Value, _ []Value, _ *Interpreter) (Value, error) {
			return &String{Value: encodeURI(r.(*String).Value)}, nil
		},
		Arity:       "0",
		Description: "Codificación porcentual",
	},
	"decodificar_uri": {
		Fn: func(r Value, _ []Value, _ *Interpreter) (Value, error) {
			s, err := decodeURI(r.(*String).Value)
			if err != nil {
				return nil, err
			}
			return &String{Value: s}, nil
		},
		Arity:       "0",
		Description: "Decodifica %XX y '+'",
	},
	"lista": {
		Fn:          stringToList,
		Arity:       "0",
		Description: "Convierte a lista",
	},
	"jsn": {
		Fn:          stringToMap,
		Arity:       "0",
		Description: "Interpreta la cadena como jsn",
	},
	"entero": {Fn: convertToInteger, Arity: "0", Description: "Convierte a entero"},
	"numero": {Fn: convertToNumber, Arity: "0", Description: "Convierte a número"},
	"bool":   {Fn: convertToBool, Arity: "0", Description: "Convierte a bool"},
	"cadena": {Fn: convertToString, Arity: "0", Description: "Devuelve la cadena"},
}

func stringLength(r Value, _ []Value, _ *Interpreter) (Value, error) {
	return &Integer{Value: int64(utf8.RuneCountInString(r.(*String).Value))}, nil
}

func stringPredicate(name string, pred func(s, sub string) bool) MethodFunc {
	return func(r Value, args []Value, _ *Interpreter) (Value, error) {
		sub, err := argString(name, args, 0)
		if err != nil {
			return nil, err
		}
		return nativeBoolToBoolean(pred(r.(*String).Value, sub)), nil
	}
}

func stringFind(r Value, args []Value, _ *Interpreter) (Value, error) {
	sub, err := argString("buscar", args, 0)
	if err != nil {
		return nil, err
	}
	s := r.(*String).Value
	idx := strings.Index(s, sub)
	if idx < 0 {
		return &Integer{Value: -1}, nil
	}
	return &Integer{Value: int64(utf8.RuneCountInString(s[:idx]))}, nil
}

func stringCount(r Value, args []Value, _ *Interpreter) (Value, error) {
	sub, err := argString("contar_ocurrencias", args, 0)
	if err != nil {
		return nil, err
	}
	if sub == "" {
		return nil, newMethodArgError("contar_ocurrencias", "el patrón no puede estar vacío")
	}
	return &Integer{Value: int64(strings.Count(r.(*String).Value, sub))}, nil
}

func stringCapitalize(r Value, _ []Value, in *Interpreter) (Value, error) {
	s := r.(*String).Value
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return &String{Value: s}, nil
	}
	upper := cases.Upper(in.language()).String(string(first))
	return &String{Value: upper + s[size:]}, nil
}

// maxStringBytes caps strings built by repetir.
const maxStringBytes = 256 << 20

func stringRepeat(r Value, args []Value, _ *Interpreter) (Value, error) {
	n, err := argInt("repetir", args, 0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, newMethodArgError("repetir", "la cantidad no puede ser negativa")
	}
	s := r.(*String).Value
	if n > 0 && int64(len(s)) > maxStringBytes/n {
		return nil, newMethodArgError("repetir", "el resultado es demasiado largo")
	}
	return &String{Value: strings.Repeat(s, int(n))}, nil
}

func stringReverse(r Value, _ []Value, _ *Interpreter) (Value, error) {
	runes := []rune(r.(*String).Value)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return &String{Value: string(runes)}, nil
}

func stringReplace(r Value, args []Value, _ *Interpreter) (Value, error) {
	old, err := argString("reemplazar", args, 0)
	if err != nil {
		return nil, err
	}
	repl, err := argString("reemplazar", args, 1)
	if err != nil {
		return nil, err
	}
	return &String{Value: strings.ReplaceAll(r.(*String).Value, old, repl)}, nil
}

// stringSubstring clamps out-of-range bounds instead of failing.
func stringSubstring(r Value, args []Value, _ *Interpreter) (Value, error) {
	runes := []rune(r.(*String).Value)
	n := int64(len(runes))
	start, err := argInt("subcadena", args, 0)
	if err != nil {
		return nil, err
	}
	start = max(0, min(start, n))
	end := n
	if len(args) == 2 {
		length, err := argInt("subcadena", args, 1)
		if err != nil {
			return nil, err
		}
		length = max(0, length)
		end = min(n, start+length)
	}
	return &String{Value: string(runes[start:end])}, nil
}

func stringSplit(r Value, args []Value, _ *Interpreter) (Value, error) {
	sep, err := argString("dividir", args, 0)
	if err != nil {
		return nil, err
	}
	if sep == "" {
		return nil, newMethodArgError("dividir", "el separador no puede estar vacío")
	}
	return stringsToList(strings.Split(r.(*String).Value, sep)), nil
}

func stringSplitLines(r Value, _ []Value, _ *Interpreter) (Value, error) {
	s := strings.ReplaceAll(r.(*String).Value, "\r\n", "\n")
	if s == "" {
		return &List{Elements: []Value{}}, nil
	}
	return stringsToList(strings.Split(s, "\n")), nil
}

func stringCompare(r Value, args []Value, _ *Interpreter) (Value, error) {
	other, err := argString("comparar", args, 0)
	if err != nil {
		return nil, err
	}
	return &Integer{Value: int64(strings.Compare(r.(*String).Value, other))}, nil
}

func stringEqualFold(r Value, args []Value, _ *Interpreter) (Value, error) {
	other, err := argString("igual_sin_caso", args, 0)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold()
	return nativeBoolToBoolean(fold.String(r.(*String).Value) == fold.String(other)), nil
}

// stringToList parses a list literal when the text looks like one and
// otherwise splits the string into characters.
func stringToList(r Value, _ []Value, _ *Interpreter) (Value, error) {
	s := r.(*String).Value
	if t := strings.TrimSpace(s); strings.HasPrefix(t, "[") {
		v, err := ParseJSON([]byte(t), nil)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	els := make([]Value, 0, len(s))
	for _, ch := range s {
		els = append(els, &String{Value: string(ch)})
	}
	return &List{Elements: els}, nil
}

func stringToMap(r Value, _ []Value, _ *Interpreter) (Value, error) {
	s := strings.TrimSpace(r.(*String).Value)
	v, err := ParseJSON([]byte(s), nil)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(*Map); !ok {
		return nil, newConversionError("jsn", s)
	}
	return v, nil
}

func stringsToList(parts []string) *List {
	els := make([]Value, len(parts))
	for i, p := range parts {
		els[i] = &String{Value: p}
	}
	return &List{Elements: els}
}

// language returns the tag used for case mapping.
func (in *Interpreter) language() language.Tag {
	if in == nil || in.lang == language.Und {
		return language.Spanish
	}
	return in.lang
}
