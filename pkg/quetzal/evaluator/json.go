package evaluator

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	qerrors "github.com/sambeau/quetzal/pkg/quetzal/errors"
)

// JSONResolver resolves a bare identifier used as a jsn value. It returns
// false when the name is unknown.
type JSONResolver func(name string) (Value, bool)

// ParseJSON parses a jsn literal into a Value. Objects become *Map, arrays
// *List, numbers *Integer or *Float depending on a decimal point.
//
// Strings are taken verbatim up to the next double quote. Booleans may be
// spelled verdadero/falso or true/false; vacio and null give Void. Bare
// identifiers in value position go through resolve, which may be nil.
func ParseJSON(src []byte, resolve JSONResolver) (Value, error) {
	p := &jsonParser{src: src, resolve: resolve}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("contenido inesperado después del valor")
	}
	return v, nil
}

type jsonParser struct {
	src     []byte
	pos     int
	resolve JSONResolver
}

func (p *jsonParser) errorf(reason string) *qerrors.QuetzalError {
	return newStructuredError("JSON-0001", map[string]any{"Offset": p.pos, "Reason": reason})
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *jsonParser) parseValue() (Value, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf("se esperaba un valor")
	}
	switch c := p.peek(); {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return &String{Value: s}, nil
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return p.parseWord()
	}
}

func (p *jsonParser) parseObject() (Value, error) {
	p.pos++ // {
	pairs := make(map[string]Value)
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return &Map{Pairs: pairs}, nil
	}
	for {
		p.skipSpace()
		var key string
		switch c := p.peek(); {
		case c == '"':
			k, err := p.parseString()
			if err != nil {
				return nil, err
			}
			key = k
		case c == '}':
			return nil, p.errorf("coma final no permitida")
		default:
			key = p.scanIdentifier()
			if key == "" {
				return nil, p.errorf("se esperaba una clave")
			}
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("se esperaba ':'")
		}
		p.pos++
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		pairs[key] = v
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return &Map{Pairs: pairs}, nil
		case 0:
			return nil, p.errorf("objeto sin cerrar")
		default:
			return nil, p.errorf("se esperaba ',' o '}'")
		}
	}
}

func (p *jsonParser) parseArray() (Value, error) {
	p.pos++ // [
	elements := []Value{}
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return &List{Elements: elements}, nil
	}
	for {
		p.skipSpace()
		if p.peek() == ']' {
			return nil, p.errorf("coma final no permitida")
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		elements = append(elements, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return &List{Elements: elements}, nil
		case 0:
			return nil, p.errorf("arreglo sin cerrar")
		default:
			return nil, p.errorf("se esperaba ',' o ']'")
		}
	}
}

func (p *jsonParser) parseString() (string, error) {
	start := p.pos + 1
	for i := start; i < len(p.src); i++ {
		if p.src[i] == '"' {
			p.pos = i + 1
			return string(p.src[start:i]), nil
		}
	}
	return "", p.errorf("cadena sin cerrar")
}

func (p *jsonParser) parseNumber() (Value, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	digits := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == digits {
		return nil, p.errorf("número inválido")
	}
	isFloat := false
	if p.peek() == '.' {
		isFloat = true
		p.pos++
		frac := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		if p.pos == frac {
			return nil, p.errorf("número inválido")
		}
	}
	text := string(p.src[start:p.pos])
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("número inválido")
		}
		return &Float{Value: f}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, newStructuredError("CONV-0002", map[string]any{"Value": text})
	}
	return &Integer{Value: i}, nil
}

func (p *jsonParser) parseWord() (Value, error) {
	start := p.pos
	word := p.scanIdentifier()
	switch word {
	case "verdadero", "true":
		return TRUE, nil
	case "falso", "false":
		return FALSE, nil
	case "vacio", "null":
		return VOID, nil
	case "":
		return nil, p.errorf("carácter inesperado")
	}
	if p.resolve != nil {
		if v, ok := p.resolve(word); ok {
			return v, nil
		}
	}
	p.pos = start
	return nil, p.errorf("valor desconocido '" + word + "'")
}

// scanIdentifier consumes a run of letters, digits and underscores.
func (p *jsonParser) scanIdentifier() string {
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRune(p.src[p.pos:])
		if r == '_' || unicode.IsLetter(r) || (p.pos > start && unicode.IsDigit(r)) {
			p.pos += size
			continue
		}
		break
	}
	return string(p.src[start:p.pos])
}
