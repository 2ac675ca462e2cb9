package evaluator

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueType names the runtime variant of a Value. The strings are the
// Quetzal type keywords so they can be shown to users unchanged.
type ValueType string

const (
	VOID_VAL     ValueType = "vacio"
	INTEGER_VAL  ValueType = "entero"
	FLOAT_VAL    ValueType = "número"
	STRING_VAL   ValueType = "cadena"
	BOOLEAN_VAL  ValueType = "bool"
	LIST_VAL     ValueType = "lista"
	MAP_VAL      ValueType = "jsn"
	INSTANCE_VAL ValueType = "instancia"
)

// Value represents all runtime values in Quetzal.
type Value interface {
	Type() ValueType
	Inspect() string
}

// Void is the absence of a value.
type Void struct{}

func (v *Void) Type() ValueType { return VOID_VAL }
func (v *Void) Inspect() string { return "vacio" }

// Integer is a 64-bit signed integer.
type Integer struct {
	Value int64
}

func (i *Integer) Type() ValueType { return INTEGER_VAL }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }

// Float is a 64-bit IEEE float.
type Float struct {
	Value float64
}

func (f *Float) Type() ValueType { return FLOAT_VAL }
func (f *Float) Inspect() string { return formatFloat(f.Value) }

// String is UTF-8 text.
type String struct {
	Value string
}

func (s *String) Type() ValueType { return STRING_VAL }
func (s *String) Inspect() string { return s.Value }

// Boolean is verdadero or falso.
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ValueType { return BOOLEAN_VAL }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "verdadero"
	}
	return "falso"
}

// List is an ordered sequence of values of any type.
type List struct {
	Elements []Value
}

func (l *List) Type() ValueType { return LIST_VAL }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, el := range l.Elements {
		parts[i] = el.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Map is the jsn type: string keys to values.
type Map struct {
	Pairs map[string]Value
}

func (m *Map) Type() ValueType { return MAP_VAL }
func (m *Map) Inspect() string {
	keys := m.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + m.Pairs[k].Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Keys returns the map keys in sorted order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.Pairs))
	for k := range m.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Instance is a value of a declared object type. Order holds the field
// names in declaration order for printing.
type Instance struct {
	TypeName string
	Fields   map[string]Value
	Order    []string
}

func (o *Instance) Type() ValueType { return INSTANCE_VAL }
func (o *Instance) Inspect() string {
	parts := make([]string, 0, len(o.Fields))
	for _, name := range o.fieldNames() {
		parts = append(parts, name+": "+o.Fields[name].Inspect())
	}
	return o.TypeName + " { " + strings.Join(parts, ", ") + " }"
}

// fieldNames returns declared fields first, then any extras sorted.
func (o *Instance) fieldNames() []string {
	seen := make(map[string]bool, len(o.Order))
	names := make([]string, 0, len(o.Fields))
	for _, name := range o.Order {
		if _, ok := o.Fields[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var extra []string
	for name := range o.Fields {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

var (
	VOID  = &Void{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBoolean(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// formatFloat prints the shortest decimal that round-trips, never using
// exponent notation, so 10.0 prints as "10" and 0.1 as "0.1".
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Copy returns a deep copy of v. Scalars are immutable and returned as is.
func Copy(v Value) Value {
	switch v := v.(type) {
	case *List:
		els := make([]Value, len(v.Elements))
		for i, el := range v.Elements {
			els[i] = Copy(el)
		}
		return &List{Elements: els}
	case *Map:
		return &Map{Pairs: copyFields(v.Pairs)}
	case *Instance:
		order := make([]string, len(v.Order))
		copy(order, v.Order)
		return &Instance{TypeName: v.TypeName, Fields: copyFields(v.Fields), Order: order}
	default:
		return v
	}
}

func copyFields(fields map[string]Value) map[string]Value {
	out := make(map[string]Value, len(fields))
	for k, v := range fields {
		out[k] = Copy(v)
	}
	return out
}

// typeLabel returns the user-facing type name of v; instances report their
// declared type.
func typeLabel(v Value) string {
	if inst, ok := v.(*Instance); ok {
		return inst.TypeName
	}
	return string(v.Type())
}

// builtinTypes are the primitive type keywords usable in declarations.
var builtinTypes = map[string]bool{
	"vacio":  true,
	"entero": true,
	"número": true,
	"cadena": true,
	"bool":   true,
	"lista":  true,
	"jsn":    true,
}

// baseTypeName strips a generic suffix, so "lista<entero>" becomes "lista".
func baseTypeName(t string) string {
	if i := strings.IndexByte(t, '<'); i > 0 && strings.HasSuffix(t, ">") {
		return t[:i]
	}
	return t
}

// DefaultValue returns the zero value for a builtin type name.
func DefaultValue(typeName string) (Value, bool) {
	switch baseTypeName(typeName) {
	case "vacio":
		return VOID, true
	case "entero":
		return &Integer{Value: 0}, true
	case "número":
		return &Float{Value: 0}, true
	case "cadena":
		return &String{Value: ""}, true
	case "bool":
		return FALSE, true
	case "lista":
		return &List{Elements: []Value{}}, true
	case "jsn":
		return &Map{Pairs: map[string]Value{}}, true
	}
	return nil, false
}

// valuesEqual compares two values structurally. Floats compare with
// floatEpsilon; an Integer and a Float compare numerically.
func valuesEqual(a, b Value) bool {
	switch a := a.(type) {
	case *Void:
		_, ok := b.(*Void)
		return ok
	case *Integer:
		switch b := b.(type) {
		case *Integer:
			return a.Value == b.Value
		case *Float:
			return floatEquals(float64(a.Value), b.Value)
		}
	case *Float:
		switch b := b.(type) {
		case *Integer:
			return floatEquals(a.Value, float64(b.Value))
		case *Float:
			return floatEquals(a.Value, b.Value)
		}
	case *String:
		if b, ok := b.(*String); ok {
			return a.Value == b.Value
		}
	case *Boolean:
		if b, ok := b.(*Boolean); ok {
			return a.Value == b.Value
		}
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !valuesEqual(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case *Map:
		b, ok := b.(*Map)
		if !ok {
			return false
		}
		return fieldsEqual(a.Pairs, b.Pairs)
	case *Instance:
		b, ok := b.(*Instance)
		if !ok || a.TypeName != b.TypeName {
			return false
		}
		return fieldsEqual(a.Fields, b.Fields)
	}
	return false
}

func fieldsEqual(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !valuesEqual(av, bv) {
			return false
		}
	}
	return true
}

const floatEpsilon = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatEpsilon
}
