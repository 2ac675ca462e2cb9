package evaluator

import (
	"regexp"
	"sort"
	"strings"
)

// reservedWords cannot be used as variable, parameter, field or function
// names.
var reservedWords = map[string]bool{
	"si":        true,
	"sino":      true,
	"mientras":  true,
	"para":      true,
	"hacer":     true,
	"retornar":  true,
	"romper":    true,
	"continuar": true,
	"objeto":    true,
	"nuevo":     true,
	"verdadero": true,
	"falso":     true,
	"mut":       true,
	"asincrono": true,
	"en":        true,
	"entero":    true,
	"número":    true,
	"cadena":    true,
	"bool":      true,
	"lista":     true,
	"jsn":       true,
	"imprimir":  true,
}

// ReservedWords returns the reserved words, sorted.
func ReservedWords() []string {
	words := make([]string, 0, len(reservedWords))
	for w := range reservedWords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// validateIdentifier checks a name about to be bound.
func validateIdentifier(name string) error {
	if reservedWords[name] {
		return newStructuredError("NOMBRE-0001", map[string]any{"Name": name})
	}
	if !isIdentifier(name) {
		return newStructuredError("NOMBRE-0002", map[string]any{"Name": name})
	}
	return nil
}

// isKnownType reports whether t names a builtin type, an object type
// declared in env, or a type with a registered provider.
func (in *Interpreter) isKnownType(t string, env *Environment) bool {
	if builtinTypes[baseTypeName(t)] {
		return true
	}
	if _, ok := env.Object(t); ok {
		return true
	}
	_, ok := objectProviders[t]
	return ok
}

// coerceToDeclared checks v against the declared type t. entero truncates
// a número and número widens an entero; every other type must match
// exactly. Element types of lista<T> are not checked.
func coerceToDeclared(t, name string, v Value) (Value, error) {
	if t == "" {
		return v, nil
	}
	switch baseTypeName(t) {
	case "entero":
		switch v := v.(type) {
		case *Integer:
			return v, nil
		case *Float:
			return &Integer{Value: int64(v.Value)}, nil
		}
	case "número":
		switch v := v.(type) {
		case *Float:
			return v, nil
		case *Integer:
			return &Float{Value: float64(v.Value)}, nil
		}
	case "cadena":
		if _, ok := v.(*String); ok {
			return v, nil
		}
	case "bool":
		if _, ok := v.(*Boolean); ok {
			return v, nil
		}
	case "lista":
		if _, ok := v.(*List); ok {
			return v, nil
		}
	case "jsn":
		if _, ok := v.(*Map); ok {
			return v, nil
		}
	case "vacio":
		if _, ok := v.(*Void); ok {
			return v, nil
		}
	default:
		if inst, ok := v.(*Instance); ok && inst.TypeName == t {
			return v, nil
		}
	}
	return nil, newAssignTypeError(t, name, v)
}

var (
	// assignable matches a variable followed by .campo and [índice] steps.
	assignable = `[\p{L}_][\p{L}\p{N}_]*(?:\s*\.\s*[\p{L}_][\p{L}\p{N}_]*|\s*\[[^\]]*\])*`

	compoundAssignment = regexp.MustCompile(`^(` + assignable + `)\s*([-+*/%])=\s*(.*)$`)
	incDec             = regexp.MustCompile(`^(` + assignable + `)\s*(\+\+|--)$`)
	declaration        = regexp.MustCompile(`^(mut\s+)?([\p{L}_][\p{L}\p{N}_]*(?:<[^>]*>)?)\s+(mut\s+)?([\p{L}\p{N}_]+)\s*(=.*)?$`)
)

// execSimple runs a statement that opens no block: compound assignment,
// increment, declaration, assignment, or an expression evaluated for its
// effects.
func (in *Interpreter) execSimple(text string, env *Environment) error {
	if m := compoundAssignment.FindStringSubmatch(text); m != nil {
		return in.execCompound(m[1], m[2], m[3], env)
	}
	if m := incDec.FindStringSubmatch(text); m != nil {
		return in.execIncDec(m[1], m[2], env)
	}
	if m := declaration.FindStringSubmatch(text); m != nil {
		return in.execDeclaration(m[2], m[4], m[5], m[1] != "" || m[3] != "", env)
	}
	if target, expr, ok := splitAssignment(text); ok {
		v, err := in.eval(expr, env)
		if err != nil {
			return err
		}
		return in.assign(target, v, env)
	}
	_, err := in.eval(text, env)
	return err
}

// execDeclaration binds a declared variable. value is either empty or the
// "= expr" suffix.
func (in *Interpreter) execDeclaration(typeName, name, value string, mutable bool, env *Environment) error {
	if reservedWords[typeName] && !builtinTypes[typeName] {
		return newMalformedError("declaración", typeName+" "+name+" "+value)
	}
	if !in.isKnownType(typeName, env) {
		return newUnknownTypeError(typeName)
	}
	if err := validateIdentifier(name); err != nil {
		return err
	}
	var v Value
	if value == "" {
		v = VOID
		if def, ok := DefaultValue(typeName); ok {
			v = def
		}
		env.Declare(name, v, typeName, mutable)
		return nil
	}
	expr := strings.TrimSpace(strings.TrimPrefix(value, "="))
	if expr == "" {
		return newMalformedError("declaración", typeName+" "+name+" "+value)
	}
	v, err := in.eval(expr, env)
	if err != nil {
		return err
	}
	v, err = coerceToDeclared(typeName, name, v)
	if err != nil {
		return err
	}
	env.Declare(name, v, typeName, mutable)
	in.logger.Debugw("declare", "name", name, "type", typeName, "mutable", mutable)
	return nil
}

// splitAssignment splits "target = expr" at the first depth-zero '=' that
// is not part of a comparison.
func splitAssignment(text string) (target, expr string, ok bool) {
	idx := -1
	topLevel(text, func(i int) bool {
		if text[i] != '=' {
			return true
		}
		if i+1 < len(text) && text[i+1] == '=' {
			return false
		}
		if i > 0 && strings.IndexByte("=!<>", text[i-1]) >= 0 {
			return false
		}
		idx = i
		return false
	})
	if idx <= 0 {
		return "", "", false
	}
	target = strings.TrimSpace(text[:idx])
	expr = strings.TrimSpace(text[idx+1:])
	if expr == "" {
		return "", "", false
	}
	return target, expr, true
}

// pathStep is one evaluated step of an assignment target: a field name, or
// an index when key is set.
type pathStep struct {
	field string
	key   Value
}

// resolveTarget splits an assignment target into its root variable and
// evaluated steps.
func (in *Interpreter) resolveTarget(target string, env *Environment) (string, []pathStep, error) {
	base, ops, ok := splitPostfix(target)
	if !ok || !isIdentifier(base) {
		return "", nil, newInvalidExpressionError(target)
	}
	if err := validateIdentifier(base); err != nil {
		return "", nil, err
	}
	steps := make([]pathStep, 0, len(ops))
	for _, op := range ops {
		switch op.kind {
		case postfixField:
			steps = append(steps, pathStep{field: op.name})
		case postfixIndex:
			key, err := in.eval(op.arg, env)
			if err != nil {
				return "", nil, err
			}
			steps = append(steps, pathStep{key: key})
		default:
			return "", nil, newInvalidExpressionError(target)
		}
	}
	return base, steps, nil
}

// assign stores v at target, which must start at an existing variable.
func (in *Interpreter) assign(target string, v Value, env *Environment) error {
	root, steps, err := in.resolveTarget(target, env)
	if err != nil {
		return err
	}
	cur, ok := env.Get(root)
	if !ok {
		return newUndefinedVariableError(root, env)
	}
	if len(steps) == 0 {
		if t, ok := env.DeclaredType(root); ok {
			if v, err = coerceToDeclared(t, root, v); err != nil {
				return err
			}
		}
		env.Set(root, v)
		return nil
	}
	updated, err := setIn(cur, steps, v, env)
	if err != nil {
		return err
	}
	env.Set(root, updated)
	return nil
}

// setIn returns a copy of container with the value at steps replaced by v.
func setIn(container Value, steps []pathStep, v Value, env *Environment) (Value, error) {
	step := steps[0]
	rest := steps[1:]
	child := func(cur Value) (Value, error) {
		if len(rest) == 0 {
			return v, nil
		}
		return setIn(cur, rest, v, env)
	}

	if step.key == nil {
		switch c := container.(type) {
		case *Instance:
			cur, ok := c.Fields[step.field]
			if !ok {
				return nil, newUndefinedFieldError(step.field, c.TypeName)
			}
			nv, err := child(cur)
			if err != nil {
				return nil, err
			}
			if def, ok := env.Object(c.TypeName); ok {
				if t, ok := def.FieldTypes[step.field]; ok {
					if nv, err = coerceToDeclared(t, step.field, nv); err != nil {
						return nil, err
					}
				}
			}
			out := Copy(c).(*Instance)
			out.Fields[step.field] = Copy(nv)
			return out, nil
		case *Map:
			return setKey(c, step.field, rest, child)
		}
		return nil, newUndefinedFieldError(step.field, typeLabel(container))
	}

	switch c := container.(type) {
	case *List:
		idx, ok := step.key.(*Integer)
		if !ok {
			return nil, newArgTypeError("[]", 1, "entero", step.key)
		}
		if idx.Value < 0 || idx.Value >= int64(len(c.Elements)) {
			return nil, newIndexError(idx.Value, len(c.Elements))
		}
		nv, err := child(c.Elements[idx.Value])
		if err != nil {
			return nil, err
		}
		out := Copy(c).(*List)
		out.Elements[idx.Value] = Copy(nv)
		return out, nil
	case *Map:
		key, ok := step.key.(*String)
		if !ok {
			return nil, newArgTypeError("[]", 1, "cadena", step.key)
		}
		return setKey(c, key.Value, rest, child)
	}
	return nil, newNotIndexableError(container)
}

func setKey(m *Map, key string, rest []pathStep, child func(Value) (Value, error)) (Value, error) {
	cur, ok := m.Pairs[key]
	if !ok && len(rest) > 0 {
		return nil, newMissingKeyError(key)
	}
	nv, err := child(cur)
	if err != nil {
		return nil, err
	}
	out := Copy(m).(*Map)
	out.Pairs[key] = Copy(nv)
	return out, nil
}

// execCompound runs "target op= expr".
func (in *Interpreter) execCompound(target, op, expr string, env *Environment) error {
	if strings.TrimSpace(expr) == "" {
		return newMalformedError("asignación", target+" "+op+"=")
	}
	cur, err := in.eval(target, env)
	if err != nil {
		return err
	}
	rhs, err := in.eval(expr, env)
	if err != nil {
		return err
	}
	v, err := evalInfix(op, cur, rhs)
	if err != nil {
		return err
	}
	return in.assign(target, v, env)
}

// execIncDec runs "target++" and "target--".
func (in *Interpreter) execIncDec(target, op string, env *Environment) error {
	cur, err := in.eval(target, env)
	if err != nil {
		return err
	}
	v, err := evalInfix(op[:1], cur, &Integer{Value: 1})
	if err != nil {
		return err
	}
	return in.assign(target, v, env)
}

// parsePrint recognises imprimir and its variants. expr is empty for a
// print with nothing to print.
func parsePrint(text string) (variant PrintVariant, expr string, ok bool) {
	word := leadingWord(text)
	switch {
	case word == "imprimir":
		variant = PrintPlain
	case strings.HasPrefix(word, "imprimir_"):
		variant = PrintVariant(strings.TrimPrefix(word, "imprimir_"))
		if !isPrintVariant(variant) {
			return "", "", false
		}
	default:
		return "", "", false
	}
	rest := strings.TrimSpace(text[len(word):])
	if strings.HasPrefix(rest, "(") && matchingClose(rest, 0) == len(rest)-1 {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}
	return variant, rest, true
}

func isPrintVariant(v PrintVariant) bool {
	for _, known := range PrintVariants {
		if v == known && v != PrintPlain {
			return true
		}
	}
	return false
}

func (in *Interpreter) execPrint(variant PrintVariant, expr string, env *Environment) error {
	if expr == "" {
		return newStructuredError("SINTAXIS-0009", nil)
	}
	v, err := in.eval(expr, env)
	if err != nil {
		return err
	}
	in.console.Print(variant, v.Inspect())
	return nil
}

// execReturn evaluates "retornar [expr]". A bare retornar returns vacio.
func (in *Interpreter) execReturn(l sourceLine, env *Environment) *Signal {
	expr := strings.TrimSpace(strings.TrimPrefix(l.text, "retornar"))
	if expr == "" {
		return returnSignal(l.no, VOID)
	}
	v, err := in.eval(expr, env)
	if err != nil {
		return errorSignal(l.no, err)
	}
	return returnSignal(l.no, v)
}
