package evaluator

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Operator classes from loosest to tightest binding. Binary operators
// split at their last depth-zero occurrence, so chains associate left.
var (
	orOperators             = []string{"||", "o"}
	andOperators            = []string{"&&", "y"}
	relationalOperators     = []string{"==", "!=", "<=", ">=", "<", ">"}
	additiveOperators       = []string{"+", "-"}
	multiplicativeOperators = []string{"*", "/", "%"}
)

// eval evaluates an expression in env.
func (in *Interpreter) eval(expr string, env *Environment) (Value, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, newInvalidExpressionError(expr)
	}
	if err := checkBalanced(expr); err != nil {
		return nil, err
	}
	return in.evalTernary(expr, env)
}

func (in *Interpreter) evalTernary(s string, env *Environment) (Value, error) {
	cond, yes, no, found, ok := splitTernary(s)
	if !found {
		return in.evalOr(s, env)
	}
	if !ok {
		return nil, newInvalidExpressionError(s)
	}
	c, err := in.evalCondition(cond, env)
	if err != nil {
		return nil, err
	}
	if c {
		return in.eval(yes, env)
	}
	return in.eval(no, env)
}

// splitTernary finds "c ? a : b" at depth zero. Nested ternaries in
// either branch pair their own '?' and ':'.
func splitTernary(s string) (cond, yes, no string, found, ok bool) {
	q, colon, nested := -1, -1, 0
	topLevel(s, func(i int) bool {
		switch s[i] {
		case '?':
			if q < 0 {
				q = i
			} else {
				nested++
			}
		case ':':
			if q < 0 {
				return true
			}
			if nested == 0 {
				colon = i
				return false
			}
			nested--
		}
		return true
	})
	if q < 0 {
		return "", "", "", false, false
	}
	if colon < 0 {
		return "", "", "", true, false
	}
	cond = strings.TrimSpace(s[:q])
	yes = strings.TrimSpace(s[q+1 : colon])
	no = strings.TrimSpace(s[colon+1:])
	return cond, yes, no, true, cond != "" && yes != "" && no != ""
}

// evalCondition evaluates expr and requires a bool.
func (in *Interpreter) evalCondition(expr string, env *Environment) (bool, error) {
	v, err := in.eval(expr, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(*Boolean)
	if !ok {
		return false, newConditionError(v)
	}
	return b.Value, nil
}

func (in *Interpreter) evalOr(s string, env *Environment) (Value, error) {
	left, op, right, ok := splitBinary(s, orOperators)
	if !ok {
		return in.evalAnd(s, env)
	}
	return in.evalLogical(op, left, right, env, in.evalOr, in.evalAnd)
}

func (in *Interpreter) evalAnd(s string, env *Environment) (Value, error) {
	left, op, right, ok := splitBinary(s, andOperators)
	if !ok {
		return in.evalNot(s, env)
	}
	return in.evalLogical(op, left, right, env, in.evalAnd, in.evalNot)
}

type evalFunc func(string, *Environment) (Value, error)

// evalLogical evaluates both operands, with no short circuit, and
// requires both to be bool.
func (in *Interpreter) evalLogical(op, left, right string, env *Environment, evalLeft, evalRight evalFunc) (Value, error) {
	l, err := evalLeft(left, env)
	if err != nil {
		return nil, err
	}
	r, err := evalRight(right, env)
	if err != nil {
		return nil, err
	}
	lb, ok := l.(*Boolean)
	if !ok {
		return nil, newBoolOperandError(op, l)
	}
	rb, ok := r.(*Boolean)
	if !ok {
		return nil, newBoolOperandError(op, r)
	}
	switch op {
	case "||", "o":
		return nativeBoolToBoolean(lb.Value || rb.Value), nil
	default:
		return nativeBoolToBoolean(lb.Value && rb.Value), nil
	}
}

func (in *Interpreter) evalNot(s string, env *Environment) (Value, error) {
	if !strings.HasPrefix(s, "!") || strings.HasPrefix(s, "!=") {
		return in.evalRelational(s, env)
	}
	operand := strings.TrimSpace(s[1:])
	if operand == "" {
		return nil, newInvalidExpressionError(s)
	}
	v, err := in.evalNot(operand, env)
	if err != nil {
		return nil, err
	}
	b, ok := v.(*Boolean)
	if !ok {
		return nil, newBoolOperandError("!", v)
	}
	return nativeBoolToBoolean(!b.Value), nil
}

func (in *Interpreter) evalRelational(s string, env *Environment) (Value, error) {
	left, op, right, ok := splitBinary(s, relationalOperators)
	if !ok {
		return in.evalAdditive(s, env)
	}
	l, err := in.evalRelational(left, env)
	if err != nil {
		return nil, err
	}
	r, err := in.evalAdditive(right, env)
	if err != nil {
		return nil, err
	}
	return evalComparison(op, l, r)
}

func (in *Interpreter) evalAdditive(s string, env *Environment) (Value, error) {
	left, op, right, ok := splitBinary(s, additiveOperators)
	if !ok {
		return in.evalMultiplicative(s, env)
	}
	l, err := in.evalAdditive(left, env)
	if err != nil {
		return nil, err
	}
	r, err := in.evalMultiplicative(right, env)
	if err != nil {
		return nil, err
	}
	return evalInfix(op, l, r)
}

func (in *Interpreter) evalMultiplicative(s string, env *Environment) (Value, error) {
	left, op, right, ok := splitBinary(s, multiplicativeOperators)
	if !ok {
		return in.evalUnary(s, env)
	}
	l, err := in.evalMultiplicative(left, env)
	if err != nil {
		return nil, err
	}
	r, err := in.evalUnary(right, env)
	if err != nil {
		return nil, err
	}
	return evalInfix(op, l, r)
}

func (in *Interpreter) evalUnary(s string, env *Environment) (Value, error) {
	if !strings.HasPrefix(s, "-") || strings.HasPrefix(s, "--") {
		return in.evalPostfix(s, env)
	}
	operand := strings.TrimSpace(s[1:])
	if operand == "" {
		return nil, newInvalidExpressionError(s)
	}
	if isIntegerLiteral(operand) {
		return parseIntegerLiteral("-" + operand)
	}
	v, err := in.evalUnary(operand, env)
	if err != nil {
		return nil, err
	}
	return negate(v)
}

// splitBinary finds the last depth-zero occurrence of one of ops that has
// an operand on each side. Word operators need a space on both sides; '+'
// and '-' count only after an operand, so unary minus, "++" and the sign
// of an exponent are skipped.
func splitBinary(s string, ops []string) (left, op, right string, ok bool) {
	at := -1
	skip := -1
	topLevel(s, func(i int) bool {
		if i < skip {
			return true
		}
		for _, candidate := range ops {
			if !strings.HasPrefix(s[i:], candidate) || !operatorAt(s, i, candidate) {
				continue
			}
			l := strings.TrimSpace(s[:i])
			r := strings.TrimSpace(s[i+len(candidate):])
			if l == "" || r == "" {
				continue
			}
			at, op = i, candidate
			skip = i + len(candidate)
			break
		}
		return true
	})
	if at < 0 {
		return "", "", "", false
	}
	return strings.TrimSpace(s[:at]), op, strings.TrimSpace(s[at+len(op):]), true
}

// operatorChars are the bytes that can end or start a symbolic operator.
const operatorChars = "*/%+-<>=!&|"

// operatorAt reports whether op at s[i] is really that operator.
func operatorAt(s string, i int, op string) bool {
	end := i + len(op)
	switch op {
	case "y", "o":
		if i == 0 || s[i-1] != ' ' || end >= len(s) || s[end] != ' ' {
			return false
		}
		// y and o are also valid variable names: as operators they need
		// a complete operand on each side.
		prev := strings.TrimRight(s[:i], " \t")
		next := strings.TrimLeft(s[end:], " \t")
		if prev == "" || next == "" || strings.IndexByte(operatorChars, prev[len(prev)-1]) >= 0 {
			return false
		}
		if strings.IndexByte(operatorChars, next[0]) >= 0 {
			return next[0] == '!' && !strings.HasPrefix(next, "!=")
		}
		return true
	case "<", ">":
		return end >= len(s) || s[end] != '='
	case "!=", "==", "<=", ">=":
		return i == 0 || strings.IndexByte("=!<>", s[i-1]) < 0
	case "+", "-":
		if end < len(s) && s[end] == op[0] || i > 0 && s[i-1] == op[0] {
			return false
		}
		prev := strings.TrimRight(s[:i], " \t")
		if prev == "" {
			return false
		}
		last, _ := utf8.DecodeLastRuneInString(prev)
		if !isIdentPart(last) && !strings.ContainsRune(")]}\"", last) {
			return false
		}
		return !isExponentSign(s, i)
	}
	return true
}

// isExponentSign reports whether the sign at s[i] belongs to a float
// literal such as 1e-5.
func isExponentSign(s string, i int) bool {
	if i < 2 || (s[i-1] != 'e' && s[i-1] != 'E') {
		return false
	}
	start := i - 1
	for start > 0 && (isDigit(s[start-1]) || s[start-1] == '.') {
		start--
	}
	if start == i-1 || !isDigit(s[start]) {
		return false
	}
	return start == 0 || !isIdentPart(rune(s[start-1]))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// postfix chains: primary followed by .campo, .metodo(args) and [índice].

type postfixKind int

const (
	postfixField postfixKind = iota
	postfixIndex
	postfixCall
)

type postfixOp struct {
	kind postfixKind
	name string
	arg  string // index expression or raw argument list
}

// splitPostfix separates s into its primary and the chain after it.
func splitPostfix(s string) (base string, ops []postfixOp, ok bool) {
	n := primaryEnd(s)
	if n <= 0 {
		return "", nil, false
	}
	base = s[:n]
	i := n
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		switch s[i] {
		case '.':
			i++
			for i < len(s) && s[i] == ' ' {
				i++
			}
			n := identifierPrefix(s[i:])
			if n == 0 {
				return "", nil, false
			}
			name := s[i : i+n]
			i += n
			if i < len(s) && s[i] == '(' {
				end := matchingClose(s, i)
				if end < 0 {
					return "", nil, false
				}
				ops = append(ops, postfixOp{kind: postfixCall, name: name, arg: s[i+1 : end]})
				i = end + 1
				continue
			}
			ops = append(ops, postfixOp{kind: postfixField, name: name})
		case '[':
			end := matchingClose(s, i)
			if end < 0 {
				return "", nil, false
			}
			ops = append(ops, postfixOp{kind: postfixIndex, arg: s[i+1 : end]})
			i = end + 1
		default:
			return "", nil, false
		}
	}
	return base, ops, true
}

// primaryEnd returns the length of the primary at the start of s, or 0
// when s does not start with one.
func primaryEnd(s string) int {
	if s == "" {
		return 0
	}
	switch c := s[0]; {
	case c == '"':
		return closingQuote(s, 0) + 1
	case c == '(' || c == '[' || c == '{':
		return matchingClose(s, 0) + 1
	case isDigit(c):
		return numberEnd(s)
	}
	n := identifierPrefix(s)
	if n == 0 {
		return 0
	}
	word := s[:n]
	rest := s[n:]
	if word == "nuevo" {
		trimmed := strings.TrimLeft(rest, " ")
		m := identifierPrefix(trimmed)
		if m == 0 {
			return 0
		}
		offset := len(s) - len(trimmed) + m
		if offset < len(s) && s[offset] == '(' {
			return matchingClose(s, offset) + 1
		}
		return 0
	}
	if strings.HasPrefix(rest, "(") {
		return n + matchingClose(rest, 0) + 1
	}
	return n
}

// numberEnd returns the length of the numeric literal at the start of s.
// A '.' belongs to the number only when a digit follows it.
func numberEnd(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			i = j
			for i < len(s) && isDigit(s[i]) {
				i++
			}
		}
	}
	return i
}

// evalPostfix evaluates a primary and its chain left to right. When the
// chain starts at a variable, a mutating method commits the receiver's new
// value back into that variable before the chain continues.
func (in *Interpreter) evalPostfix(s string, env *Environment) (Value, error) {
	base, ops, ok := splitPostfix(s)
	if !ok {
		return nil, newInvalidExpressionError(s)
	}
	cur, err := in.evalPrimary(base, env)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return cur, nil
	}

	root := ""
	if isIdentifier(base) {
		root = base
	}
	var path []pathStep

	for _, op := range ops {
		switch op.kind {
		case postfixField:
			if cur, err = fieldValue(cur, op.name); err != nil {
				return nil, err
			}
			path = append(path, pathStep{field: op.name})
		case postfixIndex:
			key, err := in.eval(op.arg, env)
			if err != nil {
				return nil, err
			}
			if cur, err = indexValue(cur, key); err != nil {
				return nil, err
			}
			path = append(path, pathStep{key: key})
		case postfixCall:
			args, err := in.evalArgs(op.arg, env)
			if err != nil {
				return nil, err
			}
			result, updated, err := in.callMethod(cur, op.name, args, env)
			if err != nil {
				return nil, err
			}
			if updated != nil && root != "" {
				if err := in.commit(root, path, updated, env); err != nil {
					return nil, err
				}
			}
			if updated == nil || result != updated {
				root = ""
			}
			cur = result
		}
	}
	return cur, nil
}

// commit writes v into the variable root at path.
func (in *Interpreter) commit(root string, path []pathStep, v Value, env *Environment) error {
	if len(path) == 0 {
		env.Set(root, v)
		return nil
	}
	cur, ok := env.Get(root)
	if !ok {
		return newUndefinedVariableError(root, env)
	}
	updated, err := setIn(cur, path, v, env)
	if err != nil {
		return err
	}
	env.Set(root, updated)
	return nil
}

// evalArgs evaluates a comma separated argument list.
func (in *Interpreter) evalArgs(list string, env *Environment) ([]Value, error) {
	parts := splitTopLevel(list, ',')
	args := make([]Value, len(parts))
	for i, part := range parts {
		v, err := in.eval(part, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// callMethod dispatches name on receiver by its runtime type. updated is
// the receiver's new value when the method changed it.
func (in *Interpreter) callMethod(receiver Value, name string, args []Value, env *Environment) (result, updated Value, err error) {
	if inst, ok := receiver.(*Instance); ok {
		return in.callInstanceMethod(inst, name, args, env)
	}
	registry := GetRegistryForType(receiver.Type())
	result, updated, found, err := dispatchFromRegistry(registry, receiver, name, args, in)
	if !found {
		return nil, nil, newUndefinedMethodError(name, typeLabel(receiver), registry.Names())
	}
	if err != nil {
		return nil, nil, err
	}
	return result, updated, nil
}

// fieldValue reads obj.name from an instance or a jsn value.
func fieldValue(v Value, name string) (Value, error) {
	switch v := v.(type) {
	case *Instance:
		if f, ok := v.Fields[name]; ok {
			return f, nil
		}
		return nil, newUndefinedFieldError(name, v.TypeName)
	case *Map:
		if f, ok := v.Pairs[name]; ok {
			return f, nil
		}
		return nil, newMissingKeyError(name)
	}
	return nil, newUndefinedFieldError(name, typeLabel(v))
}

// indexValue reads container[idx]. Strings index by character.
func indexValue(container, idx Value) (Value, error) {
	switch c := container.(type) {
	case *List:
		i, ok := idx.(*Integer)
		if !ok {
			return nil, newArgTypeError("[]", 1, "entero", idx)
		}
		if i.Value < 0 || i.Value >= int64(len(c.Elements)) {
			return nil, newIndexError(i.Value, len(c.Elements))
		}
		return c.Elements[i.Value], nil
	case *String:
		i, ok := idx.(*Integer)
		if !ok {
			return nil, newArgTypeError("[]", 1, "entero", idx)
		}
		runes := []rune(c.Value)
		if i.Value < 0 || i.Value >= int64(len(runes)) {
			return nil, newIndexError(i.Value, len(runes))
		}
		return &String{Value: string(runes[i.Value])}, nil
	case *Map:
		key, ok := idx.(*String)
		if !ok {
			return nil, newArgTypeError("[]", 1, "cadena", idx)
		}
		if v, ok := c.Pairs[key.Value]; ok {
			return v, nil
		}
		return nil, newMissingKeyError(key.Value)
	}
	return nil, newNotIndexableError(container)
}

// evalPrimary evaluates literals, calls, instantiation, variables and
// parenthesised expressions.
func (in *Interpreter) evalPrimary(s string, env *Environment) (Value, error) {
	switch s {
	case "verdadero":
		return TRUE, nil
	case "falso":
		return FALSE, nil
	case "vacio":
		if v, ok := env.Get(s); ok {
			return v, nil
		}
		return VOID, nil
	}

	switch c := s[0]; {
	case c == '"':
		return &String{Value: unquote(s[1 : len(s)-1])}, nil
	case c == '(':
		return in.eval(s[1:len(s)-1], env)
	case c == '[':
		els, err := in.evalArgs(s[1:len(s)-1], env)
		if err != nil {
			return nil, err
		}
		return &List{Elements: els}, nil
	case c == '{':
		return ParseJSON([]byte(s), env.Get)
	case isDigit(c):
		return parseNumberLiteral(s)
	}

	n := identifierPrefix(s)
	if n == 0 {
		return nil, newInvalidExpressionError(s)
	}
	name := s[:n]
	if name == "nuevo" && n < len(s) {
		return in.evalNew(strings.TrimSpace(s[n:]), env)
	}
	if n < len(s) && s[n] == '(' {
		return in.callFunction(name, splitTopLevel(s[n+1:len(s)-1], ','), env)
	}
	if n != len(s) {
		return nil, newInvalidExpressionError(s)
	}
	if v, ok := env.Get(name); ok {
		return v, nil
	}
	return nil, newUndefinedVariableError(name, env)
}

// evalNew instantiates "Tipo(args)". A type with a registered provider can
// be instantiated without an objeto declaration.
func (in *Interpreter) evalNew(s string, env *Environment) (Value, error) {
	n := identifierPrefix(s)
	typeName := s[:n]
	def, ok := env.Object(typeName)
	if !ok {
		p, registered := objectProviders[typeName]
		if !registered {
			return nil, newUnknownTypeError(typeName)
		}
		def = NewObjectDefinition(typeName, p.Fields, nil)
	}
	rest := strings.TrimSpace(s[n:])
	args, err := in.evalArgs(rest[1:len(rest)-1], env)
	if err != nil {
		return nil, err
	}
	return def.instantiate(args)
}

func isIntegerLiteral(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func parseIntegerLiteral(s string) (Value, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, newStructuredError("CONV-0002", map[string]any{"Value": s})
	}
	return &Integer{Value: n}, nil
}

func parseNumberLiteral(s string) (Value, error) {
	if numberEnd(s) != len(s) {
		return nil, newInvalidExpressionError(s)
	}
	if isIntegerLiteral(s) {
		return parseIntegerLiteral(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, newStructuredError("CONV-0002", map[string]any{"Value": s})
	}
	return &Float{Value: f}, nil
}
