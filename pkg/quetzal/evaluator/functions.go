package evaluator

import (
	"regexp"
	"strings"
)

// Parameter is one declared function parameter.
type Parameter struct {
	Name    string
	Type    string
	Mutable bool
}

// FunctionDefinition is a user function. The body is kept as source lines
// and re-executed on every call.
type FunctionDefinition struct {
	Name       string
	Params     []Parameter
	ReturnType string
	Async      bool
	Body       []sourceLine
	Line       int
}

// returnsValue reports whether callers must receive a value.
func (f *FunctionDefinition) returnsValue() bool {
	return f.ReturnType != "vacio"
}

// functionHeader matches "[asincrono] tipo nombre(params) {".
var functionHeader = regexp.MustCompile(`^(asincrono\s+)?([\p{L}_][\p{L}\p{N}_]*(?:<[^>]*>)?)\s+([\p{L}_][\p{L}\p{N}_]*)\s*\((.*)\)\s*\{`)

// parseFunctionHeader recognises a function declaration line. ok is false
// when the line does not have the shape of one.
func parseFunctionHeader(text string) (fn *FunctionDefinition, ok bool, err error) {
	m := functionHeader.FindStringSubmatch(text)
	if m == nil {
		return nil, false, nil
	}
	// The parameter list must close right before the brace; otherwise
	// this is something like a call followed by a block.
	open := strings.IndexByte(text, '(')
	end := matchingClose(text, open)
	if end < 0 || !strings.HasPrefix(strings.TrimSpace(text[end+1:]), "{") {
		return nil, false, nil
	}
	fn = &FunctionDefinition{
		Async:      m[1] != "",
		ReturnType: m[2],
		Name:       m[3],
	}
	if err := validateIdentifier(fn.Name); err != nil {
		return nil, true, err
	}
	seen := map[string]bool{}
	for _, raw := range splitTopLevel(text[open+1:end], ',') {
		p, err := parseParameter(raw)
		if err != nil {
			return nil, true, err
		}
		if seen[p.Name] {
			return nil, true, newStructuredError("SINTAXIS-0008", map[string]any{"Name": p.Name, "Function": fn.Name})
		}
		seen[p.Name] = true
		fn.Params = append(fn.Params, p)
	}
	return fn, true, nil
}

// parseParameter reads "tipo [mut] nombre" or "mut tipo nombre".
func parseParameter(raw string) (Parameter, error) {
	words := strings.Fields(raw)
	var p Parameter
	var rest []string
	for _, w := range words {
		if w == "mut" {
			p.Mutable = true
			continue
		}
		rest = append(rest, w)
	}
	if len(rest) != 2 {
		return p, newMalformedError("parámetro", raw)
	}
	p.Type, p.Name = rest[0], rest[1]
	if err := validateIdentifier(p.Name); err != nil {
		return p, err
	}
	return p, nil
}

// hasReturnStatement reports whether any line of body is a retornar
// statement, including same-line blocks such as "si (x) { retornar 1 }".
func hasReturnStatement(body []sourceLine) bool {
	for _, l := range body {
		for _, field := range strings.FieldsFunc(l.text, func(r rune) bool {
			return r == '{' || r == '}' || r == ' ' || r == '\t' || r == '('
		}) {
			if field == "retornar" {
				return true
			}
		}
	}
	return false
}

// declareFunction validates and registers a parsed declaration.
func (in *Interpreter) declareFunction(fn *FunctionDefinition, env *Environment) error {
	if !in.isKnownType(fn.ReturnType, env) {
		return newUnknownTypeError(fn.ReturnType)
	}
	for _, p := range fn.Params {
		if !in.isKnownType(p.Type, env) {
			return newUnknownTypeError(p.Type)
		}
	}
	if fn.returnsValue() && !hasReturnStatement(fn.Body) {
		return newStructuredError("RETORNO-0001", map[string]any{"Function": fn.Name, "Type": fn.ReturnType})
	}
	env.DefineFunction(fn)
	in.logger.Debugw("function declared", "name", fn.Name, "params", len(fn.Params), "line", fn.Line)
	return nil
}

// callFunction evaluates args in the caller's environment and runs fn in a
// fresh frame that sees only definitions and parameters.
func (in *Interpreter) callFunction(name string, argExprs []string, env *Environment) (Value, error) {
	fn, ok := env.Function(name)
	if !ok {
		return nil, newUndefinedFunctionError(name, env.FunctionNames())
	}
	if len(argExprs) != len(fn.Params) {
		return nil, newArityError(name, len(argExprs), len(fn.Params))
	}
	args := make([]Value, len(argExprs))
	for i, expr := range argExprs {
		v, err := in.eval(expr, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return in.invoke(fn, args, env)
}

// invoke runs fn with already evaluated arguments.
func (in *Interpreter) invoke(fn *FunctionDefinition, args []Value, caller *Environment) (Value, error) {
	if in.depth >= in.maxDepth {
		return nil, newStructuredError("PILA-0001", map[string]any{"Max": in.maxDepth, "Function": fn.Name})
	}
	in.depth++
	defer func() { in.depth-- }()

	callEnv := newCallEnvironment(caller)
	for i, p := range fn.Params {
		v, err := coerceToDeclared(p.Type, p.Name, args[i])
		if err != nil {
			return nil, err
		}
		callEnv.Declare(p.Name, v, p.Type, p.Mutable)
	}

	in.logger.Debugw("call", "function", fn.Name, "depth", in.depth)
	sig := in.execLines(fn.Body, callEnv)

	switch {
	case sig == nil:
		if fn.returnsValue() {
			return nil, newStructuredError("RETORNO-0001", map[string]any{"Function": fn.Name, "Type": fn.ReturnType})
		}
		return VOID, nil
	case sig.Kind == SignalError:
		return nil, sig.Err
	case sig.Kind == SignalBreak:
		return nil, newMisplacedControlError("romper", "un bucle").WithLine(sig.Line)
	case sig.Kind == SignalContinue:
		return nil, newMisplacedControlError("continuar", "un bucle").WithLine(sig.Line)
	}

	if !fn.returnsValue() {
		return VOID, nil
	}
	if _, isVoid := sig.Value.(*Void); isVoid {
		return nil, newStructuredError("RETORNO-0001", map[string]any{"Function": fn.Name, "Type": fn.ReturnType}).WithLine(sig.Line)
	}
	v, err := coerceToDeclared(fn.ReturnType, fn.Name, sig.Value)
	if err != nil {
		return nil, newStructuredError("TIPO-0009", map[string]any{
			"Function": fn.Name,
			"Expected": fn.ReturnType,
			"Got":      typeLabel(sig.Value),
		}).WithLine(sig.Line)
	}
	return v, nil
}
