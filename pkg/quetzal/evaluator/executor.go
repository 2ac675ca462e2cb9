// Package evaluator executes Quetzal programs.
//
// There is no separate parse phase: the executor walks logical source
// lines, and expressions are evaluated directly from their text every time
// they run.
package evaluator

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// DefaultMaxCallDepth bounds nested function calls.
const DefaultMaxCallDepth = 512

// Interpreter holds the collaborators and limits for running programs.
// It is not safe for concurrent use.
type Interpreter struct {
	console  Console
	logger   *zap.SugaredLogger
	lang     language.Tag
	maxDepth int
	depth    int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithConsole sets where print statements write.
func WithConsole(c Console) Option {
	return func(in *Interpreter) { in.console = c }
}

// WithLogger sets the diagnostic logger. Statements and calls are traced
// at debug level.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(in *Interpreter) { in.logger = l }
}

// WithLanguage sets the language used by case-mapping string methods.
func WithLanguage(tag language.Tag) Option {
	return func(in *Interpreter) { in.lang = tag }
}

// WithMaxCallDepth bounds nested function calls; n <= 0 keeps the default.
func WithMaxCallDepth(n int) Option {
	return func(in *Interpreter) {
		if n > 0 {
			in.maxDepth = n
		}
	}
}

// New creates an Interpreter.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		console:  DefaultConsole,
		logger:   zap.NewNop().Sugar(),
		lang:     language.Spanish,
		maxDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run executes source in env. It returns nil on success or the first
// error, a *errors.QuetzalError carrying the line it was raised on.
func (in *Interpreter) Run(source string, env *Environment) error {
	lines, err := prepareSource(source)
	if err != nil {
		return err
	}
	in.depth = 0
	sig := in.execLines(lines, env)
	if sig == nil {
		return nil
	}
	switch sig.Kind {
	case SignalReturn:
		return newMisplacedControlError("retornar", "una función").WithLine(sig.Line)
	case SignalBreak:
		return newMisplacedControlError("romper", "un bucle").WithLine(sig.Line)
	case SignalContinue:
		return newMisplacedControlError("continuar", "un bucle").WithLine(sig.Line)
	}
	in.logger.Debugw("program failed", "line", sig.Err.Line, "code", sig.Err.Code)
	return sig.Err
}

// Check validates the structure of source without running it: comments
// must close, every block must close and every function header must parse.
func (in *Interpreter) Check(source string) error {
	lines, err := prepareSource(source)
	if err != nil {
		return err
	}
	return checkBlocks(lines)
}

func checkBlocks(lines []sourceLine) error {
	for i := 0; i < len(lines); i++ {
		text := lines[i].text
		if _, ok, err := parseFunctionHeader(text); ok && err != nil {
			return asQuetzalError(err).WithLine(lines[i].no)
		}
		if !strings.HasSuffix(text, "{") || hasOpenExpression(text) || strings.HasPrefix(text, "}") {
			continue
		}
		body, end, _, err := extractBlock(lines, i, text)
		if err != nil {
			return err
		}
		if err := checkBlocks(body); err != nil {
			return err
		}
		i = end
	}
	return nil
}

// execLines runs statements in order until one produces a signal.
func (in *Interpreter) execLines(lines []sourceLine, env *Environment) *Signal {
	for i := 0; i < len(lines); {
		next, pending, sig := in.execStatement(lines, i, env)
		if sig != nil {
			return sig
		}
		if pending != nil {
			lines = spliceLine(lines, next, *pending)
		}
		i = next
	}
	return nil
}

// spliceLine returns a copy of lines with l inserted at index at. Bodies
// are shared between calls, so lines itself is never modified.
func spliceLine(lines []sourceLine, at int, l sourceLine) []sourceLine {
	out := make([]sourceLine, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, l)
	return append(out, lines[at:]...)
}

// leadingWord returns the identifier at the start of text.
func leadingWord(text string) string {
	return text[:identifierPrefix(text)]
}

// execStatement runs the statement starting at lines[i]. next is the index
// of the following statement; pending is text left after a closing brace
// that must run before it.
func (in *Interpreter) execStatement(lines []sourceLine, i int, env *Environment) (next int, pending *sourceLine, sig *Signal) {
	l := lines[i]
	text := l.text
	in.logger.Debugw("statement", "line", l.no, "text", text)

	switch leadingWord(text) {
	case "para":
		return in.execFor(lines, i, env)
	case "mientras":
		return in.execWhile(lines, i, env)
	case "hacer":
		return in.execDoWhile(lines, i, env)
	case "si":
		return in.execIf(lines, i, env)
	case "sino":
		return i + 1, nil, errorSignal(l.no, newStructuredError("SINTAXIS-0011", nil))
	case "objeto":
		return in.execObjectDeclaration(lines, i, env)
	case "retornar":
		return i + 1, nil, in.execReturn(l, env)
	case "romper":
		if text == "romper" {
			return i + 1, nil, breakSignal(l.no)
		}
	case "continuar":
		if text == "continuar" {
			return i + 1, nil, continueSignal(l.no)
		}
	}

	if variant, expr, ok := parsePrint(text); ok {
		if err := in.execPrint(variant, expr, env); err != nil {
			return i + 1, nil, errorSignal(l.no, err)
		}
		return i + 1, nil, nil
	}

	if fn, ok, err := parseFunctionHeader(text); ok {
		if err != nil {
			return i + 1, nil, errorSignal(l.no, err)
		}
		return in.execFunctionDeclaration(fn, lines, i, env)
	}

	if err := in.execSimple(text, env); err != nil {
		return i + 1, nil, errorSignal(l.no, err)
	}
	return i + 1, nil, nil
}

// afterBlock computes where execution resumes after a block that closed
// on lines[end] with rest following the brace.
func afterBlock(lines []sourceLine, end int, rest string) (int, *sourceLine) {
	if rest == "" {
		return end + 1, nil
	}
	return end + 1, &sourceLine{no: lines[end].no, text: rest}
}

func (in *Interpreter) execFunctionDeclaration(fn *FunctionDefinition, lines []sourceLine, i int, env *Environment) (int, *sourceLine, *Signal) {
	body, end, rest, err := extractBlock(lines, i, lines[i].text)
	if err != nil {
		return i + 1, nil, errorSignal(lines[i].no, err)
	}
	fn.Body = body
	fn.Line = lines[i].no
	if err := in.declareFunction(fn, env); err != nil {
		return end + 1, nil, errorSignal(lines[i].no, err)
	}
	next, pending := afterBlock(lines, end, rest)
	return next, pending, nil
}

func (in *Interpreter) execObjectDeclaration(lines []sourceLine, i int, env *Environment) (int, *sourceLine, *Signal) {
	l := lines[i]
	header := strings.TrimSpace(strings.TrimPrefix(l.text, "objeto"))
	open := strings.IndexByte(header, '{')
	if open < 0 {
		return i + 1, nil, errorSignal(l.no, newMalformedError("objeto", l.text))
	}
	name := strings.TrimSpace(header[:open])
	if err := validateIdentifier(name); err != nil {
		return i + 1, nil, errorSignal(l.no, err)
	}
	body, end, rest, err := extractBlock(lines, i, l.text)
	if err != nil {
		return i + 1, nil, errorSignal(l.no, err)
	}
	fields, types, err := parseObjectFields(body)
	if err != nil {
		return end + 1, nil, errorSignal(l.no, err)
	}
	for _, t := range types {
		if t != name && !in.isKnownType(t, env) {
			return end + 1, nil, errorSignal(l.no, newUnknownTypeError(t))
		}
	}
	env.DefineObject(NewObjectDefinition(name, fields, types))
	in.logger.Debugw("object declared", "name", name, "fields", fields)
	next, pending := afterBlock(lines, end, rest)
	return next, pending, nil
}
