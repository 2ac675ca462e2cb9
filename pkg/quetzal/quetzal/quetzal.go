// Package quetzal provides a public API for embedding the Quetzal interpreter.
//
//	err := quetzal.Interpret(`imprimir("Hola")`)
//
// Programs run to completion or stop at the first error, which is a
// *errors.QuetzalError reading "Error en línea N: mensaje".
package quetzal

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	qerrors "github.com/sambeau/quetzal/pkg/quetzal/errors"
	"github.com/sambeau/quetzal/pkg/quetzal/evaluator"
)

// Environment is an alias for evaluator.Environment
type Environment = evaluator.Environment

// NewEnvironment creates an empty environment that can be reused across
// runs, as the REPL does.
func NewEnvironment() *Environment {
	return evaluator.NewEnvironment()
}

type options struct {
	console  Console
	logger   *zap.SugaredLogger
	lang     language.Tag
	maxDepth int
	env      *Environment
	vars     map[string]any
	filename string
}

// Option configures a run.
type Option func(*options)

// WithConsole sets where print statements write. Defaults to stdout.
func WithConsole(c Console) Option {
	return func(o *options) { o.console = c }
}

// WithLogger sets the diagnostic logger. Defaults to a no-op logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithLanguage sets the language used by a_mayusculas and friends.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) { o.lang = tag }
}

// WithMaxCallDepth bounds nested function calls.
func WithMaxCallDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithEnvironment runs the program in env so that bindings survive the
// run. Without it every run starts from an empty environment.
func WithEnvironment(env *Environment) Option {
	return func(o *options) { o.env = env }
}

// WithVariable predefines a variable. v must be something ToValue accepts.
func WithVariable(name string, v any) Option {
	return func(o *options) {
		if o.vars == nil {
			o.vars = map[string]any{}
		}
		o.vars[name] = v
	}
}

// WithFilename records the source file on returned errors.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// Interpret runs source with stdout as the console.
func Interpret(source string) error {
	return InterpretWith(source)
}

// InterpretWith runs source with the given options.
func InterpretWith(source string, opts ...Option) error {
	o := &options{
		console: StdoutConsole(),
		logger:  zap.NewNop().Sugar(),
		lang:    language.Spanish,
	}
	for _, opt := range opts {
		opt(o)
	}

	// Predefined variables go straight into a caller's environment;
	// otherwise they sit in an outer frame the program's bindings shadow.
	vars := o.env
	if vars == nil {
		vars = NewEnvironment()
	}
	for name, raw := range o.vars {
		v, err := ToValue(raw)
		if err != nil {
			return fmt.Errorf("variable %s: %w", name, err)
		}
		vars.Set(name, v)
	}
	env := o.env
	if env == nil {
		env = evaluator.NewEnclosedEnvironment(vars)
	}

	in := evaluator.New(
		evaluator.WithConsole(o.console),
		evaluator.WithLogger(o.logger),
		evaluator.WithLanguage(o.lang),
		evaluator.WithMaxCallDepth(o.maxDepth),
	)
	return withFile(in.Run(source, env), o.filename)
}

// InterpretFile reads and runs a program file.
func InterpretFile(path string, opts ...Option) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return InterpretWith(string(data), append([]Option{WithFilename(path)}, opts...)...)
}

// Check validates block structure and function headers without running
// anything.
func Check(source string) error {
	return evaluator.New(evaluator.WithConsole(NullConsole())).Check(source)
}

func withFile(err error, filename string) error {
	if err == nil || filename == "" {
		return err
	}
	if qerr, ok := err.(*qerrors.QuetzalError); ok {
		return qerr.WithFile(filename)
	}
	return err
}

// ToValue converts a Go value into a Quetzal value. Supported: nil, bool,
// integers, floats, strings, []any, []string and map[string]any, nested
// arbitrarily.
func ToValue(v any) (evaluator.Value, error) {
	switch v := v.(type) {
	case nil:
		return evaluator.VOID, nil
	case evaluator.Value:
		return v, nil
	case bool:
		if v {
			return evaluator.TRUE, nil
		}
		return evaluator.FALSE, nil
	case int:
		return &evaluator.Integer{Value: int64(v)}, nil
	case int32:
		return &evaluator.Integer{Value: int64(v)}, nil
	case int64:
		return &evaluator.Integer{Value: v}, nil
	case float32:
		return &evaluator.Float{Value: float64(v)}, nil
	case float64:
		return &evaluator.Float{Value: v}, nil
	case string:
		return &evaluator.String{Value: v}, nil
	case []string:
		els := make([]evaluator.Value, len(v))
		for i, s := range v {
			els[i] = &evaluator.String{Value: s}
		}
		return &evaluator.List{Elements: els}, nil
	case []any:
		els := make([]evaluator.Value, len(v))
		for i, item := range v {
			el, err := ToValue(item)
			if err != nil {
				return nil, err
			}
			els[i] = el
		}
		return &evaluator.List{Elements: els}, nil
	case map[string]any:
		pairs := make(map[string]evaluator.Value, len(v))
		for k, item := range v {
			el, err := ToValue(item)
			if err != nil {
				return nil, err
			}
			pairs[k] = el
		}
		return &evaluator.Map{Pairs: pairs}, nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}
