package evaluator

import (
	qerrors "github.com/sambeau/quetzal/pkg/quetzal/errors"
)

// SignalKind says how a statement or block finished.
type SignalKind int

const (
	SignalNormal SignalKind = iota
	SignalBreak
	SignalContinue
	SignalReturn
	SignalError
)

func (k SignalKind) String() string {
	switch k {
	case SignalBreak:
		return "romper"
	case SignalContinue:
		return "continuar"
	case SignalReturn:
		return "retornar"
	case SignalError:
		return "error"
	default:
		return "normal"
	}
}

// Signal is the outcome of executing statements. A nil *Signal means
// normal completion; anything else unwinds until a loop, a function call
// or the program boundary handles it.
type Signal struct {
	Kind  SignalKind
	Value Value                 // set for SignalReturn
	Err   *qerrors.QuetzalError // set for SignalError
	Line  int                   // line of the statement that raised it
}

func breakSignal(line int) *Signal    { return &Signal{Kind: SignalBreak, Line: line} }
func continueSignal(line int) *Signal { return &Signal{Kind: SignalContinue, Line: line} }

func returnSignal(line int, v Value) *Signal {
	return &Signal{Kind: SignalReturn, Value: v, Line: line}
}

// errorSignal wraps err, stamping line when the error does not carry one.
func errorSignal(line int, err error) *Signal {
	qerr := asQuetzalError(err)
	if qerr.Line == 0 {
		qerr = qerr.WithLine(line)
	}
	return &Signal{Kind: SignalError, Err: qerr, Line: qerr.Line}
}

// IsError reports whether s carries an error.
func (s *Signal) IsError() bool {
	return s != nil && s.Kind == SignalError
}
