package evaluator

import (
	"fmt"
)

// PrintVariant selects which print statement produced a line of output.
type PrintVariant string

const (
	PrintPlain        PrintVariant = ""
	PrintError        PrintVariant = "error"
	PrintWarning      PrintVariant = "advertencia"
	PrintInfo         PrintVariant = "informacion"
	PrintDebug        PrintVariant = "depurar"
	PrintSuccess      PrintVariant = "exito"
	PrintAlert        PrintVariant = "alerta"
	PrintConfirmation PrintVariant = "confirmacion"
)

// PrintVariants lists the colored variants in statement order.
var PrintVariants = []PrintVariant{
	PrintError, PrintWarning, PrintInfo, PrintDebug, PrintSuccess, PrintAlert, PrintConfirmation,
}

// Statement returns the keyword that produces this variant, e.g. "imprimir_exito".
func (v PrintVariant) Statement() string {
	if v == PrintPlain {
		return "imprimir"
	}
	return "imprimir_" + string(v)
}

// ANSI returns the escape sequence used to color this variant, or "" for
// plain output.
func (v PrintVariant) ANSI() string {
	switch v {
	case PrintError, PrintAlert:
		return "\x1b[31m"
	case PrintWarning:
		return "\x1b[33m"
	case PrintInfo:
		return "\x1b[34m"
	case PrintDebug:
		return "\x1b[35m"
	case PrintSuccess, PrintConfirmation:
		return "\x1b[32m"
	}
	return ""
}

// ANSIReset ends a colored span.
const ANSIReset = "\x1b[0m"

// Console receives the output of print statements, one line per call.
type Console interface {
	Print(variant PrintVariant, text string)
}

// stdoutConsole writes every variant to stdout with its color.
type stdoutConsole struct{}

func (stdoutConsole) Print(variant PrintVariant, text string) {
	if code := variant.ANSI(); code != "" {
		fmt.Print(code + text + ANSIReset + "\n")
		return
	}
	fmt.Println(text)
}

// DefaultConsole is the console used when none is configured.
var DefaultConsole Console = stdoutConsole{}
