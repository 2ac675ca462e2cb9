package quetzal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/sambeau/quetzal/pkg/quetzal/evaluator"
)

// Console is an alias for evaluator.Console for convenience
type Console = evaluator.Console

// PrintVariant is an alias for evaluator.PrintVariant
type PrintVariant = evaluator.PrintVariant

// ColorMode controls whether a writer console emits ANSI colors.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"    // color only when writing to a terminal
	ColorAlways ColorMode = "siempre" // always color
	ColorNever  ColorMode = "nunca"   // never color
)

// ParseColorMode converts a config or flag value to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	}
	return "", fmt.Errorf("unknown color mode %q (use auto, siempre, or nunca)", s)
}

// StdoutConsole returns a console that writes to stdout (default for CLI/REPL)
func StdoutConsole() Console {
	return evaluator.DefaultConsole
}

// writerConsole writes to an io.Writer
type writerConsole struct {
	w     io.Writer
	color bool
}

func (c *writerConsole) Print(variant PrintVariant, text string) {
	if code := variant.ANSI(); c.color && code != "" {
		fmt.Fprint(c.w, code+text+evaluator.ANSIReset+"\n")
		return
	}
	fmt.Fprintln(c.w, text)
}

// WriterConsole returns a console that writes to an io.Writer. With
// ColorAuto, colors are used only when w is a terminal.
func WriterConsole(w io.Writer, mode ColorMode) Console {
	return &writerConsole{w: w, color: useColor(w, mode)}
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Line is one captured print statement.
type Line struct {
	Variant PrintVariant
	Text    string
}

// BufferedConsole captures output for later retrieval
type BufferedConsole struct {
	mu    sync.Mutex
	lines []Line
}

// NewBufferedConsole creates a new buffered console
func NewBufferedConsole() *BufferedConsole {
	return &BufferedConsole{
		lines: make([]Line, 0),
	}
}

func (c *BufferedConsole) Print(variant PrintVariant, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, Line{Variant: variant, Text: text})
}

// String returns all captured output, one line per print, without colors
func (c *BufferedConsole) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sb strings.Builder
	for _, l := range c.lines {
		sb.WriteString(l.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Lines returns all captured lines
func (c *BufferedConsole) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]Line, len(c.lines))
	copy(result, c.lines)
	return result
}

// Reset clears all captured output
func (c *BufferedConsole) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = c.lines[:0]
}

// nullConsole discards all output
type nullConsole struct{}

func (nullConsole) Print(PrintVariant, string) {}

// NullConsole returns a console that discards all output
func NullConsole() Console {
	return nullConsole{}
}
