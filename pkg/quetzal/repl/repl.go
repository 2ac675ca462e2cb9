package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	qerrors "github.com/sambeau/quetzal/pkg/quetzal/errors"
	"github.com/sambeau/quetzal/pkg/quetzal/evaluator"
	"github.com/sambeau/quetzal/pkg/quetzal/quetzal"
)

const PROMPT = "qz> "
const CONTINUATION_PROMPT = "..> "

const LOGO = `
█▀█ █░█ █▀▀ ▀█▀ ▀█ ▄▀█ █░░
▀▀█ █▄█ ██▄ ░█░ █▄ █▀█ █▄▄ `

// Options configures a REPL session.
type Options struct {
	Version     string
	HistoryFile string // empty disables history persistence
	Color       quetzal.ColorMode
	Logger      *zap.SugaredLogger
	Language    language.Tag
	MaxDepth    int
}

// Start starts the REPL with line editing, history, and tab completion.
// It returns when the user types salir or presses Ctrl+D.
func Start(out io.Writer, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetWordCompleter(completeWord)

	if opts.HistoryFile != "" {
		if f, err := os.Open(opts.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(opts.HistoryFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	s := NewSession(out, opts)

	fmt.Fprintf(out, "%s", LOGO)
	fmt.Fprintln(out, "v", opts.Version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Escribe 'salir' o pulsa Ctrl+D para terminar")
	fmt.Fprintln(out, "Tab completa palabras y métodos, ↑↓ recorre el historial")
	fmt.Fprintln(out, "Escribe ':ayuda' para ver los comandos")
	fmt.Fprintln(out, "")

	for {
		prompt := PROMPT
		if s.Pending() {
			prompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				if s.Pending() {
					fmt.Fprintln(out, "^C (descartado)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				s.Discard()
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "\n¡Hasta luego!")
				return
			}
			fmt.Fprintf(out, "Error leyendo la entrada: %v\n", err)
			continue
		}

		done, entry := s.Feed(input)
		if entry != "" {
			line.AppendHistory(entry)
		}
		if done {
			return
		}
	}
}

// Session holds the state of one REPL: the environment that persists
// between entries and any multi-line input still being collected.
type Session struct {
	out     io.Writer
	opts    Options
	env     *quetzal.Environment
	console quetzal.Console
	buffer  strings.Builder
}

// NewSession creates a session writing program output and messages to out.
func NewSession(out io.Writer, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Language == language.Und {
		opts.Language = language.Spanish
	}
	return &Session{
		out:     out,
		opts:    opts,
		env:     quetzal.NewEnvironment(),
		console: quetzal.WriterConsole(out, opts.Color),
	}
}

// Pending reports whether a multi-line entry is being collected.
func (s *Session) Pending() bool {
	return s.buffer.Len() > 0
}

// Discard drops any partially entered input.
func (s *Session) Discard() {
	s.buffer.Reset()
}

// Feed handles one line of input. done is true when the user asked to
// leave; entry is the complete input that ran, for the history.
func (s *Session) Feed(input string) (done bool, entry string) {
	trimmed := strings.TrimSpace(input)

	if !s.Pending() {
		switch {
		case trimmed == "salir" || trimmed == "exit":
			fmt.Fprintln(s.out, "¡Hasta luego!")
			return true, ""
		case strings.HasPrefix(trimmed, ":"):
			s.command(trimmed)
			return false, ""
		case trimmed == "":
			return false, ""
		}
	}

	if s.Pending() {
		s.buffer.WriteString("\n")
	}
	s.buffer.WriteString(input)

	full := s.buffer.String()
	if needsMoreInput(full) {
		return false, ""
	}
	s.buffer.Reset()

	err := quetzal.InterpretWith(full,
		quetzal.WithEnvironment(s.env),
		quetzal.WithConsole(s.console),
		quetzal.WithLogger(s.opts.Logger),
		quetzal.WithLanguage(s.opts.Language),
		quetzal.WithMaxCallDepth(s.opts.MaxDepth),
	)
	if err != nil {
		printError(s.out, err)
	}
	return false, full
}

// command handles REPL meta-commands that start with ':'
func (s *Session) command(input string) {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case ":ayuda", ":a", ":?":
		if arg != "" {
			printMethodHelp(s.out, arg)
			return
		}
		fmt.Fprintln(s.out, "Comandos:")
		fmt.Fprintln(s.out, "  :ayuda, :a, :?   Muestra esta ayuda")
		fmt.Fprintln(s.out, "  :ayuda MÉTODO    Describe un método predefinido")
		fmt.Fprintln(s.out, "  :env             Muestra las variables definidas")
		fmt.Fprintln(s.out, "  :limpiar         Borra todas las variables y definiciones")
		fmt.Fprintln(s.out, "  salir            Termina la sesión")
	case ":env":
		printEnvironment(s.env, s.out)
	case ":limpiar":
		s.env = quetzal.NewEnvironment()
		fmt.Fprintln(s.out, "Entorno vacío")
	default:
		fmt.Fprintf(s.out, "Comando desconocido: %s (escribe :ayuda)\n", cmd)
	}
}

// printMethodHelp describes the builtin method name for each type that has
// it, or suggests close names when none does.
func printMethodHelp(out io.Writer, name string) {
	name = strings.TrimPrefix(name, ".")
	docs := evaluator.MethodHelp(name)
	if len(docs) == 0 {
		fmt.Fprintf(out, "No hay ningún método llamado %s\n", name)
		if matches := qerrors.FindTopMatches(name, evaluator.MethodNames(), 3); len(matches) > 0 {
			fmt.Fprintf(out, "¿Quisiste decir: %s?\n", strings.Join(matches, ", "))
		}
		return
	}
	for _, d := range docs {
		fmt.Fprintf(out, "  %s.%s  [argumentos: %s]  %s\n", d.Type, name, d.Arity, d.Description)
	}
}

// printEnvironment displays all user-defined variables in the environment
func printEnvironment(env *quetzal.Environment, out io.Writer) {
	vars := env.UserVariables()
	if len(vars) == 0 {
		fmt.Fprintln(out, "(sin variables)")
		return
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := vars[name]
		typeStr, ok := env.DeclaredType(name)
		if !ok || typeStr == "" {
			typeStr = string(v.Type())
			if inst, isInst := v.(*evaluator.Instance); isInst {
				typeStr = inst.TypeName
			}
		}
		value := v.Inspect()
		if runes := []rune(value); len(runes) > 60 {
			value = string(runes[:57]) + "..."
		}
		if env.IsMutable(name) {
			typeStr = "mut " + typeStr
		}
		fmt.Fprintf(out, "  %s: %s = %s\n", name, typeStr, value)
	}
}

func printError(out io.Writer, err error) {
	var qerr *qerrors.QuetzalError
	if errors.As(err, &qerr) {
		io.WriteString(out, qerr.PrettyString())
		io.WriteString(out, "\n")
		return
	}
	fmt.Fprintln(out, err)
}

// completionWords are the reserved words, types and print statements.
var completionWords = func() []string {
	seen := map[string]bool{}
	var words []string
	add := func(w string) {
		if !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	for _, w := range evaluator.ReservedWords() {
		add(w)
	}
	for _, w := range qerrors.Keywords {
		add(w)
	}
	for _, v := range evaluator.PrintVariants {
		add(v.Statement())
	}
	sort.Strings(words)
	return words
}()

// completeWord completes the word under the cursor. After a '.', builtin
// method names are offered instead of keywords.
func completeWord(line string, pos int) (head string, completions []string, tail string) {
	head, tail = line[:pos], line[pos:]

	start := len(head)
	for start > 0 && isWordByte(head[start-1]) {
		start--
	}
	word := head[start:]
	head = head[:start]

	candidates := completionWords
	if strings.HasSuffix(head, ".") {
		candidates = evaluator.MethodNames()
	} else if word == "" {
		return head, nil, tail
	}

	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			completions = append(completions, c)
		}
	}
	return head, completions, tail
}

// isWordByte accepts ASCII identifier bytes and any byte of a multi-byte
// rune, so accented names stay whole.
func isWordByte(b byte) bool {
	return b == '_' || b >= 0x80 || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// needsMoreInput checks if the input has unclosed braces, brackets, parentheses or comments
func needsMoreInput(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	depth := 0
	comment := 0
	inString := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if comment > 0 {
			switch {
			case strings.HasPrefix(input[i:], "/*"):
				comment++
				i++
			case strings.HasPrefix(input[i:], "*/"):
				comment--
				i++
			}
			continue
		}

		if inString {
			switch ch {
			case '\\':
				i++
			case '"':
				inString = false
			case '\n':
				inString = false
			}
			continue
		}

		switch {
		case ch == '"':
			inString = true
		case strings.HasPrefix(input[i:], "//"):
			for i < len(input) && input[i] != '\n' {
				i++
			}
		case strings.HasPrefix(input[i:], "/*"):
			comment++
			i++
		case ch == '{' || ch == '[' || ch == '(':
			depth++
		case ch == '}' || ch == ']' || ch == ')':
			depth--
		}
	}

	if depth > 0 || comment > 0 {
		return true
	}
	// hacer { ... } waits for its mientras line
	return strings.HasPrefix(input, "hacer") && strings.HasSuffix(input, "}")
}
