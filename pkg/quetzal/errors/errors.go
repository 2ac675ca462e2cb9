// Package errors provides structured error types for the Quetzal language.
//
// QuetzalError carries a class, a catalog code, a rendered message and the
// 1-based source line where the interpreter detected the problem. Messages
// are rendered from Spanish templates held in ErrorCatalog.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassSyntax     ErrorClass = "sintaxis"    // Malformed statements, unterminated blocks
	ClassType       ErrorClass = "tipo"        // Type mismatches, unknown types
	ClassName       ErrorClass = "nombre"      // Reserved words, invalid identifiers
	ClassUndefined  ErrorClass = "indefinido"  // Unbound variables, unknown functions/methods
	ClassArithmetic ErrorClass = "aritmetica"  // Division by zero
	ClassIndex      ErrorClass = "indice"      // Out of bounds
	ClassArity      ErrorClass = "aridad"      // Wrong argument count
	ClassReturn     ErrorClass = "retorno"     // Missing return
	ClassConversion ErrorClass = "conversion"  // Failed parses and codecs
	ClassJSON       ErrorClass = "json"        // Malformed jsn literals
	ClassState      ErrorClass = "estado"      // Recursion limit, misplaced control flow
)

// QuetzalError represents any error raised while folding, parsing or
// executing a Quetzal program.
type QuetzalError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"` // 1-based line (0 if unknown)
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *QuetzalError) Error() string {
	return e.String()
}

// String returns the canonical single-line form "Error en línea N: mensaje".
// Hints are not included; use PrettyString for display.
func (e *QuetzalError) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("Error en línea %d: %s", e.Line, e.Message)
	}
	return "Error: " + e.Message
}

// PrettyString returns a multi-line formatted string for display.
func (e *QuetzalError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassSyntax, ClassJSON:
		sb.WriteString("Error de sintaxis")
	default:
		sb.WriteString("Error de ejecución")
	}

	if e.File != "" {
		sb.WriteString(":\n  en: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  línea: %d", e.Line))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": línea %d\n  ", e.Line))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *QuetzalError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *QuetzalError) WithFile(file string) *QuetzalError {
	copy := *e
	copy.File = file
	return &copy
}

// WithLine returns a copy of the error with the line set.
func (e *QuetzalError) WithLine(line int) *QuetzalError {
	copy := *e
	copy.Line = line
	return &copy
}

// Is reports whether target is a QuetzalError with the same code.
// It lets callers write errors.Is(err, &QuetzalError{Code: "ARIT-0001"}).
func (e *QuetzalError) Is(target error) bool {
	t, ok := target.(*QuetzalError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Syntax errors (SINTAXIS-0xxx)
	// ========================================
	"SINTAXIS-0001": {
		Class:    ClassSyntax,
		Template: "expresión inválida: {{.Expr}}",
	},
	"SINTAXIS-0002": {
		Class:    ClassSyntax,
		Template: "bloque sin cerrar: falta '}'",
	},
	"SINTAXIS-0003": {
		Class:    ClassSyntax,
		Template: "comentario de bloque sin cerrar",
		Hints:    []string{"cierra el comentario con */"},
	},
	"SINTAXIS-0004": {
		Class:    ClassSyntax,
		Template: "cadena sin cerrar",
	},
	"SINTAXIS-0005": {
		Class:    ClassSyntax,
		Template: "paréntesis desbalanceados en: {{.Expr}}",
	},
	"SINTAXIS-0006": {
		Class:    ClassSyntax,
		Template: "declaración mal formada de {{.Construct}}: {{.Line}}",
	},
	"SINTAXIS-0007": {
		Class:    ClassSyntax,
		Template: "'{{.Keyword}}' fuera de {{.Context}}",
	},
	"SINTAXIS-0008": {
		Class:    ClassSyntax,
		Template: "parámetro duplicado '{{.Name}}' en la función {{.Function}}",
	},
	"SINTAXIS-0009": {
		Class:    ClassSyntax,
		Template: "imprimir requiere una expresión",
		Hints:    []string{"imprimir(\"texto\")"},
	},
	"SINTAXIS-0010": {
		Class:    ClassSyntax,
		Template: "falta la condición 'mientras (...)' tras el bloque hacer",
	},
	"SINTAXIS-0011": {
		Class:    ClassSyntax,
		Template: "'sino' sin 'si' previo",
	},

	// ========================================
	// Type errors (TIPO-0xxx)
	// ========================================
	"TIPO-0001": {
		Class:    ClassType,
		Template: "tipos incompatibles: no se puede asignar {{.Got}} a {{.Expected}} '{{.Name}}'",
	},
	"TIPO-0002": {
		Class:    ClassType,
		Template: "tipo desconocido: {{.Type}}",
	},
	"TIPO-0003": {
		Class:    ClassType,
		Template: "tipos incompatibles para '{{.Operator}}': {{.Left}} y {{.Right}}",
	},
	"TIPO-0004": {
		Class:    ClassType,
		Template: "el operador '{{.Operator}}' requiere bool, se obtuvo {{.Got}}",
	},
	"TIPO-0005": {
		Class:    ClassType,
		Template: "la condición debe ser bool, se obtuvo {{.Got}}",
	},
	"TIPO-0006": {
		Class:    ClassType,
		Template: "no se puede indexar {{.Type}}",
	},
	"TIPO-0007": {
		Class:    ClassType,
		Template: "no se puede iterar sobre {{.Type}}",
	},
	"TIPO-0008": {
		Class:    ClassType,
		Template: "{{.Method}} espera {{.Expected}} como argumento {{.Position}}, se obtuvo {{.Got}}",
	},
	"TIPO-0009": {
		Class:    ClassType,
		Template: "la función {{.Function}} debe retornar {{.Expected}}, se obtuvo {{.Got}}",
	},
	"TIPO-0010": {
		Class:    ClassType,
		Template: "el operador '{{.Operator}}' requiere un número, se obtuvo {{.Got}}",
	},

	// ========================================
	// Name errors (NOMBRE-0xxx)
	// ========================================
	"NOMBRE-0001": {
		Class:    ClassName,
		Template: "'{{.Name}}' es una palabra reservada",
	},
	"NOMBRE-0002": {
		Class:    ClassName,
		Template: "identificador inválido: '{{.Name}}'",
		Hints:    []string{"los nombres empiezan con una letra o '_'"},
	},

	// ========================================
	// Undefined errors (INDEF-0xxx)
	// ========================================
	"INDEF-0001": {
		Class:    ClassUndefined,
		Template: "variable no definida: {{.Name}}",
	},
	"INDEF-0002": {
		Class:    ClassUndefined,
		Template: "método desconocido '{{.Method}}' para {{.Type}}",
	},
	"INDEF-0003": {
		Class:    ClassUndefined,
		Template: "función no definida: {{.Name}}",
	},
	"INDEF-0004": {
		Class:    ClassUndefined,
		Template: "campo desconocido '{{.Field}}' en {{.Type}}",
	},

	// ========================================
	// Arithmetic errors (ARIT-0xxx)
	// ========================================
	"ARIT-0001": {
		Class:    ClassArithmetic,
		Template: "división por cero",
	},

	// ========================================
	// Index errors (INDICE-0xxx)
	// ========================================
	"INDICE-0001": {
		Class:    ClassIndex,
		Template: "índice fuera de rango: {{.Index}} (longitud {{.Length}})",
	},
	"INDICE-0002": {
		Class:    ClassIndex,
		Template: "clave no encontrada: {{.Key}}",
	},

	// ========================================
	// Arity errors (ARIDAD-0xxx)
	// ========================================
	"ARIDAD-0001": {
		Class:    ClassArity,
		Template: "faltan argumentos: {{.Function}} espera {{.Expected}}, se recibieron {{.Got}}",
	},
	"ARIDAD-0002": {
		Class:    ClassArity,
		Template: "argumentos incorrectos: {{.Function}} espera entre {{.Min}} y {{.Max}}, se recibieron {{.Got}}",
	},
	"ARIDAD-0003": {
		Class:    ClassArity,
		Template: "faltan argumentos: {{.Function}} espera al menos {{.Min}}, se recibieron {{.Got}}",
	},

	// ========================================
	// Return errors (RETORNO-0xxx)
	// ========================================
	"RETORNO-0001": {
		Class:    ClassReturn,
		Template: "la función {{.Function}} debe retornar un valor de tipo {{.Type}}",
		Hints:    []string{"agrega 'retornar <valor>' al cuerpo de {{.Function}}"},
	},

	// ========================================
	// Conversion errors (CONV-0xxx)
	// ========================================
	"CONV-0001": {
		Class:    ClassConversion,
		Template: "conversión a {{.Target}} inválida: '{{.Value}}'",
	},
	"CONV-0002": {
		Class:    ClassConversion,
		Template: "literal numérico fuera de rango: {{.Value}}",
	},
	"CONV-0003": {
		Class:    ClassConversion,
		Template: "base64 inválido: {{.Reason}}",
	},
	"CONV-0004": {
		Class:    ClassConversion,
		Template: "URI inválida: {{.Reason}}",
	},
	"CONV-0005": {
		Class:    ClassConversion,
		Template: "{{.Method}}: {{.Reason}}",
	},

	// ========================================
	// JSON errors (JSON-0xxx)
	// ========================================
	"JSON-0001": {
		Class:    ClassJSON,
		Template: "JSON mal formado en la posición {{.Offset}}: {{.Reason}}",
	},

	// ========================================
	// State errors (PILA-0xxx)
	// ========================================
	"PILA-0001": {
		Class:    ClassState,
		Template: "profundidad máxima de llamadas excedida ({{.Max}}) en {{.Function}}",
		Hints:    []string{"revisa que la recursión tenga un caso base"},
	},
}

// New creates a QuetzalError from a catalog code with template data.
// If the code is not found in the catalog, returns a generic error.
func New(code string, data map[string]any) *QuetzalError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := fmt.Sprintf("error desconocido: %s", code)
		if m, ok := data["Message"].(string); ok {
			msg = m
		}
		return &QuetzalError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &QuetzalError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewAtLine creates a QuetzalError with the source line set.
func NewAtLine(code string, line int, data map[string]any) *QuetzalError {
	err := New(code, data)
	err.Line = line
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *QuetzalError {
	return &QuetzalError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// ============================================================================
// Fuzzy Matching - "¿Quisiste decir?" suggestions
// ============================================================================

// levenshteinDistance computes the edit distance between two strings,
// counting runes so accented names are not over-penalised.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// FuzzyMatch represents a fuzzy match result with its distance.
type FuzzyMatch struct {
	Value    string
	Distance int
}

// matchThreshold returns the maximum edit distance accepted for a word.
// Short words (1-3): 1 edit, medium (4-6): 2, longer: 3.
func matchThreshold(input string) int {
	n := len([]rune(input))
	switch {
	case n >= 7:
		return 3
	case n >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within the threshold, otherwise empty string.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	var bestMatch string
	bestDistance := -1

	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > matchThreshold(input) {
		return ""
	}

	return bestMatch
}

// FindTopMatches returns the top N closest matches to the input.
func FindTopMatches(input string, candidates []string, n int) []string {
	if len(input) == 0 || len(candidates) == 0 || n <= 0 {
		return nil
	}

	inputLower := strings.ToLower(input)

	var matches []FuzzyMatch
	for _, candidate := range candidates {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if dist > 0 {
			matches = append(matches, FuzzyMatch{Value: candidate, Distance: dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	threshold := matchThreshold(input)
	var result []string
	for i := 0; i < len(matches) && i < n; i++ {
		if matches[i].Distance <= threshold {
			result = append(result, matches[i].Value)
		}
	}

	return result
}

func didYouMean(s string) string {
	return "¿Quisiste decir `" + s + "`?"
}

// NewUndefinedIdentifier creates an unbound variable error with optional fuzzy matching.
func NewUndefinedIdentifier(name string, availableIdentifiers []string) *QuetzalError {
	err := New("INDEF-0001", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, availableIdentifiers); suggestion != "" {
		err.Hints = append(err.Hints, didYouMean(suggestion))
	}
	return err
}

// NewUndefinedMethod creates an unknown method error with optional fuzzy matching.
func NewUndefinedMethod(method, typeName string, availableMethods []string) *QuetzalError {
	err := New("INDEF-0002", map[string]any{
		"Method": method,
		"Type":   typeName,
	})
	if suggestion := FindClosestMatch(method, availableMethods); suggestion != "" {
		err.Hints = append(err.Hints, didYouMean(suggestion))
	}
	return err
}

// NewUndefinedFunction creates an unknown function error with optional fuzzy matching.
func NewUndefinedFunction(name string, availableFunctions []string) *QuetzalError {
	err := New("INDEF-0003", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, availableFunctions); suggestion != "" {
		err.Hints = append(err.Hints, didYouMean(suggestion))
	}
	return err
}

// Keywords lists Quetzal reserved words; used for typo suggestions and by
// the REPL completer.
var Keywords = []string{
	"si", "sino", "mientras", "para", "hacer", "retornar", "romper",
	"continuar", "objeto", "nuevo", "verdadero", "falso", "mut",
	"asincrono", "en", "imprimir",
}
