package evaluator

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	qerrors "github.com/sambeau/quetzal/pkg/quetzal/errors"
)

// recordingConsole keeps printed lines for assertions.
type recordingConsole struct {
	lines    []string
	variants []PrintVariant
}

func (c *recordingConsole) Print(variant PrintVariant, text string) {
	c.lines = append(c.lines, text)
	c.variants = append(c.variants, variant)
}

// runProgram executes src in a fresh environment and returns its output
// joined by newlines.
func runProgram(t *testing.T, src string, opts ...Option) (string, error) {
	t.Helper()
	console := &recordingConsole{}
	in := New(append([]Option{WithConsole(console)}, opts...)...)
	err := in.Run(src, NewEnvironment())
	return strings.Join(console.lines, "\n"), err
}

// errorCode extracts the catalog code of err, or "".
func errorCode(err error) string {
	var qerr *qerrors.QuetzalError
	if stderrors.As(err, &qerr) {
		return qerr.Code
	}
	return ""
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "counted loop sum",
			input: `entero suma = 0
para (entero i = 1; i <= 5; i++) {
    suma += i
}
imprimir(suma)`,
			expected: "15",
		},
		{
			name: "y and o as variable names",
			input: `entero x = 1
entero y = 2
entero o = 3
imprimir(3 * y * 2)
bool b = x < y && y > x
imprimir(b)
imprimir(o - y + o)
imprimir(y < o y o > x)`,
			expected: "12\nverdadero\n4\nverdadero",
		},
		{
			name:     "string reverse",
			input:    `imprimir("Hola".invertir())`,
			expected: "aloH",
		},
		{
			name: "function call",
			input: `entero doble(entero n) {
    retornar n * 2
}
imprimir(doble(3) == 6)`,
			expected: "verdadero",
		},
		{
			name: "recursion",
			input: `entero fact(entero n) {
    si (n <= 1) {
        retornar 1
    }
    retornar n * fact(n - 1)
}
imprimir(fact(5))`,
			expected: "120",
		},
		{
			name: "blocks share the enclosing scope",
			input: `si (verdadero) {
    entero x = 5
}
imprimir(x)`,
			expected: "5",
		},
		{
			name: "break ends only the innermost loop",
			input: `entero total = 0
para (entero i = 0; i < 3; i++) {
    para (entero j = 0; j < 3; j++) {
        si (j == 1) {
            romper
        }
        total++
    }
}
imprimir(total)`,
			expected: "3",
		},
		{
			name: "continue still runs the step",
			input: `entero s = 0
para (entero i = 0; i < 5; i++) {
    si (i % 2 == 0) { continuar }
    s += i
}
imprimir(s)`,
			expected: "4",
		},
		{
			name: "while loop",
			input: `entero n = 0
mientras (n < 3) {
    n++
}
imprimir(n)`,
			expected: "3",
		},
		{
			name: "do while with condition after brace",
			input: `entero n = 0
hacer {
    n += 2
} mientras (n < 5)
imprimir(n)`,
			expected: "6",
		},
		{
			name: "do while with condition on next line",
			input: `entero n = 10
hacer {
    n++
}
mientras (n < 5)
imprimir(n)`,
			expected: "11",
		},
		{
			name: "if chain takes one arm",
			input: `entero x = 7
si (x < 5) {
    imprimir("bajo")
} sino si (x < 10) {
    imprimir("medio")
} sino {
    imprimir("alto")
}`,
			expected: "medio",
		},
		{
			name: "else on its own line",
			input: `si (falso) {
    imprimir("a")
}
sino {
    imprimir("b")
}
imprimir("c")`,
			expected: "b\nc",
		},
		{
			name: "foreach over list",
			input: `para (x en [1, 2, 3]) {
    imprimir(x)
}`,
			expected: "1\n2\n3",
		},
		{
			name: "foreach over string",
			input: `para (cadena c en "año") {
    imprimir(c)
}`,
			expected: "a\nñ\no",
		},
		{
			name: "foreach over jsn keys in order",
			input: `jsn d = {b: 2, a: 1}
para (k en d) {
    imprimir(k)
}`,
			expected: "a\nb",
		},
		{
			name: "push commits to the variable",
			input: `lista nums = [1, 2]
nums.agregar(3)
imprimir(nums)
imprimir(nums.longitud())`,
			expected: "[1, 2, 3]\n3",
		},
		{
			name: "push inside a chain",
			input: `lista nums = []
imprimir(nums.agregar(1).agregar(2).longitud())
imprimir(nums)`,
			expected: "2\n[1, 2]",
		},
		{
			name: "objects",
			input: `objeto Persona {
    cadena nombre
    entero edad
}
Persona p = nuevo Persona("Ana", 30)
imprimir(p.saludar())
p.cumplir_anios()
imprimir(p.edad)
imprimir(p)`,
			expected: "Hola, soy Ana\n31\nPersona { nombre: Ana, edad: 31 }",
		},
		{
			name: "field assignment",
			input: `objeto Persona {
    cadena nombre
    entero edad
}
Persona p = nuevo Persona("Ana", 30)
p.edad = 40
imprimir(p.presentar())`,
			expected: "Ana tiene 40 años",
		},
		{
			name: "index assignment",
			input: `lista xs = [1, 2, 3]
xs[1] = 20
xs[2] += 5
imprimir(xs)`,
			expected: "[1, 20, 8]",
		},
		{
			name: "multi-line jsn literal",
			input: `jsn d = {
    nombre: "Ana",
    datos: [1, 2]
}
imprimir(d.datos)
imprimir(d["nombre"])`,
			expected: "[1, 2]\nAna",
		},
		{
			name: "jsn literal resolves variables",
			input: `cadena nombre = "Luis"
jsn u = { nombre: nombre, activo: true }
imprimir(u)`,
			expected: "{activo: verdadero, nombre: Luis}",
		},
		{
			name: "method chain across lines",
			input: `cadena s = "  hola mundo  "
imprimir(s
    .recortar()
    .a_mayusculas())`,
			expected: "HOLA MUNDO",
		},
		{
			name: "comments",
			input: `// nada
entero x = 1 // uno
/* bloque /* anidado */ sigue */ imprimir(x)
/*
x = 2
*/
imprimir("// no es comentario")`,
			expected: "1\n// no es comentario",
		},
		{
			name:     "declaration defaults",
			input:    "entero a\nnúmero b\ncadena c\nbool d\nlista e\njsn f\nimprimir(a)\nimprimir(b)\nimprimir(c.esta_vacia())\nimprimir(d)\nimprimir(e)\nimprimir(f)",
			expected: "0\n0\nverdadero\nfalso\n[]\n{}",
		},
		{
			name:     "entero truncates a number",
			input:    "entero x = 3.9\nimprimir(x)",
			expected: "3",
		},
		{
			name:     "número widens an integer",
			input:    "número x = 2\nx = x / 4\nimprimir(x)",
			expected: "0.5",
		},
		{
			name:     "ternary is lazy",
			input:    "entero x = verdadero ? 1 : 1 / 0\nimprimir(x)",
			expected: "1",
		},
		{
			name:     "print without parentheses",
			input:    `imprimir "hola"`,
			expected: "hola",
		},
		{
			name: "void function",
			input: `vacio saludar(cadena n) {
    imprimir("hola " + n)
}
saludar("Eva")`,
			expected: "hola Eva",
		},
		{
			name: "async keyword is accepted",
			input: `asincrono entero uno() {
    retornar 1
}
imprimir(uno())`,
			expected: "1",
		},
		{
			name: "functions do not change caller lists",
			input: `vacio f(lista l) {
    l.agregar(9)
}
lista xs = [1]
f(xs)
imprimir(xs)`,
			expected: "[1]",
		},
		{
			name:     "byte order mark and CRLF",
			input:    "\uFEFFentero x = 2\r\nimprimir(x)\r\n",
			expected: "2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runProgram(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, out); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProgramErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
		line  int
	}{
		{
			name:  "division by zero",
			input: "entero a = 10\nentero b = 0\nentero c = a / b\nimprimir(c)",
			code:  "ARIT-0001",
			line:  3,
		},
		{
			name:  "float division by zero",
			input: "imprimir(5.0 / 0.0)",
			code:  "ARIT-0001",
			line:  1,
		},
		{
			name:  "missing return at declaration",
			input: "entero f(entero n) {\n    imprimir(n)\n}",
			code:  "RETORNO-0001",
			line:  1,
		},
		{
			name:  "missing return at call",
			input: "entero f(entero n) {\n    si (n > 0) {\n        retornar n\n    }\n}\nimprimir(f(0))",
			code:  "RETORNO-0001",
			line:  6,
		},
		{
			name:  "function cannot see caller variables",
			input: "entero x = 1\nentero f() {\n    retornar x\n}\nimprimir(f())",
			code:  "INDEF-0001",
			line:  3,
		},
		{
			name:  "type mismatch on declaration",
			input: `entero x = "hola"`,
			code:  "TIPO-0001",
			line:  1,
		},
		{
			name:  "type mismatch on assignment",
			input: "cadena s = \"a\"\ns = 5",
			code:  "TIPO-0001",
			line:  2,
		},
		{
			name:  "reserved word",
			input: "entero si = 1",
			code:  "NOMBRE-0001",
			line:  1,
		},
		{
			name:  "type keyword as target",
			input: "entero = 5",
			code:  "NOMBRE-0001",
			line:  1,
		},
		{
			name:  "unknown type",
			input: "foo x = 1",
			code:  "TIPO-0002",
			line:  1,
		},
		{
			name:  "assignment to undeclared variable",
			input: "y = 3",
			code:  "INDEF-0001",
			line:  1,
		},
		{
			name:  "break outside loop",
			input: "imprimir(1)\nromper",
			code:  "SINTAXIS-0007",
			line:  2,
		},
		{
			name:  "return outside function",
			input: "retornar 5",
			code:  "SINTAXIS-0007",
			line:  1,
		},
		{
			name:  "empty print",
			input: "imprimir()",
			code:  "SINTAXIS-0009",
			line:  1,
		},
		{
			name:  "unterminated block",
			input: "si (verdadero) {\n    imprimir(1)",
			code:  "SINTAXIS-0002",
			line:  1,
		},
		{
			name:  "unterminated comment",
			input: "imprimir(1)\n/* sin cerrar",
			code:  "SINTAXIS-0003",
			line:  2,
		},
		{
			name:  "stray else",
			input: "sino {\n}",
			code:  "SINTAXIS-0011",
			line:  1,
		},
		{
			name:  "do without while",
			input: "hacer {\n    imprimir(1)\n}",
			code:  "SINTAXIS-0010",
			line:  1,
		},
		{
			name:  "duplicate parameter",
			input: "entero f(entero a, entero a) {\n    retornar a\n}",
			code:  "SINTAXIS-0008",
			line:  1,
		},
		{
			name:  "arity mismatch",
			input: "entero f(entero a) {\n    retornar a\n}\nimprimir(f(1, 2))",
			code:  "ARIDAD-0001",
			line:  4,
		},
		{
			name:  "undefined function",
			input: "imprimir(nada(1))",
			code:  "INDEF-0003",
			line:  1,
		},
		{
			name:  "undefined method",
			input: `imprimir("x".volar())`,
			code:  "INDEF-0002",
			line:  1,
		},
		{
			name:  "non-bool condition",
			input: "si (1) {\n}",
			code:  "TIPO-0005",
			line:  1,
		},
		{
			name:  "iterate over number",
			input: "para (x en 5) {\n}",
			code:  "TIPO-0007",
			line:  1,
		},
		{
			name:  "return type mismatch",
			input: "entero f() {\n    retornar \"a\"\n}\nimprimir(f())",
			code:  "TIPO-0009",
			line:  2,
		},
		{
			name:  "first error stops the program",
			input: "imprimir(1)\nimprimir(x)\nimprimir(2)",
			code:  "INDEF-0001",
			line:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runProgram(t, tt.input)
			if err == nil {
				t.Fatalf("expected error %s, got none", tt.code)
			}
			if got := errorCode(err); got != tt.code {
				t.Errorf("expected code %s, got %s (%v)", tt.code, got, err)
			}
			var qerr *qerrors.QuetzalError
			if stderrors.As(err, &qerr) && qerr.Line != tt.line {
				t.Errorf("expected line %d, got %d (%v)", tt.line, qerr.Line, err)
			}
		})
	}
}

func TestDivisionByZeroMessage(t *testing.T) {
	out, err := runProgram(t, "imprimir(\"antes\")\nentero b = 0\nimprimir(1 / b)")
	if err == nil {
		t.Fatal("expected error")
	}
	if got, want := err.Error(), "Error en línea 3: división por cero"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if out != "antes" {
		t.Errorf("output before the error should remain, got %q", out)
	}
}

func TestRecursionLimit(t *testing.T) {
	src := "entero f(entero n) {\n    retornar f(n + 1)\n}\nimprimir(f(0))"
	_, err := runProgram(t, src, WithMaxCallDepth(50))
	if got := errorCode(err); got != "PILA-0001" {
		t.Fatalf("expected PILA-0001, got %s (%v)", got, err)
	}
}

func TestPrintVariants(t *testing.T) {
	console := &recordingConsole{}
	src := `imprimir("a")
imprimir_error("b")
imprimir_advertencia("c")
imprimir_informacion("d")
imprimir_depurar("e")
imprimir_exito("f")
imprimir_alerta("g")
imprimir_confirmacion("h")`
	if err := New(WithConsole(console)).Run(src, NewEnvironment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := append([]PrintVariant{PrintPlain}, PrintVariants...)
	if diff := cmp.Diff(want, console.variants); diff != "" {
		t.Errorf("variants mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e", "f", "g", "h"}, console.lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironmentPersistsAcrossRuns(t *testing.T) {
	console := &recordingConsole{}
	in := New(WithConsole(console))
	env := NewEnvironment()
	if err := in.Run("entero x = 41", env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := in.Run("x++\nimprimir(x)", env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"42"}, console.lines); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCheck(t *testing.T) {
	in := New()
	if err := in.Check("si (x) {\n    imprimir(y)\n}"); err != nil {
		t.Errorf("structure is valid, got %v", err)
	}
	if err := in.Check("mientras (verdadero) {\n    imprimir(1)"); errorCode(err) != "SINTAXIS-0002" {
		t.Errorf("expected SINTAXIS-0002, got %v", err)
	}
	if err := in.Check("entero f(entero a, entero a) {\n    retornar a\n}"); errorCode(err) != "SINTAXIS-0008" {
		t.Errorf("expected SINTAXIS-0008, got %v", err)
	}
}
