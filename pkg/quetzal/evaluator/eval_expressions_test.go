package evaluator

import (
	"testing"
)

func testEval(t *testing.T, input string, env *Environment) (Value, error) {
	t.Helper()
	if env == nil {
		env = NewEnvironment()
	}
	return New(WithConsole(&recordingConsole{})).eval(input, env)
}

func TestEvalExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// arithmetic
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"10 - 2 - 3", "5"},
		{"7 / 2", "3"},
		{"-7 / 2", "-3"},
		{"7.0 / 2", "3.5"},
		{"10 % 3", "1"},
		{"2.5 * 4", "10"},
		{"-(3 + 2)", "-5"},
		{"2 * -3", "-6"},
		{"1e3 + 1", "1001"},
		{"2.5e-1 * 4", "1"},
		{"-9223372036854775808", "-9223372036854775808"},

		// concatenation
		{`"Hola " + "mundo"`, "Hola mundo"},
		{`"n = " + 5`, "n = 5"},
		{`1 + 2 + "x"`, "3x"},
		{`"x" + 1 + 2`, "x12"},
		{`"es " + verdadero`, "es verdadero"},
		{`"lista: " + [1, 2]`, "lista: [1, 2]"},

		// comparison
		{"3 > 2", "verdadero"},
		{"3 <= 2", "falso"},
		{"2 == 2.0", "verdadero"},
		{"0.1 + 0.2 == 0.3", "verdadero"},
		{"1 != 1", "falso"},
		{`"a" == "a"`, "verdadero"},
		{`"a" != "b"`, "verdadero"},
		{"verdadero != falso", "verdadero"},

		// logic
		{"verdadero && falso", "falso"},
		{"verdadero y verdadero", "verdadero"},
		{"falso o verdadero", "verdadero"},
		{"falso || falso", "falso"},
		{"!verdadero", "falso"},
		{"!(1 > 2)", "verdadero"},
		{"1 < 2 && 3 < 4", "verdadero"},
		{"falso && verdadero || verdadero", "verdadero"},

		// ternary
		{`5 > 3 ? "si" : "no"`, "si"},
		{`5 < 3 ? "si" : "no"`, "no"},
		{`falso ? 1 : verdadero ? 2 : 3`, "2"},

		// literals and access
		{"[1, 2, 3]", "[1, 2, 3]"},
		{"[]", "[]"},
		{`"Hola"[1]`, "o"},
		{`"año"[1]`, "ñ"},
		{"[10, 20, 30][2]", "30"},
		{"[[1, 2], [3]][0][1]", "2"},
		{`{a: 1, b: "x"}`, "{a: 1, b: x}"},
		{`{a: {b: [5]}}["a"]["b"][0]`, "5"},
		{`{a: 1}.a`, "1"},
		{"vacio", "vacio"},
		{`"con \"comillas\""`, `con "comillas"`},
		{`"a\tb"`, "a\tb"},

		// methods
		{`"Hola".invertir()`, "aloH"},
		{`"  hola  ".recortar().a_mayusculas()`, "HOLA"},
		{`"a,b,c".dividir(",").longitud()`, "3"},
		{`"42".entero() + 1`, "43"},
		{"3.7.entero()", "3"},
		{"5.cadena() + 1", "51"},
		{`[1, 2].agregar(3)`, "[1, 2, 3]"},
		{`["a", "b"].unir("-")`, "a-b"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := testEval(t, tt.input, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Inspect() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, v.Inspect())
			}
		})
	}
}

func TestEvalExpressionErrors(t *testing.T) {
	tests := []struct {
		input string
		code  string
	}{
		{"5 / 0", "ARIT-0001"},
		{"5 % 0", "ARIT-0001"},
		{"5.0 / 0.0", "ARIT-0001"},
		{"x + 1", "INDEF-0001"},
		{`"a" < "b"`, "TIPO-0003"},
		{`verdadero > falso`, "TIPO-0003"},
		{`1 == "1"`, "TIPO-0003"},
		{`[1] - 1`, "TIPO-0003"},
		{"5 && verdadero", "TIPO-0004"},
		{"!5", "TIPO-0004"},
		{`-"a"`, "TIPO-0010"},
		{"1 ? 2 : 3", "TIPO-0005"},
		{"[1, 2][5]", "INDICE-0001"},
		{"[1, 2][-1]", "INDICE-0001"},
		{`"abc"[3]`, "INDICE-0001"},
		{`{a: 1}["b"]`, "INDICE-0002"},
		{"5[0]", "TIPO-0006"},
		{"99999999999999999999", "CONV-0002"},
		{"5 $ 3", "SINTAXIS-0001"},
		{"5 ^ 2", "SINTAXIS-0001"},
		{"(1 + 2", "SINTAXIS-0005"},
		{`"abierta`, "SINTAXIS-0004"},
		{"verdadero ? 1", "SINTAXIS-0001"},
		{"[1, ]", "SINTAXIS-0001"},
		{`{a: 1,}`, "JSON-0001"},
		{`"x".volar()`, "INDEF-0002"},
		{`"x".repetir()`, "ARIDAD-0001"},
		{"nuevo Fantasma()", "TIPO-0002"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := testEval(t, tt.input, nil)
			if err == nil {
				t.Fatalf("expected error %s, got none", tt.code)
			}
			if got := errorCode(err); got != tt.code {
				t.Errorf("expected %s, got %s (%v)", tt.code, got, err)
			}
		})
	}
}

func TestEvalVariablesAndWriteBack(t *testing.T) {
	env := NewEnvironment()
	env.Declare("xs", &List{Elements: []Value{&Integer{Value: 1}}}, "lista", true)
	env.Declare("d", &Map{Pairs: map[string]Value{"l": &List{Elements: []Value{}}}}, "jsn", true)

	if _, err := testEval(t, "xs.agregar(2)", env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := testEval(t, `d["l"].agregar("x")`, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	xs, _ := env.Get("xs")
	if xs.Inspect() != "[1, 2]" {
		t.Errorf("xs: expected [1, 2], got %s", xs.Inspect())
	}
	d, _ := env.Get("d")
	if d.Inspect() != "{l: [x]}" {
		t.Errorf("d: expected {l: [x]}, got %s", d.Inspect())
	}
}

func TestSplitBinary(t *testing.T) {
	tests := []struct {
		input string
		ops   []string
		left  string
		op    string
		right string
		ok    bool
	}{
		{"a + b + c", additiveOperators, "a + b", "+", "c", true},
		{"-a", additiveOperators, "", "", "", false},
		{"a * -b", additiveOperators, "", "", "", false},
		{"1e-5", additiveOperators, "", "", "", false},
		{"x1e - 5", additiveOperators, "x1e", "-", "5", true},
		{`"a + b"`, additiveOperators, "", "", "", false},
		{"f(a + b)", additiveOperators, "", "", "", false},
		{"a <= b", relationalOperators, "a", "<=", "b", true},
		{"a == b", relationalOperators, "a", "==", "b", true},
		{"a y b", andOperators, "a", "y", "b", true},
		{"ya", andOperators, "", "", "", false},
		{"hoy o mañana", orOperators, "hoy", "o", "mañana", true},
		{"3 * y * 2", andOperators, "", "", "", false},
		{"x < y && y > x", andOperators, "x < y", "&&", "y > x", true},
		{"y == 2 y x == 1", andOperators, "y == 2", "y", "x == 1", true},
		{"a y !b", andOperators, "a", "y", "!b", true},
		{"y y y", andOperators, "y", "y", "y", true},
		{"x + o - 1", orOperators, "", "", "", false},
		{"o != 3", orOperators, "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			left, op, right, ok := splitBinary(tt.input, tt.ops)
			if ok != tt.ok || left != tt.left || op != tt.op || right != tt.right {
				t.Errorf("expected (%q %q %q %v), got (%q %q %q %v)",
					tt.left, tt.op, tt.right, tt.ok, left, op, right, ok)
			}
		})
	}
}

func TestSplitPostfix(t *testing.T) {
	base, ops, ok := splitPostfix(`lista[0].campo .metodo(1, "a")`)
	if !ok {
		t.Fatal("expected a postfix chain")
	}
	if base != "lista" {
		t.Errorf("base: expected lista, got %q", base)
	}
	want := []postfixOp{
		{kind: postfixIndex, arg: "0"},
		{kind: postfixField, name: "campo"},
		{kind: postfixCall, name: "metodo", arg: `1, "a"`},
	}
	if len(ops) != len(want) {
		t.Fatalf("expected %d ops, got %d", len(want), len(ops))
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("op %d: expected %+v, got %+v", i, want[i], ops[i])
		}
	}

	if _, _, ok := splitPostfix("5 5"); ok {
		t.Error("expected trailing text to be rejected")
	}
}
