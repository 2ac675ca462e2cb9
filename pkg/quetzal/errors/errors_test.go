package errors

import (
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
)

func TestQuetzalError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *QuetzalError
		expected string
	}{
		{
			name:     "message only",
			err:      &QuetzalError{Message: "algo salió mal"},
			expected: "Error: algo salió mal",
		},
		{
			name:     "with line",
			err:      &QuetzalError{Message: "división por cero", Line: 3},
			expected: "Error en línea 3: división por cero",
		},
		{
			name: "hints are not part of the canonical form",
			err: &QuetzalError{
				Message: "variable no definida: contdor",
				Line:    7,
				Hints:   []string{"¿Quisiste decir `contador`?"},
			},
			expected: "Error en línea 7: variable no definida: contdor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.String()
			if got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
			if tt.err.Error() != got {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), got)
			}
		})
	}
}

func TestQuetzalError_PrettyString(t *testing.T) {
	tests := []struct {
		name     string
		err      *QuetzalError
		contains []string
	}{
		{
			name:     "syntax error",
			err:      &QuetzalError{Class: ClassSyntax, Message: "bloque sin cerrar", Line: 2},
			contains: []string{"Error de sintaxis", "línea 2", "bloque sin cerrar"},
		},
		{
			name: "runtime error with file and hint",
			err: &QuetzalError{
				Class:   ClassUndefined,
				Message: "variable no definida: x",
				File:    "prueba.qz",
				Line:    4,
				Hints:   []string{"¿Quisiste decir `y`?"},
			},
			contains: []string{"Error de ejecución", "en: prueba.qz", "línea: 4", "¿Quisiste decir `y`?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.PrettyString()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("PrettyString() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestNew_FromCatalog(t *testing.T) {
	tests := []struct {
		code      string
		data      map[string]any
		wantClass ErrorClass
		wantMsg   string
		wantHints int
	}{
		{"ARIT-0001", nil, ClassArithmetic, "división por cero", 0},
		{"INDEF-0001", map[string]any{"Name": "x"}, ClassUndefined, "variable no definida: x", 0},
		{"INDICE-0001", map[string]any{"Index": 5, "Length": 3}, ClassIndex, "índice fuera de rango: 5 (longitud 3)", 0},
		{"RETORNO-0001", map[string]any{"Function": "g", "Type": "entero"}, ClassReturn, "la función g debe retornar un valor de tipo entero", 1},
		{"PILA-0001", map[string]any{"Max": 10, "Function": "f"}, ClassState, "profundidad máxima de llamadas excedida (10) en f", 1},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, tt.data)
			if err.Class != tt.wantClass {
				t.Errorf("Class = %q, want %q", err.Class, tt.wantClass)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if len(err.Hints) != tt.wantHints {
				t.Errorf("got %d hints, want %d", len(err.Hints), tt.wantHints)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNew_UnknownCode(t *testing.T) {
	err := New("NOPE-9999", map[string]any{"Message": "mensaje propio"})
	if err.Message != "mensaje propio" {
		t.Errorf("Message = %q, want fallback message", err.Message)
	}
	err = New("NOPE-9999", nil)
	if !strings.Contains(err.Message, "NOPE-9999") {
		t.Errorf("Message = %q, want it to mention the code", err.Message)
	}
}

func TestNewAtLine(t *testing.T) {
	err := NewAtLine("ARIT-0001", 3, nil)
	if got := err.Error(); got != "Error en línea 3: división por cero" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWithLineAndFile_Copy(t *testing.T) {
	orig := New("ARIT-0001", nil)
	withLine := orig.WithLine(9)
	withFile := withLine.WithFile("a.qz")

	if orig.Line != 0 {
		t.Errorf("original mutated: Line = %d", orig.Line)
	}
	if withLine.File != "" {
		t.Errorf("WithLine copy mutated by WithFile")
	}
	if withFile.Line != 9 || withFile.File != "a.qz" {
		t.Errorf("got line %d file %q", withFile.Line, withFile.File)
	}
}

func TestQuetzalError_Is(t *testing.T) {
	err := NewAtLine("ARIT-0001", 2, nil)
	var wrapped error = err
	if !stderrors.Is(wrapped, &QuetzalError{Code: "ARIT-0001"}) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(wrapped, &QuetzalError{Code: "TIPO-0001"}) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestToJSON(t *testing.T) {
	err := NewAtLine("INDEF-0001", 5, map[string]any{"Name": "x"})
	data, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatalf("ToJSON: %v", jerr)
	}
	var decoded map[string]any
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatalf("Unmarshal: %v", jerr)
	}
	if decoded["code"] != "INDEF-0001" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["line"] != float64(5) {
		t.Errorf("line = %v", decoded["line"])
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"longitud", "longitud", 0},
		{"longitd", "longitud", 1},
		{"número", "numero", 1},
		{"invertir", "invertri", 2},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFindClosestMatch(t *testing.T) {
	methods := []string{"longitud", "invertir", "recortar", "repetir", "reemplazar"}
	tests := []struct {
		input string
		want  string
	}{
		{"longitd", "longitud"},
		{"invertr", "invertir"},
		{"LONGITUD", ""}, // exact match ignoring case
		{"zzzzzz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FindClosestMatch(tt.input, methods); got != tt.want {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindTopMatches(t *testing.T) {
	got := FindTopMatches("repetr", []string{"repetir", "recortar", "reemplazar", "repetir2"}, 2)
	if len(got) == 0 || got[0] != "repetir" {
		t.Errorf("FindTopMatches = %v, want repetir first", got)
	}
	if got := FindTopMatches("x", nil, 3); got != nil {
		t.Errorf("FindTopMatches with no candidates = %v", got)
	}
}

func TestNewUndefinedHelpers(t *testing.T) {
	err := NewUndefinedIdentifier("contdor", []string{"contador", "total"})
	if len(err.Hints) != 1 || !strings.Contains(err.Hints[0], "contador") {
		t.Errorf("hints = %v", err.Hints)
	}

	err = NewUndefinedMethod("longitd", "cadena", []string{"longitud"})
	if err.Code != "INDEF-0002" || !strings.Contains(err.Message, "cadena") {
		t.Errorf("got %+v", err)
	}
	if len(err.Hints) != 1 {
		t.Errorf("hints = %v", err.Hints)
	}

	err = NewUndefinedFunction("sumar", []string{"restar"})
	if err.Code != "INDEF-0003" {
		t.Errorf("Code = %q", err.Code)
	}
	if len(err.Hints) != 0 {
		t.Errorf("unexpected hints %v", err.Hints)
	}
}
