package evaluator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvironmentSetCopies(t *testing.T) {
	env := NewEnvironment()
	xs := &List{Elements: []Value{&Integer{Value: 1}}}
	env.Set("xs", xs)
	xs.Elements[0] = &Integer{Value: 99}

	got, ok := env.Get("xs")
	if !ok {
		t.Fatal("xs not found")
	}
	if got.Inspect() != "[1]" {
		t.Errorf("expected stored copy [1], got %s", got.Inspect())
	}
}

func TestEnclosedEnvironment(t *testing.T) {
	outer := NewEnvironment()
	outer.Declare("n", &Integer{Value: 1}, "entero", false)
	inner := NewEnclosedEnvironment(outer)
	inner.Set("m", &Integer{Value: 2})

	if _, ok := inner.Get("n"); !ok {
		t.Error("expected inner frame to see n")
	}
	if _, ok := outer.Get("m"); ok {
		t.Error("expected m to stay in the inner frame")
	}
	if typ, ok := inner.DeclaredType("n"); !ok || typ != "entero" {
		t.Errorf("expected declared type entero, got %q %v", typ, ok)
	}
	if diff := cmp.Diff([]string{"m", "n"}, inner.AllIdentifiers()); diff != "" {
		t.Errorf("identifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestDeclareRecordsMutability(t *testing.T) {
	env := NewEnvironment()
	env.Declare("a", &Integer{Value: 1}, "entero", true)
	env.Declare("b", &Integer{Value: 1}, "entero", false)
	if !env.IsMutable("a") || env.IsMutable("b") {
		t.Errorf("unexpected mutability a=%v b=%v", env.IsMutable("a"), env.IsMutable("b"))
	}
}

func TestCallEnvironmentSeesDefinitionsOnly(t *testing.T) {
	caller := NewEnvironment()
	caller.Set("x", &Integer{Value: 1})
	caller.DefineFunction(&FunctionDefinition{Name: "f", ReturnType: "vacio"})
	caller.DefineObject(NewObjectDefinition("Punto", []string{"x", "y"}, nil))
	block := NewEnclosedEnvironment(caller)
	block.DefineFunction(&FunctionDefinition{Name: "g", ReturnType: "vacio"})

	env := newCallEnvironment(block)
	if _, ok := env.Get("x"); ok {
		t.Error("call frame must not see caller variables")
	}
	if diff := cmp.Diff([]string{"f", "g"}, env.FunctionNames()); diff != "" {
		t.Errorf("functions mismatch (-want +got):\n%s", diff)
	}
	if _, ok := env.Object("Punto"); !ok {
		t.Error("expected object definitions to be visible")
	}
}

func TestUserVariables(t *testing.T) {
	outer := NewEnvironment()
	outer.Set("a", &Integer{Value: 1})
	env := NewEnclosedEnvironment(outer)
	env.Set("b", &String{Value: "x"})

	vars := env.UserVariables()
	if len(vars) != 1 || vars["b"].Inspect() != "x" {
		t.Errorf("expected only b, got %v", vars)
	}
}
