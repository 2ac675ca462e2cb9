package evaluator

import (
	"sort"
)

// Environment is one scope frame: variable bindings, object type
// definitions and function definitions, with an optional outer frame.
//
// Blocks never create frames. A program runs in one Environment and every
// function call gets a fresh one that holds copies of the caller's
// definitions but none of its variables.
type Environment struct {
	store     map[string]Value
	objects   map[string]*ObjectDefinition
	functions map[string]*FunctionDefinition
	mutable   map[string]bool
	types     map[string]string
	outer     *Environment
}

// NewEnvironment creates an empty root environment.
func NewEnvironment() *Environment {
	return &Environment{
		store:     make(map[string]Value),
		objects:   make(map[string]*ObjectDefinition),
		functions: make(map[string]*FunctionDefinition),
		mutable:   make(map[string]bool),
		types:     make(map[string]string),
	}
}

// NewEnclosedEnvironment creates an environment whose lookups fall back to
// outer. Writes always stay in the new frame.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// newCallEnvironment creates the frame for a function call: no variables,
// no outer frame, and every definition visible from caller.
func newCallEnvironment(caller *Environment) *Environment {
	env := NewEnvironment()
	for e := caller; e != nil; e = e.outer {
		for name, fn := range e.functions {
			if _, ok := env.functions[name]; !ok {
				env.functions[name] = fn
			}
		}
		for name, def := range e.objects {
			if _, ok := env.objects[name]; !ok {
				env.objects[name] = def
			}
		}
	}
	return env
}

// Get retrieves a variable, walking outward through enclosing frames.
func (e *Environment) Get(name string) (Value, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		value, ok = e.outer.Get(name)
	}
	return value, ok
}

// Set stores a copy of val in this frame, shadowing any outer binding.
func (e *Environment) Set(name string, val Value) Value {
	val = Copy(val)
	e.store[name] = val
	return val
}

// Declare binds name in this frame and records its declared type and
// whether it was declared mut. Later assignments are coerced to typeName.
func (e *Environment) Declare(name string, val Value, typeName string, mutable bool) Value {
	e.mutable[name] = mutable
	e.types[name] = typeName
	return e.Set(name, val)
}

// DeclaredType returns the type name name was declared with, walking
// outward like Get.
func (e *Environment) DeclaredType(name string) (string, bool) {
	t, ok := e.types[name]
	if !ok && e.outer != nil {
		return e.outer.DeclaredType(name)
	}
	return t, ok
}

// IsMutable reports whether name was declared with mut in this frame.
func (e *Environment) IsMutable(name string) bool {
	return e.mutable[name]
}

// Object looks up an object type definition.
func (e *Environment) Object(name string) (*ObjectDefinition, bool) {
	def, ok := e.objects[name]
	if !ok && e.outer != nil {
		return e.outer.Object(name)
	}
	return def, ok
}

// DefineObject registers an object type in this frame.
func (e *Environment) DefineObject(def *ObjectDefinition) {
	e.objects[def.Name] = def
}

// Function looks up a function definition.
func (e *Environment) Function(name string) (*FunctionDefinition, bool) {
	fn, ok := e.functions[name]
	if !ok && e.outer != nil {
		return e.outer.Function(name)
	}
	return fn, ok
}

// DefineFunction registers fn in this frame, replacing any previous
// definition with the same name.
func (e *Environment) DefineFunction(fn *FunctionDefinition) {
	e.functions[fn.Name] = fn
}

// AllIdentifiers returns all variable names visible from this frame.
// Used for fuzzy matching in error messages.
func (e *Environment) AllIdentifiers() []string {
	seen := make(map[string]bool)
	var result []string
	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}
	sort.Strings(result)
	return result
}

// FunctionNames returns all function names visible from this frame.
func (e *Environment) FunctionNames() []string {
	seen := make(map[string]bool)
	var result []string
	for env := e; env != nil; env = env.outer {
		for name := range env.functions {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}
	sort.Strings(result)
	return result
}

// UserVariables returns the bindings of this frame only.
func (e *Environment) UserVariables() map[string]Value {
	out := make(map[string]Value, len(e.store))
	for k, v := range e.store {
		out[k] = v
	}
	return out
}
