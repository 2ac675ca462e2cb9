package evaluator

import (
	"sort"
	"strings"
)

// ObjectMethodFunc implements a builtin method of an object type. fields is
// a private copy of the instance's fields; methods marked Mutates may
// change it and the evaluator commits the result back to the receiver.
type ObjectMethodFunc func(fields map[string]Value, args []Value, in *Interpreter) (Value, error)

// ObjectMethod is one entry of an object type's method table.
type ObjectMethod struct {
	Fn          ObjectMethodFunc
	Arity       string
	Mutates     bool
	Description string
}

// ObjectProvider supplies the compiled-in behavior of an object type.
// Fields, when set, fixes the constructor argument order regardless of how
// the program declares the type.
type ObjectProvider struct {
	Fields  []string
	Methods map[string]ObjectMethod
}

var objectProviders = map[string]ObjectProvider{}

// RegisterObjectProvider makes methods available to every object type
// declared with typeName.
func RegisterObjectProvider(typeName string, p ObjectProvider) {
	objectProviders[typeName] = p
}

// ObjectDefinition is a declared record type.
type ObjectDefinition struct {
	Name       string
	Fields     []string
	FieldTypes map[string]string
	Methods    map[string]ObjectMethod

	constructor []string
}

// NewObjectDefinition builds a definition from declared fields and attaches
// the provider registered under name, if any.
func NewObjectDefinition(name string, fields []string, fieldTypes map[string]string) *ObjectDefinition {
	def := &ObjectDefinition{
		Name:        name,
		Fields:      fields,
		FieldTypes:  fieldTypes,
		Methods:     map[string]ObjectMethod{},
		constructor: fields,
	}
	if p, ok := objectProviders[name]; ok {
		for mname, m := range p.Methods {
			def.Methods[mname] = m
		}
		if len(p.Fields) > 0 {
			def.constructor = p.Fields
		}
	}
	return def
}

// MethodNames returns the sorted method names of the type.
func (d *ObjectDefinition) MethodNames() []string {
	names := make([]string, 0, len(d.Methods))
	for name := range d.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// instantiate binds positional constructor arguments to fields.
func (d *ObjectDefinition) instantiate(args []Value) (*Instance, error) {
	if len(args) != len(d.constructor) {
		return nil, newArityError("nuevo "+d.Name, len(args), len(d.constructor))
	}
	fields := make(map[string]Value, len(d.constructor))
	for i, name := range d.constructor {
		v := args[i]
		if t, ok := d.FieldTypes[name]; ok {
			coerced, err := coerceToDeclared(t, name, v)
			if err != nil {
				return nil, err
			}
			v = coerced
		}
		fields[name] = Copy(v)
	}
	order := d.Fields
	if len(order) == 0 {
		order = d.constructor
	}
	return &Instance{TypeName: d.Name, Fields: fields, Order: append([]string(nil), order...)}, nil
}

// parseObjectFields reads the body of an objeto declaration: one
// "tipo campo" pair per line, optionally comma separated.
func parseObjectFields(body []sourceLine) ([]string, map[string]string, error) {
	var fields []string
	types := map[string]string{}
	for _, l := range body {
		for _, part := range strings.Split(l.text, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			words := strings.Fields(part)
			var name, typ string
			switch len(words) {
			case 1:
				name = words[0]
			case 2:
				typ, name = words[0], words[1]
			default:
				return nil, nil, newMalformedError("objeto", part)
			}
			if err := validateIdentifier(name); err != nil {
				return nil, nil, err
			}
			if _, dup := types[name]; dup {
				return nil, nil, newMalformedError("objeto", part)
			}
			fields = append(fields, name)
			types[name] = typ
		}
	}
	for name, typ := range types {
		if typ == "" {
			delete(types, name)
		}
	}
	return fields, types, nil
}

// callInstanceMethod dispatches a method on inst. updated is non-nil when
// the method changed the instance.
func (in *Interpreter) callInstanceMethod(inst *Instance, name string, args []Value, env *Environment) (result, updated Value, err error) {
	def, ok := env.Object(inst.TypeName)
	var methods map[string]ObjectMethod
	if ok {
		methods = def.Methods
	} else if p, ok := objectProviders[inst.TypeName]; ok {
		methods = p.Methods
	}
	m, ok := methods[name]
	if !ok {
		names := make([]string, 0, len(methods))
		for n := range methods {
			names = append(names, n)
		}
		return nil, nil, newUndefinedMethodError(name, inst.TypeName, names)
	}
	if !checkArity(m.Arity, len(args)) {
		return nil, nil, newArityErrorFromSpec(name, m.Arity, len(args))
	}
	fields := copyFields(inst.Fields)
	result, err = m.Fn(fields, args, in)
	if err != nil {
		return nil, nil, err
	}
	if result == nil {
		result = VOID
	}
	if m.Mutates {
		updated = &Instance{TypeName: inst.TypeName, Fields: fields, Order: inst.Order}
	}
	return result, updated, nil
}
