package evaluator

import (
	"sort"
	"strconv"
	"strings"

	qerrors "github.com/sambeau/quetzal/pkg/quetzal/errors"
)

// MethodFunc is the signature for methods that leave the receiver alone.
type MethodFunc func(receiver Value, args []Value, in *Interpreter) (Value, error)

// MutatorFunc is the signature for methods that change their receiver.
// It returns the call result and the receiver's new value; the evaluator
// commits updated back to wherever the receiver was read from.
type MutatorFunc func(receiver Value, args []Value, in *Interpreter) (result Value, updated Value, err error)

// MethodEntry defines a single method with its implementation and metadata.
// Exactly one of Fn and Mutate is set.
type MethodEntry struct {
	Fn          MethodFunc
	Mutate      MutatorFunc
	Arity       string // "0", "1", "0-1", "1+", "2", etc.
	Description string
}

// MethodRegistry maps method names to their entries for a type.
type MethodRegistry map[string]MethodEntry

// Names returns a sorted list of method names in this registry.
func (r MethodRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the method entry for the given name, if it exists.
func (r MethodRegistry) Get(name string) (MethodEntry, bool) {
	entry, ok := r[name]
	return entry, ok
}

// typeRegistries maps value types to their method registries.
var typeRegistries = map[ValueType]MethodRegistry{}

// RegisterMethodRegistry registers a method registry for a value type.
// Called from init in each methods_*.go file.
func RegisterMethodRegistry(t ValueType, registry MethodRegistry) {
	typeRegistries[t] = registry
}

// GetRegistryForType returns the method registry for a type, or nil.
func GetRegistryForType(t ValueType) MethodRegistry {
	return typeRegistries[t]
}

// MethodNames returns every builtin method name across all types, sorted
// and without duplicates. The REPL uses it for completion.
func MethodNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, reg := range typeRegistries {
		for name := range reg {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// MethodDoc describes one method of one receiver type.
type MethodDoc struct {
	Type        string
	Arity       string
	Description string
}

// MethodHelp returns the documentation of every method called name, one
// entry per receiver type (builtin value types and object providers),
// sorted by type.
func MethodHelp(name string) []MethodDoc {
	var docs []MethodDoc
	for t, reg := range typeRegistries {
		if entry, ok := reg[name]; ok {
			docs = append(docs, MethodDoc{Type: string(t), Arity: entry.Arity, Description: entry.Description})
		}
	}
	for typeName, p := range objectProviders {
		if m, ok := p.Methods[name]; ok {
			docs = append(docs, MethodDoc{Type: typeName, Arity: m.Arity, Description: m.Description})
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Type < docs[j].Type })
	return docs
}

// checkArity validates that the argument count matches the arity specification.
// Arity specs: "0", "1", "2", "0-1", "1-2", "1+", "0+".
func checkArity(spec string, got int) bool {
	spec = strings.TrimSpace(spec)

	if exact, err := strconv.Atoi(spec); err == nil {
		return got == exact
	}

	if lo, hi, ok := strings.Cut(spec, "-"); ok {
		minVal, errMin := strconv.Atoi(lo)
		maxVal, errMax := strconv.Atoi(hi)
		if errMin == nil && errMax == nil {
			return got >= minVal && got <= maxVal
		}
	}

	if suffix, found := strings.CutSuffix(spec, "+"); found {
		if minVal, err := strconv.Atoi(suffix); err == nil {
			return got >= minVal
		}
	}

	return true
}

// newArityErrorFromSpec creates an arity error worded after the spec string.
func newArityErrorFromSpec(method, spec string, got int) *qerrors.QuetzalError {
	spec = strings.TrimSpace(spec)

	if exact, err := strconv.Atoi(spec); err == nil {
		return newArityError(method, got, exact)
	}

	if lo, hi, ok := strings.Cut(spec, "-"); ok {
		minVal, errMin := strconv.Atoi(lo)
		maxVal, errMax := strconv.Atoi(hi)
		if errMin == nil && errMax == nil {
			return newArityErrorRange(method, got, minVal, maxVal)
		}
	}

	if suffix, found := strings.CutSuffix(spec, "+"); found {
		if minVal, err := strconv.Atoi(suffix); err == nil {
			return newArityErrorMin(method, got, minVal)
		}
	}

	return newArityError(method, got, 0)
}

// dispatchFromRegistry runs a builtin method. found is false when the
// registry has no such method; the caller reports that.
func dispatchFromRegistry(registry MethodRegistry, receiver Value, method string, args []Value, in *Interpreter) (result, updated Value, found bool, err error) {
	entry, ok := registry.Get(method)
	if !ok {
		return nil, nil, false, nil
	}

	if !checkArity(entry.Arity, len(args)) {
		return nil, nil, true, newArityErrorFromSpec(method, entry.Arity, len(args))
	}

	if entry.Mutate != nil {
		result, updated, err = entry.Mutate(receiver, args, in)
		return result, updated, true, err
	}
	result, err = entry.Fn(receiver, args, in)
	return result, nil, true, err
}

// Argument helpers shared by the method tables.

func argString(method string, args []Value, i int) (string, error) {
	s, ok := args[i].(*String)
	if !ok {
		return "", newArgTypeError(method, i+1, "cadena", args[i])
	}
	return s.Value, nil
}

func argInt(method string, args []Value, i int) (int64, error) {
	switch v := args[i].(type) {
	case *Integer:
		return v.Value, nil
	case *Float:
		return int64(v.Value), nil
	}
	return 0, newArgTypeError(method, i+1, "entero", args[i])
}
