// eval_errors.go - Error creation helpers for the Quetzal evaluator
//
// Every helper returns a *qerrors.QuetzalError without a line; the statement
// executor stamps the line of the statement being run when the error
// reaches it.

package evaluator

import (
	stderrors "errors"
	"fmt"

	qerrors "github.com/sambeau/quetzal/pkg/quetzal/errors"
)

// asQuetzalError converts any error into a QuetzalError.
func asQuetzalError(err error) *qerrors.QuetzalError {
	var qerr *qerrors.QuetzalError
	if stderrors.As(err, &qerr) {
		return qerr
	}
	return qerrors.NewSimple(qerrors.ClassState, err.Error())
}

func newStructuredError(code string, data map[string]any) *qerrors.QuetzalError {
	return qerrors.New(code, data)
}

func newStructuredErrorAt(code string, line int) *qerrors.QuetzalError {
	return qerrors.NewAtLine(code, line, nil)
}

func newErrorWithClass(class qerrors.ErrorClass, format string, a ...any) *qerrors.QuetzalError {
	return qerrors.NewSimple(class, fmt.Sprintf(format, a...))
}

func newInvalidExpressionError(expr string) *qerrors.QuetzalError {
	return newStructuredError("SINTAXIS-0001", map[string]any{"Expr": expr})
}

func newMalformedError(construct, line string) *qerrors.QuetzalError {
	return newStructuredError("SINTAXIS-0006", map[string]any{"Construct": construct, "Line": line})
}

func newMisplacedControlError(keyword, context string) *qerrors.QuetzalError {
	return newStructuredError("SINTAXIS-0007", map[string]any{"Keyword": keyword, "Context": context})
}

func newDivisionByZeroError() *qerrors.QuetzalError {
	return newStructuredError("ARIT-0001", nil)
}

func newOperatorTypeError(op string, left, right Value) *qerrors.QuetzalError {
	return newStructuredError("TIPO-0003", map[string]any{
		"Operator": op,
		"Left":     typeLabel(left),
		"Right":    typeLabel(right),
	})
}

func newBoolOperandError(op string, got Value) *qerrors.QuetzalError {
	return newStructuredError("TIPO-0004", map[string]any{"Operator": op, "Got": typeLabel(got)})
}

func newConditionError(got Value) *qerrors.QuetzalError {
	return newStructuredError("TIPO-0005", map[string]any{"Got": typeLabel(got)})
}

func newAssignTypeError(expected, name string, got Value) *qerrors.QuetzalError {
	return newStructuredError("TIPO-0001", map[string]any{
		"Expected": expected,
		"Name":     name,
		"Got":      typeLabel(got),
	})
}

func newUnknownTypeError(t string) *qerrors.QuetzalError {
	return newStructuredError("TIPO-0002", map[string]any{"Type": t})
}

func newArgTypeError(method string, position int, expected string, got Value) *qerrors.QuetzalError {
	return newStructuredError("TIPO-0008", map[string]any{
		"Method":   method,
		"Position": position,
		"Expected": expected,
		"Got":      typeLabel(got),
	})
}

func newIndexError(index int64, length int) *qerrors.QuetzalError {
	return newStructuredError("INDICE-0001", map[string]any{"Index": index, "Length": length})
}

func newArityError(fn string, got, want int) *qerrors.QuetzalError {
	return newStructuredError("ARIDAD-0001", map[string]any{"Function": fn, "Expected": want, "Got": got})
}

func newArityErrorRange(fn string, got, minVal, maxVal int) *qerrors.QuetzalError {
	return newStructuredError("ARIDAD-0002", map[string]any{"Function": fn, "Min": minVal, "Max": maxVal, "Got": got})
}

func newArityErrorMin(fn string, got, minVal int) *qerrors.QuetzalError {
	return newStructuredError("ARIDAD-0003", map[string]any{"Function": fn, "Min": minVal, "Got": got})
}

func newConversionError(target string, value string) *qerrors.QuetzalError {
	return newStructuredError("CONV-0001", map[string]any{"Target": target, "Value": value})
}

func newMethodArgError(method, reason string) *qerrors.QuetzalError {
	return newStructuredError("CONV-0005", map[string]any{"Method": method, "Reason": reason})
}

func newUndefinedVariableError(name string, env *Environment) *qerrors.QuetzalError {
	return qerrors.NewUndefinedIdentifier(name, env.AllIdentifiers())
}

func newUndefinedMethodError(name, typeName string, names []string) *qerrors.QuetzalError {
	return qerrors.NewUndefinedMethod(name, typeName, names)
}

func newUndefinedFunctionError(name string, names []string) *qerrors.QuetzalError {
	return qerrors.NewUndefinedFunction(name, names)
}

func newUndefinedFieldError(field, typeName string) *qerrors.QuetzalError {
	return newStructuredError("INDEF-0004", map[string]any{"Field": field, "Type": typeName})
}

func newMissingKeyError(key string) *qerrors.QuetzalError {
	return newStructuredError("INDICE-0002", map[string]any{"Key": key})
}

func newNotIndexableError(v Value) *qerrors.QuetzalError {
	return newStructuredError("TIPO-0006", map[string]any{"Type": typeLabel(v)})
}

func newNumericOperandError(op string, got Value) *qerrors.QuetzalError {
	return newStructuredError("TIPO-0010", map[string]any{"Operator": op, "Got": typeLabel(got)})
}

func newNotIterableError(v Value) *qerrors.QuetzalError {
	return newStructuredError("TIPO-0007", map[string]any{"Type": typeLabel(v)})
}
