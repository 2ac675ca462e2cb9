package evaluator

import (
	"math"
)

// evalInfix applies an arithmetic operator. '+' concatenates when either
// side is a cadena; otherwise both sides must be numeric. entero op entero
// stays entero, any número operand promotes the result to número.
func evalInfix(op string, left, right Value) (Value, error) {
	if op == "+" {
		_, ls := left.(*String)
		_, rs := right.(*String)
		if ls || rs {
			return &String{Value: left.Inspect() + right.Inspect()}, nil
		}
	}

	if l, ok := left.(*Integer); ok {
		if r, ok := right.(*Integer); ok {
			return evalIntegerInfix(op, l.Value, r.Value)
		}
	}

	l, lok := toFloat(left)
	r, rok := toFloat(right)
	if !lok || !rok {
		return nil, newOperatorTypeError(op, left, right)
	}
	return evalFloatInfix(op, l, r)
}

func evalIntegerInfix(op string, l, r int64) (Value, error) {
	switch op {
	case "+":
		return &Integer{Value: l + r}, nil
	case "-":
		return &Integer{Value: l - r}, nil
	case "*":
		return &Integer{Value: l * r}, nil
	case "/":
		if r == 0 {
			return nil, newDivisionByZeroError()
		}
		return &Integer{Value: l / r}, nil
	case "%":
		if r == 0 {
			return nil, newDivisionByZeroError()
		}
		return &Integer{Value: l % r}, nil
	}
	return nil, newInvalidExpressionError(op)
}

func evalFloatInfix(op string, l, r float64) (Value, error) {
	switch op {
	case "+":
		return &Float{Value: l + r}, nil
	case "-":
		return &Float{Value: l - r}, nil
	case "*":
		return &Float{Value: l * r}, nil
	case "/":
		if r == 0 {
			return nil, newDivisionByZeroError()
		}
		return &Float{Value: l / r}, nil
	case "%":
		if r == 0 {
			return nil, newDivisionByZeroError()
		}
		return &Float{Value: math.Mod(l, r)}, nil
	}
	return nil, newInvalidExpressionError(op)
}

func toFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case *Integer:
		return float64(v.Value), true
	case *Float:
		return v.Value, true
	}
	return 0, false
}

// evalComparison applies a relational operator. Numbers compare across
// entero and número; cadena and bool support only equality.
func evalComparison(op string, left, right Value) (Value, error) {
	if l, ok := left.(*Integer); ok {
		if r, ok := right.(*Integer); ok {
			return nativeBoolToBoolean(compareOrdered(op, l.Value, r.Value)), nil
		}
	}
	if l, lok := toFloat(left); lok {
		if r, rok := toFloat(right); rok {
			return nativeBoolToBoolean(compareFloats(op, l, r)), nil
		}
	}

	if op != "==" && op != "!=" {
		return nil, newOperatorTypeError(op, left, right)
	}
	switch l := left.(type) {
	case *String:
		if r, ok := right.(*String); ok {
			return nativeBoolToBoolean((l.Value == r.Value) == (op == "==")), nil
		}
	case *Boolean:
		if r, ok := right.(*Boolean); ok {
			return nativeBoolToBoolean((l.Value == r.Value) == (op == "==")), nil
		}
	}
	return nil, newOperatorTypeError(op, left, right)
}

func compareOrdered(op string, l, r int64) bool {
	switch op {
	case "==":
		return l == r
	case "!=":
		return l != r
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	default:
		return l >= r
	}
}

func compareFloats(op string, l, r float64) bool {
	eq := floatEquals(l, r)
	switch op {
	case "==":
		return eq
	case "!=":
		return !eq
	case "<":
		return l < r && !eq
	case "<=":
		return l < r || eq
	case ">":
		return l > r && !eq
	default:
		return l > r || eq
	}
}

// negate applies unary minus.
func negate(v Value) (Value, error) {
	switch v := v.(type) {
	case *Integer:
		return &Integer{Value: -v.Value}, nil
	case *Float:
		return &Float{Value: -v.Value}, nil
	}
	return nil, newNumericOperandError("-", v)
}
