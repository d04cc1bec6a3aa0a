package ast

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
)

// Expression is a gate parameter or matrix entry.
type Expression interface {
	String() string
	expression()
}

// Number is a complex literal.
type Number struct {
	Value complex128
}

// Pi is the constant pi.
type Pi struct{}

// MemoryRef reads a classical memory location inside an expression.
type MemoryRef struct {
	Ref MemoryReference
}

// Param is a formal %name parameter of a gate definition.
type Param struct {
	Name string
}

// Prefix is unary negation or plus.
type Prefix struct {
	Operand  Expression
	Operator byte
}

// Infix is a binary arithmetic operation: one of + - * / ^.
type Infix struct {
	Left     Expression
	Right    Expression
	Operator byte
}

// Call applies one of the built-in functions: sin, cos, sqrt, exp, cis.
type Call struct {
	Arg      Expression
	Function string
}

func (Number) expression()    {}
func (Pi) expression()        {}
func (MemoryRef) expression() {}
func (Param) expression()     {}
func (Prefix) expression()    {}
func (Infix) expression()     {}
func (Call) expression()      {}

func (n Number) String() string { return FormatComplex(n.Value) }
func (Pi) String() string       { return "pi" }
func (m MemoryRef) String() string {
	return m.Ref.String()
}
func (p Param) String() string { return "%" + p.Name }
func (p Prefix) String() string {
	return string(p.Operator) + p.Operand.String()
}
func (i Infix) String() string {
	return "(" + i.Left.String() + string(i.Operator) + i.Right.String() + ")"
}
func (c Call) String() string {
	return c.Function + "(" + c.Arg.String() + ")"
}

// Real returns a Number holding a real value.
func Real(v float64) Number {
	return Number{Value: complex(v, 0)}
}

// FormatReal prints v the shortest way that round-trips.
func FormatReal(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatComplex prints c as a Quil literal.
func FormatComplex(c complex128) string {
	re, im := real(c), imag(c)
	switch {
	case im == 0:
		return FormatReal(re)
	case re == 0:
		return FormatReal(im) + "i"
	case im < 0:
		return "(" + FormatReal(re) + "-" + FormatReal(-im) + "i)"
	default:
		return "(" + FormatReal(re) + "+" + FormatReal(im) + "i)"
	}
}

// Memory resolves memory references during evaluation.
type Memory func(name string, index uint64) (float64, bool)

// Evaluate computes the value of e. Memory references are resolved through
// mem; a nil mem makes any reference an error. Formal parameters are resolved
// through params.
func Evaluate(e Expression, mem Memory, params map[string]complex128) (complex128, error) {
	switch x := e.(type) {
	case Number:
		return x.Value, nil
	case Pi:
		return complex(math.Pi, 0), nil
	case MemoryRef:
		if mem == nil {
			return 0, fmt.Errorf("unbound memory reference %s", x.Ref)
		}
		v, ok := mem(x.Ref.Name, x.Ref.Index)
		if !ok {
			return 0, fmt.Errorf("unbound memory reference %s", x.Ref)
		}
		return complex(v, 0), nil
	case Param:
		v, ok := params[x.Name]
		if !ok {
			return 0, fmt.Errorf("unbound parameter %%%s", x.Name)
		}
		return v, nil
	case Prefix:
		v, err := Evaluate(x.Operand, mem, params)
		if err != nil {
			return 0, err
		}
		if x.Operator == '-' {
			return -v, nil
		}
		return v, nil
	case Infix:
		l, err := Evaluate(x.Left, mem, params)
		if err != nil {
			return 0, err
		}
		r, err := Evaluate(x.Right, mem, params)
		if err != nil {
			return 0, err
		}
		return applyInfix(x.Operator, l, r)
	case Call:
		v, err := Evaluate(x.Arg, mem, params)
		if err != nil {
			return 0, err
		}
		return applyCall(x.Function, v)
	}
	return 0, fmt.Errorf("unknown expression %T", e)
}

func applyInfix(op byte, l, r complex128) (complex128, error) {
	switch op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return l / r, nil
	case '^':
		if imag(l) == 0 && imag(r) == 0 {
			return complex(math.Pow(real(l), real(r)), 0), nil
		}
		return cmplx.Pow(l, r), nil
	}
	return 0, fmt.Errorf("unknown operator %q", op)
}

func applyCall(fn string, v complex128) (complex128, error) {
	switch strings.ToLower(fn) {
	case "sin":
		return cmplx.Sin(v), nil
	case "cos":
		return cmplx.Cos(v), nil
	case "sqrt":
		return cmplx.Sqrt(v), nil
	case "exp":
		return cmplx.Exp(v), nil
	case "cis":
		return cmplx.Exp(complex(0, 1) * v), nil
	}
	return 0, fmt.Errorf("unknown function %s", fn)
}

// IsFunction reports whether name is a built-in expression function.
func IsFunction(name string) bool {
	switch strings.ToLower(name) {
	case "sin", "cos", "sqrt", "exp", "cis":
		return true
	}
	return false
}

// Simplify folds every constant subexpression into a Number.
func Simplify(e Expression) Expression {
	switch x := e.(type) {
	case Number, MemoryRef, Param:
		return e
	case Pi:
		return Real(math.Pi)
	case Prefix:
		operand := Simplify(x.Operand)
		if n, ok := operand.(Number); ok {
			if x.Operator == '-' {
				return Number{Value: -n.Value}
			}
			return n
		}
		return Prefix{Operator: x.Operator, Operand: operand}
	case Infix:
		l, r := Simplify(x.Left), Simplify(x.Right)
		ln, lok := l.(Number)
		rn, rok := r.(Number)
		if lok && rok {
			if v, err := applyInfix(x.Operator, ln.Value, rn.Value); err == nil {
				return Number{Value: v}
			}
		}
		return Infix{Left: l, Operator: x.Operator, Right: r}
	case Call:
		arg := Simplify(x.Arg)
		if n, ok := arg.(Number); ok {
			if v, err := applyCall(x.Function, n.Value); err == nil {
				return Number{Value: v}
			}
		}
		return Call{Function: x.Function, Arg: arg}
	}
	return e
}

// IsConstant reports whether e evaluates without memory or parameters.
func IsConstant(e Expression) bool {
	_, ok := Simplify(e).(Number)
	return ok
}
