package model

import (
	"math"
	"strconv"
)

// Value is a numeric cell that may be undefined. Undefined is distinct from a
// genuine zero: it marks a statistic that is missing or could not be computed
// (zero minutes, 100% possession, absent category).
type Value struct {
	v       float64
	defined bool
}

// Defined wraps v. Non-finite inputs (NaN, ±Inf) yield an undefined Value.
func Defined(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, defined: true}
}

// Undefined returns the undefined Value.
func Undefined() Value { return Value{} }

// Float returns the wrapped float and whether it is defined.
func (x Value) Float() (float64, bool) { return x.v, x.defined }

// IsDefined reports whether the value carries a number.
func (x Value) IsDefined() bool { return x.defined }

// Or returns the wrapped float, or def when undefined.
func (x Value) Or(def float64) float64 {
	if !x.defined {
		return def
	}
	return x.v
}

func (x Value) String() string {
	if !x.defined {
		return "—"
	}
	return strconv.FormatFloat(x.v, 'f', -1, 64)
}

// Div returns a/b. A zero or undefined divisor yields undefined.
func Div(a, b Value) Value {
	if !a.defined || !b.defined || b.v == 0 {
		return Value{}
	}
	return Defined(a.v / b.v)
}

// Mul returns a*b.
func Mul(a, b Value) Value {
	if !a.defined || !b.defined {
		return Value{}
	}
	return Defined(a.v * b.v)
}

// Add returns a+b.
func Add(a, b Value) Value {
	if !a.defined || !b.defined {
		return Value{}
	}
	return Defined(a.v + b.v)
}

// Sub returns a-b.
func Sub(a, b Value) Value {
	if !a.defined || !b.defined {
		return Value{}
	}
	return Defined(a.v - b.v)
}

// Scale returns a*k.
func Scale(a Value, k float64) Value {
	if !a.defined {
		return Value{}
	}
	return Defined(a.v * k)
}

// Mean returns the arithmetic mean of vs, or undefined if vs is empty or any
// element is undefined. There is no partial averaging.
func Mean(vs ...Value) Value {
	if len(vs) == 0 {
		return Value{}
	}
	var sum float64
	for _, x := range vs {
		if !x.defined {
			return Value{}
		}
		sum += x.v
	}
	return Defined(sum / float64(len(vs)))
}
