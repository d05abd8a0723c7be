package interp

import (
	"strconv"
	"strings"

	"corelang/internal/bytecode"
	"corelang/internal/cplerr"
	"corelang/internal/operand"
)

// truthy treats any non-zero number, non-empty string, or true bool as
// true; arrays/dicts are true when non-empty. Uninitialized/Undefined are
// always false.
func truthy(v operand.Value) bool {
	switch v.Kind {
	case operand.KindBool:
		return v.Bool
	case operand.KindNumber:
		return v.Num != 0
	case operand.KindString:
		return v.Str != ""
	case operand.KindArray:
		return len(v.Arr.Elems) > 0
	case operand.KindDict:
		return v.Dict.Len() > 0
	default:
		return false
	}
}

func negate(v operand.Value) operand.Value {
	if v.Kind == operand.KindString {
		if n, err := strconv.ParseFloat(v.Str, 64); err == nil {
			return operand.Real(-n)
		}
	}
	return operand.Value{Kind: operand.KindNumber, Num: -v.Num, NumSub: v.NumSub}
}

func lengthOf(v operand.Value) operand.Value {
	switch v.Kind {
	case operand.KindString:
		return operand.Int(int64(len(v.Str)))
	case operand.KindArray:
		return operand.Int(int64(len(v.Arr.Elems)))
	case operand.KindDict:
		return operand.Int(int64(v.Dict.Len()))
	default:
		return operand.Int(0)
	}
}

// toNumber coerces a value for arithmetic: numbers pass through, strings
// are parsed best-effort, everything else fails.
func toNumber(v operand.Value) (float64, operand.NumSubtype, bool) {
	switch v.Kind {
	case operand.KindNumber:
		return v.Num, v.NumSub, true
	case operand.KindString:
		if n, err := strconv.ParseFloat(v.Str, 64); err == nil {
			sub := operand.SubReal
			if !strings.ContainsAny(v.Str, ".eE") {
				sub = operand.SubInt
			}
			return n, sub, true
		}
	}
	return 0, operand.SubInt, false
}

// addResult implements Add across every operand-kind pair: numeric addition
// when both sides are numbers or strings that parse as numbers, string
// concatenation when a string/number pair does not parse, and array
// append/concatenation (arrayAdd) the moment either side is an array. Any
// other pair (a bool, a dict) is an error. This is the one arithmetic
// operator defined outside the numeric lattice, so it gets its own dispatch
// instead of funneling through toNumber like Sub/Mul/Div/Mod/BwAnd/BwOr do.
func addResult(lhs, rhs operand.Value) (operand.Value, error) {
	if lhs.Kind == operand.KindArray || rhs.Kind == operand.KindArray {
		return arrayAdd(lhs, rhs)
	}
	ln, lsub, lok := toNumber(lhs)
	rn, _, rok := toNumber(rhs)
	if !lok || !rok {
		if (lhs.Kind == operand.KindString || lhs.Kind == operand.KindNumber) &&
			(rhs.Kind == operand.KindString || rhs.Kind == operand.KindNumber) {
			return operand.Str(operand.ToDisplayString(lhs) + operand.ToDisplayString(rhs)), nil
		}
		return operand.Value{}, cplerr.NewRuntimeError("arithmetic operator requires numeric (or numeric-looking string) operands")
	}
	return operand.Value{Kind: operand.KindNumber, Num: ln + rn, NumSub: lsub}, nil
}

// arrayAdd covers the array-involving Add pairs: array+array concatenates
// both element lists, string+array concatenates the string with the array's
// display form, and a number or bool on either side of an array is an
// error. Any other value added after an array is appended to it, and any
// other value added before one is prepended. Neither operand is mutated;
// the result is always a freshly allocated value, consistent with Add
// elsewhere not touching its operands in place.
func arrayAdd(lhs, rhs operand.Value) (operand.Value, error) {
	switch {
	case lhs.Kind == operand.KindArray && rhs.Kind == operand.KindArray:
		elems := make([]operand.Value, 0, len(lhs.Arr.Elems)+len(rhs.Arr.Elems))
		elems = append(elems, lhs.Arr.Elems...)
		elems = append(elems, rhs.Arr.Elems...)
		return operand.Value{Kind: operand.KindArray, Arr: &operand.Array{Elems: elems}}, nil
	case lhs.Kind == operand.KindNumber || lhs.Kind == operand.KindBool ||
		rhs.Kind == operand.KindNumber || rhs.Kind == operand.KindBool:
		return operand.Value{}, cplerr.NewRuntimeError("add operator not defined between an array and a number or bool")
	case lhs.Kind == operand.KindString:
		return operand.Str(lhs.Str + operand.ToDisplayString(rhs)), nil
	case lhs.Kind == operand.KindArray:
		elems := make([]operand.Value, len(lhs.Arr.Elems)+1)
		copy(elems, lhs.Arr.Elems)
		elems[len(lhs.Arr.Elems)] = rhs
		return operand.Value{Kind: operand.KindArray, Arr: &operand.Array{Elems: elems}}, nil
	default: // rhs.Kind == operand.KindArray
		elems := make([]operand.Value, len(rhs.Arr.Elems)+1)
		elems[0] = lhs
		copy(elems[1:], rhs.Arr.Elems)
		return operand.Value{Kind: operand.KindArray, Arr: &operand.Array{Elems: elems}}, nil
	}
}

// compareStrings orders by length first and lexicographically only to
// break ties, per the relational-operator table for the string type.
func compareStrings(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// valuesEqual implements Eq/Ne's per-type-pair comparison: same-kind values
// compare structurally, and two cross-kind pairs are explicitly defined
// (bool against its string/number rendering) rather than automatically
// false just because the kinds differ. Every other cross-kind pair is
// unequal.
func valuesEqual(a, b operand.Value) bool {
	if a.Kind == b.Kind {
		return sameStructuralValue(a, b)
	}
	switch {
	case a.Kind == operand.KindBool && b.Kind == operand.KindString:
		return boolDisplayString(a.Bool) == b.Str
	case a.Kind == operand.KindString && b.Kind == operand.KindBool:
		return a.Str == boolDisplayString(b.Bool)
	case a.Kind == operand.KindBool && b.Kind == operand.KindNumber:
		return boolNumber(a.Bool) == b.Num
	case a.Kind == operand.KindNumber && b.Kind == operand.KindBool:
		return a.Num == boolNumber(b.Bool)
	default:
		return false
	}
}

func boolDisplayString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// sameStructuralValue compares two values of the same Kind; cross-kind
// comparison is valuesEqual's job.
func sameStructuralValue(a, b operand.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case operand.KindNumber:
		return a.Num == b.Num
	case operand.KindString:
		return a.Str == b.Str
	case operand.KindBool:
		return a.Bool == b.Bool
	case operand.KindArray:
		if len(a.Arr.Elems) != len(b.Arr.Elems) {
			return false
		}
		for i := range a.Arr.Elems {
			if !sameStructuralValue(a.Arr.Elems[i], b.Arr.Elems[i]) {
				return false
			}
		}
		return true
	case operand.KindDict:
		if a.Dict.Len() != b.Dict.Len() {
			return false
		}
		for _, k := range a.Dict.Keys() {
			av, _ := a.Dict.Get(k)
			bv, ok := b.Dict.Get(k)
			if !ok || !sameStructuralValue(av, bv) {
				return false
			}
		}
		return true
	case operand.KindUninitialized, operand.KindUndefined:
		return true
	default:
		return false
	}
}

// binaryOp dispatches the sixteen binary opcodes across the four-type
// lattice (string/number/bool/array): arithmetic ops require numeric
// operands (strings coerced best-effort) except Add, which concatenates a
// string/number pair that does not parse and switches to
// append/concatenation semantics the moment either side is an array; Concat
// stringifies both sides but rejects a collection operand outright rather
// than silently stringifying it; Lor/Land coerce via truthy; relational ops
// compare two strings by length then content, compare numerically when one
// side is a number (false when the other side is a string that does not
// parse), and error otherwise; and Eq/Ne compare structurally within a kind, plus
// the two explicitly-defined bool/string and bool/number cross-kind pairs.
func binaryOp(op bytecode.Opcode, lhs, rhs operand.Value) (operand.Value, error) {
	switch op {
	case bytecode.Concat:
		if lhs.Kind == operand.KindArray || rhs.Kind == operand.KindArray ||
			lhs.Kind == operand.KindDict || rhs.Kind == operand.KindDict {
			return operand.Value{}, cplerr.NewRuntimeError("concat operator does not accept a collection operand")
		}
		return operand.Str(operand.ToDisplayString(lhs) + operand.ToDisplayString(rhs)), nil

	case bytecode.Lor:
		return operand.Bool(truthy(lhs) || truthy(rhs)), nil
	case bytecode.Land:
		return operand.Bool(truthy(lhs) && truthy(rhs)), nil

	case bytecode.Eq:
		return operand.Bool(valuesEqual(lhs, rhs)), nil
	case bytecode.Ne:
		return operand.Bool(!valuesEqual(lhs, rhs)), nil

	case bytecode.Add:
		return addResult(lhs, rhs)

	case bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Mod,
		bytecode.BwAnd, bytecode.BwOr:
		ln, lsub, lok := toNumber(lhs)
		rn, _, rok := toNumber(rhs)
		if !lok || !rok {
			return operand.Value{}, cplerr.NewRuntimeError("arithmetic operator requires numeric (or numeric-looking string) operands")
		}
		sub := lsub
		switch op {
		case bytecode.Sub:
			return operand.Value{Kind: operand.KindNumber, Num: ln - rn, NumSub: sub}, nil
		case bytecode.Mul:
			return operand.Value{Kind: operand.KindNumber, Num: ln * rn, NumSub: sub}, nil
		case bytecode.Div:
			if rn == 0 {
				return operand.Value{}, cplerr.NewRuntimeError("division by zero")
			}
			return operand.Value{Kind: operand.KindNumber, Num: ln / rn, NumSub: operand.SubReal}, nil
		case bytecode.Mod:
			if int64(rn) == 0 {
				return operand.Value{}, cplerr.NewRuntimeError("modulo by zero")
			}
			return operand.Int(int64(ln) % int64(rn)), nil
		case bytecode.BwAnd:
			return operand.Int(int64(ln) & int64(rn)), nil
		case bytecode.BwOr:
			return operand.Int(int64(ln) | int64(rn)), nil
		}
	}

	switch op {
	case bytecode.Lt, bytecode.Gt, bytecode.Le, bytecode.Ge:
		var cmp int
		switch {
		case lhs.Kind == operand.KindString && rhs.Kind == operand.KindString:
			cmp = compareStrings(lhs.Str, rhs.Str)
		case lhs.Kind == operand.KindNumber || rhs.Kind == operand.KindNumber:
			ln, _, lok := toNumber(lhs)
			rn, _, rok := toNumber(rhs)
			if !lok || !rok {
				if lhs.Kind == operand.KindString || rhs.Kind == operand.KindString {
					return operand.Bool(false), nil
				}
				return operand.Value{}, cplerr.NewRuntimeError("relational operator requires comparable operands")
			}
			switch {
			case ln < rn:
				cmp = -1
			case ln > rn:
				cmp = 1
			default:
				cmp = 0
			}
		default:
			return operand.Value{}, cplerr.NewRuntimeError("relational operator not defined for this operand type")
		}
		switch op {
		case bytecode.Lt:
			return operand.Bool(cmp < 0), nil
		case bytecode.Gt:
			return operand.Bool(cmp > 0), nil
		case bytecode.Le:
			return operand.Bool(cmp <= 0), nil
		case bytecode.Ge:
			return operand.Bool(cmp >= 0), nil
		}
	}

	return operand.Value{}, cplerr.NewRuntimeError("unsupported binary operator")
}
