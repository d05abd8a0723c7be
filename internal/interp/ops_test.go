package interp

import (
	"testing"

	"corelang/internal/bytecode"
	"corelang/internal/operand"
)

func TestAddAppendsArrayAndScalar(t *testing.T) {
	arr := operand.NewArrayValue()
	arr.Arr.Elems = []operand.Value{operand.Int(1), operand.Int(2)}

	got, err := binaryOp(bytecode.Add, arr, operand.Str("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != operand.KindArray || len(got.Arr.Elems) != 3 {
		t.Fatalf("got %+v, want a 3-element array", got)
	}
	if got.Arr.Elems[2].Str != "x" {
		t.Errorf("appended element = %+v, want \"x\"", got.Arr.Elems[2])
	}
	if len(arr.Arr.Elems) != 2 {
		t.Error("addResult must not mutate its array operand in place")
	}
}

func TestAddConcatenatesTwoArrays(t *testing.T) {
	a := operand.NewArrayValue()
	a.Arr.Elems = []operand.Value{operand.Int(1)}
	b := operand.NewArrayValue()
	b.Arr.Elems = []operand.Value{operand.Int(2), operand.Int(3)}

	got, err := binaryOp(bytecode.Add, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Arr.Elems) != 3 {
		t.Fatalf("got %d elements, want 3", len(got.Arr.Elems))
	}
}

func TestConcatRejectsArrayOperand(t *testing.T) {
	arr := operand.NewArrayValue()
	if _, err := binaryOp(bytecode.Concat, operand.Bool(true), arr); err == nil {
		t.Fatal("expected an error concatenating a bool with an array")
	}
	if _, err := binaryOp(bytecode.Concat, operand.Int(1), arr); err == nil {
		t.Fatal("expected an error concatenating a number with an array")
	}
}

func TestConcatStringifiesScalarPairs(t *testing.T) {
	got, err := binaryOp(bytecode.Concat, operand.Str("n="), operand.Int(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str != "n=5" {
		t.Errorf("got %q, want %q", got.Str, "n=5")
	}
}

func TestEqCrossKindBoolString(t *testing.T) {
	if !valuesEqual(operand.Bool(true), operand.Str("true")) {
		t.Error("expected bool(true) == \"true\"")
	}
	if valuesEqual(operand.Bool(true), operand.Str("false")) {
		t.Error("expected bool(true) != \"false\"")
	}
	if !valuesEqual(operand.Str("false"), operand.Bool(false)) {
		t.Error("expected \"false\" == bool(false), reversed operand order")
	}
}

func TestEqCrossKindBoolNumber(t *testing.T) {
	if !valuesEqual(operand.Bool(true), operand.Int(1)) {
		t.Error("expected bool(true) == 1")
	}
	if !valuesEqual(operand.Int(0), operand.Bool(false)) {
		t.Error("expected 0 == bool(false)")
	}
	if valuesEqual(operand.Bool(true), operand.Int(0)) {
		t.Error("expected bool(true) != 0")
	}
}

func TestEqUnrelatedCrossKindIsFalseNotError(t *testing.T) {
	arr := operand.NewArrayValue()
	got, err := binaryOp(bytecode.Eq, arr, operand.Int(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Bool {
		t.Error("expected an array and a number to compare unequal")
	}
}
