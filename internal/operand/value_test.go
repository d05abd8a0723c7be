package operand

import "testing"

func TestDictPreservesInsertionOrder(t *testing.T) {
	d := NewDict()
	d.Set("z", Int(1))
	d.Set("a", Int(2))
	d.Set("m", Int(3))

	got := d.Keys()
	want := []string{"z", "a", "m"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDictSortedKeysDoesNotMutateInsertionOrder(t *testing.T) {
	d := NewDict()
	d.Set("z", Int(1))
	d.Set("a", Int(2))

	sorted := d.SortedKeys()
	if sorted[0] != "a" || sorted[1] != "z" {
		t.Fatalf("SortedKeys() = %v, want [a z]", sorted)
	}

	insertionOrder := d.Keys()
	if insertionOrder[0] != "z" || insertionOrder[1] != "a" {
		t.Fatalf("Keys() after SortedKeys() = %v, want [z a] (insertion order unchanged)", insertionOrder)
	}
}

func TestDictDeleteRemovesFromKeyOrder(t *testing.T) {
	d := NewDict()
	d.Set("a", Int(1))
	d.Set("b", Int(2))
	d.Set("c", Int(3))
	d.Delete("b")

	if _, ok := d.Get("b"); ok {
		t.Fatal("expected b to be deleted")
	}
	got := d.Keys()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("Keys() after delete = %v, want [a c]", got)
	}
}

func TestToDisplayStringScalars(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Int(42), "42"},
		{Real(1.5), "1.5"},
		{Str("hi"), "hi"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Uninitialized(), "<uninitialized>"},
	}
	for _, c := range cases {
		if got := ToDisplayString(c.v); got != c.want {
			t.Errorf("ToDisplayString(%+v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestToDisplayStringArrayAndDict(t *testing.T) {
	arr := NewArrayValue()
	arr.Arr.Elems = []Value{Int(1), Int(2), Str("x")}
	if got, want := ToDisplayString(arr), "[1,2,x]"; got != want {
		t.Errorf("array display = %q, want %q", got, want)
	}

	dv := NewDictValue()
	dv.Dict.Set("k", Int(1))
	if got, want := ToDisplayString(dv), "{k:1}"; got != want {
		t.Errorf("dict display = %q, want %q", got, want)
	}
}
