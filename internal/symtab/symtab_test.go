package symtab

import (
	"testing"

	"corelang/internal/token"
)

func litToken() token.Token {
	return token.Token{Type: token.Float, Value: "3.14159"}
}

func TestAddScalarIsIdempotentPerScope(t *testing.T) {
	tbl := NewFunctionTable(NewGlobals())
	tbl.PushScope(0)

	first := tbl.AddScalar("a", 1)
	second := tbl.AddScalar("a", 1)
	if first != second {
		t.Fatal("AddScalar should return the same entry on repeated calls within a scope")
	}
	if first.Index != 0 {
		t.Fatalf("first scalar Index = %d, want 0", first.Index)
	}

	other := tbl.AddScalar("b", 2)
	if other.Index != 1 {
		t.Fatalf("second distinct scalar Index = %d, want 1", other.Index)
	}
	if tbl.NextIndex() != 2 {
		t.Fatalf("NextIndex() = %d, want 2", tbl.NextIndex())
	}
}

func TestAddStructMemberReusesInstanceCell(t *testing.T) {
	tbl := NewFunctionTable(NewGlobals())
	tbl.PushScope(0)

	inst := tbl.AddStructInstance("p", 1)
	if inst.Block != 0 || inst.Index != 0 {
		t.Fatalf("instance entry = %+v, want Block=0 Index=0", inst)
	}

	member, ok := tbl.AddStructMember("p:y", 3, inst.Block, inst.Index, []int{1}, 2)
	if !ok {
		t.Fatal("expected a fresh struct member insert to succeed")
	}
	if member.Block != inst.Block || member.Index != inst.Index {
		t.Fatalf("member entry Block/Index = %d/%d, want %d/%d (the owning instance's own cell)",
			member.Block, member.Index, inst.Block, inst.Index)
	}
	if len(member.Path) != 1 || member.Path[0] != 1 {
		t.Fatalf("member.Path = %v, want [1]", member.Path)
	}

	// AddStructMember must not advance the scope block's next-index counter:
	// a member reserves no cell of its own.
	if tbl.NextIndex() != 1 {
		t.Fatalf("NextIndex() after AddStructMember = %d, want 1 (unchanged by the member)", tbl.NextIndex())
	}
}

func TestAddStructMemberRejectsDuplicateQualifiedName(t *testing.T) {
	tbl := NewFunctionTable(NewGlobals())
	tbl.PushScope(0)

	inst := tbl.AddStructInstance("p", 1)

	first, ok := tbl.AddStructMember("p:x", 3, inst.Block, inst.Index, []int{0}, 2)
	if !ok {
		t.Fatal("expected the first insert of p:x to succeed")
	}

	second, ok := tbl.AddStructMember("p:x", 3, inst.Block, inst.Index, []int{1}, 2)
	if ok {
		t.Fatal("expected a duplicate struct member insert to be rejected")
	}
	if second != nil {
		t.Fatalf("expected a nil entry on rejection, got %+v", second)
	}

	// The original entry must survive untouched: duplicate insertion does not
	// overwrite it.
	resolved, ok := tbl.Resolve("p:x")
	if !ok || resolved != first {
		t.Fatal("expected p:x to still resolve to its original entry after the rejected duplicate insert")
	}
}

func TestResolveFallsBackToGlobals(t *testing.T) {
	globals := NewGlobals()
	tbl := NewFunctionTable(globals)
	tbl.PushScope(0)

	lit := tbl.AddLiteral("PI", litToken())
	if _, ok := tbl.Resolve("PI"); !ok {
		t.Fatal("expected PI to resolve via the globals fallback")
	}
	if lit.Kind != EntryLiteral {
		t.Fatalf("literal entry Kind = %v, want EntryLiteral", lit.Kind)
	}

	if _, ok := tbl.Resolve("nope"); ok {
		t.Fatal("expected an unknown name to fail to resolve")
	}
}

func TestResolveInnerScopeShadowsOuter(t *testing.T) {
	tbl := NewFunctionTable(NewGlobals())
	tbl.PushScope(0)
	tbl.AddScalar("a", 1)

	tbl.PushScope(1)
	inner := tbl.AddScalar("a", 1)

	resolved, ok := tbl.Resolve("a")
	if !ok {
		t.Fatal("expected a to resolve")
	}
	if resolved != inner {
		t.Fatal("expected the innermost scope's entry to shadow the outer one")
	}

	tbl.PopScope()
	resolvedAfterPop, ok := tbl.Resolve("a")
	if !ok {
		t.Fatal("expected a to still resolve after popping the inner scope")
	}
	if resolvedAfterPop == inner {
		t.Fatal("expected the outer scope's entry after popping the inner scope")
	}
}
