package parser

import (
	"testing"

	"corelang/internal/model"
	"corelang/internal/token"
)

func parseOrFail(t *testing.T, src string) *model.Model {
	t.Helper()
	toks, err := token.NewScanner(src, "<test>").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	m, errs := Parse(toks, "<test>")
	if len(errs) > 0 {
		t.Fatalf("Parse(%q) errors: %v", src, errs)
	}
	return m
}

func TestParseEntryFunctionIfElse(t *testing.T) {
	m := parseOrFail(t, `entry fn main {
		if a<3 {
			println(a);
		} else {
			println(0);
		}
	}`)

	if m.EntryFunction != "main" {
		t.Fatalf("EntryFunction = %q, want main", m.EntryFunction)
	}
	fn, ok := m.FunctionByName("main")
	if !ok {
		t.Fatal("main not registered")
	}
	if len(fn.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(fn.Statements))
	}
	s := fn.Statements[0]
	if s.Kind != model.StmtIf {
		t.Fatalf("Kind = %v, want StmtIf", s.Kind)
	}
	if !s.HasElse {
		t.Error("expected HasElse = true")
	}
	if len(s.Body) != 1 || len(s.ElseBody) != 1 {
		t.Fatalf("Body=%d ElseBody=%d, want 1 and 1", len(s.Body), len(s.ElseBody))
	}
}

func TestParseWhileLoop(t *testing.T) {
	m := parseOrFail(t, `entry fn main {
		a=0;
		while a<3 {
			a+=1;
		}
	}`)
	fn, _ := m.FunctionByName("main")
	if len(fn.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(fn.Statements))
	}
	assign := fn.Statements[0]
	if assign.Kind != model.StmtAssignment || assign.TargetKind != model.TargetScalar || assign.Target != "a" {
		t.Fatalf("unexpected first statement: %+v", assign)
	}
	loop := fn.Statements[1]
	if loop.Kind != model.StmtWhile {
		t.Fatalf("Kind = %v, want StmtWhile", loop.Kind)
	}
	if len(loop.Body) != 1 {
		t.Fatalf("while body has %d statements, want 1", len(loop.Body))
	}
	body0 := loop.Body[0]
	if body0.Kind != model.StmtAssignment || body0.AssignOp != token.AsgAddEq {
		t.Fatalf("unexpected while body statement: %+v", body0)
	}
}

func TestParseStructMemberAssignment(t *testing.T) {
	m := parseOrFail(t, `struct P { x; y=7; }
	entry fn main {
		p=new P;
		p:y=9;
	}`)

	if len(m.Structs) != 1 || m.Structs[0].Name != "P" {
		t.Fatalf("unexpected struct table: %+v", m.Structs)
	}

	fn, _ := m.FunctionByName("main")
	if len(fn.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(fn.Statements))
	}
	inst := fn.Statements[0]
	if inst.Kind != model.StmtInstantiate || inst.InstanceName != "p" || inst.StructName != "P" {
		t.Fatalf("unexpected instantiate statement: %+v", inst)
	}
	upd := fn.Statements[1]
	if upd.Kind != model.StmtAssignment || upd.TargetKind != model.TargetStructMember || upd.Target != "p:y" {
		t.Fatalf("unexpected struct-member assignment: %+v", upd)
	}
}

func TestParseBareFunctionCallStatement(t *testing.T) {
	m := parseOrFail(t, `fn forgetful() { a=1; }
	entry fn main {
		forgetful();
	}`)
	fn, _ := m.FunctionByName("main")
	if len(fn.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(fn.Statements))
	}
	s := fn.Statements[0]
	if s.Kind != model.StmtFunctionCall {
		t.Fatalf("Kind = %v, want StmtFunctionCall", s.Kind)
	}
}

func TestParseForeach(t *testing.T) {
	m := parseOrFail(t, `entry fn main {
		a=[1,2,3];
		foreach v a {
			println(v);
		}
	}`)
	fn, _ := m.FunctionByName("main")
	loop := fn.Statements[1]
	if loop.Kind != model.StmtForeach || loop.LoopVar != "v" {
		t.Fatalf("unexpected foreach statement: %+v", loop)
	}
	if len(loop.Body) != 1 {
		t.Fatalf("foreach body has %d statements, want 1", len(loop.Body))
	}
}
