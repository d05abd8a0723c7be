package interp_test

import (
	"bytes"
	"testing"

	"corelang/internal/codegen"
	"corelang/internal/interner"
	"corelang/internal/interp"
	"corelang/internal/parser"
	"corelang/internal/token"
)

// run compiles and executes src end to end, returning everything written to
// stdout and the process exit code.
func run(t *testing.T, src string) (string, int) {
	t.Helper()

	toks, err := token.NewScanner(src, "<test>").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	m, errs := parser.Parse(toks, "<test>")
	if len(errs) > 0 {
		t.Fatalf("Parse errors: %v", errs)
	}

	fm, errs := codegen.Generate("<test>", m, interner.New(), nil)
	if len(errs) > 0 {
		t.Fatalf("Generate errors: %v", errs)
	}

	it := interp.New(fm)
	var out bytes.Buffer
	it.Stdout = &out
	code, err := it.RunEntry(m.EntryFunction, nil)
	if err != nil {
		if _, ok := interp.IsExit(err); !ok {
			t.Fatalf("RunEntry: %v", err)
		}
	}
	return out.String(), code
}

func TestArithmeticAndPrintln(t *testing.T) {
	out, _ := run(t, `entry fn main { println(2+3*4); }`)
	if out != "14\n" {
		t.Fatalf("got %q, want %q", out, "14\n")
	}
}

func TestWhileLoopAccumulation(t *testing.T) {
	out, _ := run(t, `entry fn main {
		a=0;
		while a<3 {
			println(a);
			a+=1;
		}
	}`)
	if out != "0\n1\n2\n" {
		t.Fatalf("got %q, want %q", out, "0\n1\n2\n")
	}
}

func TestFunctionCallReturnsValue(t *testing.T) {
	out, _ := run(t, `fn add(x,y) { return x+y; }
	entry fn main { println(add(2,3)); }`)
	if out != "5\n" {
		t.Fatalf("got %q, want %q", out, "5\n")
	}
}

func TestForeachOverArray(t *testing.T) {
	out, _ := run(t, `entry fn main {
		a=[10,20,30];
		foreach v a {
			println(v);
		}
	}`)
	if out != "10\n20\n30\n" {
		t.Fatalf("got %q, want %q", out, "10\n20\n30\n")
	}
}

func TestStructInstantiateAndUpdate(t *testing.T) {
	out, _ := run(t, `struct P { x; y=7; }
	entry fn main {
		p=new P;
		p:y=9;
		println(p:y);
	}`)
	if out != "9\n" {
		t.Fatalf("got %q, want %q", out, "9\n")
	}
}

func TestDictLiteralLookupAndSum(t *testing.T) {
	out, _ := run(t, `entry fn main {
		d={"k":1,"m":2};
		println(d["k"]+d["m"]);
	}`)
	if out != "3\n" {
		t.Fatalf("got %q, want %q", out, "3\n")
	}
}

func TestExitStatementStopsExecutionAndSetsCode(t *testing.T) {
	out, code := run(t, `entry fn main {
		println("before");
		exit 7;
		println("unreachable");
	}`)
	if out != "before\n" {
		t.Fatalf("got %q, want %q", out, "before\n")
	}
	if code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
}
