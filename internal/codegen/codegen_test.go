package codegen_test

import (
	"strings"
	"testing"

	"corelang/internal/codegen"
	"corelang/internal/interner"
	"corelang/internal/parser"
	"corelang/internal/token"
)

func generate(t *testing.T, src string) []error {
	t.Helper()
	toks, err := token.NewScanner(src, "<test>").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	m, errs := parser.Parse(toks, "<test>")
	if len(errs) > 0 {
		t.Fatalf("Parse errors: %v", errs)
	}
	_, errs = codegen.Generate("<test>", m, interner.New(), nil)
	return errs
}

func TestBreakInsideWhileGeneratesCleanly(t *testing.T) {
	errs := generate(t, `entry fn main {
		while 1 {
			break;
		}
	}`)
	if len(errs) > 0 {
		t.Fatalf("unexpected generation errors: %v", errs)
	}
}

func TestBreakOutsideBreakableBlockIsGenerationError(t *testing.T) {
	errs := generate(t, `entry fn main {
		break;
	}`)
	if len(errs) == 0 {
		t.Fatal("expected a generation error for break outside a breakable block")
	}
}

func TestBreakDepthExceedingEnclosingLoopsIsGenerationError(t *testing.T) {
	errs := generate(t, `entry fn main {
		while 1 {
			break 2;
		}
	}`)
	if len(errs) == 0 {
		t.Fatal("expected a generation error for a break depth deeper than the enclosing loop nest")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e.Error(), "exceeds") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an 'exceeds' generation error, got: %v", errs)
	}
}

func TestBreakDepthMatchingNestedLoopsGeneratesCleanly(t *testing.T) {
	errs := generate(t, `entry fn main {
		while 1 {
			while 1 {
				break 2;
			}
		}
	}`)
	if len(errs) > 0 {
		t.Fatalf("unexpected generation errors: %v", errs)
	}
}

func TestDuplicateStructMemberIsGenerationError(t *testing.T) {
	errs := generate(t, `struct P { x; x; }
	entry fn main {
		p=new P;
	}`)
	if len(errs) == 0 {
		t.Fatal("expected a generation error for a struct with a duplicate member name")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e.Error(), "duplicate struct member") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a 'duplicate struct member' generation error, got: %v", errs)
	}
}

func TestContinueInsideForeachGeneratesCleanly(t *testing.T) {
	errs := generate(t, `entry fn main {
		a=[1,2,3];
		foreach v a {
			continue;
		}
	}`)
	if len(errs) > 0 {
		t.Fatalf("unexpected generation errors: %v", errs)
	}
}
