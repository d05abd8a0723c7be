package token

import (
	"os"
	"path/filepath"
	"testing"
)

func scanOrFail(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewScanner(src, "<test>").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens(%q): %v", src, err)
	}
	return toks
}

func types(toks []Token) []Type {
	out := make([]Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestScanOperatorDisambiguation(t *testing.T) {
	cases := []struct {
		src  string
		want []Type
	}{
		{"+", []Type{Add, EOF}},
		{"++", []Type{PP, EOF}},
		{"+=", []Type{AsgAddEq, EOF}},
		{"<", []Type{LT, EOF}},
		{"<=", []Type{LE, EOF}},
		{"!", []Type{Damnit, EOF}},
		{"&", []Type{BitwiseAnd, EOF}},
		{"&&", []Type{LAnd, EOF}},
	}
	for _, c := range cases {
		got := types(scanOrFail(t, c.src))
		if len(got) != len(c.want) {
			t.Fatalf("%q: got %v, want %v", c.src, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("%q: token %d = %s, want %s", c.src, i, got[i], c.want[i])
			}
		}
	}
}

func TestScanComments(t *testing.T) {
	toks := scanOrFail(t, "a // trailing comment\n/* block\ncomment */ b")
	got := types(toks)
	want := []Type{Ident, Ident, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if toks[1].Line != 3 {
		t.Errorf("expected second ident on line 3 (after a two-line block comment), got line %d", toks[1].Line)
	}
}

func TestScanStringEscapes(t *testing.T) {
	toks := scanOrFail(t, `"a\tb\nc"`)
	if len(toks) != 2 || toks[0].Type != Str {
		t.Fatalf("unexpected tokens: %v", toks)
	}
	if toks[0].Value != "a\tb\nc" {
		t.Errorf("got %q, want %q", toks[0].Value, "a\tb\nc")
	}
}

func TestScanKeywords(t *testing.T) {
	toks := scanOrFail(t, "entry fn struct literal if else while foreach eval when otherwise break continue return exit")
	want := []Type{Entry, Fn, Struct, LiteralD, If, Else, While, Foreach, Eval, When, Otherwise, Break, Continue, Return, Exit, EOF}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanIncludeSplicesTokens(t *testing.T) {
	dir := t.TempDir()
	incPath := filepath.Join(dir, "inc.cl")
	if err := os.WriteFile(incPath, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	mainPath := filepath.Join(dir, "main.cl")
	toks, err := NewScanner(`a include "inc.cl" c`, mainPath).ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	got := types(toks)
	want := []Type{Ident, Ident, Ident, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanIncludeSelfCycleErrors(t *testing.T) {
	dir := t.TempDir()
	selfPath := filepath.Join(dir, "self.cl")
	if err := os.WriteFile(selfPath, []byte(`include "self.cl"`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewScanner(`include "self.cl"`, selfPath).ScanTokens()
	if err == nil {
		t.Fatal("expected an error for a self-including file")
	}
}

func TestScanIncludeDiamondDuplicateErrors(t *testing.T) {
	dir := t.TempDir()
	leaf := filepath.Join(dir, "leaf.cl")
	if err := os.WriteFile(leaf, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := filepath.Join(dir, "a.cl")
	if err := os.WriteFile(a, []byte(`include "leaf.cl"`), 0o644); err != nil {
		t.Fatal(err)
	}
	b := filepath.Join(dir, "b.cl")
	if err := os.WriteFile(b, []byte(`include "leaf.cl"`), 0o644); err != nil {
		t.Fatal(err)
	}
	main := filepath.Join(dir, "main.cl")
	_, err := NewScanner(`include "a.cl" include "b.cl"`, main).ScanTokens()
	if err == nil {
		t.Fatal("expected an error when the same file is included twice via different parents")
	}
}

func TestTokenStreamPushBack(t *testing.T) {
	toks := scanOrFail(t, "a b c")
	ts := NewTokenStream(toks)

	first := ts.Next()
	if first.Value != "a" {
		t.Fatalf("got %q, want a", first.Value)
	}
	second := ts.Next()
	if second.Value != "b" {
		t.Fatalf("got %q, want b", second.Value)
	}

	ts.PushBack()
	ts.PushBack()
	if got := ts.Next().Value; got != "a" {
		t.Fatalf("after two PushBacks, Next() = %q, want a", got)
	}
}
