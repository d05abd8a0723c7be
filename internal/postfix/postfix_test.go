package postfix

import (
	"testing"

	"corelang/internal/token"
)

func scan(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := token.NewScanner(src, "<test>").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens(%q): %v", src, err)
	}
	// drop the trailing EOF; Convert operates on an expression's own tokens
	if len(toks) > 0 && toks[len(toks)-1].Type == token.EOF {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func typeSeq(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func assertTypes(t *testing.T, got []token.Token, want []token.Type) {
	t.Helper()
	gotTypes := typeSeq(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("got %v, want %v", gotTypes, want)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Errorf("token %d = %s, want %s", i, gotTypes[i], want[i])
		}
	}
}

func TestConvertArithmeticPrecedence(t *testing.T) {
	// 2+3*4 -> 2 3 4 * +
	got := Convert(scan(t, "2+3*4"))
	assertTypes(t, got, []token.Type{token.Integer, token.Integer, token.Integer, token.Mul, token.Add})
}

func TestConvertParenOverridesPrecedence(t *testing.T) {
	// (2+3)*4 -> 2 3 + 4 *
	got := Convert(scan(t, "(2+3)*4"))
	assertTypes(t, got, []token.Type{token.Integer, token.Integer, token.Add, token.Integer, token.Mul})
}

func TestConvertUnaryMinus(t *testing.T) {
	// -2+3 -> the leading minus is unary, not binary subtraction
	got := Convert(scan(t, "-2+3"))
	assertTypes(t, got, []token.Type{token.Integer, token.UnaryMinus, token.Integer, token.Add})
}

func TestConvertFunctionCallArgCount(t *testing.T) {
	got := Convert(scan(t, "add(1,2)"))
	assertTypes(t, got, []token.Type{token.Integer, token.ArgSeparator, token.Integer, token.FunctionCallTok})
	call := got[len(got)-1]
	if call.IntPayload != 2 {
		t.Errorf("call IntPayload = %d, want 2", call.IntPayload)
	}
}

func TestConvertFunctionCallNoArgs(t *testing.T) {
	got := Convert(scan(t, "noop()"))
	assertTypes(t, got, []token.Type{token.FunctionCallTok})
	if got[0].IntPayload != 0 {
		t.Errorf("call IntPayload = %d, want 0", got[0].IntPayload)
	}
}

func TestConvertIndexing(t *testing.T) {
	got := Convert(scan(t, "a[0]"))
	assertTypes(t, got, []token.Type{token.Ident, token.Integer, token.RIndex})
	if got[len(got)-1].IntPayload != 1 {
		t.Errorf("RIndex IntPayload = %d, want 1", got[len(got)-1].IntPayload)
	}
}

func TestConvertArrayLiteral(t *testing.T) {
	got := Convert(scan(t, "[1,2,3]"))
	assertTypes(t, got, []token.Type{
		token.Integer, token.ListSeparator,
		token.Integer, token.ListSeparator,
		token.Integer, token.NewArray,
	})
	if got[len(got)-1].IntPayload != 3 {
		t.Errorf("NewArray IntPayload = %d, want 3", got[len(got)-1].IntPayload)
	}
}

func TestConvertDictLiteral(t *testing.T) {
	got := Convert(scan(t, `{"k":1}`))
	assertTypes(t, got, []token.Type{token.Str, token.LDictKV, token.Integer, token.RDictKV})
	if got[len(got)-1].IntPayload != 1 {
		t.Errorf("RDictKV IntPayload = %d, want 1", got[len(got)-1].IntPayload)
	}
}
