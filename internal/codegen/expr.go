package codegen

import (
	"corelang/internal/bytecode"
	"corelang/internal/symtab"
	"corelang/internal/token"
)

var binaryOps = map[token.Type]bytecode.Opcode{
	token.Add:        bytecode.Add,
	token.Sub:        bytecode.Sub,
	token.Mul:        bytecode.Mul,
	token.Div:        bytecode.Div,
	token.Mod:        bytecode.Mod,
	token.BitwiseAnd: bytecode.BwAnd,
	token.BitwiseOr:  bytecode.BwOr,
	token.Concat:     bytecode.Concat,
	token.LAnd:       bytecode.Land,
	token.LOr:        bytecode.Lor,
	token.LT:         bytecode.Lt,
	token.GT:         bytecode.Gt,
	token.LE:         bytecode.Le,
	token.GE:         bytecode.Ge,
	token.EQ:         bytecode.Eq,
	token.NE:         bytecode.Ne,
}

// genExpr emits the code for one already-postfix token run. At runtime it
// leaves exactly one value on top of the current operand block.
func (g *Generator) genExpr(toks []token.Token) {
	g.genExprTail(toks, false)
}

// genExprTail is genExpr, except that when tailIsStatement is true and the
// buffer's last token is a call, the call is flagged so the interpreter can
// reject an uninitialized return where the call stood alone as a statement
// (almost always a missing return in the callee).
func (g *Generator) genExprTail(toks []token.Token, tailIsStatement bool) {
	for i, t := range toks {
		if tailIsStatement && i == len(toks)-1 && t.Type == token.FunctionCallTok {
			g.genCall(t, true)
			continue
		}
		g.genExprTok(t)
	}
}

func (g *Generator) genExprTok(t token.Token) {
	switch t.Type {
	case token.Integer, token.Float, token.Str, token.Bool, token.None:
		g.emit(bytecode.Instruction{Op: bytecode.Push, Mode: bytecode.Lit, Lit: t, Line: t.Line})

	case token.Ident:
		g.genIdentRead(t)

	case token.FunctionCallTok:
		g.genCall(t, false)

	case token.RIndex:
		g.emit(bytecode.Instruction{Op: bytecode.FetchIndexed, Mode: bytecode.Internal, Qual: []int{t.IntPayload}, Line: t.Line})

	case token.NewArray:
		g.emit(bytecode.Instruction{Op: bytecode.PushNewCollection, Mode: bytecode.Array, Qual: []int{t.IntPayload}, Line: t.Line})

	case token.RDictKV:
		g.emit(bytecode.Instruction{Op: bytecode.PushNewCollection, Mode: bytecode.Dict, Qual: []int{t.IntPayload}, Line: t.Line})

	case token.LDictKV, token.ArgSeparator, token.ListSeparator, token.Comma:
		// pure separators, no operand-stack effect

	case token.UnaryMinus:
		g.emit(bytecode.Instruction{Op: bytecode.Uminus, Line: t.Line})

	case token.Damnit:
		g.emit(bytecode.Instruction{Op: bytecode.Damnit, Line: t.Line})

	case token.LengthOf:
		g.emit(bytecode.Instruction{Op: bytecode.LengthOf, Line: t.Line})

	default:
		if op, ok := binaryOps[t.Type]; ok {
			g.emit(bytecode.Instruction{Op: op, Line: t.Line})
			return
		}
		g.fail(t.Line, "unexpected token %s in expression", t.Type)
	}
}

// genCall emits a FunctionCall. Qual[0] is the argument count; Qual[1] is
// set when this call sits alone as a statement, so the interpreter can
// raise an error if its return value comes back uninitialized rather than
// silently discarding it.
func (g *Generator) genCall(t token.Token, statementTail bool) {
	idx, ok := g.fm.Lookup(t.Value)
	if !ok {
		g.fail(t.Line, "call to undeclared function %q", t.Value)
		return
	}
	frame := g.fm.Frame(idx)
	mode := bytecode.Function
	if frame.IsBuiltin {
		mode = bytecode.Builtin
	}
	flag := 0
	if statementTail {
		flag = 1
	}
	g.emit(bytecode.Instruction{
		Op: bytecode.FunctionCall, Mode: mode, Frame: idx,
		Qual: []int{t.IntPayload, flag}, Name: g.in.Intern(t.Value), Line: t.Line,
	})
}

func (g *Generator) genIdentRead(t token.Token) {
	e, ok := g.table.Resolve(t.Value)
	if !ok {
		g.fail(t.Line, "undeclared identifier %q", t.Value)
		g.emit(bytecode.Instruction{Op: bytecode.Push, Mode: bytecode.Lit, Lit: token.Token{Type: token.None}, Line: t.Line})
		return
	}
	switch e.Kind {
	case symtab.EntryScalar, symtab.EntryStructInstance, symtab.EntryStructChild:
		g.emit(bytecode.Instruction{Op: bytecode.Push, Mode: bytecode.Var, Block: e.Block, Addr: e.Index, Name: e.Interner, Line: t.Line})
	case symtab.EntryStructMember:
		g.emit(bytecode.Instruction{Op: bytecode.FetchIndexed, Mode: bytecode.Var, Block: e.Block, Addr: e.Index, Qual: e.Path, Name: e.Interner, Line: t.Line})
	case symtab.EntryLiteral:
		g.emit(bytecode.Instruction{Op: bytecode.Push, Mode: bytecode.Lit, Lit: e.Literal, Line: t.Line})
	}
}
