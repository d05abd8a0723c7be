package codegen

import (
	"strconv"

	"corelang/internal/bytecode"
	"corelang/internal/model"
	"corelang/internal/symtab"
	"corelang/internal/token"
)

var verbOps = map[token.Type]bytecode.Opcode{
	token.Print:    bytecode.Print,
	token.Eprint:   bytecode.Eprint,
	token.Println:  bytecode.Println,
	token.Eprintln: bytecode.Eprintln,
}

var compoundOps = map[token.Type]bytecode.Opcode{
	token.AsgAddEq:    bytecode.AddEq,
	token.AsgSubEq:    bytecode.SubEq,
	token.AsgMulEq:    bytecode.MulEq,
	token.AsgDivEq:    bytecode.DivEq,
	token.AsgModEq:    bytecode.ModEq,
	token.AsgOrEq:     bytecode.OrEq,
	token.AsgAndEq:    bytecode.AndEq,
	token.AsgAppendEq: bytecode.AppendEq,
}

func (g *Generator) genStmt(s *model.Stmt) {
	switch s.Kind {
	case model.StmtSimple:
		g.genExpr(s.Expr)
		if op, ok := verbOps[s.Verb]; ok {
			g.emit(bytecode.Instruction{Op: op, Line: s.Line})
		} else {
			g.emit(bytecode.Instruction{Op: bytecode.Pop, Line: s.Line})
		}

	case model.StmtAssignment:
		g.genAssignment(s)

	case model.StmtInstantiate:
		g.genInstantiate(s)

	case model.StmtFunctionCall:
		g.genExprTail(s.Expr, true) // call token run, already postfix; result discarded
		g.emit(bytecode.Instruction{Op: bytecode.Pop, Line: s.Line})

	case model.StmtWhile:
		g.genWhile(s)

	case model.StmtLoop:
		g.genLoop(s)

	case model.StmtForeach:
		g.genForeach(s)

	case model.StmtIf:
		g.genIf(s)

	case model.StmtEval:
		g.genEval(s)

	case model.StmtBreak:
		g.genBreakContinue(s, true)

	case model.StmtContinue:
		g.genBreakContinue(s, false)

	case model.StmtReturn:
		if len(s.Expr) > 0 {
			g.genExpr(s.Expr)
			g.emit(bytecode.Instruction{Op: bytecode.Return, Mode: bytecode.Internal, Line: s.Line})
		} else {
			g.emit(bytecode.Instruction{Op: bytecode.Return, Mode: bytecode.None, Line: s.Line})
		}

	case model.StmtExit:
		if len(s.Expr) > 0 {
			g.genExpr(s.Expr)
			g.emit(bytecode.Instruction{Op: bytecode.Exit, Mode: bytecode.Internal, Line: s.Line})
		} else {
			g.emit(bytecode.Instruction{Op: bytecode.Exit, Mode: bytecode.None, Line: s.Line})
		}

	case model.StmtBlockEnd, model.StmtElse, model.StmtWhen, model.StmtOtherwise, model.StmtLiteral:
		// Else/When/Otherwise bodies are visited through their owning
		// If/Eval's handle, not walked top-level; Literal declarations were
		// folded into the globals pass before any function was generated.

	default:
		g.fail(s.Line, "unhandled statement kind %d", s.Kind)
	}
}

// genAssignment covers all three target shapes named in §4.6: a bare
// scalar/instance name, an indexed target (possibly multi-dimensional),
// and a qualified struct-member path.
func (g *Generator) genAssignment(s *model.Stmt) {
	switch s.TargetKind {
	case model.TargetScalar:
		g.genScalarAssignment(s)
	case model.TargetIndexed:
		g.genIndexedAssignment(s)
	case model.TargetStructMember:
		g.genStructMemberAssignment(s)
	}
}

func (g *Generator) genScalarAssignment(s *model.Stmt) {
	e, existed := g.table.Resolve(s.Target)
	if !existed {
		nameID := g.in.Intern(s.Target)
		e = g.table.AddScalar(s.Target, nameID)
		g.emit(bytecode.Instruction{Op: bytecode.Alloc, Mode: bytecode.AllocMode, Block: e.Block, Addr: e.Index, Name: nameID, Line: s.Line})
	}

	if s.AssignOp == token.Asg {
		g.genExpr(s.RHS)
		g.emit(bytecode.Instruction{Op: bytecode.Update, Mode: bytecode.UpdateMode, Block: e.Block, Addr: e.Index, Name: e.Interner, Line: s.Line})
		return
	}
	op, ok := compoundOps[s.AssignOp]
	if !ok {
		g.fail(s.Line, "unhandled assignment operator %s", s.AssignOp)
		return
	}
	g.genExpr(s.RHS)
	g.emit(bytecode.Instruction{Op: op, Mode: bytecode.UpdateMode, Block: e.Block, Addr: e.Index, Name: e.Interner, Line: s.Line})
}

// genIndexedAssignment handles `name[i][j]... = rhs`. Each dimension's index
// expression is evaluated left to right, then the RHS, then a single
// UpdateIndexed-mode instruction walks the path at runtime.
func (g *Generator) genIndexedAssignment(s *model.Stmt) {
	e, ok := g.table.Resolve(s.Target)
	if !ok {
		g.fail(s.Line, "undeclared identifier %q", s.Target)
		return
	}
	for _, dim := range s.TargetIndexExprs {
		g.genExpr(dim)
	}
	g.genExpr(s.RHS)
	mode := bytecode.UpdateIndexed
	op := bytecode.Update
	if compound, ok := compoundOps[s.AssignOp]; ok {
		op = compound
	}
	g.emit(bytecode.Instruction{
		Op: op, Mode: mode, Block: e.Block, Addr: e.Index,
		Qual: []int{len(s.TargetIndexExprs)}, Name: e.Interner, Line: s.Line,
	})
}

func (g *Generator) genStructMemberAssignment(s *model.Stmt) {
	e, ok := g.table.Resolve(s.Target)
	if !ok || e.Kind != symtab.EntryStructMember {
		g.fail(s.Line, "undeclared struct member %q", s.Target)
		return
	}
	for _, dim := range s.TargetIndexExprs {
		g.genExpr(dim)
	}
	g.genExpr(s.RHS)
	mode := bytecode.UpdateStructElement
	qual := append([]int{}, e.Path...)
	if len(s.TargetIndexExprs) > 0 {
		mode = bytecode.UpdateIndexedStructElement
		qual = append(qual, len(s.TargetIndexExprs))
	}
	op := bytecode.Update
	if compound, ok := compoundOps[s.AssignOp]; ok {
		op = compound
	}
	g.emit(bytecode.Instruction{
		Op: op, Mode: mode, Block: e.Block, Addr: e.Index,
		Qual: qual, Name: e.Interner, Line: s.Line,
	})
}

// genBreakContinue emits Break/Continue with its depth operand. A literal
// depth (the common `break`/`break n` case) is checked here against the
// number of enclosing breakable blocks (while/loop/foreach; if/else and eval
// arms aren't breakable themselves) and rejected at generation time per
// §4.8/§9 if it reaches outside all of them or there are none to break out
// of at all. A depth computed from a non-literal expression can't be
// verified until it is evaluated, so it falls through to unwind's runtime
// check instead.
func (g *Generator) genBreakContinue(s *model.Stmt, isBreak bool) {
	depth := 1
	hasDepthExpr := 0
	if len(s.DepthExpr) > 0 {
		if lit, ok := literalDepth(s.DepthExpr); ok {
			depth = lit
		} else {
			g.genExpr(s.DepthExpr)
			hasDepthExpr = 1
		}
	}
	if hasDepthExpr == 0 {
		word := "break"
		if !isBreak {
			word = "continue"
		}
		if g.breakableDepth == 0 {
			g.fail(s.Line, "%s used outside a breakable block", word)
			return
		}
		if depth > g.breakableDepth {
			g.fail(s.Line, "%s %d exceeds %d enclosing breakable block(s)", word, depth, g.breakableDepth)
			return
		}
		if depth < 1 {
			g.fail(s.Line, "%s depth must be at least 1", word)
			return
		}
	}
	op := bytecode.Continue
	if isBreak {
		op = bytecode.Break
	}
	g.emit(bytecode.Instruction{Op: op, Mode: bytecode.Internal, Qual: []int{hasDepthExpr, depth}, Line: s.Line})
}

// literalDepth recognizes a depth expression that is exactly one integer
// token, the shape `break 3`/`continue 2` compile to; anything else (an
// identifier, a computed expression) is left for runtime evaluation.
func literalDepth(toks []token.Token) (int, bool) {
	if len(toks) != 1 || toks[0].Type != token.Integer {
		return 0, false
	}
	n, err := strconv.Atoi(toks[0].Value)
	if err != nil {
		return 0, false
	}
	return n, true
}
