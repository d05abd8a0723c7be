package codegen

import (
	"corelang/internal/bytecode"
	"corelang/internal/model"
	"corelang/internal/token"
)

// emitBL emits a Bl instruction transferring control to bodyBlock, with its
// paired return location set to (current block, next instruction) and its
// break-exit qualifier left for the caller to patch once the after-label
// address is known.
func (g *Generator) emitBL(breakable bool, bodyBlock int, line int) int {
	flag := 0
	if breakable {
		flag = 1
	}
	blAddr := g.curBlock().Len()
	addr := g.emit(bytecode.Instruction{
		Op: bytecode.Bl, Mode: bytecode.BlMode,
		Block: g.blockNum, Addr: blAddr + 1,
		Qual: []int{flag, bodyBlock, g.blockNum, -1},
		Line: line,
	})
	return addr
}

func (g *Generator) patchBreakAddr(blAddr, afterAddr int) {
	g.curBlock().Patch(blAddr, func(i *bytecode.Instruction) {
		i.Qual[3] = afterAddr
	})
}

// genIf implements `if (cond) { ... } [else { ... }]` as two independent
// BL-guarded blocks (condition true -> then-block; condition false -> skip
// to else, or straight past if absent). Neither branch is breakable: a
// break/continue inside still unwinds through it to reach the nearest
// enclosing loop, per §4.6's paired break/continue bookkeeping.
func (g *Generator) genIf(s *model.Stmt) {
	g.genExpr(s.Expr)
	jfAddr := g.emit(bytecode.Instruction{Op: bytecode.Jf, Line: s.Line})

	thenBlock := g.openBlockPlaceholder()
	blThenAddr := g.emitBL(false, thenBlock, s.Line)
	g.fillBody(thenBlock, s.Body, s.Line)

	var jEndAddr int = -1
	if s.HasElse {
		jEndAddr = g.emit(bytecode.Instruction{Op: bytecode.J, Line: s.Line})
	}
	elseLabel := g.curBlock().Len()
	g.curBlock().Patch(jfAddr, func(i *bytecode.Instruction) { i.Addr = elseLabel })
	g.patchBreakAddr(blThenAddr, elseLabel)

	if s.HasElse {
		elseBlock := g.openBlockPlaceholder()
		blElseAddr := g.emitBL(false, elseBlock, s.Line)
		g.fillBody(elseBlock, s.ElseBody, s.Line)
		endLabel := g.curBlock().Len()
		g.curBlock().Patch(jEndAddr, func(i *bytecode.Instruction) { i.Addr = endLabel })
		g.patchBreakAddr(blElseAddr, endLabel)
	}
}

// openBlockPlaceholder reserves a new CodeBlock number without touching the
// generator's current block, so a BL referencing it can be emitted before
// the block's own instructions are generated.
func (g *Generator) openBlockPlaceholder() int {
	return g.newCodeBlock()
}

// fillBody generates stmts into an already-numbered block (reserved via
// openBlockPlaceholder), wrapping them in BlockBegin/BlockEnd and a fresh
// symbol-table scope.
func (g *Generator) fillBody(blockNum int, stmts []*model.Stmt, line int) {
	outer := g.blockNum
	g.blockNum = blockNum
	g.table.PushScope(blockNum)
	g.emit(bytecode.Instruction{Op: bytecode.BlockBegin, Line: line})
	g.genStatements(stmts)
	g.emit(bytecode.Instruction{Op: bytecode.BlockEnd, Line: line})
	g.table.PopScope()
	g.blockNum = outer
}

// genWhile compiles:
//
//	L_top: <condition>
//	       JF -> L_after
//	       BL body (return=just after, break=L_after)
//	       J  -> L_top
//	L_after:
func (g *Generator) genWhile(s *model.Stmt) {
	topAddr := g.curBlock().Len()
	g.genExpr(s.Expr)
	jfAddr := g.emit(bytecode.Instruction{Op: bytecode.Jf, Line: s.Line})

	bodyBlock := g.openBlockPlaceholder()
	blAddr := g.emitBL(true, bodyBlock, s.Line)
	g.breakableDepth++
	g.fillBody(bodyBlock, s.Body, s.Line)
	g.breakableDepth--
	g.emit(bytecode.Instruction{Op: bytecode.J, Addr: topAddr, Line: s.Line})

	afterAddr := g.curBlock().Len()
	g.curBlock().Patch(jfAddr, func(i *bytecode.Instruction) { i.Addr = afterAddr })
	g.patchBreakAddr(blAddr, afterAddr)
}

// genLoop compiles an unconditional `loop { ... }`, exited only via break.
func (g *Generator) genLoop(s *model.Stmt) {
	topAddr := g.curBlock().Len()
	bodyBlock := g.openBlockPlaceholder()
	blAddr := g.emitBL(true, bodyBlock, s.Line)
	g.breakableDepth++
	g.fillBody(bodyBlock, s.Body, s.Line)
	g.breakableDepth--
	g.emit(bytecode.Instruction{Op: bytecode.J, Addr: topAddr, Line: s.Line})

	afterAddr := g.curBlock().Len()
	g.patchBreakAddr(blAddr, afterAddr)
}

// genForeach compiles the preamble described in §4.8: an iteration counter
// and the loop variable's cell are allocated in the enclosing block, then a
// single Foreach instruction at the loop head tests/fetches/increments,
// followed by a BL into the body and a J back to the head.
func (g *Generator) genForeach(s *model.Stmt) {
	// Alloc must precede the value-producing code for each slot: the
	// permanent cell has to exist at the lower index before any transient
	// expression pushes land above it, so the closing Update's pop-and-write
	// collapses the stack back down to the right depth.
	collID := g.in.Intern("$foreach_coll")
	collEntry := g.table.AddScalar("$foreach_coll:"+s.LoopVar, collID)
	g.emit(bytecode.Instruction{Op: bytecode.Alloc, Mode: bytecode.AllocMode, Block: collEntry.Block, Addr: collEntry.Index, Name: collID, Line: s.Line})
	g.genExpr(s.SourceExpr)
	g.emit(bytecode.Instruction{Op: bytecode.Update, Mode: bytecode.UpdateMode, Block: collEntry.Block, Addr: collEntry.Index, Name: collID, Line: s.Line})

	idxID := g.in.Intern("$foreach_idx")
	idxEntry := g.table.AddScalar("$foreach_idx:"+s.LoopVar, idxID)
	g.emit(bytecode.Instruction{Op: bytecode.Alloc, Mode: bytecode.AllocMode, Block: idxEntry.Block, Addr: idxEntry.Index, Name: idxID, Line: s.Line})
	g.emit(bytecode.Instruction{Op: bytecode.Push, Mode: bytecode.Lit, Lit: zeroLiteral(), Line: s.Line})
	g.emit(bytecode.Instruction{Op: bytecode.Update, Mode: bytecode.UpdateMode, Block: idxEntry.Block, Addr: idxEntry.Index, Name: idxID, Line: s.Line})

	nameID := g.in.Intern(s.LoopVar)
	varEntry := g.table.AddScalar(s.LoopVar, nameID)
	g.emit(bytecode.Instruction{Op: bytecode.Alloc, Mode: bytecode.AllocMode, Block: varEntry.Block, Addr: varEntry.Index, Name: nameID, Line: s.Line})

	topAddr := g.curBlock().Len()
	foreachAddr := g.emit(bytecode.Instruction{
		Op: bytecode.Foreach, Block: varEntry.Block, Addr: varEntry.Index,
		Qual: []int{-1, idxEntry.Block, idxEntry.Index, collEntry.Block, collEntry.Index},
		Name: nameID, Line: s.Line,
	})

	bodyBlock := g.openBlockPlaceholder()
	blAddr := g.emitBL(true, bodyBlock, s.Line)
	g.breakableDepth++
	g.fillBody(bodyBlock, s.Body, s.Line)
	g.breakableDepth--
	g.emit(bytecode.Instruction{Op: bytecode.J, Addr: topAddr, Line: s.Line})

	afterAddr := g.curBlock().Len()
	g.curBlock().Patch(foreachAddr, func(i *bytecode.Instruction) { i.Qual[0] = afterAddr })
	g.patchBreakAddr(blAddr, afterAddr)
}

func zeroLiteral() token.Token { return token.Token{Type: token.Integer, Value: "0"} }

// genEval compiles `eval { when (cond) {...} ... otherwise {...} }` as a
// chain of if/else-if, reusing genIf's machinery one guard at a time.
func (g *Generator) genEval(s *model.Stmt) {
	chain := &model.Stmt{Line: s.Line}
	cur := chain
	for i, when := range s.Whens {
		cur.Kind = model.StmtIf
		cur.Expr = when.Expr
		cur.Body = when.Body
		if i == len(s.Whens)-1 {
			if len(s.OtherwiseBody) > 0 {
				cur.HasElse = true
				cur.ElseBody = s.OtherwiseBody
			}
			break
		}
		next := &model.Stmt{Line: s.Line}
		cur.HasElse = true
		cur.ElseBody = []*model.Stmt{{Kind: model.StmtIf, Line: s.Line}}
		cur.ElseBody[0] = next
		cur = next
	}
	g.genIf(chain)
}
