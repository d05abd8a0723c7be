package parser

import (
	"corelang/internal/model"
	"corelang/internal/token"
)

// parseStatements reads statements until the enclosing `}` (left for the
// caller to consume) or end of file.
func (p *Parser) parseStatements() []*model.Stmt {
	var out []*model.Stmt
	for !p.check(token.RBrace) && !p.atEnd() {
		if s := p.parseStatement(); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (p *Parser) parseStatement() *model.Stmt {
	t := p.peek()
	switch t.Type {
	case token.Print, token.Eprint, token.Println, token.Eprintln:
		p.next()
		expr := p.postfixExprUntilSemicolon()
		return &model.Stmt{Kind: model.StmtSimple, Verb: t.Type, Expr: expr, Line: t.Line}

	case token.Break:
		return p.parseBreakContinue(true)
	case token.Continue:
		return p.parseBreakContinue(false)

	case token.Return:
		p.next()
		if p.check(token.Semicolon) {
			p.next()
			return &model.Stmt{Kind: model.StmtReturn, Line: t.Line}
		}
		return &model.Stmt{Kind: model.StmtReturn, Expr: p.postfixExprUntilSemicolon(), Line: t.Line}

	case token.Exit:
		p.next()
		if p.check(token.Semicolon) {
			p.next()
			return &model.Stmt{Kind: model.StmtExit, Line: t.Line}
		}
		return &model.Stmt{Kind: model.StmtExit, Expr: p.postfixExprUntilSemicolon(), Line: t.Line}

	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.Loop:
		return p.parseLoop()
	case token.Foreach:
		return p.parseForeach()
	case token.Eval:
		return p.parseEval()

	case token.Ident:
		return p.parseIdentStatement()

	case token.Semicolon:
		p.next()
		return nil

	default:
		p.fail(t.Line, "unexpected token %s in statement position", t.Type)
		p.next()
		return nil
	}
}

func (p *Parser) parseBreakContinue(isBreak bool) *model.Stmt {
	t := p.next()
	var depthExpr []token.Token
	if p.check(token.Semicolon) {
		p.next()
	} else {
		depthExpr = p.postfixExprUntilSemicolon()
	}
	kind := model.StmtContinue
	if isBreak {
		kind = model.StmtBreak
	}
	return &model.Stmt{Kind: kind, DepthExpr: depthExpr, Line: t.Line}
}

// parseIdentStatement dispatches a statement that begins with an
// identifier: a scalar/indexed/struct-member assignment, a `= new Struct`
// instantiation, or a bare expression (typically a discarded function
// call). The three assignment-shaped branches speculatively consume a
// struct-member path or index chain and fall back to a full expression
// re-read (via pushBackTo) if no assignment operator follows — covering
// `p:y;` or `a[0];` read purely for a side effect such as a builtin call
// buried inside the indexed expression.
func (p *Parser) parseIdentStatement() *model.Stmt {
	start := p.ts.Pos()
	ident := p.next()
	line := ident.Line

	if p.check(token.Colon) {
		target := ident.Value
		for p.check(token.Colon) {
			p.next()
			m := p.expect(token.Ident)
			target += ":" + m.Value
		}
		idxExprs := p.maybeParseIndices()
		if isAssignOpType(p.peek().Type) {
			op := p.next()
			rhs := p.postfixExprUntilSemicolon()
			return &model.Stmt{
				Kind: model.StmtAssignment, TargetKind: model.TargetStructMember,
				Target: target, TargetIndexExprs: idxExprs, AssignOp: op.Type, RHS: rhs, Line: line,
			}
		}
		p.pushBackTo(start)
		return p.parseExprStatement(line)
	}

	if p.check(token.LBracket) {
		idxExprs := p.maybeParseIndices()
		if isAssignOpType(p.peek().Type) {
			op := p.next()
			rhs := p.postfixExprUntilSemicolon()
			return &model.Stmt{
				Kind: model.StmtAssignment, TargetKind: model.TargetIndexed,
				Target: ident.Value, TargetIndexExprs: idxExprs, AssignOp: op.Type, RHS: rhs, Line: line,
			}
		}
		p.pushBackTo(start)
		return p.parseExprStatement(line)
	}

	if isAssignOpType(p.peek().Type) {
		op := p.next()
		if op.Type == token.Asg && p.check(token.New) {
			p.next()
			structName := p.expect(token.Ident).Value
			p.expect(token.Semicolon)
			return &model.Stmt{Kind: model.StmtInstantiate, InstanceName: ident.Value, StructName: structName, Line: line}
		}
		rhs := p.postfixExprUntilSemicolon()
		return &model.Stmt{
			Kind: model.StmtAssignment, TargetKind: model.TargetScalar,
			Target: ident.Value, AssignOp: op.Type, RHS: rhs, Line: line,
		}
	}

	p.pushBackTo(start)
	return p.parseExprStatement(line)
}

func (p *Parser) parseExprStatement(line int) *model.Stmt {
	expr := p.postfixExprUntilSemicolon()
	return &model.Stmt{Kind: model.StmtFunctionCall, Expr: expr, Line: line}
}

func (p *Parser) maybeParseIndices() [][]token.Token {
	var out [][]token.Token
	for p.check(token.LBracket) {
		p.next()
		out = append(out, p.toPostfix(p.readBalanced(token.RBracket)))
	}
	return out
}

func (p *Parser) parseIf() *model.Stmt {
	t := p.next()
	cond := p.postfixExprUntilBrace()
	p.expect(token.LBrace)
	body := p.parseStatements()
	p.expect(token.RBrace)

	s := &model.Stmt{Kind: model.StmtIf, Expr: cond, Body: body, Line: t.Line}
	if p.check(token.Else) {
		p.next()
		s.HasElse = true
		if p.check(token.If) {
			s.ElseBody = []*model.Stmt{p.parseIf()}
		} else {
			p.expect(token.LBrace)
			s.ElseBody = p.parseStatements()
			p.expect(token.RBrace)
		}
	}
	return s
}

func (p *Parser) parseWhile() *model.Stmt {
	t := p.next()
	cond := p.postfixExprUntilBrace()
	p.expect(token.LBrace)
	body := p.parseStatements()
	p.expect(token.RBrace)
	return &model.Stmt{Kind: model.StmtWhile, Expr: cond, Body: body, Line: t.Line}
}

func (p *Parser) parseLoop() *model.Stmt {
	t := p.next()
	p.expect(token.LBrace)
	body := p.parseStatements()
	p.expect(token.RBrace)
	return &model.Stmt{Kind: model.StmtLoop, Body: body, Line: t.Line}
}

func (p *Parser) parseForeach() *model.Stmt {
	t := p.next()
	loopVar := p.expect(token.Ident).Value
	src := p.postfixExprUntilBrace()
	p.expect(token.LBrace)
	body := p.parseStatements()
	p.expect(token.RBrace)
	return &model.Stmt{Kind: model.StmtForeach, LoopVar: loopVar, SourceExpr: src, Body: body, Line: t.Line}
}

func (p *Parser) parseEval() *model.Stmt {
	t := p.next()
	p.expect(token.LBrace)

	var whens []*model.Stmt
	for p.check(token.When) {
		wt := p.next()
		cond := p.postfixExprUntilBrace()
		p.expect(token.LBrace)
		body := p.parseStatements()
		p.expect(token.RBrace)
		whens = append(whens, &model.Stmt{Kind: model.StmtWhen, Expr: cond, Body: body, Line: wt.Line})
	}

	var otherwise []*model.Stmt
	if p.check(token.Otherwise) {
		p.next()
		p.expect(token.LBrace)
		otherwise = p.parseStatements()
		p.expect(token.RBrace)
	}
	p.expect(token.RBrace)

	if len(whens) == 0 {
		p.fail(t.Line, "eval block has no when clauses")
	}
	return &model.Stmt{Kind: model.StmtEval, Whens: whens, OtherwiseBody: otherwise, Line: t.Line}
}
