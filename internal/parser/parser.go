// Package parser drives token.TokenStream through a small recursive-descent
// grammar, feeding completed expression buffers to the postfix converter
// and declarations/statements to the Model. It does not generate code:
// back-patching an else branch onto its if, or a when clause onto its
// eval, is done directly against the Model's nested Body/ElseBody/Whens
// fields rather than through index handles, since every construct here is
// fully parenthesized by braces before the parser ever returns to its
// caller (no forward reference survives past one statement).
package parser

import (
	"fmt"

	"corelang/internal/cplerr"
	"corelang/internal/model"
	"corelang/internal/postfix"
	"corelang/internal/token"
)

type Parser struct {
	ts   *token.TokenStream
	file string
	m    *model.Model
	errs []error
}

// Parse scans the full declaration sequence (functions, structs, literals)
// out of toks and returns the populated Model.
func Parse(toks []token.Token, file string) (*model.Model, []error) {
	p := &Parser{ts: token.NewTokenStream(toks), file: file, m: model.New()}
	for !p.ts.AtEnd() {
		p.topLevelDecl()
		if len(p.errs) > 20 {
			break
		}
	}
	return p.m, p.errs
}

func (p *Parser) fail(line int, format string, args ...interface{}) {
	p.errs = append(p.errs, cplerr.NewParseError(p.file, line, "", fmt.Sprintf(format, args...)))
}

func (p *Parser) peek() token.Token  { return p.ts.Peek() }
func (p *Parser) next() token.Token  { return p.ts.Next() }
func (p *Parser) atEnd() bool        { return p.ts.AtEnd() }

// expect consumes the next token if it matches tt, else records a parse
// error naming tt as the expected trigger and returns the token anyway so
// the caller can keep making forward progress.
func (p *Parser) expect(tt token.Type) token.Token {
	t := p.next()
	if t.Type != tt {
		p.fail(t.Line, "unexpected %s, expected %s", t.Type, tt)
	}
	return t
}

func (p *Parser) check(tt token.Type) bool { return p.peek().Type == tt }

func (p *Parser) topLevelDecl() {
	t := p.peek()
	switch t.Type {
	case token.Entry:
		p.parseFunction(true)
	case token.Fn:
		p.parseFunction(false)
	case token.Struct:
		p.parseStruct()
	case token.LiteralD:
		p.parseLiteral()
	case token.EOF:
		p.next()
	default:
		p.fail(t.Line, "unexpected top-level token %s", t.Type)
		p.next()
	}
}

// readBalanced consumes tokens up to (not including) the first occurrence
// of close seen at bracket depth 0, tracking (), [], {} nesting so an
// inner collection literal's own delimiters don't trip an early match.
// The caller has already consumed the opening token; readBalanced consumes
// the matching close.
func (p *Parser) readBalanced(close token.Type) []token.Token {
	var out []token.Token
	depth := 0
	for {
		t := p.peek()
		if t.Type == token.EOF {
			p.fail(t.Line, "unexpected end of file, expected %s", close)
			return out
		}
		if depth == 0 && t.Type == close {
			p.next()
			return out
		}
		switch t.Type {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
		}
		out = append(out, p.next())
	}
}

// readExprUntilSemicolon collects an expression buffer up to a top-level
// `;`, which it also consumes.
func (p *Parser) readExprUntilSemicolon() []token.Token {
	var out []token.Token
	depth := 0
	for {
		t := p.peek()
		if t.Type == token.EOF {
			p.fail(t.Line, "unexpected end of file, expected ;")
			return out
		}
		if depth == 0 && t.Type == token.Semicolon {
			p.next()
			return out
		}
		switch t.Type {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
		}
		out = append(out, p.next())
	}
}

// readExprUntilBrace collects a condition/source expression up to the
// first top-level `{` that opens the construct's block. A literal dict
// appearing directly (unassigned) in a condition is not supported: its
// opening brace would be mistaken for the block's.
func (p *Parser) readExprUntilBrace() []token.Token {
	var out []token.Token
	depth := 0
	for {
		t := p.peek()
		if t.Type == token.EOF {
			p.fail(t.Line, "unexpected end of file, expected {")
			return out
		}
		if depth == 0 && t.Type == token.LBrace {
			return out
		}
		switch t.Type {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		}
		out = append(out, p.next())
	}
}

// pushBackTo rewinds the stream to a previously recorded position, used
// when a lookahead branch (struct-member path, indexed target) turns out
// not to be an assignment after all and the tokens must be re-read as a
// plain expression statement.
func (p *Parser) pushBackTo(pos int) {
	for p.ts.Pos() > pos {
		p.ts.PushBack()
	}
}

func isAssignOpType(t token.Type) bool { return token.CategoryOf(t) == token.CatAssignmentOp }

func (p *Parser) postfixExprUntilSemicolon() []token.Token {
	return p.toPostfix(p.readExprUntilSemicolon())
}

func (p *Parser) postfixExprUntilBrace() []token.Token {
	return p.toPostfix(p.readExprUntilBrace())
}

// toPostfix pre-merges qualified struct-member identifier chains
// ("p", ":", "y" -> "p:y") before handing the buffer to the shunting-yard
// converter, which has no notion of struct paths.
func (p *Parser) toPostfix(toks []token.Token) []token.Token {
	return postfix.Convert(mergeQualifiedIdents(toks))
}

func mergeQualifiedIdents(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.Type == token.Ident && i+2 < len(toks) && toks[i+1].Type == token.Colon && toks[i+2].Type == token.Ident {
			merged := t
			val := t.Value
			j := i + 1
			for j+1 < len(toks) && toks[j].Type == token.Colon && toks[j+1].Type == token.Ident {
				val += ":" + toks[j+1].Value
				j += 2
			}
			merged.Value = val
			out = append(out, merged)
			i = j
			continue
		}
		out = append(out, t)
		i++
	}
	return out
}
