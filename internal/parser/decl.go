package parser

import (
	"corelang/internal/model"
	"corelang/internal/token"
)

// parseFunction handles both `fn name(params) { ... }` and the entry
// variant, whose parameter list is optional: the caller supplies CLI
// arguments as a single array value, and the entry function either names a
// parameter to receive it or omits the list and ignores it entirely.
func (p *Parser) parseFunction(isEntry bool) {
	line := p.peek().Line
	if isEntry {
		p.expect(token.Entry)
	}
	p.expect(token.Fn)
	name := p.expect(token.Ident).Value

	var params []model.Param
	if isEntry {
		if p.check(token.LParen) {
			params = p.parseParamList()
		}
	} else {
		p.expect(token.LParen)
		params = p.parseParamList()
	}

	p.expect(token.LBrace)
	body := p.parseStatements()
	p.expect(token.RBrace)

	p.m.AddFunction(&model.Function{Name: name, Params: params, Statements: body, IsEntry: isEntry, Line: line})
}

func (p *Parser) parseParamList() []model.Param {
	var params []model.Param
	if p.check(token.RParen) {
		p.next()
		return params
	}
	for {
		name := p.expect(token.Ident).Value
		param := model.Param{Name: name}
		if p.check(token.Colon) {
			p.next()
			param.StructType = p.expect(token.Ident).Value
		}
		params = append(params, param)
		if p.check(token.Comma) {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RParen)
	return params
}

// parseStruct reads a struct declaration, registering it (and any nested
// substructs it declares inline) in the struct table.
func (p *Parser) parseStruct() {
	p.expect(token.Struct)
	name := p.expect(token.Ident).Value
	p.expect(token.LBrace)
	members := p.parseStructMembers()
	p.expect(token.RBrace)

	id := p.m.AddStruct(&model.StructDef{Name: name, Members: members})
	p.m.RegisterTopLevelStruct(name, id)
}

func (p *Parser) parseStructMembers() []model.Field {
	var fields []model.Field
	for !p.check(token.RBrace) && !p.atEnd() {
		fieldName := p.expect(token.Ident).Value
		switch {
		case p.check(token.Struct):
			p.next()
			p.expect(token.LBrace)
			sub := p.parseStructMembers()
			p.expect(token.RBrace)
			p.expect(token.Semicolon)
			subID := p.m.AddStruct(&model.StructDef{Name: fieldName, Members: sub})
			fields = append(fields, model.Field{Name: fieldName, IsSubstruct: true, SubstructID: subID})

		case p.check(token.Asg):
			p.next()
			init := p.postfixExprUntilSemicolon()
			fields = append(fields, model.Field{Name: fieldName, Init: init})

		default:
			p.expect(token.Semicolon)
			fields = append(fields, model.Field{Name: fieldName})
		}
	}
	return fields
}

// parseLiteral reads `literal name = <token>;`. A literal's value is a
// single token, not a general expression: the generator substitutes it
// verbatim wherever the name is referenced.
func (p *Parser) parseLiteral() {
	p.expect(token.LiteralD)
	name := p.expect(token.Ident).Value
	p.expect(token.Asg)
	val := p.next()
	p.expect(token.Semicolon)
	p.m.AddLiteral(name, val)
}
