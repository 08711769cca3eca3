// Package parser implements a hand-written recursive-descent/precedence-
// climbing parser that turns a token.Token stream from internal/lexer into
// an internal/ast.Module. Its per-construct-family organization (literals,
// operators, control flow, definitions) is grounded on the teacher's
// internal/parser package layout (classes_test.go, operators_test.go,
// sets_test.go each exercise one construct family); the grammar itself is
// built fresh for Simplex since DWScript's Pascal-derived grammar does not
// apply.
package parser

import (
	"fmt"

	"github.com/markchucarroll/simplex/internal/ast"
	"github.com/markchucarroll/simplex/internal/lexer"
	"github.com/markchucarroll/simplex/internal/token"
)

// Parser consumes tokens from a Lexer and produces an ast.Module. Parse
// errors are collected in an error sink (spec.md §4.1); ParseModule keeps
// going after most syntax errors so that a single run can report more than
// one mistake, but any error seen aborts compilation before analysis.
type Parser struct {
	lex    *lexer.Lexer
	errors []string

	cur  token.Token
	peek token.Token
}

// New creates a Parser over lex.
func New(lex *lexer.Lexer) *Parser {
	p := &Parser{lex: lex}
	p.next()
	p.next()
	return p
}

// Errors returns accumulated parse errors as "pos: message" strings.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf("%s: %s", pos, fmt.Sprintf(format, args...)))
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur.Kind != k {
		p.errorf(p.cur.Pos, "expected %s, got %s %q", k, p.cur.Kind, p.cur.Literal)
		return p.cur
	}
	t := p.cur
	p.next()
	return t
}

func (p *Parser) expectIdent() string {
	t := p.expect(token.IDENT)
	return t.Literal
}

// ParseModule parses an entire source file into a Module.
func (p *Parser) ParseModule() *ast.Module {
	mod := &ast.Module{Position: p.cur.Pos}

	for p.cur.Kind != token.EOF {
		switch p.cur.Kind {
		case token.IMPORT:
			mod.Imports = append(mod.Imports, p.parseImport())
		case token.LET:
			mod.Definitions = append(mod.Definitions, p.parseLetDef())
		case token.FUN:
			mod.Definitions = append(mod.Definitions, p.parseFunDef())
		case token.DATA:
			mod.Definitions = append(mod.Definitions, p.parseDataDef())
		case token.METH:
			mod.Definitions = append(mod.Definitions, p.parseMethDef())
		case token.PRODUCE:
			mod.Products = append(mod.Products, p.parseProduct())
		case token.SEMICOLON:
			p.next()
		default:
			p.errorf(p.cur.Pos, "unexpected token %s %q at top level", p.cur.Kind, p.cur.Literal)
			p.next()
		}
	}
	p.errors = append(p.errors, p.lex.Errors()...)
	return mod
}

func (p *Parser) parseImport() *ast.Import {
	pos := p.cur.Pos
	p.next() // import
	pathTok := p.expect(token.STRING)
	p.expect(token.AS)
	scope := p.expectIdent()
	return &ast.Import{Position: pos, Path: pathTok.Literal, Scope: scope}
}

func (p *Parser) parseProduct() *ast.Product {
	pos := p.cur.Pos
	p.next() // produce
	p.expect(token.LPAREN)
	nameTok := p.expect(token.STRING)
	p.expect(token.RPAREN)
	body := p.parseBlockExprs()
	return &ast.Product{Position: pos, Name: nameTok.Literal, Body: body}
}

// ---------------------------------------------------------------------
// Definitions
// ---------------------------------------------------------------------

func (p *Parser) parseLetDef() *ast.LetDef {
	pos := p.cur.Pos
	p.next() // let
	name := p.expectIdent()
	var typ ast.TypeExpr
	if p.cur.Kind == token.COLON {
		p.next()
		typ = p.parseTypeExpr()
	}
	if p.cur.Kind == token.ASSIGN {
		p.next()
	} else {
		p.errorf(p.cur.Pos, "expected ':=' in let definition")
	}
	init := p.parseExpr(0)
	p.skipSemicolons()
	return &ast.LetDef{Position: pos, Name: name, Type: typ, Init: init}
}

func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	p.expect(token.LPAREN)
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		pos := p.cur.Pos
		name := p.expectIdent()
		p.expect(token.COLON)
		typ := p.parseTypeExpr()
		params = append(params, &ast.Param{Position: pos, Name: name, Type: typ})
		if p.cur.Kind == token.COMMA {
			p.next()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseFunDef() *ast.FunDef {
	pos := p.cur.Pos
	p.next() // fun
	name := p.expectIdent()
	params := p.parseParams()
	p.expect(token.COLON)
	ret := p.parseTypeExpr()
	body := p.parseBlock()
	return &ast.FunDef{Position: pos, Name: name, Params: params, Ret: ret, Body: body}
}

func (p *Parser) parseDataDef() *ast.DataDef {
	pos := p.cur.Pos
	p.next() // data
	name := p.expectIdent()
	p.expect(token.LBRACE)
	var fields []*ast.Field
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		fpos := p.cur.Pos
		fname := p.expectIdent()
		p.expect(token.COLON)
		ftyp := p.parseTypeExpr()
		fields = append(fields, &ast.Field{Position: fpos, Name: fname, Type: ftyp})
		if p.cur.Kind == token.COMMA {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	return &ast.DataDef{Position: pos, Name: name, Fields: fields}
}

func (p *Parser) parseMethDef() *ast.MethDef {
	pos := p.cur.Pos
	p.next() // meth
	target := p.expectIdent()
	p.expect(token.DOT)
	name := p.expectIdent()
	params := p.parseParams()
	p.expect(token.COLON)
	ret := p.parseTypeExpr()
	body := p.parseBlock()
	return &ast.MethDef{Position: pos, Target: target, Name: name, Params: params, Ret: ret, Body: body}
}

func (p *Parser) skipSemicolons() {
	for p.cur.Kind == token.SEMICOLON {
		p.next()
	}
}

// ---------------------------------------------------------------------
// Type expressions
// ---------------------------------------------------------------------

func (p *Parser) parseTypeExpr() ast.TypeExpr {
	primary := p.parsePrimaryType()
	if p.cur.Kind == token.ARROW {
		pos := p.cur.Pos
		p.next()
		params, ret := p.parseTypeArgsAndRet()
		return &ast.MethodType{Position: pos, Target: primary, Params: params, Ret: ret}
	}
	return primary
}

func (p *Parser) parsePrimaryType() ast.TypeExpr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.LBRACK:
		p.next()
		elem := p.parseTypeExpr()
		p.expect(token.RBRACK)
		return &ast.VectorType{Position: pos, Element: elem}
	case token.LPAREN:
		params, ret := p.parseTypeArgsAndRet()
		return &ast.FunctionType{Position: pos, Params: params, Ret: ret}
	case token.IDENT:
		name := p.cur.Literal
		p.next()
		return &ast.SimpleType{Position: pos, Name: name}
	default:
		p.errorf(pos, "expected a type, got %s %q", p.cur.Kind, p.cur.Literal)
		p.next()
		return &ast.SimpleType{Position: pos, Name: "Any"}
	}
}

// parseTypeArgsAndRet parses "(" TypeExpr,* ")" ":" TypeExpr, with the
// opening paren as the current token.
func (p *Parser) parseTypeArgsAndRet() ([]ast.TypeExpr, ast.TypeExpr) {
	p.expect(token.LPAREN)
	var params []ast.TypeExpr
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		params = append(params, p.parseTypeExpr())
		if p.cur.Kind == token.COMMA {
			p.next()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	p.expect(token.COLON)
	ret := p.parseTypeExpr()
	return params, ret
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// precedence levels, low to high.
const (
	precLowest = iota
	precOr
	precAnd
	precComparison
	precAdditive
	precMultiplicative
	precPower
)

func binPrec(k token.Kind) (int, bool) {
	switch k {
	case token.OR:
		return precOr, true
	case token.AND:
		return precAnd, true
	case token.EQ, token.NOT_EQ, token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ:
		return precComparison, true
	case token.PLUS, token.MINUS:
		return precAdditive, true
	case token.STAR, token.SLASH, token.PERCENT:
		return precMultiplicative, true
	case token.CARET:
		return precPower, true
	}
	return 0, false
}

func binOpText(k token.Kind) string {
	switch k {
	case token.OR:
		return "or"
	case token.AND:
		return "and"
	case token.EQ:
		return "=="
	case token.NOT_EQ:
		return "!="
	case token.LESS:
		return "<"
	case token.LESS_EQ:
		return "<="
	case token.GREATER:
		return ">"
	case token.GREATER_EQ:
		return ">="
	case token.PLUS:
		return "+"
	case token.MINUS:
		return "-"
	case token.STAR:
		return "*"
	case token.SLASH:
		return "/"
	case token.PERCENT:
		return "%"
	case token.CARET:
		return "^"
	}
	return ""
}

// parseExpr parses a (possibly assignment) expression using precedence
// climbing for binary operators, with unary/postfix handled beneath it.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parseBinary(minPrec)
	if p.cur.Kind == token.ASSIGN {
		pos := p.cur.Pos
		p.next()
		value := p.parseExpr(0)
		switch t := left.(type) {
		case *ast.Ident:
			return &ast.Assign{Position: pos, Name: t.Name, Value: value}
		case *ast.FieldAccess:
			return &ast.FieldUpdate{Position: pos, Target: t.Target, Name: t.Name, Value: value}
		case *ast.Index:
			return &ast.IndexUpdate{Position: pos, Target: t.Target, Index: t.Index, Value: value}
		default:
			p.errorf(pos, "invalid assignment target")
			return left
		}
	}
	return left
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec, ok := binPrec(p.cur.Kind)
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.cur
		p.next()
		// `^` (power) is right-associative; all others are left-associative.
		nextMin := prec + 1
		if opTok.Kind == token.CARET {
			nextMin = prec
		}
		right := p.parseBinary(nextMin)
		left = &ast.BinaryOp{Position: opTok.Pos, Op: binOpText(opTok.Kind), Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Kind {
	case token.MINUS:
		pos := p.cur.Pos
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryOp{Position: pos, Op: "-", Operand: operand}
	case token.NOT:
		pos := p.cur.Pos
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryOp{Position: pos, Op: "not", Operand: operand}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case token.DOT:
			pos := p.cur.Pos
			p.next()
			name := p.expectIdent()
			expr = &ast.FieldAccess{Position: pos, Target: expr, Name: name}
		case token.LBRACK:
			pos := p.cur.Pos
			p.next()
			idx := p.parseExpr(0)
			p.expect(token.RBRACK)
			expr = &ast.Index{Position: pos, Target: expr, Index: idx}
		case token.LPAREN:
			pos := p.cur.Pos
			args := p.parseArgs()
			expr = &ast.Call{Position: pos, Callee: expr, Args: args}
		case token.ARROW:
			pos := p.cur.Pos
			p.next()
			name := p.expectIdent()
			args := p.parseArgs()
			expr = &ast.MethodCall{Position: pos, Receiver: expr, Name: name, Args: args}
		default:
			return expr
		}
	}
}

// parseArgs parses "(" Expr,* ")" with the opening paren as the current token.
func (p *Parser) parseArgs() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for p.cur.Kind != token.RPAREN && p.cur.Kind != token.EOF {
		args = append(args, p.parseExpr(0))
		if p.cur.Kind == token.COMMA {
			p.next()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.INT:
		lit := p.cur.Literal
		p.next()
		var v int64
		fmt.Sscanf(lit, "%d", &v)
		return &ast.IntLit{Position: pos, Value: v}
	case token.FLOAT:
		lit := p.cur.Literal
		p.next()
		var v float64
		fmt.Sscanf(lit, "%g", &v)
		return &ast.FloatLit{Position: pos, Value: v}
	case token.STRING:
		lit := p.cur.Literal
		p.next()
		return &ast.StringLit{Position: pos, Value: lit}
	case token.TRUE:
		p.next()
		return &ast.BoolLit{Position: pos, Value: true}
	case token.FALSE:
		p.next()
		return &ast.BoolLit{Position: pos, Value: false}
	case token.NONE:
		p.next()
		return &ast.NoneLit{Position: pos}
	case token.IDENT:
		name := p.cur.Literal
		p.next()
		if p.cur.Kind == token.SCOPE {
			p.next()
			member := p.expectIdent()
			return &ast.ScopedIdent{Position: pos, Scope: name, Name: member}
		}
		return &ast.Ident{Position: pos, Name: name}
	case token.LBRACK:
		p.next()
		var elems []ast.Expr
		for p.cur.Kind != token.RBRACK && p.cur.Kind != token.EOF {
			elems = append(elems, p.parseExpr(0))
			if p.cur.Kind == token.COMMA {
				p.next()
			} else {
				break
			}
		}
		p.expect(token.RBRACK)
		return &ast.VectorLit{Position: pos, Elements: elems}
	case token.HASH:
		p.next()
		typeName := p.expectIdent()
		args := p.parseArgs()
		return &ast.RecordLit{Position: pos, Type: typeName, Args: args}
	case token.LPAREN:
		p.next()
		e := p.parseExpr(0)
		p.expect(token.RPAREN)
		return e
	case token.LET:
		return p.parseLetExpr()
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.LBRACE:
		return p.parseBlock()
	case token.LAMBDA:
		return p.parseLambda()
	default:
		p.errorf(pos, "unexpected token %s %q in expression", p.cur.Kind, p.cur.Literal)
		p.next()
		return &ast.NoneLit{Position: pos}
	}
}

func (p *Parser) parseLetExpr() ast.Expr {
	pos := p.cur.Pos
	p.next() // let
	name := p.expectIdent()
	var typ ast.TypeExpr
	if p.cur.Kind == token.COLON {
		p.next()
		typ = p.parseTypeExpr()
	}
	if p.cur.Kind == token.ASSIGN {
		p.next()
	} else {
		p.errorf(p.cur.Pos, "expected ':=' in let expression")
	}
	init := p.parseExpr(0)
	return &ast.Let{Position: pos, Name: name, Type: typ, Init: init}
}

func (p *Parser) parseIf() ast.Expr {
	pos := p.cur.Pos
	p.next() // if
	cond := p.parseExpr(0)
	body := p.parseBlock()
	branches := []ast.IfBranch{{Condition: cond, Body: body}}
	for p.cur.Kind == token.ELIF {
		p.next()
		c := p.parseExpr(0)
		b := p.parseBlock()
		branches = append(branches, ast.IfBranch{Condition: c, Body: b})
	}
	var elseBody ast.Expr
	if p.cur.Kind == token.ELSE {
		p.next()
		elseBody = p.parseBlock()
	}
	return &ast.If{Position: pos, Branches: branches, Else: elseBody}
}

func (p *Parser) parseFor() ast.Expr {
	pos := p.cur.Pos
	p.next() // for
	name := p.expectIdent()
	p.expect(token.IN)
	iter := p.parseExpr(0)
	body := p.parseBlock()
	return &ast.For{Position: pos, Name: name, Iter: iter, Body: body}
}

func (p *Parser) parseWhile() ast.Expr {
	pos := p.cur.Pos
	p.next() // while
	cond := p.parseExpr(0)
	body := p.parseBlock()
	return &ast.While{Position: pos, Condition: cond, Body: body}
}

// parseBlock parses "{" Expr+ "}" as an *ast.Block.
func (p *Parser) parseBlock() *ast.Block {
	pos := p.cur.Pos
	exprs := p.parseBlockExprs()
	return &ast.Block{Position: pos, Exprs: exprs}
}

func (p *Parser) parseBlockExprs() []ast.Expr {
	p.expect(token.LBRACE)
	var exprs []ast.Expr
	p.skipSemicolons()
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		exprs = append(exprs, p.parseExpr(0))
		p.skipSemicolons()
	}
	p.expect(token.RBRACE)
	if len(exprs) == 0 {
		exprs = []ast.Expr{&ast.NoneLit{Position: pos0(p.cur)}}
	}
	return exprs
}

func pos0(t token.Token) token.Position { return t.Pos }

func (p *Parser) parseLambda() ast.Expr {
	pos := p.cur.Pos
	p.next() // lambda
	params := p.parseParams()
	p.expect(token.COLON)
	ret := p.parseTypeExpr()
	body := p.parseBlock()
	return &ast.Lambda{Position: pos, Params: params, Ret: ret, Body: body}
}
