package parser

import (
	"github.com/minicpp/minicpp/pkg/ast"
	"github.com/minicpp/minicpp/pkg/tables"
	"github.com/minicpp/minicpp/pkg/token"
	"github.com/minicpp/minicpp/pkg/util"
)

// Arithmetic grammar, low to high: additive, multiplicative, unary sign, primary

func (p *Parser) parseArith() (*ast.Node, error) { return p.parseAdditive() }

func (p *Parser) parseAdditive() (*ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.checkOp(token.Plus) || p.checkOp(token.Minus) {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewCommon(op, left, right)
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (*ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.checkOp(token.Star) || p.checkOp(token.Slash) || p.checkOp(token.Rem) {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewCommon(op, left, right)
	}
	return left, nil
}

func (p *Parser) parseUnary() (*ast.Node, error) {
	switch {
	case p.checkOp(token.Plus) || p.checkOp(token.Minus):
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewCommon(op, operand), nil
	case p.checkOp(token.Inc) || p.checkOp(token.Dec):
		op := p.advance()
		target, _, err := p.parseLValue()
		if err != nil {
			return nil, err
		}
		return ast.NewCommon(op, target), nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (*ast.Node, error) {
	lx := p.current()
	switch lx.Kind {
	case token.IntLiteral, token.DoubleLiteral:
		return ast.NewCommon(p.advance()), nil
	case token.Keyword:
		if lx.IsKeyword(token.True) || lx.IsKeyword(token.False) || lx.IsKeyword(token.Nullptr) {
			return ast.NewCommon(p.advance()), nil
		}
	case token.Identifier:
		return p.parseArithOperand()
	case token.Delimiter:
		if lx.IsDelimiter(token.LParen) {
			p.advance()
			inner, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectDelim(token.RParen); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, p.expected("arithmetic expression")
}

// parseArithOperand parses a variable, element or call whose value is not a string
func (p *Parser) parseArithOperand() (*ast.Node, error) {
	start := p.current()
	if p.peekAt(1).IsDelimiter(token.LParen) {
		call, ret, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		if tables.Is(ret, tables.Void) {
			return nil, p.errorf(start, "void value of %s is used in an expression", quote(p.identName(start)))
		}
		if tables.Is(ret, tables.String) {
			return nil, util.NewExpectedError(p.name, start, "arithmetic expression")
		}
		return call, nil
	}

	target, typ, err := p.parseLValue()
	if err != nil {
		return nil, err
	}
	if tables.Is(typ, tables.String) {
		return nil, util.NewExpectedError(p.name, start, "arithmetic expression")
	}
	if p.checkOp(token.Inc) || p.checkOp(token.Dec) {
		return ast.NewCommon(p.advance(), target), nil
	}
	return target, nil
}

// parseLValue parses a variable or an indexed element and returns its type
func (p *Parser) parseLValue() (*ast.Node, tables.Type, error) {
	lx, err := p.resolve()
	if err != nil {
		return nil, nil, err
	}
	typ := p.typeOf(lx)
	switch {
	case tables.IsFunction(typ):
		return nil, nil, p.errorf(lx, "function %s is used without a call", quote(p.identName(lx)))
	case tables.Is(typ, tables.Library) || tables.Is(typ, tables.Namespace):
		return nil, nil, p.errorf(lx, "%s cannot be used as a value", quote(p.identName(lx)))
	}

	node := ast.NewCommon(lx)
	if !p.checkDelim(token.LBracket) {
		return node, typ, nil
	}
	elem, ok := tables.ElementOf(typ)
	if !ok {
		return nil, nil, p.errorf(p.current(), "subscripted value %s is not an array or pointer", quote(p.identName(lx)))
	}
	open := p.advance()
	index, err := p.parseArith()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expectDelim(token.RBracket); err != nil {
		return nil, nil, err
	}
	return ast.NewCommon(open, node, index), elem, nil
}

// String grammar: operands joined by '+'

func (p *Parser) parseStringExpr() (*ast.Node, error) {
	left, err := p.parseStringOperand()
	if err != nil {
		return nil, err
	}
	for {
		lx := p.current()
		if lx.IsOperator(token.Plus) {
			p.advance()
			right, err := p.parseStringOperand()
			if err != nil {
				return nil, err
			}
			left = ast.NewCommon(lx, left, right)
			continue
		}
		if lx.IsOperator(token.Minus) || lx.IsOperator(token.Star) || lx.IsOperator(token.Slash) || lx.IsOperator(token.Rem) {
			return nil, p.errorf(lx, "operator %s can't be applied to strings", quote(lx.Operator().String()))
		}
		return left, nil
	}
}

func (p *Parser) parseStringOperand() (*ast.Node, error) {
	lx := p.current()
	switch lx.Kind {
	case token.StringLiteral:
		return ast.NewCommon(p.advance()), nil
	case token.Identifier:
		if p.peekAt(1).IsDelimiter(token.LParen) {
			call, ret, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			if !tables.Is(ret, tables.String) {
				return nil, util.NewExpectedError(p.name, lx, "string expression")
			}
			return call, nil
		}
		target, typ, err := p.parseLValue()
		if err != nil {
			return nil, err
		}
		if !tables.Is(typ, tables.String) {
			return nil, util.NewExpectedError(p.name, lx, "string expression")
		}
		return target, nil
	case token.Delimiter:
		if lx.IsDelimiter(token.LParen) {
			p.advance()
			inner, err := p.parseStringExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectDelim(token.RParen); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, p.expected("string expression")
}

// Boolean grammar, low to high: or, and, not, term

type category int

const (
	arithmeticCategory category = iota
	stringCategory
)

func (c category) String() string {
	if c == stringCategory {
		return "String"
	}
	return "Arithmetic"
}

func (p *Parser) parseBoolExpr() (*ast.Node, error) { return p.parseOr() }

func (p *Parser) parseOr() (*ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.checkOp(token.OrOr) {
		op := p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewCommon(op, left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (*ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.checkOp(token.AndAnd) {
		op := p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.NewCommon(op, left, right)
	}
	return left, nil
}

func (p *Parser) parseNot() (*ast.Node, error) {
	if p.checkOp(token.Not) {
		op := p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewCommon(op, operand), nil
	}
	return p.parseBoolTerm()
}

// parseBoolTerm resolves the '(' ambiguity by trying a parenthesized boolean
// expression first and rewinding to parse a comparison when that fails or
// when the group turns out to be the left operand of a larger comparison.
func (p *Parser) parseBoolTerm() (*ast.Node, error) {
	if !p.checkDelim(token.LParen) {
		return p.parseComparison()
	}
	start := p.mark()
	p.advance()
	inner, err := p.parseOr()
	if err == nil {
		_, err = p.expectDelim(token.RParen)
	}
	if err == nil && !p.continuesOperand() {
		return inner, nil
	}

	p.reset(start)
	n, cmpErr := p.parseComparison()
	if cmpErr != nil {
		return nil, furthest(err, cmpErr)
	}
	return n, nil
}

// continuesOperand reports whether the cursor sits on an operator that would
// extend the preceding group into an arithmetic or comparison operand
func (p *Parser) continuesOperand() bool {
	lx := p.current()
	if lx.Kind != token.Operator {
		return false
	}
	switch op := lx.Operator(); op {
	case token.Plus, token.Minus, token.Star, token.Slash, token.Rem:
		return true
	default:
		return token.IsComparisonOp(op)
	}
}

func (p *Parser) parseComparison() (*ast.Node, error) {
	left, leftCat, err := p.parseComparisonSide()
	if err != nil {
		return nil, err
	}
	lx := p.current()
	if lx.Kind != token.Operator || !token.IsComparisonOp(lx.Operator()) {
		if leftCat == stringCategory {
			return nil, p.expected("comparison operator")
		}
		return left, nil
	}
	op := p.advance()
	right, rightCat, err := p.parseComparisonSide()
	if err != nil {
		return nil, err
	}
	if leftCat != rightCat {
		return nil, p.errorf(op, "Can't compare %s and %s", leftCat, rightCat)
	}
	return ast.NewCommon(op, left, right), nil
}

// parseComparisonSide tries the arithmetic grammar and falls back to strings
func (p *Parser) parseComparisonSide() (*ast.Node, category, error) {
	n, i, err := p.firstOf(nil, p.parseArith, p.parseStringExpr)
	if err != nil {
		return nil, 0, err
	}
	return n, category(i), nil
}

// Calls

// parseCall parses name(args) and returns the callee's return type
func (p *Parser) parseCall() (*ast.Node, tables.Type, error) {
	callee, err := p.resolve()
	if err != nil {
		return nil, nil, err
	}
	fn, ok := tables.CompoundOf(p.typeOf(callee), tables.Function)
	if !ok {
		return nil, nil, p.errorf(callee, "%s is not a function", quote(p.identName(callee)))
	}
	if _, err := p.expectDelim(token.LParen); err != nil {
		return nil, nil, err
	}
	args := ast.NewFunctionArguments()
	if !p.checkDelim(token.RParen) {
		for {
			arg, err := p.parseArgument()
			if err != nil {
				return nil, nil, err
			}
			args.Add(arg)
			if !p.matchDelim(token.Comma) {
				break
			}
		}
	}
	if _, err := p.expectDelim(token.RParen); err != nil {
		return nil, nil, err
	}
	return ast.NewFunctionCall(ast.NewCommon(callee), args), fn.Elem, nil
}

// parseArgument keeps a bare name as a leaf so arrays and strings pass
// through; anything else is tried as arithmetic, string, then boolean.
func (p *Parser) parseArgument() (*ast.Node, error) {
	next := p.peekAt(1)
	if p.current().Kind == token.Identifier && (next.IsDelimiter(token.Comma) || next.IsDelimiter(token.RParen)) {
		node, _, err := p.parseLValue()
		return node, err
	}
	follow := func() error {
		if p.checkDelim(token.Comma) || p.checkDelim(token.RParen) {
			return nil
		}
		return p.expected("')'")
	}
	n, _, err := p.firstOf(follow, p.parseArith, p.parseStringExpr, p.parseBoolExpr)
	return n, err
}
