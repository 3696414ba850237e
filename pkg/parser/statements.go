package parser

import (
	"github.com/minicpp/minicpp/pkg/ast"
	"github.com/minicpp/minicpp/pkg/config"
	"github.com/minicpp/minicpp/pkg/tables"
	"github.com/minicpp/minicpp/pkg/token"
	"github.com/minicpp/minicpp/pkg/util"
)

// parseStatements appends statements to block until done reports true
func (p *Parser) parseStatements(block *ast.Node, done func() bool) error {
	terminated, warned := false, false
	for !done() {
		if p.isAtEnd() {
			return p.expected("'}'")
		}
		first := p.current()
		stmt, err := p.parseStatement()
		if err != nil {
			return err
		}
		if stmt == nil {
			continue
		}
		if terminated && !warned {
			util.Warn(p.cfg, config.WarnUnreachableCode, p.source, first, "statement will never be executed")
			warned = true
		}
		terminated = terminated || isTerminator(stmt)
		block.Add(stmt)
	}
	return nil
}

func isTerminator(n *ast.Node) bool {
	return n.IsKeyword(token.Return) || n.IsKeyword(token.Exit) ||
		n.IsKeyword(token.Break) || n.IsKeyword(token.Continue)
}

// parseStatement returns nil for an empty statement
func (p *Parser) parseStatement() (*ast.Node, error) {
	lx := p.current()
	switch lx.Kind {
	case token.Keyword:
		kw := lx.Keyword()
		if token.IsTypeKeyword(kw) {
			return p.parseDeclarationOrFunction()
		}
		switch kw {
		case token.Include:
			return p.parseInclude()
		case token.Using:
			return p.parseUsing()
		case token.If:
			return p.parseIf()
		case token.While:
			return p.parseWhile()
		case token.Do:
			return p.parseDo()
		case token.For:
			return p.parseFor()
		case token.Break, token.Continue:
			return p.parseJump()
		case token.Return:
			return p.parseReturn()
		case token.Exit:
			return p.parseExit()
		case token.Cout:
			return p.parseCout()
		case token.Cin:
			return p.parseCin()
		case token.True, token.False, token.Nullptr, token.Else, token.Endl, token.Namespace:
			return nil, p.unexpected()
		}
		return nil, p.errorf(lx, "%s is not supported", quote(kw.String()))
	case token.Delimiter:
		if lx.IsDelimiter(token.LBrace) {
			return p.parseBlock()
		}
		if lx.IsDelimiter(token.Semi) {
			p.advance()
			return nil, nil
		}
	case token.Identifier:
		if p.peekAt(1).Kind == token.Identifier {
			return nil, p.errorf(lx, "unknown type name %s", quote(p.identName(lx)))
		}
	}

	stmt, err := p.parseSimpleStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseSimpleStatement handles assignments, ++/-- and calls, without the trailing ';'
func (p *Parser) parseSimpleStatement() (*ast.Node, error) {
	if p.checkOp(token.Inc) || p.checkOp(token.Dec) {
		op := p.advance()
		target, _, err := p.parseLValue()
		if err != nil {
			return nil, err
		}
		return ast.NewCommon(op, target), nil
	}
	if p.current().Kind != token.Identifier {
		return nil, p.unexpected()
	}
	if p.peekAt(1).IsDelimiter(token.LParen) {
		call, _, err := p.parseCall()
		return call, err
	}

	target, typ, err := p.parseLValue()
	if err != nil {
		return nil, err
	}
	lx := p.current()
	switch {
	case lx.IsOperator(token.Inc) || lx.IsOperator(token.Dec):
		return ast.NewCommon(p.advance(), target), nil
	case lx.Kind == token.Operator && token.IsAssignOp(lx.Operator()):
		return p.parseAssignment(target, typ)
	}
	return nil, p.expected("'='")
}

func (p *Parser) parseAssignment(target *ast.Node, typ tables.Type) (*ast.Node, error) {
	op := p.advance()
	if tables.Is(typ, tables.String) && !op.IsOperator(token.Eq) && !op.IsOperator(token.PlusEq) {
		return nil, p.errorf(op, "operator %s can't be applied to strings", quote(op.Operator().String()))
	}
	value, err := p.parseValue(typ)
	if err != nil {
		return nil, err
	}
	return ast.NewCommon(op, target, value), nil
}

// parseValue parses an expression in the grammar selected by the target type
func (p *Parser) parseValue(target tables.Type) (*ast.Node, error) {
	target = tables.Deref(target)
	switch {
	case tables.Is(target, tables.Bool):
		return p.parseBoolExpr()
	case tables.Is(target, tables.String):
		return p.parseStringExpr()
	}
	return p.parseArith()
}

// Preprocessor and namespaces

func (p *Parser) parseInclude() (*ast.Node, error) {
	kw := p.advance()
	if _, err := p.expectOp(token.Lt); err != nil {
		return nil, err
	}
	lib, err := p.declareGlobal(tables.TypeLibrary, "library name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp(token.Gt); err != nil {
		return nil, err
	}
	return ast.NewCommon(kw, ast.NewCommon(lib)), nil
}

func (p *Parser) parseUsing() (*ast.Node, error) {
	kw := p.advance()
	ns, err := p.expectKeyword(token.Namespace)
	if err != nil {
		return nil, err
	}
	name, err := p.declareGlobal(tables.TypeNamespace, "namespace name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}
	return ast.NewCommon(kw, ast.NewCommon(ns, ast.NewCommon(name))), nil
}

// declareGlobal binds a library or namespace name at file scope. Naming
// the same library or namespace again reuses the existing entry.
func (p *Parser) declareGlobal(typ tables.Type, what string) (token.Lexeme, error) {
	lx := p.current()
	if lx.Kind != token.Identifier {
		return token.Lexeme{}, p.expected(what)
	}
	name := p.identName(lx)
	if id, ok := p.variables.Resolve(name, []tables.Scope{tables.GlobalScope}); ok {
		if !tables.Equal(p.variables.TypeOf(id), typ) {
			return token.Lexeme{}, util.NewDoubleDeclarationError(p.name, lx, name)
		}
		p.lexemes[p.pos].Value = id
		return p.advance(), nil
	}
	return p.declare(typ, tables.GlobalScope)
}

// Declarations

var scalarForKeyword = map[token.KeywordType]tables.Type{
	token.Int:    tables.TypeInt,
	token.Double: tables.TypeDouble,
	token.String: tables.TypeString,
	token.Bool:   tables.TypeBool,
	token.Void:   tables.TypeVoid,
}

// parseTypeSpec parses a type keyword with an optional '*' or '&'
func (p *Parser) parseTypeSpec() (*ast.Node, tables.Type, error) {
	lx := p.current()
	typ, ok := scalarForKeyword[lx.Keyword()]
	if lx.Kind != token.Keyword || !ok {
		return nil, nil, p.expected("type name")
	}
	p.advance()
	node := ast.NewCommon(lx)
	switch {
	case p.checkOp(token.Star):
		node.Add(ast.NewCommon(p.advance()))
		typ = tables.NewPointer(typ)
	case p.checkOp(token.And):
		node.Add(ast.NewCommon(p.advance()))
		typ = tables.NewReference(typ)
	}
	if p.checkOp(token.Star) || p.checkOp(token.And) || p.checkOp(token.AndAnd) {
		return nil, nil, p.errorf(p.current(), "multi-level indirection is not supported")
	}
	return node, typ, nil
}

func (p *Parser) parseDeclarationOrFunction() (*ast.Node, error) {
	typeNode, typ, err := p.parseTypeSpec()
	if err != nil {
		return nil, err
	}
	if p.current().Kind == token.Identifier && p.peekAt(1).IsDelimiter(token.LParen) {
		return p.parseFunction(typeNode, typ)
	}
	decl, err := p.parseDeclarators(typeNode, typ)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseDeclarators(typeNode *ast.Node, typ tables.Type) (*ast.Node, error) {
	decl := ast.NewDeclaration(typeNode)
	for {
		node, err := p.parseDeclarator(typ)
		if err != nil {
			return nil, err
		}
		decl.Add(node)
		if !p.matchDelim(token.Comma) {
			return decl, nil
		}
	}
}

// parseDeclarator parses name, name[size], or either with '= value'
func (p *Parser) parseDeclarator(base tables.Type) (*ast.Node, error) {
	lx := p.current()
	if lx.Kind != token.Identifier {
		return nil, p.expected("identifier")
	}
	if tables.Is(base, tables.Void) {
		return nil, p.errorf(lx, "variable %s declared void", quote(p.identName(lx)))
	}
	isArray := p.peekAt(1).IsDelimiter(token.LBracket)
	typ := base
	if isArray {
		typ = tables.NewArray(base)
	}
	declared, err := p.declare(typ, p.scopes.Current())
	if err != nil {
		return nil, err
	}
	node := ast.NewCommon(declared)

	if isArray {
		open := p.advance()
		if p.checkDelim(token.RBracket) {
			return nil, p.expected("array size")
		}
		size, err := p.parseArith()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectDelim(token.RBracket); err != nil {
			return nil, err
		}
		node.Add(ast.NewCommon(open, size))
	}

	if p.checkOp(token.Eq) {
		eq := p.advance()
		if isArray {
			return nil, p.errorf(eq, "array initializers are not supported")
		}
		value, err := p.parseValue(typ)
		if err != nil {
			return nil, err
		}
		node.Add(ast.NewCommon(eq, value))
	} else if _, ok := tables.CompoundOf(typ, tables.Reference); ok {
		return nil, p.errorf(declared, "reference %s must be initialized", quote(p.identName(declared)))
	}
	return node, nil
}

// Functions

func (p *Parser) parseFunction(typeNode *ast.Node, retType tables.Type) (*ast.Node, error) {
	nameLx := p.current()
	name := p.identName(nameLx)
	if p.scopes.Depth() != 1 {
		return nil, p.errorf(nameLx, "function %s can only be defined at file scope", quote(name))
	}
	declared, err := p.declare(tables.NewFunction(retType), tables.GlobalScope)
	if err != nil {
		return nil, err
	}

	p.scopes.Push()
	args, err := p.parseParameters()
	if err != nil {
		return nil, err
	}

	outer, outerLoop := p.function, p.loopDepth
	p.function, p.loopDepth = &functionContext{name: name, retType: retType}, 0
	body, closing, err := p.parseBlockBody()
	p.function, p.loopDepth = outer, outerLoop
	if err != nil {
		return nil, err
	}

	if p.cfg.IsFeatureEnabled(config.FeatReturnCheck) && !tables.Is(retType, tables.Void) {
		if last := body.Last(); !last.IsKeyword(token.Return) && !last.IsKeyword(token.Exit) {
			return nil, util.NewExpectedError(p.name, closing, "return")
		}
	}
	p.scopes.Pop()

	return ast.NewFunctionDeclaration(typeNode, ast.NewCommon(declared), args, body), nil
}

func (p *Parser) parseParameters() (*ast.Node, error) {
	args := ast.NewFunctionArguments()
	if _, err := p.expectDelim(token.LParen); err != nil {
		return nil, err
	}
	if p.matchDelim(token.RParen) {
		return args, nil
	}
	if p.checkKeyword(token.Void) && p.peekAt(1).IsDelimiter(token.RParen) {
		p.advance()
		p.advance()
		return args, nil
	}

	for {
		typeNode, typ, err := p.parseTypeSpec()
		if err != nil {
			return nil, err
		}
		lx := p.current()
		if lx.Kind != token.Identifier {
			return nil, p.expected("parameter name")
		}
		if tables.Is(typ, tables.Void) {
			return nil, p.errorf(lx, "parameter %s declared void", quote(p.identName(lx)))
		}
		isArray := p.peekAt(1).IsDelimiter(token.LBracket)
		if isArray {
			typ = tables.NewArray(typ)
		}
		declared, err := p.declare(typ, p.scopes.Current())
		if err != nil {
			return nil, err
		}
		node := ast.NewCommon(declared)
		if isArray {
			open := p.advance()
			var size *ast.Node
			if !p.checkDelim(token.RBracket) {
				if size, err = p.parseArith(); err != nil {
					return nil, err
				}
			}
			if _, err := p.expectDelim(token.RBracket); err != nil {
				return nil, err
			}
			node.Add(ast.NewCommon(open, size))
		}
		args.Add(ast.NewDeclaration(typeNode, node))

		if !p.matchDelim(token.Comma) {
			break
		}
	}
	if _, err := p.expectDelim(token.RParen); err != nil {
		return nil, err
	}
	return args, nil
}

// Blocks

// parseBlockBody parses '{' statements '}' in the current scope and returns the closing brace
func (p *Parser) parseBlockBody() (*ast.Node, token.Lexeme, error) {
	if _, err := p.expectDelim(token.LBrace); err != nil {
		return nil, token.Lexeme{}, err
	}
	block := ast.NewCodeBlock()
	if err := p.parseStatements(block, func() bool { return p.checkDelim(token.RBrace) }); err != nil {
		return nil, token.Lexeme{}, err
	}
	return block, p.advance(), nil
}

func (p *Parser) parseBlock() (*ast.Node, error) {
	p.scopes.Push()
	block, _, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}
	p.scopes.Pop()
	return block, nil
}

// Control flow

// parseCondition parses '(' bool-expression ')'
func (p *Parser) parseCondition() (*ast.Node, error) {
	if _, err := p.expectDelim(token.LParen); err != nil {
		return nil, err
	}
	if p.checkDelim(token.RParen) {
		return nil, p.expected("bool expression")
	}
	cond, err := p.parseBoolExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(token.RParen); err != nil {
		return nil, err
	}
	return cond, nil
}

// parseBranch parses the statement of an if/else arm; a bare ';' yields an empty node
func (p *Parser) parseBranch() (*ast.Node, error) {
	if p.matchDelim(token.Semi) {
		return ast.NewEmpty(), nil
	}
	return p.parseStatement()
}

// parseLoopBody returns nil for a body spelled as a bare ';'
func (p *Parser) parseLoopBody(kw token.Lexeme) (*ast.Node, error) {
	if p.matchDelim(token.Semi) {
		util.Warn(p.cfg, config.WarnEmptyBody, p.source, kw, "%s loop has an empty body", kw.Keyword())
		return nil, nil
	}
	p.loopDepth++
	body, err := p.parseStatement()
	p.loopDepth--
	return body, err
}

func (p *Parser) parseIf() (*ast.Node, error) {
	kw := p.advance()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBranch()
	if err != nil {
		return nil, err
	}
	node := ast.NewCommon(kw, cond, then)
	if p.checkKeyword(token.Else) {
		elseLx := p.advance()
		body, err := p.parseBranch()
		if err != nil {
			return nil, err
		}
		node.Add(ast.NewCommon(elseLx, body))
	}
	return node, nil
}

func (p *Parser) parseWhile() (*ast.Node, error) {
	kw := p.advance()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseLoopBody(kw)
	if err != nil {
		return nil, err
	}
	return ast.NewCommon(kw, cond, body), nil
}

func (p *Parser) parseDo() (*ast.Node, error) {
	kw := p.advance()
	p.loopDepth++
	body, err := p.parseStatement()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	if body == nil {
		body = ast.NewEmpty()
	}
	if _, err := p.expectKeyword(token.While); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}
	return ast.NewCommon(kw, body, cond), nil
}

func (p *Parser) parseFor() (*ast.Node, error) {
	kw := p.advance()
	p.scopes.Push()
	if _, err := p.expectDelim(token.LParen); err != nil {
		return nil, err
	}

	var initNode *ast.Node
	var err error
	switch lx := p.current(); {
	case lx.IsDelimiter(token.Semi):
		initNode = ast.NewEmpty()
	case lx.Kind == token.Keyword && token.IsTypeKeyword(lx.Keyword()):
		typeNode, typ, err := p.parseTypeSpec()
		if err != nil {
			return nil, err
		}
		if initNode, err = p.parseDeclarators(typeNode, typ); err != nil {
			return nil, err
		}
	default:
		if initNode, err = p.parseSimpleStatement(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}

	if p.checkDelim(token.Semi) || p.checkDelim(token.RParen) {
		return nil, p.expected("bool expression")
	}
	cond, err := p.parseBoolExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}

	step := ast.NewEmpty()
	if !p.checkDelim(token.RParen) {
		if step, err = p.parseSimpleStatement(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectDelim(token.RParen); err != nil {
		return nil, err
	}

	body, err := p.parseLoopBody(kw)
	if err != nil {
		return nil, err
	}
	p.scopes.Pop()
	return ast.NewCommon(kw, initNode, cond, step, body), nil
}

func (p *Parser) parseJump() (*ast.Node, error) {
	kw := p.advance()
	if p.loopDepth == 0 {
		return nil, p.errorf(kw, "%s is not available in this context", kw.Keyword())
	}
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}
	return ast.NewCommon(kw), nil
}

func (p *Parser) parseReturn() (*ast.Node, error) {
	kw := p.advance()
	if p.function == nil {
		return nil, p.errorf(kw, "return is not available in this context")
	}
	node := ast.NewCommon(kw)
	if tables.Is(p.function.retType, tables.Void) {
		if _, err := p.expectDelim(token.Semi); err != nil {
			return nil, err
		}
		return node, nil
	}
	if p.checkDelim(token.Semi) {
		return nil, p.expected("return value")
	}
	value, err := p.parseValue(p.function.retType)
	if err != nil {
		return nil, err
	}
	node.Add(value)
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parseExit() (*ast.Node, error) {
	kw := p.advance()
	if _, err := p.expectDelim(token.LParen); err != nil {
		return nil, err
	}
	code, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(token.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}
	return ast.NewCommon(kw, code), nil
}

// Stream I/O

func (p *Parser) parseCout() (*ast.Node, error) {
	kw := p.advance()
	node := ast.NewCommon(kw)
	if !p.checkOp(token.Shl) {
		return nil, p.expected("'<<'")
	}
	for p.matchOp(token.Shl) {
		operand, err := p.parseOutputOperand()
		if err != nil {
			return nil, err
		}
		node.Add(operand)
	}
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *Parser) parseOutputOperand() (*ast.Node, error) {
	if p.checkKeyword(token.Endl) {
		return ast.NewCommon(p.advance()), nil
	}
	follow := func() error {
		if p.checkOp(token.Shl) || p.checkDelim(token.Semi) {
			return nil
		}
		return p.expected("';'")
	}
	n, _, err := p.firstOf(follow, p.parseArith, p.parseStringExpr, p.parseBoolExpr)
	return n, err
}

func (p *Parser) parseCin() (*ast.Node, error) {
	kw := p.advance()
	node := ast.NewCommon(kw)
	if !p.checkOp(token.Shr) {
		return nil, p.expected("'>>'")
	}
	for p.matchOp(token.Shr) {
		target, _, err := p.parseLValue()
		if err != nil {
			return nil, err
		}
		node.Add(target)
	}
	if _, err := p.expectDelim(token.Semi); err != nil {
		return nil, err
	}
	return node, nil
}
