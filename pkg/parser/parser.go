package parser

import (
	"errors"

	"github.com/minicpp/minicpp/pkg/ast"
	"github.com/minicpp/minicpp/pkg/config"
	"github.com/minicpp/minicpp/pkg/tables"
	"github.com/minicpp/minicpp/pkg/token"
	"github.com/minicpp/minicpp/pkg/util"
)

// Parser holds the state for the parsing process. It rewrites the Value of
// identifier lexemes in place so that every use points at its declaration.
type Parser struct {
	name      string
	lexemes   []token.Lexeme
	pos       int
	cfg       *config.Config
	source    *util.SourceFileRecord
	literals  *tables.LiteralTable
	variables *tables.VariableTable
	scopes    *tables.ScopeStack
	loopDepth int
	function  *functionContext
}

type functionContext struct {
	name    string
	retType tables.Type
}

// NewParser creates a parser over a lexeme stream produced against the same tables
func NewParser(name string, lexemes []token.Lexeme, cfg *config.Config, literals *tables.LiteralTable, variables *tables.VariableTable) *Parser {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Parser{
		name: name, lexemes: lexemes, cfg: cfg,
		literals: literals, variables: variables, scopes: tables.NewScopeStack(),
	}
}

// Parse is a shorthand for NewParser(...).Parse()
func Parse(name string, lexemes []token.Lexeme, cfg *config.Config, literals *tables.LiteralTable, variables *tables.VariableTable) (*ast.Node, error) {
	return NewParser(name, lexemes, cfg, literals, variables).Parse()
}

// SetSource attaches the source text used for warning carets
func (p *Parser) SetSource(src *util.SourceFileRecord) { p.source = src }

func (p *Parser) Scopes() *tables.ScopeStack { return p.scopes }

// Lexemes returns the stream with identifier values resolved
func (p *Parser) Lexemes() []token.Lexeme { return p.lexemes }

// Parse consumes the whole stream and returns the root CodeBlock
func (p *Parser) Parse() (*ast.Node, error) {
	root := ast.NewCodeBlock()
	if err := p.parseStatements(root, func() bool { return p.isAtEnd() }); err != nil {
		return nil, err
	}
	return root, nil
}

// Cursor helpers

func (p *Parser) isAtEnd() bool { return p.pos >= len(p.lexemes) }

func (p *Parser) eof() token.Lexeme {
	if len(p.lexemes) == 0 {
		return token.Lexeme{Kind: token.EOF, Line: 1, Column: 1}
	}
	last := p.lexemes[len(p.lexemes)-1]
	return token.Lexeme{Kind: token.EOF, Line: last.Line, Column: last.Column + last.Len}
}

func (p *Parser) current() token.Lexeme { return p.peekAt(0) }

func (p *Parser) peekAt(offset int) token.Lexeme {
	if p.pos+offset < len(p.lexemes) {
		return p.lexemes[p.pos+offset]
	}
	return p.eof()
}

func (p *Parser) advance() token.Lexeme {
	lx := p.current()
	if !p.isAtEnd() {
		p.pos++
	}
	return lx
}

func (p *Parser) checkKeyword(kw token.KeywordType) bool { return p.current().IsKeyword(kw) }

func (p *Parser) checkDelim(d token.DelimiterType) bool { return p.current().IsDelimiter(d) }

func (p *Parser) checkOp(op token.OperatorType) bool { return p.current().IsOperator(op) }

func (p *Parser) matchDelim(d token.DelimiterType) bool {
	if !p.checkDelim(d) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) matchOp(op token.OperatorType) bool {
	if !p.checkOp(op) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expectDelim(d token.DelimiterType) (token.Lexeme, error) {
	if p.checkDelim(d) {
		return p.advance(), nil
	}
	return token.Lexeme{}, p.expected(quote(d.String()))
}

func (p *Parser) expectKeyword(kw token.KeywordType) (token.Lexeme, error) {
	if p.checkKeyword(kw) {
		return p.advance(), nil
	}
	return token.Lexeme{}, p.expected(quote(kw.String()))
}

func (p *Parser) expectOp(op token.OperatorType) (token.Lexeme, error) {
	if p.checkOp(op) {
		return p.advance(), nil
	}
	return token.Lexeme{}, p.expected(quote(op.String()))
}

func quote(s string) string { return "'" + s + "'" }

// Error constructors positioned at the current lexeme

func (p *Parser) expected(what string) error {
	return util.NewExpectedError(p.name, p.current(), what)
}

func (p *Parser) errorf(lx token.Lexeme, format string, args ...any) error {
	return util.NewParserError(p.name, lx, format, args...)
}

func (p *Parser) unexpected() error {
	lx := p.current()
	if lx.Kind == token.EOF {
		return p.errorf(lx, "unexpected end of input")
	}
	return p.errorf(lx, "unexpected %s", quote(p.spell(lx)))
}

// spell renders a lexeme the way it appears in source
func (p *Parser) spell(lx token.Lexeme) string {
	switch lx.Kind {
	case token.Identifier:
		return p.variables.Name(lx.Value)
	case token.IntLiteral, token.DoubleLiteral, token.StringLiteral:
		if e, ok := p.literals.Get(lx.Value); ok {
			return e.Text
		}
	}
	return lx.Spelling()
}

// Speculation

// mark saves the cursor. Speculative sub-parses leave the tables and the
// scope stack alone; the only other write is resolve storing binding ids
// into the lexeme slice, which a retry under the same scope chain repeats
// with the same ids, so the position is the whole checkpoint.
func (p *Parser) mark() int { return p.pos }

func (p *Parser) reset(m int) { p.pos = m }

type alternative func() (*ast.Node, error)

// firstOf tries each alternative from the same checkpoint and commits to the
// first one that succeeds and satisfies follow. On total failure it returns
// the error that got furthest into the input.
func (p *Parser) firstOf(follow func() error, alts ...alternative) (*ast.Node, int, error) {
	start := p.mark()
	var best error
	for i, alt := range alts {
		p.reset(start)
		n, err := alt()
		if err == nil && follow != nil {
			err = follow()
		}
		if err == nil {
			return n, i, nil
		}
		best = furthest(best, err)
	}
	p.reset(start)
	return nil, -1, best
}

// furthest picks the diagnostic positioned later in the source; ties keep a
func furthest(a, b error) error {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	da, okA := util.AsDiagnostic(a)
	db, okB := util.AsDiagnostic(b)
	if !okA || !okB {
		return a
	}
	if db.Line > da.Line || (db.Line == da.Line && db.Column > da.Column) {
		return b
	}
	return a
}

// Identifier resolution and declaration

func (p *Parser) identName(lx token.Lexeme) string { return p.variables.Name(lx.Value) }

// resolve binds the identifier under the cursor to the nearest visible
// declaration and advances past it
func (p *Parser) resolve() (token.Lexeme, error) {
	lx := p.current()
	if lx.Kind != token.Identifier {
		return token.Lexeme{}, p.expected("identifier")
	}
	name := p.identName(lx)
	id, ok := p.variables.Resolve(name, p.scopes.Chain())
	if !ok {
		return token.Lexeme{}, util.NewUsingBeforeDeclarationError(p.name, lx, name)
	}
	p.lexemes[p.pos].Value = id
	p.advance()
	return p.lexemes[p.pos-1], nil
}

// declare binds the identifier under the cursor with typ in scope and advances past it
func (p *Parser) declare(typ tables.Type, scope tables.Scope) (token.Lexeme, error) {
	lx := p.current()
	if lx.Kind != token.Identifier {
		return token.Lexeme{}, p.expected("identifier")
	}
	name := p.identName(lx)
	if outer, ok := p.variables.Resolve(name, p.scopes.Chain()); ok {
		if e, _ := p.variables.Get(outer); e.BlockID != scope.BlockID && !tables.IsFunction(e.Type) {
			util.Warn(p.cfg, config.WarnShadow, p.source, lx, "declaration of '%s' shadows a previous declaration", name)
		}
	}
	id, err := p.variables.Complete(lx.Value, name, typ, scope)
	if errors.Is(err, tables.ErrRedeclared) {
		return token.Lexeme{}, util.NewDoubleDeclarationError(p.name, lx, name)
	}
	if err != nil {
		return token.Lexeme{}, err
	}
	p.lexemes[p.pos].Value = id
	p.advance()
	return p.lexemes[p.pos-1], nil
}

// typeOf returns the declared type of a resolved identifier lexeme
func (p *Parser) typeOf(lx token.Lexeme) tables.Type { return p.variables.TypeOf(lx.Value) }
