package lexer

import (
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/minicpp/minicpp/pkg/config"
	"github.com/minicpp/minicpp/pkg/tables"
	"github.com/minicpp/minicpp/pkg/token"
	"github.com/minicpp/minicpp/pkg/util"
)

// State is a state of the scanning automaton
type State int

const (
	Start State = iota
	IdOrKeyword
	Number
	Delimiter
	Operator
	String
	LineComment
	Error
	End
)

var stateNames = [...]string{
	"Start", "IdOrKeyword", "Number", "Delimiter", "Operator", "String", "LineComment", "Error", "End",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(?)"
}

var escapes = map[rune]rune{
	'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t', 'v': '\v',
	'\'': '\'', '"': '"', '\\': '\\',
}

// numberFollowers are the non-space characters allowed right after a numeric literal
const numberFollowers = ")],;}+-*=/%<>!&|^"

type Lexer struct {
	name      string
	source    []rune
	pos       int
	line      int
	column    int
	state     State
	err       error
	inIndex   bool
	cfg       *config.Config
	literals  *tables.LiteralTable
	variables *tables.VariableTable
	scopes    *tables.ScopeStack
}

func NewLexer(name string, source []rune, cfg *config.Config, literals *tables.LiteralTable, variables *tables.VariableTable) *Lexer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Lexer{
		name: name, source: source, line: 1, column: 1, cfg: cfg,
		literals: literals, variables: variables, scopes: tables.NewScopeStack(),
	}
}

// Tokenize scans the whole source eagerly
func Tokenize(name string, source []rune, cfg *config.Config, literals *tables.LiteralTable, variables *tables.VariableTable) ([]token.Lexeme, error) {
	return NewLexer(name, source, cfg, literals, variables).All()
}

// All drains the lexer. It stops at the first lexical error.
func (l *Lexer) All() ([]token.Lexeme, error) {
	var out []token.Lexeme
	for {
		lx, err := l.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, lx)
	}
}

// Scopes exposes the block bookkeeping used to stamp identifiers
func (l *Lexer) Scopes() *tables.ScopeStack { return l.scopes }

// State reports where the automaton stopped
func (l *Lexer) State() State { return l.state }

// Next returns the following lexeme, io.EOF at the end of input, or the
// LexicalError that stopped the scan. Once stopped it keeps returning the same result.
func (l *Lexer) Next() (token.Lexeme, error) {
	for {
		var lx token.Lexeme
		var ok bool
		switch l.state {
		case Start:
			l.state = l.classify()
			continue
		case IdOrKeyword:
			lx, ok = l.word()
		case Number:
			lx, ok = l.number()
		case Delimiter:
			lx, ok = l.delimiter()
		case Operator:
			lx, ok = l.operator()
		case String:
			lx, ok = l.stringLiteral()
		case LineComment:
			l.lineComment()
		case Error:
			return token.Lexeme{}, l.err
		case End:
			return token.Lexeme{}, io.EOF
		}
		if ok {
			return lx, nil
		}
	}
}

func (l *Lexer) classify() State {
	for !l.isAtEnd() && isWhitespace(l.peek()) {
		if l.peek() == '\n' && l.inIndex {
			return l.fail(l.line, l.column, "missing terminating ] character")
		}
		l.advance()
	}
	if l.isAtEnd() {
		return End
	}

	ch := l.peek()
	switch {
	case unicode.IsLetter(ch) || ch == '_' || ch == '#':
		return IdOrKeyword
	case unicode.IsDigit(ch) || ch == '.':
		return Number
	case ch == '"':
		return String
	}
	if _, ok := token.DelimiterMap[ch]; ok {
		return Delimiter
	}
	return Operator
}

func (l *Lexer) fail(line, column int, msg string) State {
	l.err = util.NewLexicalError(l.name, line, column, msg)
	l.state = Error
	return Error
}

func (l *Lexer) makeLexeme(kind token.Kind, value, startPos, startLine, startCol int) token.Lexeme {
	l.state = Start
	return token.Lexeme{Kind: kind, Value: value, Line: startLine, Column: startCol, Len: l.pos - startPos}
}

func (l *Lexer) word() (token.Lexeme, bool) {
	startPos, startLine, startCol := l.pos, l.line, l.column
	if l.peek() == '#' {
		l.advance()
	}
	for isIdentChar(l.peek()) {
		l.advance()
	}
	text := string(l.source[startPos:l.pos])

	if strings.HasPrefix(text, "#") {
		if text != "#include" {
			l.fail(startLine, startCol, "invalid preprocessing directive "+text)
			return token.Lexeme{}, false
		}
		return l.makeLexeme(token.Keyword, int(token.Include), startPos, startLine, startCol), true
	}
	if op, ok := token.WordOperatorMap[text]; ok && l.cfg.IsFeatureEnabled(config.FeatKeywordOps) {
		return l.makeLexeme(token.Operator, int(op), startPos, startLine, startCol), true
	}
	if kw, ok := token.KeywordMap[text]; ok {
		return l.makeLexeme(token.Keyword, int(kw), startPos, startLine, startCol), true
	}
	id := l.variables.Slot(text, l.scopes.Current())
	return l.makeLexeme(token.Identifier, id, startPos, startLine, startCol), true
}

func (l *Lexer) number() (token.Lexeme, bool) {
	startPos, startLine, startCol := l.pos, l.line, l.column
	dots := 0
	for unicode.IsDigit(l.peek()) || l.peek() == '.' {
		if l.peek() == '.' {
			if dots == 1 {
				l.fail(l.line, l.column, "too many decimal points in number")
				return token.Lexeme{}, false
			}
			dots++
		}
		l.advance()
	}
	text := string(l.source[startPos:l.pos])
	if text == "." {
		l.fail(startLine, startCol, "unknown character")
		return token.Lexeme{}, false
	}
	if !l.isAtEnd() && !isWhitespace(l.peek()) && !strings.ContainsRune(numberFollowers, l.peek()) {
		l.fail(l.line, l.column, "wrong characters after a number")
		return token.Lexeme{}, false
	}

	if dots == 1 {
		id := l.literals.Intern(text, tables.DoubleConstant)
		return l.makeLexeme(token.DoubleLiteral, id, startPos, startLine, startCol), true
	}
	id := l.literals.Intern(text, tables.IntConstant)
	return l.makeLexeme(token.IntLiteral, id, startPos, startLine, startCol), true
}

func (l *Lexer) delimiter() (token.Lexeme, bool) {
	startPos, startLine, startCol := l.pos, l.line, l.column
	ch := l.advance()
	d := token.DelimiterMap[ch]
	switch d {
	case token.LBrace:
		l.scopes.Push()
	case token.RBrace:
		l.scopes.Pop()
	case token.LBracket:
		l.inIndex = true
	case token.RBracket:
		l.inIndex = false
	}
	return l.makeLexeme(token.Delimiter, int(d), startPos, startLine, startCol), true
}

func (l *Lexer) operator() (token.Lexeme, bool) {
	startPos, startLine, startCol := l.pos, l.line, l.column
	first := l.peek()
	if l.pos+1 < len(l.source) {
		pair := string(l.source[l.pos : l.pos+2])
		if pair == "//" {
			l.state = LineComment
			return token.Lexeme{}, false
		}
		if op, ok := token.OperatorMap[pair]; ok {
			l.advance()
			l.advance()
			return l.makeLexeme(token.Operator, int(op), startPos, startLine, startCol), true
		}
	}
	if op, ok := token.OperatorMap[string(first)]; ok {
		l.advance()
		return l.makeLexeme(token.Operator, int(op), startPos, startLine, startCol), true
	}
	l.fail(startLine, startCol, "unknown character")
	return token.Lexeme{}, false
}

func (l *Lexer) stringLiteral() (token.Lexeme, bool) {
	startPos, startLine, startCol := l.pos, l.line, l.column
	l.advance()

	var sb strings.Builder
	for l.peek() != '"' {
		if l.isAtEnd() || l.peek() == '\n' {
			l.fail(l.line, l.column, "missing terminating \" character")
			return token.Lexeme{}, false
		}
		if l.peek() == '\\' {
			escLine, escCol := l.line, l.column
			l.advance()
			if l.isAtEnd() || l.peek() == '\n' {
				l.fail(l.line, l.column, "missing terminating \" character")
				return token.Lexeme{}, false
			}
			r, ok := escapes[l.peek()]
			if !ok {
				l.fail(escLine, escCol, "no such escape sequence")
				return token.Lexeme{}, false
			}
			sb.WriteRune(r)
			l.advance()
			continue
		}
		sb.WriteRune(l.advance())
	}
	l.advance()

	id := l.literals.Intern(sb.String(), tables.StringConstant)
	return l.makeLexeme(token.StringLiteral, id, startPos, startLine, startCol), true
}

func (l *Lexer) lineComment() {
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
	l.state = Start
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) advance() rune {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
