package token

import "fmt"

// Kind classifies a lexeme
type Kind int

const (
	Keyword Kind = iota
	Identifier
	Delimiter
	Operator
	IntLiteral
	DoubleLiteral
	StringLiteral
	// EOF marks the end of the lexeme stream; the lexer never emits it
	EOF
)

var kindNames = [...]string{
	Keyword:       "Keyword",
	Identifier:    "Identifier",
	Delimiter:     "Delimiter",
	Operator:      "Operator",
	IntLiteral:    "IntLiteral",
	DoubleLiteral: "DoubleLiteral",
	StringLiteral: "StringLiteral",
	EOF:           "EOF",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type KeywordType int

const (
	Int KeywordType = iota
	Double
	String
	Bool
	Void
	True
	False
	Nullptr
	While
	Continue
	Break
	If
	Else
	Auto
	Case
	Const
	Default
	Do
	Enum
	Extern
	For
	Goto
	Register
	Return
	Sizeof
	Static
	Struct
	Typedef
	Union
	Volatile
	Include
	Using
	Namespace
	Cin
	Cout
	Exit
	Endl
)

var KeywordMap = map[string]KeywordType{
	"int":       Int,
	"double":    Double,
	"string":    String,
	"bool":      Bool,
	"void":      Void,
	"true":      True,
	"false":     False,
	"nullptr":   Nullptr,
	"while":     While,
	"continue":  Continue,
	"break":     Break,
	"if":        If,
	"else":      Else,
	"auto":      Auto,
	"case":      Case,
	"const":     Const,
	"default":   Default,
	"do":        Do,
	"enum":      Enum,
	"extern":    Extern,
	"for":       For,
	"goto":      Goto,
	"register":  Register,
	"return":    Return,
	"sizeof":    Sizeof,
	"static":    Static,
	"struct":    Struct,
	"typedef":   Typedef,
	"union":     Union,
	"volatile":  Volatile,
	"#include":  Include,
	"using":     Using,
	"namespace": Namespace,
	"cin":       Cin,
	"cout":      Cout,
	"exit":      Exit,
	"endl":      Endl,
}

type DelimiterType int

const (
	LParen DelimiterType = iota
	RParen
	Comma
	Semi
	LBrace
	RBrace
	LBracket
	RBracket
)

var DelimiterMap = map[rune]DelimiterType{
	'(': LParen,
	')': RParen,
	',': Comma,
	';': Semi,
	'{': LBrace,
	'}': RBrace,
	'[': LBracket,
	']': RBracket,
}

type OperatorType int

const (
	Inc OperatorType = iota
	Dec
	EqEq
	Neq
	Lte
	Gt
	Gte
	StarEq
	SlashEq
	RemEq
	AndEq
	OrEq
	AndAnd
	OrOr
	And
	Or
	Xor
	Complement
	Shl
	Shr
	PlusEq
	MinusEq
	Lt
	Star
	Slash
	DoubleSlash
	Rem
	Plus
	Minus
	Not
	Eq
)

var OperatorMap = map[string]OperatorType{
	"++": Inc,
	"--": Dec,
	"==": EqEq,
	"!=": Neq,
	"<=": Lte,
	">":  Gt,
	">=": Gte,
	"*=": StarEq,
	"/=": SlashEq,
	"%=": RemEq,
	"&=": AndEq,
	"|=": OrEq,
	"&&": AndAnd,
	"||": OrOr,
	"&":  And,
	"|":  Or,
	"^":  Xor,
	"~":  Complement,
	"<<": Shl,
	">>": Shr,
	"+=": PlusEq,
	"-=": MinusEq,
	"<":  Lt,
	"*":  Star,
	"/":  Slash,
	"//": DoubleSlash,
	"%":  Rem,
	"+":  Plus,
	"-":  Minus,
	"!":  Not,
	"=":  Eq,
}

// WordOperatorMap holds operators spelled as identifiers
var WordOperatorMap = map[string]OperatorType{
	"and": AndAnd,
	"or":  OrOr,
	"not": Not,
}

// Reverse mappings used when printing lexemes
var (
	KeywordStrings   = make(map[KeywordType]string)
	DelimiterStrings = make(map[DelimiterType]string)
	OperatorStrings  = make(map[OperatorType]string)
)

func init() {
	for str, kw := range KeywordMap {
		KeywordStrings[kw] = str
	}
	for ch, d := range DelimiterMap {
		DelimiterStrings[d] = string(ch)
	}
	for str, op := range OperatorMap {
		OperatorStrings[op] = str
	}
}

func (k KeywordType) String() string   { return KeywordStrings[k] }
func (d DelimiterType) String() string { return DelimiterStrings[d] }
func (o OperatorType) String() string  { return OperatorStrings[o] }

// IsTypeKeyword reports whether kw names a declarable type
func IsTypeKeyword(kw KeywordType) bool {
	switch kw {
	case Int, Double, String, Bool, Void:
		return true
	}
	return false
}

// IsAssignOp reports whether op is '=' or a compound assignment
func IsAssignOp(op OperatorType) bool {
	switch op {
	case Eq, PlusEq, MinusEq, StarEq, SlashEq, RemEq, AndEq, OrEq:
		return true
	}
	return false
}

// IsComparisonOp reports whether op is an equality or relational operator
func IsComparisonOp(op OperatorType) bool {
	switch op {
	case EqEq, Neq, Lt, Lte, Gt, Gte:
		return true
	}
	return false
}

// Lexeme is one classified token. For identifiers and literals Value is an
// index into the variable or literal table, otherwise it holds the
// KeywordType, DelimiterType or OperatorType constant.
type Lexeme struct {
	Kind   Kind
	Value  int
	Line   int
	Column int
	Len    int
}

func (lx Lexeme) IsKeyword(kw KeywordType) bool {
	return lx.Kind == Keyword && lx.Value == int(kw)
}

func (lx Lexeme) IsDelimiter(d DelimiterType) bool {
	return lx.Kind == Delimiter && lx.Value == int(d)
}

func (lx Lexeme) IsOperator(op OperatorType) bool {
	return lx.Kind == Operator && lx.Value == int(op)
}

func (lx Lexeme) Keyword() KeywordType     { return KeywordType(lx.Value) }
func (lx Lexeme) Delimiter() DelimiterType { return DelimiterType(lx.Value) }
func (lx Lexeme) Operator() OperatorType   { return OperatorType(lx.Value) }

// IsLiteral reports whether the lexeme refers to the literal table
func (lx Lexeme) IsLiteral() bool {
	return lx.Kind == IntLiteral || lx.Kind == DoubleLiteral || lx.Kind == StringLiteral
}

// Spelling returns the source text of keywords, delimiters and operators.
// Identifiers and literals need the tables and yield "".
func (lx Lexeme) Spelling() string {
	switch lx.Kind {
	case Keyword:
		return lx.Keyword().String()
	case Delimiter:
		return lx.Delimiter().String()
	case Operator:
		return lx.Operator().String()
	}
	return ""
}

func (lx Lexeme) String() string {
	if s := lx.Spelling(); s != "" {
		return fmt.Sprintf("%s %q", lx.Kind, s)
	}
	return fmt.Sprintf("%s #%d", lx.Kind, lx.Value)
}
