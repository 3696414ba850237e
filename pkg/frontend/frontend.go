// Package frontend runs the lexer, parser and semantic analyzer over one source
package frontend

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/minicpp/minicpp/pkg/ast"
	"github.com/minicpp/minicpp/pkg/config"
	"github.com/minicpp/minicpp/pkg/lexer"
	"github.com/minicpp/minicpp/pkg/parser"
	"github.com/minicpp/minicpp/pkg/semantic"
	"github.com/minicpp/minicpp/pkg/tables"
	"github.com/minicpp/minicpp/pkg/token"
	"github.com/minicpp/minicpp/pkg/util"
)

// Program is a validated translation unit. Consumers must treat it as read-only.
type Program struct {
	Source      *util.SourceFileRecord
	Lexemes     []token.Lexeme
	Root        *ast.Node
	Literals    *tables.LiteralTable
	Variables   *tables.VariableTable
	Environment *semantic.Environment
	// Pruned counts forward slots dropped after parsing
	Pruned int
}

// Analyze runs the three passes in order and stops at the first error
func Analyze(name string, src []rune, cfg *config.Config) (*Program, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	source := &util.SourceFileRecord{Name: name, Content: src}
	literals, variables := tables.NewLiteralTable(), tables.NewVariableTable()

	lexemes, err := lexer.Tokenize(name, src, cfg, literals, variables)
	if err != nil {
		return nil, err
	}

	p := parser.NewParser(name, lexemes, cfg, literals, variables)
	p.SetSource(source)
	root, err := p.Parse()
	if err != nil {
		return nil, err
	}
	pruned := variables.Prune()

	env, err := semantic.Analyze(name, root, cfg, literals, variables)
	if err != nil {
		return nil, err
	}

	return &Program{
		Source: source, Lexemes: p.Lexemes(), Root: root,
		Literals: literals, Variables: variables, Environment: env, Pruned: pruned,
	}, nil
}

// AnalyzeFile reads path and analyzes it under its own name
func AnalyzeFile(path string, cfg *config.Config) (*Program, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read file '%s': %w", path, err)
	}
	return Analyze(path, []rune(string(content)), cfg)
}

// Text returns the source spelling of a lexeme, resolving table references
func (prog *Program) Text(lx *token.Lexeme) string {
	if lx == nil {
		return ""
	}
	switch lx.Kind {
	case token.Identifier:
		return prog.Variables.Name(lx.Value)
	case token.IntLiteral, token.DoubleLiteral, token.StringLiteral:
		if e, ok := prog.Literals.Get(lx.Value); ok {
			if lx.Kind == token.StringLiteral {
				return strconv.Quote(e.Text)
			}
			return e.Text
		}
		return ""
	}
	return lx.Spelling()
}

// Fingerprint digests the lexeme stream, both tables and the tree shape.
// Two analyses with equal fingerprints produced the same program.
func (prog *Program) Fingerprint() uint64 {
	d := xxhash.New()
	for _, lx := range prog.Lexemes {
		fmt.Fprintf(d, "L%d:%d:%d:%d;", lx.Kind, lx.Value, lx.Line, lx.Column)
	}
	for _, e := range prog.Literals.Entries() {
		fmt.Fprintf(d, "C%d:%d:%q;", e.ID, e.Kind, e.Text)
	}
	for _, e := range prog.Variables.Entries() {
		fmt.Fprintf(d, "V%d:%s:%s:%d:%d;", e.ID, e.Name, e.Type, e.BlockID, e.BlockLevel)
	}
	ast.Walk(prog.Root, func(n *ast.Node) bool {
		fmt.Fprintf(d, "N%d:%d:%s;", n.Type, len(n.Children), prog.Text(n.Lexeme))
		return true
	})
	return d.Sum64()
}
