// Package semantic validates a parsed program against the running
// environment of includes, namespaces, function signatures and defined bindings.
package semantic

import (
	"github.com/minicpp/minicpp/pkg/ast"
	"github.com/minicpp/minicpp/pkg/config"
	"github.com/minicpp/minicpp/pkg/tables"
	"github.com/minicpp/minicpp/pkg/token"
	"github.com/minicpp/minicpp/pkg/util"
)

type Analyzer struct {
	name      string
	cfg       *config.Config
	literals  *tables.LiteralTable
	variables *tables.VariableTable
	env       *Environment
}

func NewAnalyzer(name string, cfg *config.Config, literals *tables.LiteralTable, variables *tables.VariableTable) *Analyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Analyzer{name: name, cfg: cfg, literals: literals, variables: variables, env: NewEnvironment()}
}

// Analyze runs a fresh analyzer over root and returns the final environment
func Analyze(name string, root *ast.Node, cfg *config.Config, literals *tables.LiteralTable, variables *tables.VariableTable) (*Environment, error) {
	a := NewAnalyzer(name, cfg, literals, variables)
	if err := a.Analyze(root); err != nil {
		return nil, err
	}
	return a.env, nil
}

func (a *Analyzer) Environment() *Environment { return a.env }

// Analyze walks the tree in pre-order. Each node first updates the
// environment, is then checked, and only then are its children visited.
func (a *Analyzer) Analyze(root *ast.Node) error { return a.visit(root) }

func (a *Analyzer) visit(n *ast.Node) error {
	if n == nil {
		return nil
	}
	a.update(n)
	if err := a.check(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := a.visit(c); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) entry(lx *token.Lexeme) (tables.VariableEntry, bool) {
	if lx == nil || lx.Kind != token.Identifier {
		return tables.VariableEntry{}, false
	}
	return a.variables.Get(lx.Value)
}

// baseIdent returns the variable node an lvalue writes to
func baseIdent(n *ast.Node) *ast.Node {
	for n.IsDelimiter(token.LBracket) {
		n = n.Child(0)
	}
	if n.IsKind(token.Identifier) {
		return n
	}
	return nil
}

func (a *Analyzer) markDefined(n *ast.Node) {
	if base := baseIdent(n); base != nil {
		if e, ok := a.entry(base.Lexeme); ok {
			a.env.Define(e)
		}
	}
}

// Environment updates

func (a *Analyzer) update(n *ast.Node) {
	switch n.Type {
	case ast.FunctionDeclaration:
		a.declareFunction(n)
		return
	case ast.Declaration:
		a.declareVariables(n)
		return
	}
	if n.Lexeme == nil {
		return
	}

	switch {
	case n.IsKeyword(token.Include):
		if e, ok := a.entry(n.Child(0).Lexeme); ok {
			a.env.Libraries[e.Name] = true
		}
	case n.IsKeyword(token.Namespace):
		if e, ok := a.entry(n.Child(0).Lexeme); ok {
			a.env.Namespaces[e.Name] = true
		}
	case n.IsOperator(token.Eq) && len(n.Children) == 2:
		a.markDefined(n.Child(0))
	case n.IsKeyword(token.Cin):
		for _, target := range n.Children {
			a.markDefined(target)
		}
	}
}

func (a *Analyzer) declareFunction(n *ast.Node) {
	name := n.Child(1)
	fn, ok := a.entry(name.Lexeme)
	if !ok {
		return
	}
	sig := &Signature{Name: fn.Name, Return: tables.TypeUnknown}
	if c, ok := tables.CompoundOf(fn.Type, tables.Function); ok {
		sig.Return = c.Elem
	}
	for _, param := range n.Child(2).Children {
		declarator := param.Child(1)
		if declarator == nil {
			continue
		}
		if e, ok := a.entry(declarator.Lexeme); ok {
			sig.Args = append(sig.Args, e.Type)
			a.env.Define(e)
		}
	}
	a.env.Functions[sig.Name] = sig
}

func (a *Analyzer) declareVariables(n *ast.Node) {
	for _, declarator := range n.Children[1:] {
		e, ok := a.entry(declarator.Lexeme)
		if !ok {
			continue
		}
		for _, part := range declarator.Children {
			switch {
			case part.IsOperator(token.Eq):
				a.env.Define(e)
			case part.IsDelimiter(token.LBracket):
				if size, ok := a.literalInt(part.Child(0)); ok {
					a.env.ArraySizes[e.ID] = size
				}
			}
		}
	}
}

// Checks

func (a *Analyzer) check(n *ast.Node) error {
	if n.Type == ast.FunctionCall {
		return a.checkCall(n)
	}
	if n.Lexeme == nil {
		return nil
	}
	lx := n.Lexeme

	switch {
	case n.IsKeyword(token.Cin), n.IsKeyword(token.Cout), n.IsKeyword(token.Endl):
		if err := a.checkStream(*lx); err != nil {
			return err
		}
		if n.IsKeyword(token.Cout) {
			for _, operand := range n.Children {
				if err := a.requireDefined(operand); err != nil {
					return err
				}
			}
		}
	case lx.Kind == token.Operator && token.IsAssignOp(lx.Operator()):
		return a.checkAssignment(n)
	case n.IsOperator(token.Slash), n.IsOperator(token.Rem):
		if len(n.Children) == 2 {
			return a.checkDivision(n)
		}
	case n.IsDelimiter(token.LBracket):
		if len(n.Children) == 2 {
			return a.checkIndex(n)
		}
	}
	return nil
}

func (a *Analyzer) checkStream(lx token.Lexeme) error {
	if !a.cfg.IsFeatureEnabled(config.FeatStreamCheck) {
		return nil
	}
	if !a.env.Libraries["iostream"] {
		return util.NewMissingLibraryError(a.name, lx, "iostream library required.", "iostream")
	}
	if !a.env.Namespaces["std"] {
		return util.NewMissingLibraryError(a.name, lx, "std namespace required.", "std")
	}
	return nil
}

// checkAssignment covers both statements (op -> [target, value]) and
// declarator initializers (= -> [value])
func (a *Analyzer) checkAssignment(n *ast.Node) error {
	value := n.Last()
	if len(n.Children) == 2 && !n.IsOperator(token.Eq) {
		if err := a.requireDefined(baseIdent(n.Child(0))); err != nil {
			return err
		}
		if n.IsOperator(token.SlashEq) || n.IsOperator(token.RemEq) {
			if err := a.checkZero(value); err != nil {
				return err
			}
		}
	}
	return a.requireDefined(value)
}

// requireDefined checks every variable read inside n, skipping callee names
func (a *Analyzer) requireDefined(n *ast.Node) error {
	if n == nil || !a.cfg.IsFeatureEnabled(config.FeatDefinedCheck) {
		return nil
	}
	if n.Type == ast.FunctionCall {
		for _, arg := range n.Child(1).Children {
			if err := a.requireDefined(arg); err != nil {
				return err
			}
		}
		return nil
	}
	if e, ok := a.entry(n.Lexeme); ok {
		if !tables.IsFunction(e.Type) && !a.env.IsDefined(e) {
			return util.NewVariableUndefinedError(a.name, *n.Lexeme, e.Name)
		}
	}
	for _, c := range n.Children {
		if err := a.requireDefined(c); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkDivision(n *ast.Node) error {
	if n.IsOperator(token.Rem) {
		for _, operand := range n.Children {
			if tables.Is(a.exprType(operand), tables.Double) {
				return util.NewOperandTypeError(a.name, *n.Lexeme, "invalid operands to binary %% (have %s and %s)",
					tables.Deref(a.exprType(n.Child(0))), tables.Deref(a.exprType(n.Child(1))))
			}
		}
	}
	return a.checkZero(n.Child(1))
}

func (a *Analyzer) checkZero(divisor *ast.Node) error {
	if !a.cfg.IsFeatureEnabled(config.FeatDivZeroCheck) {
		return nil
	}
	if v, ok := a.literalNumber(divisor); ok && v == 0 {
		return util.NewDivisionByZeroError(a.name, *divisor.Lexeme)
	}
	return nil
}

func (a *Analyzer) checkIndex(n *ast.Node) error {
	if !a.cfg.IsFeatureEnabled(config.FeatIndexCheck) {
		return nil
	}
	array, index := n.Child(0), n.Child(1)
	e, ok := a.entry(array.Lexeme)
	if !ok {
		return nil
	}
	size, known := a.env.ArraySizes[e.ID]
	idx, literal := a.literalInt(index)
	if known && literal && (idx < 0 || idx >= size) {
		lx, _ := leftmost(index)
		return util.NewArrayIndexError(a.name, lx, e.Name, idx, size)
	}
	return nil
}

func (a *Analyzer) checkCall(n *ast.Node) error {
	callee, args := n.Child(0), n.Child(1).Children
	fn, ok := a.entry(callee.Lexeme)
	if !ok {
		return nil
	}
	sig, ok := a.env.Functions[fn.Name]

	if ok && a.cfg.IsFeatureEnabled(config.FeatArgCheck) {
		switch {
		case len(args) > len(sig.Args):
			lx, _ := leftmost(args[len(sig.Args)])
			return util.NewFunctionArgumentError(a.name, lx, fn.Name, "too many arguments to function %s", fn.Name)
		case len(args) < len(sig.Args):
			return util.NewFunctionArgumentError(a.name, *callee.Lexeme, fn.Name, "too few arguments to function %s", fn.Name)
		}
	}

	for i, arg := range args {
		if err := a.requireDefined(arg); err != nil {
			return err
		}
		if !ok || !a.cfg.IsFeatureEnabled(config.FeatArgCheck) {
			continue
		}
		if argType := a.exprType(arg); !argAccepts(sig.Args[i], argType) {
			lx, _ := leftmost(arg)
			return util.NewFunctionArgumentError(a.name, lx, fn.Name,
				"argument %d of function %s must be %s, not %s", i+1, fn.Name, sig.Args[i], argType)
		}
	}
	return nil
}
