package semantic

import (
	"strconv"

	"github.com/minicpp/minicpp/pkg/ast"
	"github.com/minicpp/minicpp/pkg/tables"
	"github.com/minicpp/minicpp/pkg/token"
)

// exprType computes the static type of an expression subtree. Unknown means
// the expression could not be classified and is not type checked.
func (a *Analyzer) exprType(n *ast.Node) tables.Type {
	if n == nil {
		return tables.TypeUnknown
	}
	if n.Type == ast.FunctionCall {
		callee := n.Child(0)
		if callee == nil || callee.Lexeme == nil {
			return tables.TypeUnknown
		}
		if fn, ok := tables.CompoundOf(a.variables.TypeOf(callee.Lexeme.Value), tables.Function); ok {
			return fn.Elem
		}
		return tables.TypeUnknown
	}
	if n.Lexeme == nil {
		return tables.TypeUnknown
	}

	lx := n.Lexeme
	switch lx.Kind {
	case token.IntLiteral:
		return tables.TypeInt
	case token.DoubleLiteral:
		return tables.TypeDouble
	case token.StringLiteral:
		return tables.TypeString
	case token.Identifier:
		return a.variables.TypeOf(lx.Value)
	case token.Keyword:
		if lx.IsKeyword(token.True) || lx.IsKeyword(token.False) {
			return tables.TypeBool
		}
		return tables.TypeUnknown
	case token.Delimiter:
		if lx.IsDelimiter(token.LBracket) && len(n.Children) == 2 {
			if elem, ok := tables.ElementOf(a.exprType(n.Child(0))); ok {
				return elem
			}
		}
		return tables.TypeUnknown
	}

	op := lx.Operator()
	switch {
	case token.IsComparisonOp(op), op == token.AndAnd, op == token.OrOr, op == token.Not:
		return tables.TypeBool
	case op == token.Inc, op == token.Dec:
		return tables.Deref(a.exprType(n.Child(0)))
	case op == token.Rem:
		return tables.TypeInt
	case op == token.Plus, op == token.Minus, op == token.Star, op == token.Slash:
		if len(n.Children) == 1 {
			return tables.Deref(a.exprType(n.Child(0)))
		}
		left, right := tables.Deref(a.exprType(n.Child(0))), tables.Deref(a.exprType(n.Child(1)))
		switch {
		case tables.Is(left, tables.String) || tables.Is(right, tables.String):
			return tables.TypeString
		case tables.Is(left, tables.Double) || tables.Is(right, tables.Double):
			return tables.TypeDouble
		}
		return tables.TypeInt
	}
	return tables.TypeUnknown
}

// argAccepts reports whether an argument of type arg may be passed for a
// parameter of type param: exact match, an array for a pointer to the same
// element type, or a value for a reference to its type.
func argAccepts(param, arg tables.Type) bool {
	if tables.IsUnknown(arg) || tables.Equal(param, arg) {
		return true
	}
	if p, ok := tables.CompoundOf(param, tables.Pointer); ok {
		if a, ok := tables.CompoundOf(arg, tables.Array); ok {
			return tables.Equal(p.Elem, a.Elem)
		}
	}
	if r, ok := tables.CompoundOf(param, tables.Reference); ok {
		return tables.Equal(r.Elem, tables.Deref(arg))
	}
	if _, ok := tables.CompoundOf(arg, tables.Reference); ok {
		return tables.Equal(param, tables.Deref(arg))
	}
	return false
}

// literalNumber returns the numeric value of an int or double literal node
func (a *Analyzer) literalNumber(n *ast.Node) (float64, bool) {
	if !n.IsKind(token.IntLiteral) && !n.IsKind(token.DoubleLiteral) {
		return 0, false
	}
	e, ok := a.literals.Get(n.Lexeme.Value)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(e.Text, 64)
	return v, err == nil
}

// literalInt returns the value of an integer literal, allowing a leading unary minus
func (a *Analyzer) literalInt(n *ast.Node) (int64, bool) {
	sign := int64(1)
	if n.IsOperator(token.Minus) && len(n.Children) == 1 {
		sign, n = -1, n.Child(0)
	}
	if !n.IsKind(token.IntLiteral) {
		return 0, false
	}
	e, ok := a.literals.Get(n.Lexeme.Value)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(e.Text, 10, 64)
	return sign * v, err == nil
}

// leftmost returns the lexeme that starts the subtree in source order
func leftmost(n *ast.Node) (token.Lexeme, bool) {
	var best token.Lexeme
	found := false
	ast.Walk(n, func(x *ast.Node) bool {
		if x.Lexeme == nil {
			return true
		}
		lx := *x.Lexeme
		if !found || lx.Line < best.Line || (lx.Line == best.Line && lx.Column < best.Column) {
			best, found = lx, true
		}
		return true
	})
	return best, found
}
