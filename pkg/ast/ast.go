// Package ast defines the syntax tree produced by the parser
package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/minicpp/minicpp/pkg/token"
)

// NodeType defines the kind of a node in the AST
type NodeType int

const (
	Common NodeType = iota
	Declaration
	FunctionDeclaration
	FunctionArguments
	FunctionCall
	CodeBlock
)

var nodeTypeNames = [...]string{
	"Common", "Declaration", "FunctionDeclaration", "FunctionArguments", "FunctionCall", "CodeBlock",
}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// Node is a syntax tree node. Lexeme is nil for structural nodes; a parent
// exclusively owns its children.
type Node struct {
	Type     NodeType
	Lexeme   *token.Lexeme
	Children []*Node
}

func newNode(nodeType NodeType, lx *token.Lexeme, children ...*Node) *Node {
	n := &Node{Type: nodeType, Lexeme: lx}
	n.Add(children...)
	return n
}

// NewCommon builds a Common node around a copy of lx
func NewCommon(lx token.Lexeme, children ...*Node) *Node {
	return newNode(Common, &lx, children...)
}

// NewEmpty is a lexeme-less Common node standing for an omitted clause
func NewEmpty() *Node { return newNode(Common, nil) }

func NewDeclaration(children ...*Node) *Node { return newNode(Declaration, nil, children...) }

func NewFunctionDeclaration(retType, name, args, body *Node) *Node {
	return newNode(FunctionDeclaration, nil, retType, name, args, body)
}

func NewFunctionArguments(args ...*Node) *Node { return newNode(FunctionArguments, nil, args...) }

func NewFunctionCall(callee, args *Node) *Node { return newNode(FunctionCall, nil, callee, args) }

func NewCodeBlock(stmts ...*Node) *Node { return newNode(CodeBlock, nil, stmts...) }

// Add appends non-nil children
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
}

// Child returns the i-th child or nil
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

func (n *Node) Last() *Node {
	if n == nil {
		return nil
	}
	return n.Child(len(n.Children) - 1)
}

func (n *Node) IsKeyword(kw token.KeywordType) bool {
	return n != nil && n.Lexeme != nil && n.Lexeme.IsKeyword(kw)
}

func (n *Node) IsOperator(op token.OperatorType) bool {
	return n != nil && n.Lexeme != nil && n.Lexeme.IsOperator(op)
}

func (n *Node) IsDelimiter(d token.DelimiterType) bool {
	return n != nil && n.Lexeme != nil && n.Lexeme.IsDelimiter(d)
}

// IsKind reports whether the node's lexeme is of kind k
func (n *Node) IsKind(k token.Kind) bool {
	return n != nil && n.Lexeme != nil && n.Lexeme.Kind == k
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Count returns how many nodes in the tree satisfy pred
func Count(n *Node, pred func(*Node) bool) int {
	total := 0
	Walk(n, func(x *Node) bool {
		if pred(x) {
			total++
		}
		return true
	})
	return total
}

// Fprint writes an indented outline of the tree, labelling lexeme nodes with label
func Fprint(w io.Writer, n *Node, label func(*token.Lexeme) string) {
	fprint(w, n, label, 0)
}

func fprint(w io.Writer, n *Node, label func(*token.Lexeme) string, depth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	switch {
	case n.Lexeme == nil:
		fmt.Fprintf(w, "%s%s\n", indent, n.Type)
	case n.Type == Common:
		fmt.Fprintf(w, "%s%s\n", indent, label(n.Lexeme))
	default:
		fmt.Fprintf(w, "%s%s %s\n", indent, n.Type, label(n.Lexeme))
	}
	for _, c := range n.Children {
		fprint(w, c, label, depth+1)
	}
}
