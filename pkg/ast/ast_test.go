package ast

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minicpp/minicpp/pkg/token"
)

func op(o token.OperatorType) token.Lexeme {
	return token.Lexeme{Kind: token.Operator, Value: int(o)}
}

func ident(id int) token.Lexeme {
	return token.Lexeme{Kind: token.Identifier, Value: id}
}

func label(lx *token.Lexeme) string {
	if s := lx.Spelling(); s != "" {
		return s
	}
	return lx.String()
}

// a + b * c
func sample() *Node {
	mul := NewCommon(op(token.Star), NewCommon(ident(1)), NewCommon(ident(2)))
	return NewCommon(op(token.Plus), NewCommon(ident(0)), mul)
}

func TestAddSkipsNil(t *testing.T) {
	n := NewCodeBlock(nil, NewEmpty(), nil)
	n.Add(nil, NewEmpty())
	if len(n.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(n.Children))
	}
	if n.Child(2) != nil || n.Child(-1) != nil {
		t.Error("Child out of range should be nil")
	}
	var missing *Node
	if missing.Last() != nil || missing.Child(0) != nil {
		t.Error("nil node accessors should return nil")
	}
}

func TestPredicates(t *testing.T) {
	root := sample()
	if !root.IsOperator(token.Plus) || root.IsOperator(token.Star) {
		t.Error("IsOperator mismatch on root")
	}
	if !root.Last().IsOperator(token.Star) {
		t.Error("Last should be the multiplication")
	}
	if !root.Child(0).IsKind(token.Identifier) || root.Child(0).IsKeyword(token.Return) {
		t.Error("leaf predicates mismatch")
	}
	if NewEmpty().IsKind(token.Identifier) || NewEmpty().IsDelimiter(token.LBrace) {
		t.Error("empty node should match nothing")
	}
}

func TestWalk(t *testing.T) {
	root := sample()
	var order []string
	Walk(root, func(n *Node) bool {
		order = append(order, label(n.Lexeme))
		return !n.IsOperator(token.Star)
	})
	want := []string{"+", "Identifier #0", "*"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}

	leaves := Count(root, func(n *Node) bool { return len(n.Children) == 0 })
	if leaves != 3 {
		t.Errorf("Count(leaves) = %d, want 3", leaves)
	}
	if all := Count(root, func(*Node) bool { return true }); all != 5 {
		t.Errorf("Count(all) = %d, want 5", all)
	}
}

func TestFprint(t *testing.T) {
	call := NewFunctionCall(NewCommon(ident(3)), NewFunctionArguments(sample()))
	var buf bytes.Buffer
	Fprint(&buf, call, label)
	want := "FunctionCall\n" +
		"  Identifier #3\n" +
		"  FunctionArguments\n" +
		"    +\n" +
		"      Identifier #0\n" +
		"      *\n" +
		"        Identifier #1\n" +
		"        Identifier #2\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("outline mismatch (-want +got):\n%s", diff)
	}
}
