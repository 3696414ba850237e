package tables

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLiteralInternIsIdempotent(t *testing.T) {
	lits := NewLiteralTable()
	a := lits.Intern("10", IntConstant)
	b := lits.Intern("10.0", DoubleConstant)
	c := lits.Intern("10", IntConstant)
	d := lits.Intern("10", StringConstant)

	if a != c {
		t.Errorf("interning %q twice gave ids %d and %d", "10", a, c)
	}
	if a == b || a == d {
		t.Errorf("distinct literals share an id: %d %d %d", a, b, d)
	}
	want := []LiteralEntry{
		{ID: 0, Kind: IntConstant, Text: "10"},
		{ID: 1, Kind: DoubleConstant, Text: "10.0"},
		{ID: 2, Kind: StringConstant, Text: "10"},
	}
	if diff := cmp.Diff(want, lits.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := lits.Get(3); ok {
		t.Error("Get(3) found an entry past the end")
	}
}

func TestScopeStack(t *testing.T) {
	s := NewScopeStack()
	if got := s.Current(); got != GlobalScope {
		t.Fatalf("Current() = %+v, want global", got)
	}
	outer := s.Push()
	inner := s.Push()
	if inner.Level != 2 || inner.BlockID == outer.BlockID {
		t.Errorf("inner scope = %+v, outer = %+v", inner, outer)
	}
	if diff := cmp.Diff([]Scope{GlobalScope, outer, inner}, s.Chain()); diff != "" {
		t.Errorf("Chain() mismatch (-want +got):\n%s", diff)
	}
	s.Pop()
	sibling := s.Push()
	if sibling.BlockID == inner.BlockID || sibling.Level != inner.Level {
		t.Errorf("sibling %+v must reuse the level but not the id of %+v", sibling, inner)
	}
	s.Pop()
	s.Pop()
	if s.Pop() {
		t.Error("Pop() removed the global scope")
	}
	if s.Pushes != 3 || s.Pops != 3 || s.Depth() != 1 {
		t.Errorf("pushes=%d pops=%d depth=%d", s.Pushes, s.Pops, s.Depth())
	}
}

func TestVariableResolveInnermostFirst(t *testing.T) {
	vars := NewVariableTable()
	block := Scope{Level: 1, BlockID: 1}

	outer, err := vars.Declare("x", TypeInt, GlobalScope)
	if err != nil {
		t.Fatal(err)
	}
	inner, err := vars.Declare("x", TypeDouble, block)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		chain []Scope
		want  int
		found bool
	}{
		{"global only", []Scope{GlobalScope}, outer, true},
		{"nested", []Scope{GlobalScope, block}, inner, true},
		{"sibling block", []Scope{GlobalScope, {Level: 1, BlockID: 2}}, outer, true},
		{"empty chain", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := vars.Resolve("x", tt.chain)
			if ok != tt.found || got != tt.want {
				t.Errorf("Resolve() = %d, %v; want %d, %v", got, ok, tt.want, tt.found)
			}
		})
	}

	if _, err := vars.Declare("x", TypeBool, block); !errors.Is(err, ErrRedeclared) {
		t.Errorf("second declaration in the same block: err = %v, want ErrRedeclared", err)
	}
}

func TestForwardSlotsArePrunedUnlessCompleted(t *testing.T) {
	vars := NewVariableTable()
	used := vars.Slot("used", GlobalScope)
	unused := vars.Slot("unused", GlobalScope)
	if again := vars.Slot("used", GlobalScope); again != used {
		t.Errorf("Slot() in the same block = %d, want %d", again, used)
	}
	if _, ok := vars.Resolve("used", []Scope{GlobalScope}); ok {
		t.Error("an untyped slot must not resolve")
	}

	block := Scope{Level: 1, BlockID: 4}
	id, err := vars.Complete(used, "used", NewArray(TypeInt), block)
	if err != nil {
		t.Fatal(err)
	}
	if id != used {
		t.Errorf("Complete() = %d, want the slot id %d", id, used)
	}

	if n := vars.Prune(); n != 1 {
		t.Errorf("Prune() dropped %d entries, want 1", n)
	}
	if _, ok := vars.Get(unused); ok {
		t.Error("unused slot survived pruning")
	}
	want := []VariableEntry{{ID: used, Name: "used", Type: NewArray(TypeInt), BlockID: 4, BlockLevel: 1}}
	if diff := cmp.Diff(want, vars.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
	if vars.Cap() != 2 {
		t.Errorf("Cap() = %d, ids must not be renumbered", vars.Cap())
	}
}

func TestTypes(t *testing.T) {
	tests := []struct {
		typ    Type
		str    string
		elem   Type
		isElem bool
	}{
		{TypeInt, "int", nil, false},
		{NewPointer(TypeDouble), "double*", TypeDouble, true},
		{NewArray(TypeString), "string[]", TypeString, true},
		{NewReference(NewArray(TypeInt)), "int[]&", TypeInt, true},
		{NewFunction(TypeVoid), "void()", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.str {
				t.Errorf("String() = %q", got)
			}
			elem, ok := ElementOf(tt.typ)
			if ok != tt.isElem || (ok && !Equal(elem, tt.elem)) {
				t.Errorf("ElementOf() = %v, %v", elem, ok)
			}
		})
	}

	if !Is(NewReference(TypeDouble), Double) {
		t.Error("Is() must look through references")
	}
	if Equal(NewPointer(TypeInt), NewArray(TypeInt)) {
		t.Error("pointer and array compare equal")
	}
	if !IsFunction(NewFunction(TypeInt)) || IsFunction(TypeInt) {
		t.Error("IsFunction() misclassifies")
	}
}
