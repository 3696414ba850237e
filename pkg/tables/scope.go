package tables

// Scope identifies one block: BlockID is unique per opened block, Level is
// the nesting depth from file scope.
type Scope struct {
	Level   int
	BlockID int
}

var GlobalScope = Scope{Level: 0, BlockID: 0}

// ScopeStack tracks the open blocks. The bottom entry is always the global scope.
type ScopeStack struct {
	stack  []Scope
	nextID int
	Pushes int
	Pops   int
}

func NewScopeStack() *ScopeStack {
	return &ScopeStack{stack: []Scope{GlobalScope}}
}

// Push opens a new block one level deeper with a fresh id
func (s *ScopeStack) Push() Scope {
	s.nextID++
	sc := Scope{Level: s.Current().Level + 1, BlockID: s.nextID}
	s.stack = append(s.stack, sc)
	s.Pushes++
	return sc
}

// Pop closes the innermost block. It reports false when only the global scope is left.
func (s *ScopeStack) Pop() bool {
	if len(s.stack) <= 1 {
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.Pops++
	return true
}

func (s *ScopeStack) Current() Scope { return s.stack[len(s.stack)-1] }

func (s *ScopeStack) Depth() int { return len(s.stack) }

// Chain returns the active scopes, outermost first
func (s *ScopeStack) Chain() []Scope {
	out := make([]Scope, len(s.stack))
	copy(out, s.stack)
	return out
}
