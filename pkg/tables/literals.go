package tables

import "fmt"

type LiteralKind int

const (
	IntConstant LiteralKind = iota
	DoubleConstant
	StringConstant
)

func (k LiteralKind) String() string {
	switch k {
	case IntConstant:
		return "int"
	case DoubleConstant:
		return "double"
	case StringConstant:
		return "string"
	}
	return fmt.Sprintf("LiteralKind(%d)", int(k))
}

type LiteralEntry struct {
	ID   int
	Kind LiteralKind
	Text string
}

type literalKey struct {
	text string
	kind LiteralKind
}

// LiteralTable interns constant text. Identical (text, kind) pairs share one id.
type LiteralTable struct {
	entries []LiteralEntry
	index   map[literalKey]int
}

func NewLiteralTable() *LiteralTable {
	return &LiteralTable{index: make(map[literalKey]int)}
}

// Intern returns the id of (text, kind), adding it on first sight
func (t *LiteralTable) Intern(text string, kind LiteralKind) int {
	key := literalKey{text, kind}
	if id, ok := t.index[key]; ok {
		return id
	}
	id := len(t.entries)
	t.entries = append(t.entries, LiteralEntry{ID: id, Kind: kind, Text: text})
	t.index[key] = id
	return id
}

// Get returns the entry with the given id
func (t *LiteralTable) Get(id int) (LiteralEntry, bool) {
	if id < 0 || id >= len(t.entries) {
		return LiteralEntry{}, false
	}
	return t.entries[id], true
}

func (t *LiteralTable) Len() int { return len(t.entries) }

// Entries returns a copy of the table in id order
func (t *LiteralTable) Entries() []LiteralEntry {
	out := make([]LiteralEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
