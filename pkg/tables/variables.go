package tables

import "errors"

// ErrRedeclared is returned when a fully typed name already exists in the same block
var ErrRedeclared = errors.New("redeclared in the same block")

type VariableEntry struct {
	ID         int
	Name       string
	Type       Type
	BlockID    int
	BlockLevel int
}

// Scope returns the block the entry was declared in
func (e VariableEntry) Scope() Scope { return Scope{Level: e.BlockLevel, BlockID: e.BlockID} }

// VariableTable is an append-only arena of identifier bindings. Ids are
// slice positions and never change; Prune drops never-declared forward
// slots without renumbering the rest.
type VariableTable struct {
	entries []*VariableEntry
	byName  map[string][]int
}

func NewVariableTable() *VariableTable {
	return &VariableTable{byName: make(map[string][]int)}
}

func (t *VariableTable) add(name string, typ Type, scope Scope) int {
	id := len(t.entries)
	t.entries = append(t.entries, &VariableEntry{
		ID: id, Name: name, Type: typ, BlockID: scope.BlockID, BlockLevel: scope.Level,
	})
	t.byName[name] = append(t.byName[name], id)
	return id
}

// Slot returns the entry for name in exactly this block, creating an
// Unknown-typed forward slot when there is none yet.
func (t *VariableTable) Slot(name string, scope Scope) int {
	for _, id := range t.byName[name] {
		if e := t.entries[id]; e != nil && e.BlockID == scope.BlockID {
			return id
		}
	}
	return t.add(name, TypeUnknown, scope)
}

// Declare binds name with a real type in scope as a new entry.
func (t *VariableTable) Declare(name string, typ Type, scope Scope) (int, error) {
	return t.Complete(-1, name, typ, scope)
}

// Complete is Declare with a preferred slot: when id is a pending forward
// slot for name it is the one that gets typed.
func (t *VariableTable) Complete(id int, name string, typ Type, scope Scope) (int, error) {
	if _, ok := t.lookupIn(name, scope); ok {
		return 0, ErrRedeclared
	}
	if e := t.entry(id); e != nil && e.Name == name && IsUnknown(e.Type) {
		e.Type, e.BlockID, e.BlockLevel = typ, scope.BlockID, scope.Level
		return e.ID, nil
	}
	return t.add(name, typ, scope), nil
}

func (t *VariableTable) lookupIn(name string, scope Scope) (int, bool) {
	ids := t.byName[name]
	for i := len(ids) - 1; i >= 0; i-- {
		e := t.entries[ids[i]]
		if e != nil && !IsUnknown(e.Type) && e.BlockID == scope.BlockID {
			return e.ID, true
		}
	}
	return 0, false
}

// Resolve searches the chain innermost-to-outermost, skipping forward
// slots, and returns the nearest fully typed binding of name.
func (t *VariableTable) Resolve(name string, chain []Scope) (int, bool) {
	for i := len(chain) - 1; i >= 0; i-- {
		if id, ok := t.lookupIn(name, chain[i]); ok {
			return id, true
		}
	}
	return 0, false
}

// Prune discards every entry still typed Unknown and reports how many went.
func (t *VariableTable) Prune() int {
	dropped := 0
	for i, e := range t.entries {
		if e != nil && IsUnknown(e.Type) {
			t.entries[i] = nil
			dropped++
		}
	}
	return dropped
}

func (t *VariableTable) entry(id int) *VariableEntry {
	if id < 0 || id >= len(t.entries) {
		return nil
	}
	return t.entries[id]
}

// Get returns a copy of the entry with the given id
func (t *VariableTable) Get(id int) (VariableEntry, bool) {
	if e := t.entry(id); e != nil {
		return *e, true
	}
	return VariableEntry{}, false
}

// Name returns the identifier spelling for id, or "" if there is no such entry
func (t *VariableTable) Name(id int) string {
	if e := t.entry(id); e != nil {
		return e.Name
	}
	return ""
}

// TypeOf returns the type of id, Unknown when absent
func (t *VariableTable) TypeOf(id int) Type {
	if e := t.entry(id); e != nil {
		return e.Type
	}
	return TypeUnknown
}

// Cap is the number of ids ever handed out, including pruned ones
func (t *VariableTable) Cap() int { return len(t.entries) }

// Entries returns the live entries in id order
func (t *VariableTable) Entries() []VariableEntry {
	out := make([]VariableEntry, 0, len(t.entries))
	for _, e := range t.entries {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}
