package semantic

import (
	"fmt"
	"sort"

	"github.com/minicpp/minicpp/pkg/tables"
)

// Signature is the callable shape of a declared function
type Signature struct {
	Name   string
	Return tables.Type
	Args   []tables.Type
}

// Environment is the running context of one analysis. It only grows.
type Environment struct {
	Libraries  map[string]bool
	Namespaces map[string]bool
	Functions  map[string]*Signature
	Defined    map[string]bool
	// ArraySizes maps variable ids of arrays declared with a literal size
	ArraySizes map[int]int64
}

func NewEnvironment() *Environment {
	return &Environment{
		Libraries:  make(map[string]bool),
		Namespaces: make(map[string]bool),
		Functions:  make(map[string]*Signature),
		Defined:    make(map[string]bool),
		ArraySizes: make(map[int]int64),
	}
}

// DefinedKey renders the binding key name@blockId:blockLevel
func DefinedKey(e tables.VariableEntry) string {
	return fmt.Sprintf("%s@%d:%d", e.Name, e.BlockID, e.BlockLevel)
}

func (env *Environment) Define(e tables.VariableEntry) { env.Defined[DefinedKey(e)] = true }

func (env *Environment) IsDefined(e tables.VariableEntry) bool { return env.Defined[DefinedKey(e)] }

// DefinedKeys returns the defined bindings in sorted order
func (env *Environment) DefinedKeys() []string {
	keys := make([]string, 0, len(env.Defined))
	for k := range env.Defined {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
