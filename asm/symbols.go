package asm

// SymbolTable holds the single namespace shared by labels and
// preprocessor constants: `NAME:` and `NAME = value` both populate it, and
// an operand that isn't a number literal is resolved against it.
type SymbolTable struct {
	values map[string]int32
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{values: make(map[string]int32)}
}

// Define sets name to value, overwriting any previous definition (matching
// the original tool's #define-like semantics: later definitions win).
func (st *SymbolTable) Define(name string, value int32) {
	st.values[name] = value
}

// Lookup returns name's value.
func (st *SymbolTable) Lookup(name string) (int32, bool) {
	v, ok := st.values[name]
	return v, ok
}

// ReverseLookup returns a name bound to address, if any; when several names
// share the address, which one is returned is not defined. Used to annotate
// assembled output with the label at each address.
func (st *SymbolTable) ReverseLookup(address uint32) (string, bool) {
	for name, v := range st.values {
		if uint32(v) == address {
			return name, true
		}
	}
	return "", false
}
