package codegen

import "github.com/Piltxi/kaltz/internal/lang/ir"

// SymbolTable maps a local identifier to the ir.Value of its stack slot
// (an alloca in the enclosing function's entry block), per §3.5. It is
// the single mutable piece of lowering state that survives across
// sibling nodes within a function; everything else is a pure function
// of (node, *Context).
type SymbolTable struct {
	locals map[string]ir.Value
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{locals: map[string]ir.Value{}}
}

// Lookup finds the slot bound to name, if any.
func (t *SymbolTable) Lookup(name string) (ir.Value, bool) {
	v, ok := t.locals[name]
	return v, ok
}

// Set overwrites the binding for name without recording anything to
// restore. defineFunction uses it to bind each parameter's slot; those
// bindings are undone wholesale by ExitFunction. (Assignment never
// rebinds a name: it only stores into the slot already bound.)
func (t *SymbolTable) Set(name string, slot ir.Value) {
	t.locals[name] = slot
}

// binding is the save/restore guard named in the Design Notes: on
// construction it records name's prior binding (or its absence), and
// Restore puts that back. Every caller of Bind must defer Restore so
// the shadow is undone on every exit path, mirroring the "block entry
// saves prior mapping ... block exit restores it" discipline of §3.5.
type binding struct {
	table   *SymbolTable
	name    string
	had     bool
	prior   ir.Value
}

// Bind shadows name with slot, returning a guard whose Restore undoes
// exactly this shadow (stack-structured, per §3.5 and §5).
func (t *SymbolTable) Bind(name string, slot ir.Value) *binding {
	prior, had := t.locals[name]
	g := &binding{table: t, name: name, had: had, prior: prior}
	t.locals[name] = slot
	return g
}

// Restore undoes the shadow this guard introduced.
func (g *binding) Restore() {
	if g.had {
		g.table.locals[g.name] = g.prior
		return
	}
	delete(g.table.locals, g.name)
}

// EnterFunction clears the table for a fresh function scope, returning
// the previous contents so ExitFunction can put them back. Kaltz never
// nests function definitions, so in practice the saved map is always
// empty, but the pattern keeps the invariant explicit rather than
// assumed.
func (t *SymbolTable) EnterFunction() map[string]ir.Value {
	saved := t.locals
	t.locals = map[string]ir.Value{}
	return saved
}

// ExitFunction restores the table saved by a matching EnterFunction.
func (t *SymbolTable) ExitFunction(saved map[string]ir.Value) {
	t.locals = saved
}
