package codegen

import "github.com/Piltxi/kaltz/internal/lang/ir"

// Context bundles the objects §5 calls "process-wide shared" in the
// original design (the IR module, its builder, the symbol table) into
// one explicit handle, so lowering stays a pure function of (node,
// *Context) rather than reaching for globals — the anti-global-state
// guidance the design notes call out for CompilationContext.
type Context struct {
	Module          *ir.Module
	Builder         *ir.Builder
	Symbols         *SymbolTable
	CurrentFunction *ir.Function
}

// NewContext creates a fresh module named name with an empty builder
// and symbol table, ready for a CodegenDriver.Run call.
func NewContext(name string) *Context {
	return NewContextWithAllocaPrefix(name, "")
}

// NewContextWithAllocaPrefix is NewContext, but threads allocaPrefix
// into the builder so every entry-block alloca it emits is named
// "%<allocaPrefix><n>" instead of the "%t<n>" default — the knob
// kalcc.toml's [codegen] entry_alloca_prefix controls.
func NewContextWithAllocaPrefix(name, allocaPrefix string) *Context {
	mod := ir.NewModule(name)
	return &Context{
		Module:  mod,
		Builder: ir.NewBuilderWithAllocaPrefix(mod, allocaPrefix),
		Symbols: NewSymbolTable(),
	}
}
