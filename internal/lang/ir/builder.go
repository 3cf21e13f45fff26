package ir

import "fmt"

// Builder is the abstract "IrBuilder" of the spec: the one stateful
// object every lowering call uses to append instructions to whichever
// block is currently the insertion point. It plays the role
// driver.cpp's global `IRBuilder<> *builder` plays, but is an explicit
// handle rather than a process-wide global.
type Builder struct {
	module       *Module
	block        *Block
	tmp          int
	allocaPrefix string
	allocaCount  int
}

// NewBuilder creates a Builder over module, with no insertion point
// set and the default "t" entry-alloca naming scheme.
func NewBuilder(module *Module) *Builder { return &Builder{module: module, allocaPrefix: "t"} }

// NewBuilderWithAllocaPrefix is NewBuilder, but names every entry-block
// alloca "%<prefix><n>" instead of the default "%t<n>", the knob
// kalcc.toml's [codegen] entry_alloca_prefix controls.
func NewBuilderWithAllocaPrefix(module *Module, prefix string) *Builder {
	b := NewBuilder(module)
	if prefix != "" {
		b.allocaPrefix = prefix
	}
	return b
}

// Module returns the module this builder emits into.
func (b *Builder) Module() *Module { return b.module }

// SetInsertPoint moves the builder's insertion point to blk. Every
// subsequent Create* call appends to blk until this is called again.
func (b *Builder) SetInsertPoint(blk *Block) { b.block = blk }

// GetInsertBlock returns the block currently receiving instructions.
func (b *Builder) GetInsertBlock() *Block { return b.block }

func (b *Builder) fresh() Value {
	b.tmp++
	return Value{name: fmt.Sprintf("%%t%d", b.tmp)}
}

func (b *Builder) emit(in Instr) Value {
	b.block.Instrs = append(b.block.Instrs, in)
	return in.Dst
}

// NewFunction registers an empty function named name with the given
// parameter names (every parameter is a float, per §4.8) and returns
// it. It does not append any blocks.
func (b *Builder) NewFunction(name string, params []string) *Function {
	fn := &Function{Name: name, Params: append([]string(nil), params...), Arity: len(params)}
	if _, exists := b.module.Functions[name]; !exists {
		b.module.FuncOrder = append(b.module.FuncOrder, name)
	}
	b.module.Functions[name] = fn
	return fn
}

// LookupFunction finds a previously declared or defined function by
// name.
func (b *Builder) LookupFunction(name string) (*Function, bool) {
	fn, ok := b.module.Functions[name]
	return fn, ok
}

// EraseFunction removes fn's body (keeping its declaration invisible to
// String()), used when structural verification fails (§4.8).
func (b *Builder) EraseFunction(fn *Function) {
	fn.Erased = true
	fn.Defined = false
	fn.Blocks = nil
}

// DeclareGlobal registers a module-level mutable float, initialized to
// zero unless already present (§4.7 GlobalVar).
func (b *Builder) DeclareGlobal(name string) *Global {
	if g, ok := b.module.Globals[name]; ok {
		return g
	}
	g := &Global{Name: name, Init: 0}
	b.module.Globals[name] = g
	b.module.GlobalOrder = append(b.module.GlobalOrder, name)
	return g
}

// LookupGlobal finds a previously declared global by name.
func (b *Builder) LookupGlobal(name string) (*Global, bool) {
	g, ok := b.module.Globals[name]
	return g, ok
}

// AppendBlock creates and appends a new named block to fn, returning it.
// The first block ever appended to fn is its entry block.
func (b *Builder) AppendBlock(fn *Function, name string) *Block {
	blk := &Block{Name: uniqueBlockName(fn, name)}
	fn.Blocks = append(fn.Blocks, blk)
	return blk
}

// NewDetachedBlock reserves a unique name for a block against fn's
// current block list without appending it — for control-flow lowering
// that must create several blocks up front but only insert them into
// the function once earlier branches have finished lowering (§4.6
// step 4, §4.7 step 5). Use AppendBlockLater to insert it once ready.
func (b *Builder) NewDetachedBlock(fn *Function, name string) *Block {
	return &Block{Name: uniqueBlockName(fn, name)}
}

// AppendBlockLater inserts a block previously reserved with
// NewDetachedBlock at the end of fn's block list.
func (b *Builder) AppendBlockLater(fn *Function, blk *Block) {
	fn.Blocks = append(fn.Blocks, blk)
}

func uniqueBlockName(fn *Function, base string) string {
	name := base
	for i := 1; fn.BlockByName(name) != nil; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	return name
}

// ParamValue returns the Value an incoming function argument named
// name is bound to on function entry, before it is stored into its own
// alloca. Mirrors an LLVM Function's named Argument list.
func ParamValue(name string) Value { return Value{name: "%" + name} }

// CreateEntryAlloca allocates a fresh stack slot named varName in fn's
// entry block, positioning a temporary insertion point there so the
// allocation always dominates every use, mirroring driver.cpp's
// CreateEntryBlockAlloca(fun, VarName): a fresh IRBuilder pointed at the
// entry block, used only for this one instruction, so it never disturbs
// the caller's own insertion point.
func (b *Builder) CreateEntryAlloca(fn *Function, varName string) Value {
	entry := fn.EntryBlock()
	b.allocaCount++
	dst := Value{name: fmt.Sprintf("%%%s%d", b.allocaPrefix, b.allocaCount)}
	entry.Instrs = append(entry.Instrs, Instr{
		Kind: InstrAlloca,
		Dst:  dst,
		Text: fmt.Sprintf("%s = alloca double ; %s", dst, varName),
	})
	return dst
}

// CreateConstF64 emits a floating-point constant of value v.
func (b *Builder) CreateConstF64(v float64) Value {
	dst := b.fresh()
	return b.emit(Instr{
		Kind:  InstrConst,
		Dst:   dst,
		Const: v,
		Text:  fmt.Sprintf("%s = fconst %g", dst, v),
	})
}

// CreateLoad emits a load from slot.
func (b *Builder) CreateLoad(slot Value) Value {
	dst := b.fresh()
	return b.emit(Instr{
		Kind: InstrLoad,
		Dst:  dst,
		Args: []Value{slot},
		Text: fmt.Sprintf("%s = load double, double* %s", dst, slot),
	})
}

// CreateStore emits a store of val into slot. Stores produce no value.
func (b *Builder) CreateStore(val, slot Value) {
	b.emit(Instr{
		Kind: InstrStore,
		Args: []Value{val, slot},
		Text: fmt.Sprintf("store double %s, double* %s", val, slot),
	})
}

// CreateBinOp emits the floating-point op corresponding to +,-,*,/.
func (b *Builder) CreateBinOp(op string, l, r Value) Value {
	dst := b.fresh()
	mnemonic := map[string]string{"+": "fadd", "-": "fsub", "*": "fmul", "/": "fdiv"}[op]
	return b.emit(Instr{
		Kind: InstrBinOp,
		Dst:  dst,
		Op:   op,
		Args: []Value{l, r},
		Text: fmt.Sprintf("%s = %s double %s, %s", dst, mnemonic, l, r),
	})
}

// CreateCmp emits an unordered float compare for <, >, =.
func (b *Builder) CreateCmp(op string, l, r Value) Value {
	dst := b.fresh()
	mnemonic := map[string]string{"<": "fcmp ult", ">": "fcmp ugt", "=": "fcmp ueq"}[op]
	return b.emit(Instr{
		Kind: InstrCmp,
		Dst:  dst,
		Op:   op,
		Args: []Value{l, r},
		Text: fmt.Sprintf("%s = %s double %s, %s", dst, mnemonic, l, r),
	})
}

// CreateNot emits a logical-not of v.
func (b *Builder) CreateNot(v Value) Value {
	dst := b.fresh()
	return b.emit(Instr{
		Kind: InstrNot,
		Dst:  dst,
		Args: []Value{v},
		Text: fmt.Sprintf("%s = not %s", dst, v),
	})
}

// CreateLogical emits the logical-and/or instruction of the IR for op
// ∈ {"and","or"}.
func (b *Builder) CreateLogical(op string, l, r Value) Value {
	dst := b.fresh()
	return b.emit(Instr{
		Kind: InstrLogical,
		Dst:  dst,
		Op:   op,
		Args: []Value{l, r},
		Text: fmt.Sprintf("%s = %s %s, %s", dst, op, l, r),
	})
}

// CreateCall emits a call to callee with args, in argument order.
func (b *Builder) CreateCall(callee string, args []Value) Value {
	dst := b.fresh()
	argNames := make([]string, len(args))
	for i, a := range args {
		argNames[i] = a.String()
	}
	return b.emit(Instr{
		Kind:   InstrCall,
		Dst:    dst,
		Callee: callee,
		Args:   append([]Value(nil), args...),
		Text:   fmt.Sprintf("%s = call double @%s(%s)", dst, callee, joinValues(argNames)),
	})
}

// CreatePhi emits a φ-node with the given incoming (value, block) pairs.
func (b *Builder) CreatePhi(incoming []PhiIncoming) Value {
	dst := b.fresh()
	parts := make([]string, len(incoming))
	for i, in := range incoming {
		parts[i] = fmt.Sprintf("[ %s, %%%s ]", in.Val, in.Block.Name)
	}
	return b.emit(Instr{
		Kind:     InstrPhi,
		Dst:      dst,
		Incoming: append([]PhiIncoming(nil), incoming...),
		Text:     fmt.Sprintf("%s = phi double %s", dst, joinValues(parts)),
	})
}

// CreateBr emits an unconditional branch to target and terminates the
// current block.
func (b *Builder) CreateBr(target *Block) {
	b.block.Term = Terminator{Kind: TermBr, Target: target.Name}
}

// CreateCondBr emits a conditional branch on cond and terminates the
// current block.
func (b *Builder) CreateCondBr(cond Value, trueB, falseB *Block) {
	b.block.Term = Terminator{Kind: TermCondBr, Cond: cond, TrueName: trueB.Name, FalseName: falseB.Name}
}

// CreateRet emits a return of v and terminates the current block.
func (b *Builder) CreateRet(v Value) {
	b.block.Term = Terminator{Kind: TermRet, RetVal: v, HasRetVal: true}
}

func joinValues(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
