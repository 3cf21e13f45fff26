package codegen

import (
	"context"
	"fmt"

	"github.com/Piltxi/kaltz/internal/lang/ast"
	"github.com/Piltxi/kaltz/internal/lang/ir"
)

// Driver is the CodegenDriver of §4.5: it walks the top-level Seq
// spine and lowers each root declaration into ctx's module.
type Driver struct {
	ctx       *Context
	anonExprs int
}

// NewDriver returns a Driver that lowers into ctx.
func NewDriver(ctx *Context) *Driver { return &Driver{ctx: ctx} }

// Context exposes the driver's underlying lowering context, mainly for
// tests that want to inspect the resulting module.
func (d *Driver) Context() *Context { return d.ctx }

// Run walks tree's Seq spine in order, lowering each declaration. It
// stops and returns the first error encountered. ctx is checked once,
// up front — lowering itself never blocks or selects, so there is
// nowhere else in the walk a deadline could meaningfully interrupt it.
func (d *Driver) Run(ctx context.Context, tree ast.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cur := tree
	for cur != nil {
		seq, ok := cur.(*ast.Seq)
		if !ok {
			return fmt.Errorf("%w: top-level node must be *ast.Seq, got %T", ErrMalformedTree, cur)
		}
		if seq.First != nil {
			if err := d.lowerTopLevel(seq.First); err != nil {
				return err
			}
		}
		cur = seq.Continuation
	}
	return nil
}

func (d *Driver) lowerTopLevel(node ast.Node) error {
	switch n := node.(type) {
	case *ast.Prototype:
		return d.declarePrototype(n)
	case *ast.GlobalVar:
		d.ctx.Builder.DeclareGlobal(n.Name)
		return nil
	case *ast.Function:
		return d.defineFunction(n)
	default:
		// A bare top-level expression (e.g. a call statement) is not
		// itself one of prototype/function/global, but the language
		// still needs to run it: wrap it in a nullary anonymous
		// function, the same convention the Kaleidoscope-style
		// grammar this driver is modeled on uses for top-level
		// expressions.
		return d.defineAnonExpr(node)
	}
}

func (d *Driver) defineAnonExpr(expr ast.Node) error {
	d.anonExprs++
	fn := &ast.Function{
		Proto: &ast.Prototype{Name: fmt.Sprintf("__anon_expr%d", d.anonExprs)},
		Body:  expr,
	}
	return d.defineFunction(fn)
}

// declarePrototype registers an external declaration (§4.8: "Prototype
// emits a function declaration ... naming each parameter"). Declaring
// the same prototype twice is harmless — SPEC_FULL.md's prototype
// dedup supplement — as long as the arity agrees with any prior
// declaration or definition.
func (d *Driver) declarePrototype(n *ast.Prototype) error {
	if existing, ok := d.ctx.Builder.LookupFunction(n.Name); ok {
		if existing.Arity != len(n.Params) {
			return fmt.Errorf("%w: %s redeclared with %d parameter(s), previously %d", ErrArityMismatch, n.Name, len(n.Params), existing.Arity)
		}
		existing.Declared = true
		return nil
	}
	fn := d.ctx.Builder.NewFunction(n.Name, n.Params)
	fn.Declared = true
	return nil
}

// defineFunction implements §4.8's four steps.
func (d *Driver) defineFunction(n *ast.Function) error {
	name := n.Proto.Name
	existing, exists := d.ctx.Builder.LookupFunction(name)
	if exists && existing.Defined {
		return fmt.Errorf("%w: %s", ErrDuplicateDefinition, name)
	}
	if exists && existing.Arity != len(n.Proto.Params) {
		return fmt.Errorf("%w: %s defined with %d parameter(s), previously declared with %d", ErrArityMismatch, name, len(n.Proto.Params), existing.Arity)
	}

	var fn *ir.Function
	if exists {
		fn = existing
	} else {
		fn = d.ctx.Builder.NewFunction(name, n.Proto.Params)
	}
	fn.Declared = true

	saved := d.ctx.Symbols.EnterFunction()
	defer d.ctx.Symbols.ExitFunction(saved)

	prevFn := d.ctx.CurrentFunction
	d.ctx.CurrentFunction = fn
	defer func() { d.ctx.CurrentFunction = prevFn }()

	entry := d.ctx.Builder.AppendBlock(fn, "entry")
	d.ctx.Builder.SetInsertPoint(entry)

	for _, param := range n.Proto.Params {
		slot := d.ctx.Builder.CreateEntryAlloca(fn, param)
		d.ctx.Builder.CreateStore(ir.ParamValue(param), slot)
		d.ctx.Symbols.Set(param, slot)
	}

	bodyVal, err := lowerNode(d.ctx, n.Body)
	if err != nil {
		return err
	}
	d.ctx.Builder.CreateRet(bodyVal)

	fn.Defined = true
	if err := ir.Verify(fn); err != nil {
		d.ctx.Builder.EraseFunction(fn)
		return fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	return nil
}
