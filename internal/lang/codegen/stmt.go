package codegen

import (
	"fmt"

	"github.com/Piltxi/kaltz/internal/lang/ast"
	"github.com/Piltxi/kaltz/internal/lang/ir"
)

// lowerVarBinding implements §4.7: the slot always lives in the
// enclosing function's entry block, regardless of how deeply nested the
// binding itself is, so every use is guaranteed to be dominated by its
// allocation.
func lowerVarBinding(ctx *Context, n *ast.VarBinding) (ir.Value, error) {
	slot := ctx.Builder.CreateEntryAlloca(ctx.CurrentFunction, n.Name)

	var init ir.Value
	if n.Init == nil {
		init = ctx.Builder.CreateConstF64(0)
	} else {
		v, err := lowerNode(ctx, n.Init)
		if err != nil {
			return ir.Value{}, err
		}
		init = v
	}
	ctx.Builder.CreateStore(init, slot)
	return slot, nil
}

// lowerAssignment implements §4.7: local slot first, then global,
// else UndefinedVariable.
func lowerAssignment(ctx *Context, n *ast.Assignment) (ir.Value, error) {
	v, err := lowerNode(ctx, n.Expr)
	if err != nil {
		return ir.Value{}, err
	}
	if slot, ok := ctx.Symbols.Lookup(n.Name); ok {
		ctx.Builder.CreateStore(v, slot)
		return v, nil
	}
	if g, ok := ctx.Builder.LookupGlobal(n.Name); ok {
		ctx.Builder.CreateStore(v, g.Ref())
		return v, nil
	}
	return ir.Value{}, fmt.Errorf("%w: %s", ErrUndefinedVariable, n.Name)
}

// lowerIfStmt mirrors lowerIfExpr but neither branch is required to
// produce a meaningful value: the merge φ carries a nominal zero from
// each predecessor purely so every lowering path returns a Value,
// matching driver.cpp's IfStmtAST::codegen.
func lowerIfStmt(ctx *Context, n *ast.IfStmt) (ir.Value, error) {
	cond, err := lowerNode(ctx, n.Cond)
	if err != nil {
		return ir.Value{}, err
	}

	fn := ctx.CurrentFunction
	thenBlk := ctx.Builder.AppendBlock(fn, "then")
	elseBlk := ctx.Builder.NewDetachedBlock(fn, "else")
	mergeBlk := ctx.Builder.NewDetachedBlock(fn, "merge")
	ctx.Builder.CreateCondBr(cond, thenBlk, elseBlk)

	ctx.Builder.SetInsertPoint(thenBlk)
	if _, err := lowerNode(ctx, n.Then); err != nil {
		return ir.Value{}, err
	}
	thenTerm := ctx.Builder.GetInsertBlock()
	ctx.Builder.CreateBr(mergeBlk)
	ctx.Builder.AppendBlockLater(fn, elseBlk)

	ctx.Builder.SetInsertPoint(elseBlk)
	if n.Else != nil {
		if _, err := lowerNode(ctx, n.Else); err != nil {
			return ir.Value{}, err
		}
	}
	elseTerm := ctx.Builder.GetInsertBlock()
	ctx.Builder.CreateBr(mergeBlk)
	ctx.Builder.AppendBlockLater(fn, mergeBlk)

	ctx.Builder.SetInsertPoint(mergeBlk)
	zero := ctx.Builder.CreateConstF64(0)
	return ctx.Builder.CreatePhi([]ir.PhiIncoming{
		{Val: zero, Block: thenTerm},
		{Val: zero, Block: elseTerm},
	}), nil
}

// lowerForStmt implements the five steps of §4.7. Init may be nil, a
// *ast.VarBinding (whose name is shadowed for the loop's duration and
// restored at endloop), or an *ast.Assignment (a plain re-lowering,
// nothing to restore).
func lowerForStmt(ctx *Context, n *ast.ForStmt) (ir.Value, error) {
	fn := ctx.CurrentFunction
	initBlk := ctx.Builder.AppendBlock(fn, "init")
	ctx.Builder.CreateBr(initBlk)

	condBlk := ctx.Builder.NewDetachedBlock(fn, "cond")
	loopBlk := ctx.Builder.NewDetachedBlock(fn, "loop")
	endBlk := ctx.Builder.NewDetachedBlock(fn, "endloop")

	ctx.Builder.SetInsertPoint(initBlk)
	if vb, ok := n.Init.(*ast.VarBinding); ok {
		slot, err := lowerVarBinding(ctx, vb)
		if err != nil {
			return ir.Value{}, err
		}
		guard := ctx.Symbols.Bind(vb.Name, slot)
		defer guard.Restore()
	} else if n.Init != nil {
		if _, err := lowerNode(ctx, n.Init); err != nil {
			return ir.Value{}, err
		}
	}
	ctx.Builder.CreateBr(condBlk)
	ctx.Builder.AppendBlockLater(fn, condBlk)

	ctx.Builder.SetInsertPoint(condBlk)
	condVal, err := lowerNode(ctx, n.Cond)
	if err != nil {
		return ir.Value{}, err
	}
	ctx.Builder.CreateCondBr(condVal, loopBlk, endBlk)
	ctx.Builder.AppendBlockLater(fn, loopBlk)

	ctx.Builder.SetInsertPoint(loopBlk)
	if _, err := lowerNode(ctx, n.Body); err != nil {
		return ir.Value{}, err
	}
	if n.Step != nil {
		if _, err := lowerNode(ctx, n.Step); err != nil {
			return ir.Value{}, err
		}
	}
	ctx.Builder.CreateBr(condBlk)
	ctx.Builder.AppendBlockLater(fn, endBlk)

	ctx.Builder.SetInsertPoint(endBlk)
	zero := ctx.Builder.CreateConstF64(0)
	return ctx.Builder.CreatePhi([]ir.PhiIncoming{{Val: zero, Block: condBlk}}), nil
}
