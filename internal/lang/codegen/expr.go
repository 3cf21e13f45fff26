package codegen

import (
	"fmt"

	"github.com/Piltxi/kaltz/internal/lang/ast"
	"github.com/Piltxi/kaltz/internal/lang/ir"
)

func lowerNumber(ctx *Context, n *ast.Number) (ir.Value, error) {
	return ctx.Builder.CreateConstF64(n.Value), nil
}

// lowerVarRef implements §4.6: local map first, then the global
// registry, else UndefinedVariable.
func lowerVarRef(ctx *Context, n *ast.VarRef) (ir.Value, error) {
	if slot, ok := ctx.Symbols.Lookup(n.Name); ok {
		return ctx.Builder.CreateLoad(slot), nil
	}
	if g, ok := ctx.Builder.LookupGlobal(n.Name); ok {
		return ctx.Builder.CreateLoad(g.Ref()), nil
	}
	return ir.Value{}, fmt.Errorf("%w: %s", ErrUndefinedVariable, n.Name)
}

func lowerBinaryOp(ctx *Context, n *ast.BinaryOp) (ir.Value, error) {
	if n.Op == "not" {
		rhs, err := lowerNode(ctx, n.Rhs)
		if err != nil {
			return ir.Value{}, err
		}
		return ctx.Builder.CreateNot(rhs), nil
	}

	lhs, err := lowerNode(ctx, n.Lhs)
	if err != nil {
		return ir.Value{}, err
	}
	rhs, err := lowerNode(ctx, n.Rhs)
	if err != nil {
		return ir.Value{}, err
	}

	switch n.Op {
	case "+", "-", "*", "/":
		return ctx.Builder.CreateBinOp(n.Op, lhs, rhs), nil
	case "<", ">", "=":
		return ctx.Builder.CreateCmp(n.Op, lhs, rhs), nil
	case "and", "or":
		return ctx.Builder.CreateLogical(n.Op, lhs, rhs), nil
	default:
		return ir.Value{}, fmt.Errorf("%w: %q", ErrUnsupportedOperator, n.Op)
	}
}

func lowerCall(ctx *Context, n *ast.Call) (ir.Value, error) {
	fn, ok := ctx.Builder.LookupFunction(n.Callee)
	if !ok {
		return ir.Value{}, fmt.Errorf("%w: %s", ErrUndefinedFunction, n.Callee)
	}
	if len(n.Args) != fn.Arity {
		return ir.Value{}, fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrArityMismatch, n.Callee, fn.Arity, len(n.Args))
	}
	args := make([]ir.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := lowerNode(ctx, a)
		if err != nil {
			return ir.Value{}, err
		}
		args[i] = v
	}
	return ctx.Builder.CreateCall(n.Callee, args), nil
}

// lowerIfExpr implements the six steps of §4.6 exactly, including the
// detail that else and merge are appended to the function only after
// the preceding branch has finished lowering (so nested control flow
// inside "then" gets to insert its own blocks ahead of "else" in
// textual order), mirroring IfExprAST::codegen in driver.cpp.
func lowerIfExpr(ctx *Context, n *ast.IfExpr) (ir.Value, error) {
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
	thenVal, err := lowerNode(ctx, n.Then)
	if err != nil {
		return ir.Value{}, err
	}
	thenTerm := ctx.Builder.GetInsertBlock()
	ctx.Builder.CreateBr(mergeBlk)
	ctx.Builder.AppendBlockLater(fn, elseBlk)

	ctx.Builder.SetInsertPoint(elseBlk)
	elseVal, err := lowerNode(ctx, n.Else)
	if err != nil {
		return ir.Value{}, err
	}
	elseTerm := ctx.Builder.GetInsertBlock()
	ctx.Builder.CreateBr(mergeBlk)
	ctx.Builder.AppendBlockLater(fn, mergeBlk)

	ctx.Builder.SetInsertPoint(mergeBlk)
	return ctx.Builder.CreatePhi([]ir.PhiIncoming{
		{Val: thenVal, Block: thenTerm},
		{Val: elseVal, Block: elseTerm},
	}), nil
}

// lowerBlock implements §4.6's Block rule: decls shadow left-to-right,
// statements lower in order, the block's value is the last statement's
// value (or the last decl's slot value if there are no statements), and
// every shadow introduced by a decl is restored in reverse order
// before returning.
func lowerBlock(ctx *Context, n *ast.Block) (ir.Value, error) {
	var guards []*binding
	defer func() {
		for i := len(guards) - 1; i >= 0; i-- {
			guards[i].Restore()
		}
	}()

	var last ir.Value
	for _, decl := range n.Decls {
		slot, err := lowerVarBinding(ctx, decl)
		if err != nil {
			return ir.Value{}, err
		}
		guards = append(guards, ctx.Symbols.Bind(decl.Name, slot))
		last = slot
	}
	for _, stmt := range n.Stmts {
		v, err := lowerNode(ctx, stmt)
		if err != nil {
			return ir.Value{}, err
		}
		last = v
	}
	return last, nil
}
