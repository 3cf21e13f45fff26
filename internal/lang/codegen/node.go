package codegen

import (
	"fmt"

	"github.com/Piltxi/kaltz/internal/lang/ast"
	"github.com/Piltxi/kaltz/internal/lang/ir"
)

// lowerNode dispatches on the concrete type of node and returns its
// emitted value. Every node kind produces a Value in this design, even
// the statement forms that the spec calls "inessential" (IfStmt,
// ForStmt) — they return a nominal zero so the whole tree lowers
// through one uniform entry point, matching how driver.cpp's codegen()
// is virtual on every *AST node regardless of expression/statement
// status.
func lowerNode(ctx *Context, node ast.Node) (ir.Value, error) {
	switch n := node.(type) {
	case nil:
		return ir.Value{}, nil
	case *ast.Number:
		return lowerNumber(ctx, n)
	case *ast.VarRef:
		return lowerVarRef(ctx, n)
	case *ast.BinaryOp:
		return lowerBinaryOp(ctx, n)
	case *ast.Call:
		return lowerCall(ctx, n)
	case *ast.IfExpr:
		return lowerIfExpr(ctx, n)
	case *ast.Block:
		return lowerBlock(ctx, n)
	case *ast.VarBinding:
		return lowerVarBinding(ctx, n)
	case *ast.Assignment:
		return lowerAssignment(ctx, n)
	case *ast.IfStmt:
		return lowerIfStmt(ctx, n)
	case *ast.ForStmt:
		return lowerForStmt(ctx, n)
	default:
		return ir.Value{}, fmt.Errorf("%w: cannot lower node of type %T", ErrMalformedTree, node)
	}
}
