// Package astjson decodes a JSON-serialized AST into internal/lang/ast
// nodes. §4 of the language surface note that "the exact grammar is
// provided by the parser generator and is out of scope"; this package
// is the deliberately simple stand-in boundary cmd/kalcc reads across
// instead — a self-describing tree rather than surface syntax, so the
// lowering pass (the part actually in scope) has something concrete to
// drive it from.
package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/Piltxi/kaltz/internal/lang/ast"
)

type rawNode struct {
	Kind         string          `json:"kind"`
	Value        float64         `json:"value,omitempty"`
	Name         string          `json:"name,omitempty"`
	Op           string          `json:"op,omitempty"`
	Lhs          json.RawMessage `json:"lhs,omitempty"`
	Rhs          json.RawMessage `json:"rhs,omitempty"`
	Callee       string          `json:"callee,omitempty"`
	Args         []json.RawMessage `json:"args,omitempty"`
	Cond         json.RawMessage `json:"cond,omitempty"`
	Then         json.RawMessage `json:"then,omitempty"`
	Else         json.RawMessage `json:"else,omitempty"`
	Init         json.RawMessage `json:"init,omitempty"`
	Step         json.RawMessage `json:"step,omitempty"`
	Body         json.RawMessage `json:"body,omitempty"`
	Decls        []rawNode       `json:"decls,omitempty"`
	Stmts        []json.RawMessage `json:"stmts,omitempty"`
	Params       []string        `json:"params,omitempty"`
	Proto        json.RawMessage `json:"proto,omitempty"`
	First        json.RawMessage `json:"first,omitempty"`
	Continuation json.RawMessage `json:"continuation,omitempty"`
}

// Decode parses data as a JSON AST and returns its root node.
func Decode(data []byte) (ast.Node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return decodeRaw(data)
}

func decodeRaw(data []byte) (ast.Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("astjson: %w", err)
	}
	return build(&raw)
}

func decodeOptional(data json.RawMessage) (ast.Node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return decodeRaw(data)
}

func build(n *rawNode) (ast.Node, error) {
	switch n.Kind {
	case "number":
		return &ast.Number{Value: n.Value}, nil
	case "varref":
		return &ast.VarRef{Name: n.Name}, nil
	case "binaryop":
		lhs, err := decodeOptional(n.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeOptional(n.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Op: n.Op, Lhs: lhs, Rhs: rhs}, nil
	case "call":
		args := make([]ast.Node, len(n.Args))
		for i, a := range n.Args {
			v, err := decodeRaw(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return &ast.Call{Callee: n.Callee, Args: args}, nil
	case "ifexpr":
		cond, err := decodeOptional(n.Cond)
		if err != nil {
			return nil, err
		}
		thenN, err := decodeOptional(n.Then)
		if err != nil {
			return nil, err
		}
		elseN, err := decodeOptional(n.Else)
		if err != nil {
			return nil, err
		}
		return &ast.IfExpr{Cond: cond, Then: thenN, Else: elseN}, nil
	case "ifstmt":
		cond, err := decodeOptional(n.Cond)
		if err != nil {
			return nil, err
		}
		thenBlk, err := decodeBlock(n.Then)
		if err != nil {
			return nil, err
		}
		var elseBlk *ast.Block
		if len(n.Else) > 0 {
			elseBlk, err = decodeBlock(n.Else)
			if err != nil {
				return nil, err
			}
		}
		return &ast.IfStmt{Cond: cond, Then: thenBlk, Else: elseBlk}, nil
	case "forstmt":
		init, err := decodeOptional(n.Init)
		if err != nil {
			return nil, err
		}
		cond, err := decodeOptional(n.Cond)
		if err != nil {
			return nil, err
		}
		step, err := decodeOptional(n.Step)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{Init: init, Cond: cond, Step: step, Body: body}, nil
	case "block":
		return decodeBlockNode(n)
	case "varbinding":
		init, err := decodeOptional(n.Init)
		if err != nil {
			return nil, err
		}
		return &ast.VarBinding{Name: n.Name, Init: init}, nil
	case "assignment":
		expr, err := decodeOptional(n.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Name: n.Name, Expr: expr}, nil
	case "globalvar":
		return &ast.GlobalVar{Name: n.Name}, nil
	case "prototype":
		return &ast.Prototype{Name: n.Name, Params: n.Params}, nil
	case "function":
		proto, err := decodeOptional(n.Proto)
		if err != nil {
			return nil, err
		}
		protoNode, ok := proto.(*ast.Prototype)
		if !ok {
			return nil, fmt.Errorf("astjson: function.proto must be a prototype node")
		}
		body, err := decodeOptional(n.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Function{Proto: protoNode, Body: body}, nil
	case "seq":
		first, err := decodeOptional(n.First)
		if err != nil {
			return nil, err
		}
		cont, err := decodeOptional(n.Continuation)
		if err != nil {
			return nil, err
		}
		return &ast.Seq{First: first, Continuation: cont}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown node kind %q", n.Kind)
	}
}

func decodeBlock(data json.RawMessage) (*ast.Block, error) {
	if len(data) == 0 {
		return &ast.Block{}, nil
	}
	node, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	blk, ok := node.(*ast.Block)
	if !ok {
		return nil, fmt.Errorf("astjson: expected a block node, got %T", node)
	}
	return blk, nil
}

func decodeBlockNode(n *rawNode) (*ast.Block, error) {
	decls := make([]*ast.VarBinding, len(n.Decls))
	for i, d := range n.Decls {
		node, err := build(&d)
		if err != nil {
			return nil, err
		}
		vb, ok := node.(*ast.VarBinding)
		if !ok {
			return nil, fmt.Errorf("astjson: block.decls[%d] must be a varbinding", i)
		}
		decls[i] = vb
	}
	stmts := make([]ast.Node, len(n.Stmts))
	for i, s := range n.Stmts {
		v, err := decodeRaw(s)
		if err != nil {
			return nil, err
		}
		stmts[i] = v
	}
	return &ast.Block{Decls: decls, Stmts: stmts}, nil
}
