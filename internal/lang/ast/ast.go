// Package ast defines the syntax tree for the Kaleidoscope-like source
// language lowered by internal/lang/codegen. Each node is a tagged
// variant rather than a class hierarchy with virtual dispatch: an
// unexported marker method seals the Node interface to the types
// declared here, and internal/lang/codegen dispatches on the concrete
// type with a type switch. Every node exclusively owns its children;
// there is no sharing and no cycles.
package ast

// Node is implemented by every AST node.
type Node interface {
	astNode()
}

// Number is an immutable leaf: a floating-point literal.
type Number struct {
	Value float64
}

func (*Number) astNode() {}

// VarRef is a lookup leaf: a reference to a local or global name.
type VarRef struct {
	Name string
}

func (*VarRef) astNode() {}

// BinaryOp covers both binary and unary operators, per §3.4: Op is one
// of "+","-","*","/","<",">","=","and","or","not". "not" is unary and
// ignores Lhs.
type BinaryOp struct {
	Op       string
	Lhs, Rhs Node
}

func (*BinaryOp) astNode() {}

// Call is a function call by name.
type Call struct {
	Callee string
	Args   []Node
}

func (*Call) astNode() {}

// IfExpr is the value-producing conditional (§4.6): both branches are
// required and the node evaluates to a value via a φ-node at merge.
type IfExpr struct {
	Cond, Then, Else Node
}

func (*IfExpr) astNode() {}

// IfStmt is the statement-form conditional (§4.7): the else branch is
// optional.
type IfStmt struct {
	Cond Node
	Then *Block
	Else *Block // nil when there is no else branch
}

func (*IfStmt) astNode() {}

// ForStmt is a C-style for loop (§4.7). Init may be nil, a *VarBinding,
// or an *Assignment.
type ForStmt struct {
	Init Node
	Cond Node
	Step Node
	Body *Block
}

func (*ForStmt) astNode() {}

// Block is a lexical scope: local declarations followed by statements.
// Names declared here must be distinct within the block (§3.4).
type Block struct {
	Decls []*VarBinding
	Stmts []Node
}

func (*Block) astNode() {}

// VarBinding declares a new local name, with an optional initializer
// (defaulting to 0.0 when Init is nil, per §4.7).
type VarBinding struct {
	Name string
	Init Node // nil means "default to 0.0"
}

func (*VarBinding) astNode() {}

// Assignment stores the result of Expr into the existing binding named
// Name (local or global).
type Assignment struct {
	Name string
	Expr Node
}

func (*Assignment) astNode() {}

// GlobalVar declares a module-level mutable float, per §4.7.
type GlobalVar struct {
	Name string
}

func (*GlobalVar) astNode() {}

// Prototype declares a function's name and parameter names; every
// parameter and the return type are float (§4.8).
type Prototype struct {
	Name   string
	Params []string
}

func (*Prototype) astNode() {}

// Function defines Proto's body.
type Function struct {
	Proto *Prototype
	Body  Node
}

func (*Function) astNode() {}

// Seq is the top-level concatenation of declarations: First (a
// Prototype, Function, or GlobalVar, or a bare expression, which the
// codegen driver wraps in an anonymous nullary function) followed by
// Continuation (the rest of the spine, or nil at the end).
type Seq struct {
	First        Node
	Continuation Node
}

func (*Seq) astNode() {}
