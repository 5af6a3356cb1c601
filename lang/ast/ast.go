// Package ast declares the syntax tree of a Brewin program.
//
// The node set is closed: [Node], [Expr] and [Stmt] are sealed by
// unexported methods, and every consumer switches exhaustively over the
// concrete pointer types declared here. Each node owns its children; the
// tree never shares subtrees.
package ast

import (
	"iter"

	"github.com/ardnew/brewin/lang/token"
)

// Node is any syntax tree node.
type Node interface {
	Pos() token.Position
	node()
}

// Expr is a node that produces a value.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a node executed for its effect.
type Stmt interface {
	Node
	stmtNode()
}

// LiteralKind identifies the constant held by a [Literal].
type LiteralKind int

const (
	LiteralNil LiteralKind = iota
	LiteralInt
	LiteralFloat
	LiteralString
	LiteralBool
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralInt:
		return "int"
	case LiteralFloat:
		return "float"
	case LiteralString:
		return "string"
	case LiteralBool:
		return "bool"
	default:
		return "nil"
	}
}

type (
	// Literal is a constant. Only the field selected by Kind is meaningful.
	Literal struct {
		Str   string
		Int   int64
		Float float64
		At    token.Position
		Kind  LiteralKind
		Bool  bool
	}

	// VariableReference reads a name.
	VariableReference struct {
		Name string
		At   token.Position
	}

	// Assignment rebinds an existing name and yields the assigned value.
	Assignment struct {
		Value Expr
		Name  string
		At    token.Position
	}

	// BinaryOp applies an infix operator.
	BinaryOp struct {
		Left  Expr
		Right Expr
		At    token.Position
		Op    Op
	}

	// UnaryOp applies a prefix operator.
	UnaryOp struct {
		Operand Expr
		At      token.Position
		Op      Op
	}

	// Call invokes the value of Callee with Args.
	Call struct {
		Callee Expr
		Args   []Expr
		At     token.Position
	}
)

type (
	// FunctionDefinition binds a named function in the enclosing scope.
	FunctionDefinition struct {
		Body   *Block
		Name   string
		Params []string
		At     token.Position
	}

	// VarDeclaration introduces a name in the innermost scope. A nil Value
	// initializes the name to nil.
	VarDeclaration struct {
		Value Expr
		Name  string
		At    token.Position
	}

	// ExpressionStatement evaluates an expression for its effect.
	ExpressionStatement struct {
		X Expr
	}

	// If executes Then or Else depending on Cond. Else may be nil.
	If struct {
		Cond Expr
		Then Stmt
		Else Stmt
		At   token.Position
	}

	// While repeats Body while Cond is true.
	While struct {
		Cond Expr
		Body Stmt
		At   token.Position
	}

	// For is init; while (cond) { body; update }. Init, Cond and Update may
	// be nil; a nil Cond is always true.
	For struct {
		Init   Stmt
		Cond   Expr
		Update Expr
		Body   Stmt
		At     token.Position
	}

	// Block is a braced statement list with its own scope.
	Block struct {
		Stmts []Stmt
		At    token.Position
	}

	// Return leaves the current function. A nil Value returns nil.
	Return struct {
		Value Expr
		At    token.Position
	}

	// Program is the root of a parsed source file.
	Program struct {
		Stmts []Stmt
		At    token.Position
	}
)

func (n *Literal) Pos() token.Position             { return n.At }
func (n *VariableReference) Pos() token.Position   { return n.At }
func (n *Assignment) Pos() token.Position          { return n.At }
func (n *BinaryOp) Pos() token.Position            { return n.At }
func (n *UnaryOp) Pos() token.Position             { return n.At }
func (n *Call) Pos() token.Position                { return n.At }
func (n *FunctionDefinition) Pos() token.Position  { return n.At }
func (n *VarDeclaration) Pos() token.Position      { return n.At }
func (n *ExpressionStatement) Pos() token.Position { return n.X.Pos() }
func (n *If) Pos() token.Position                  { return n.At }
func (n *While) Pos() token.Position               { return n.At }
func (n *For) Pos() token.Position                 { return n.At }
func (n *Block) Pos() token.Position               { return n.At }
func (n *Return) Pos() token.Position              { return n.At }
func (n *Program) Pos() token.Position             { return n.At }

func (*Literal) node()             {}
func (*VariableReference) node()   {}
func (*Assignment) node()          {}
func (*BinaryOp) node()            {}
func (*UnaryOp) node()             {}
func (*Call) node()                {}
func (*FunctionDefinition) node()  {}
func (*VarDeclaration) node()      {}
func (*ExpressionStatement) node() {}
func (*If) node()                  {}
func (*While) node()               {}
func (*For) node()                 {}
func (*Block) node()               {}
func (*Return) node()              {}
func (*Program) node()             {}

func (*Literal) exprNode()           {}
func (*VariableReference) exprNode() {}
func (*Assignment) exprNode()        {}
func (*BinaryOp) exprNode()          {}
func (*UnaryOp) exprNode()           {}
func (*Call) exprNode()              {}

func (*FunctionDefinition) stmtNode()  {}
func (*VarDeclaration) stmtNode()      {}
func (*ExpressionStatement) stmtNode() {}
func (*If) stmtNode()                  {}
func (*While) stmtNode()               {}
func (*For) stmtNode()                 {}
func (*Block) stmtNode()               {}
func (*Return) stmtNode()              {}

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var out []Node

	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}

	switch n := n.(type) {
	case *Literal, *VariableReference:
	case *Assignment:
		add(n.Value)
	case *BinaryOp:
		add(n.Left)
		add(n.Right)
	case *UnaryOp:
		add(n.Operand)
	case *Call:
		add(n.Callee)

		for _, a := range n.Args {
			add(a)
		}
	case *FunctionDefinition:
		add(n.Body)
	case *VarDeclaration:
		add(n.Value)
	case *ExpressionStatement:
		add(n.X)
	case *If:
		add(n.Cond)
		add(n.Then)
		add(n.Else)
	case *While:
		add(n.Cond)
		add(n.Body)
	case *For:
		add(n.Init)
		add(n.Cond)
		add(n.Update)
		add(n.Body)
	case *Block:
		for _, s := range n.Stmts {
			add(s)
		}
	case *Program:
		for _, s := range n.Stmts {
			add(s)
		}
	}

	return out
}

// Walk returns a pre-order traversal of the tree rooted at n.
func Walk(n Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(n, yield)
	}
}

func walk(n Node, yield func(Node) bool) bool {
	if !yield(n) {
		return false
	}

	for _, c := range Children(n) {
		if !walk(c, yield) {
			return false
		}
	}

	return true
}
