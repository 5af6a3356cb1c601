package ast

import (
	"io"
	"strings"
)

// Format writes n as canonical Brewin source. Nested statements are
// indented by indent spaces per level; indent <= 0 uses a tab. Parsing the
// output yields a tree equal to n under [Sprint].
func Format(w io.Writer, n Node, indent int) error {
	unit := "\t"
	if indent > 0 {
		unit = strings.Repeat(" ", indent)
	}

	f := formatter{unit: unit}

	switch n := n.(type) {
	case *Program:
		for _, s := range n.Stmts {
			f.stmt(s, 0)
		}
	case Stmt:
		f.stmt(n, 0)
	case Expr:
		f.expr(n, PrecLowest)
		f.sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, f.sb.String())

	return err
}

// FormatString returns the canonical source of n.
func FormatString(n Node) string {
	var sb strings.Builder

	_ = Format(&sb, n, 0)

	return sb.String()
}

type formatter struct {
	sb   strings.Builder
	unit string
}

func (f *formatter) line(depth int) {
	f.sb.WriteString(strings.Repeat(f.unit, depth))
}

func (f *formatter) stmt(s Stmt, depth int) {
	f.line(depth)
	f.inline(s, depth)
	f.sb.WriteByte('\n')
}

// body writes a statement that follows a header like "while (c)" on the
// same line. Blocks open on the header line; anything else is indented on
// the next line.
func (f *formatter) body(s Stmt, depth int) {
	if b, ok := s.(*Block); ok {
		f.sb.WriteByte(' ')
		f.block(b, depth)

		return
	}

	f.sb.WriteByte('\n')
	f.line(depth + 1)
	f.inline(s, depth+1)
}

func (f *formatter) block(b *Block, depth int) {
	if len(b.Stmts) == 0 {
		f.sb.WriteString("{}")

		return
	}

	f.sb.WriteString("{\n")

	for _, s := range b.Stmts {
		f.stmt(s, depth+1)
	}

	f.line(depth)
	f.sb.WriteByte('}')
}

// inline writes s without leading indentation or trailing newline.
func (f *formatter) inline(s Stmt, depth int) {
	switch s := s.(type) {
	case *VarDeclaration:
		f.varDecl(s)
		f.sb.WriteByte(';')

	case *ExpressionStatement:
		f.expr(s.X, PrecLowest)
		f.sb.WriteByte(';')

	case *Return:
		f.sb.WriteString("return")

		if s.Value != nil {
			f.sb.WriteByte(' ')
			f.expr(s.Value, PrecLowest)
		}

		f.sb.WriteByte(';')

	case *FunctionDefinition:
		f.sb.WriteString("func ")
		f.sb.WriteString(s.Name)
		f.sb.WriteByte('(')
		f.sb.WriteString(strings.Join(s.Params, ", "))
		f.sb.WriteString(") ")
		f.block(s.Body, depth)

	case *Block:
		f.block(s, depth)

	case *If:
		f.sb.WriteString("if (")
		f.expr(s.Cond, PrecLowest)
		f.sb.WriteByte(')')

		then := s.Then
		// A bare if as the then-branch of an if with else would capture the
		// else when read back.
		if inner, ok := then.(*If); ok && s.Else != nil && inner.Else == nil {
			then = &Block{Stmts: []Stmt{inner}, At: inner.At}
		}

		f.body(then, depth)

		if s.Else != nil {
			if _, ok := then.(*Block); ok {
				f.sb.WriteByte(' ')
			} else {
				f.sb.WriteByte('\n')
				f.line(depth)
			}

			f.sb.WriteString("else")

			if elif, ok := s.Else.(*If); ok {
				f.sb.WriteByte(' ')
				f.inline(elif, depth)
			} else {
				f.body(s.Else, depth)
			}
		}

	case *While:
		f.sb.WriteString("while (")
		f.expr(s.Cond, PrecLowest)
		f.sb.WriteByte(')')
		f.body(s.Body, depth)

	case *For:
		f.sb.WriteString("for (")

		switch init := s.Init.(type) {
		case *VarDeclaration:
			f.varDecl(init)
		case *ExpressionStatement:
			f.expr(init.X, PrecLowest)
		}

		f.sb.WriteString("; ")

		if s.Cond != nil {
			f.expr(s.Cond, PrecLowest)
		}

		f.sb.WriteString("; ")

		if s.Update != nil {
			f.expr(s.Update, PrecLowest)
		}

		f.sb.WriteByte(')')
		f.body(s.Body, depth)
	}
}

func (f *formatter) varDecl(d *VarDeclaration) {
	f.sb.WriteString("var ")
	f.sb.WriteString(d.Name)

	if d.Value != nil {
		f.sb.WriteString(" = ")
		f.expr(d.Value, PrecAssign)
	}
}

// expr writes e, parenthesized if it binds looser than the surrounding
// context requires.
func (f *formatter) expr(e Expr, floor int) {
	prec := exprPrec(e)

	if prec < floor {
		f.sb.WriteByte('(')
		defer f.sb.WriteByte(')')
	}

	switch e := e.(type) {
	case *Literal:
		f.sb.WriteString(literalText(e))

	case *VariableReference:
		f.sb.WriteString(e.Name)

	case *Assignment:
		f.sb.WriteString(e.Name)
		f.sb.WriteString(" = ")
		f.expr(e.Value, PrecAssign)

	case *BinaryOp:
		// Left-associative: an equal-precedence operator on the right needs
		// parentheses, one on the left does not.
		f.expr(e.Left, prec)
		f.sb.WriteByte(' ')
		f.sb.WriteString(e.Op.String())
		f.sb.WriteByte(' ')
		f.expr(e.Right, prec+1)

	case *UnaryOp:
		f.sb.WriteString(e.Op.String())
		f.expr(e.Operand, PrecUnary)

	case *Call:
		f.expr(e.Callee, PrecCall)
		f.sb.WriteByte('(')

		for i, a := range e.Args {
			if i > 0 {
				f.sb.WriteString(", ")
			}

			f.expr(a, PrecAssign)
		}

		f.sb.WriteByte(')')
	}
}

func exprPrec(e Expr) int {
	switch e := e.(type) {
	case *Assignment:
		return PrecAssign
	case *BinaryOp:
		return e.Op.Precedence()
	case *UnaryOp:
		return PrecUnary
	default:
		return PrecCall
	}
}
