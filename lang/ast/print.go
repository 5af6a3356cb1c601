package ast

import (
	"io"
	"strconv"
	"strings"

	"github.com/ardnew/brewin/lang/token"
)

// Sprint renders n as a single-line S-expression. Positions are omitted, so
// two trees with equal Sprint output are structurally equal.
func Sprint(n Node) string {
	var sb strings.Builder

	p := printer{w: &sb}
	p.node(n, 0)

	return sb.String()
}

// Fprint writes n as an S-expression. With indent > 0 every statement starts
// on its own line, nested by indent spaces per level.
func Fprint(w io.Writer, n Node, indent int) error {
	var sb strings.Builder

	p := printer{w: &sb, indent: indent}
	p.node(n, 0)

	if indent > 0 {
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

type printer struct {
	w      *strings.Builder
	indent int
}

func (p *printer) open(head string) {
	p.w.WriteByte('(')
	p.w.WriteString(head)
}

func (p *printer) close() { p.w.WriteByte(')') }

// stmt separates a statement child from what precedes it.
func (p *printer) stmt(n Node, depth int) {
	if p.indent > 0 {
		p.w.WriteByte('\n')
		p.w.WriteString(strings.Repeat(" ", depth*p.indent))
	} else {
		p.w.WriteByte(' ')
	}

	p.node(n, depth)
}

// expr separates an expression child from what precedes it.
func (p *printer) expr(n Node, depth int) {
	p.w.WriteByte(' ')

	if n == nil {
		p.w.WriteByte('_')

		return
	}

	p.node(n, depth)
}

func (p *printer) node(n Node, depth int) {
	switch n := n.(type) {
	case nil:
		p.w.WriteByte('_')

	case *Literal:
		switch n.Kind {
		case LiteralNil:
			p.w.WriteString("nil")
		case LiteralBool:
			p.w.WriteString(strconv.FormatBool(n.Bool))
		default:
			p.open(n.Kind.String())
			p.w.WriteByte(' ')
			p.w.WriteString(literalText(n))
			p.close()
		}

	case *VariableReference:
		p.w.WriteString(n.Name)

	case *Assignment:
		p.open("assign " + n.Name)
		p.expr(n.Value, depth)
		p.close()

	case *BinaryOp:
		p.open(n.Op.Name())
		p.expr(n.Left, depth)
		p.expr(n.Right, depth)
		p.close()

	case *UnaryOp:
		p.open(n.Op.Name())
		p.expr(n.Operand, depth)
		p.close()

	case *Call:
		p.open("call")
		p.expr(n.Callee, depth)

		for _, a := range n.Args {
			p.expr(a, depth)
		}

		p.close()

	case *FunctionDefinition:
		p.open("func " + n.Name + " (" + strings.Join(n.Params, " ") + ")")
		p.stmt(n.Body, depth+1)
		p.close()

	case *VarDeclaration:
		p.open("var " + n.Name)

		if n.Value != nil {
			p.expr(n.Value, depth)
		}

		p.close()

	case *ExpressionStatement:
		p.open("expr")
		p.expr(n.X, depth)
		p.close()

	case *If:
		p.open("if")
		p.expr(n.Cond, depth)
		p.stmt(n.Then, depth+1)

		if n.Else != nil {
			p.stmt(n.Else, depth+1)
		}

		p.close()

	case *While:
		p.open("while")
		p.expr(n.Cond, depth)
		p.stmt(n.Body, depth+1)
		p.close()

	case *For:
		p.open("for")

		if n.Init != nil {
			p.w.WriteByte(' ')
			p.node(n.Init, depth)
		} else {
			p.w.WriteString(" _")
		}

		p.expr(n.Cond, depth)
		p.expr(n.Update, depth)
		p.stmt(n.Body, depth+1)
		p.close()

	case *Block:
		p.open("block")

		for _, s := range n.Stmts {
			p.stmt(s, depth+1)
		}

		p.close()

	case *Return:
		p.open("return")

		if n.Value != nil {
			p.expr(n.Value, depth)
		}

		p.close()

	case *Program:
		p.open("program")

		for _, s := range n.Stmts {
			p.stmt(s, depth+1)
		}

		p.close()
	}
}

// literalText renders the constant of a non-nil, non-bool literal the way
// the lexer would read it back.
func literalText(n *Literal) string {
	switch n.Kind {
	case LiteralInt:
		return strconv.FormatInt(n.Int, 10)
	case LiteralFloat:
		return FormatFloat(n.Float)
	case LiteralString:
		return token.Quote(n.Str)
	case LiteralBool:
		return strconv.FormatBool(n.Bool)
	default:
		return "nil"
	}
}

// FormatFloat renders f with the shortest exact decimal representation,
// always including a decimal point.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}

	return s
}
