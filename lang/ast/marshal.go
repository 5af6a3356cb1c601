package ast

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// ToMap converts n to plain maps and slices for data export. Every node map
// has a "node" key naming its variant and a "pos" key holding "line:col".
// Absent optional children are omitted.
func ToMap(n Node) map[string]any {
	if n == nil {
		return nil
	}

	m := map[string]any{"pos": n.Pos().String()}

	exprs := func(list []Expr) []any {
		out := make([]any, len(list))
		for i, e := range list {
			out[i] = ToMap(e)
		}

		return out
	}

	stmts := func(list []Stmt) []any {
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = ToMap(s)
		}

		return out
	}

	put := func(key string, c Node) {
		if c != nil {
			m[key] = ToMap(c)
		}
	}

	switch n := n.(type) {
	case *Literal:
		m["node"] = "Literal"
		m["kind"] = n.Kind.String()

		switch n.Kind {
		case LiteralInt:
			m["value"] = n.Int
		case LiteralFloat:
			m["value"] = n.Float
		case LiteralString:
			m["value"] = n.Str
		case LiteralBool:
			m["value"] = n.Bool
		case LiteralNil:
			m["value"] = nil
		}

	case *VariableReference:
		m["node"] = "VariableReference"
		m["name"] = n.Name

	case *Assignment:
		m["node"] = "Assignment"
		m["name"] = n.Name
		put("value", n.Value)

	case *BinaryOp:
		m["node"] = "BinaryOp"
		m["op"] = n.Op.String()
		put("left", n.Left)
		put("right", n.Right)

	case *UnaryOp:
		m["node"] = "UnaryOp"
		m["op"] = n.Op.Name()
		put("operand", n.Operand)

	case *Call:
		m["node"] = "Call"
		put("callee", n.Callee)
		m["args"] = exprs(n.Args)

	case *FunctionDefinition:
		m["node"] = "FunctionDefinition"
		m["name"] = n.Name
		m["params"] = append([]string{}, n.Params...)
		put("body", n.Body)

	case *VarDeclaration:
		m["node"] = "VarDeclaration"
		m["name"] = n.Name
		put("value", n.Value)

	case *ExpressionStatement:
		m["node"] = "ExpressionStatement"
		put("expr", n.X)

	case *If:
		m["node"] = "If"
		put("cond", n.Cond)
		put("then", n.Then)
		put("else", n.Else)

	case *While:
		m["node"] = "While"
		put("cond", n.Cond)
		put("body", n.Body)

	case *For:
		m["node"] = "For"
		put("init", n.Init)
		put("cond", n.Cond)
		put("update", n.Update)
		put("body", n.Body)

	case *Block:
		m["node"] = "Block"
		m["stmts"] = stmts(n.Stmts)

	case *Return:
		m["node"] = "Return"
		put("value", n.Value)

	case *Program:
		m["node"] = "Program"
		m["stmts"] = stmts(n.Stmts)
	}

	return m
}

// FormatJSON writes n as JSON. With indent > 0 the output is indented by
// that many spaces per level, otherwise it is compact.
func FormatJSON(w io.Writer, n Node, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(ToMap(n), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(ToMap(n))
	}

	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))

	return err
}

// FormatYAML writes n as YAML. With indent <= 0 the output uses flow style.
func FormatYAML(ctx context.Context, w io.Writer, n Node, indent int) error {
	opts := []yaml.EncodeOption{yaml.Indent(indent)}
	if indent <= 0 {
		opts = []yaml.EncodeOption{yaml.Flow(true)}
	}

	data, err := yaml.MarshalContext(ctx, ToMap(n), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}
