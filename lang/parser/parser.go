// Package parser builds a Brewin syntax tree from source text.
//
// The parser is recursive descent with one token of lookahead. Expressions
// are parsed by precedence climbing over the levels declared in package ast:
// assignment (right-associative), ||, &&, equality, relational, additive,
// multiplicative, unary, call and primary. Every other binary operator is
// left-associative.
package parser

import (
	"context"
	"iter"
	"log/slog"
	"strconv"

	"github.com/ardnew/brewin/lang/ast"
	"github.com/ardnew/brewin/lang/diag"
	"github.com/ardnew/brewin/lang/lexer"
	"github.com/ardnew/brewin/lang/token"
	"github.com/ardnew/brewin/log"
)

// DefaultMaxDepth bounds the nesting of statements and expressions.
const DefaultMaxDepth = 1000

// Option configures a parse.
type Option func(*parser)

// WithLogger traces parsing progress at [log.LevelTrace]. The logger is
// also handed to the lexer.
func WithLogger(logger log.Logger) Option {
	return func(p *parser) { p.logger = logger }
}

// WithMaxDepth sets the nesting limit. Values < 1 use [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(p *parser) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		p.maxDepth = depth
	}
}

// Parse parses a complete program.
// Lexical errors are reported as LexError, grammar errors as ParseError;
// no partial tree is returned with an error.
func Parse(ctx context.Context, src string, opts ...Option) (*ast.Program, error) {
	p := &parser{ctx: ctx, maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(p)
	}

	p.logger.TraceContext(ctx, "parse start", slog.Int("bytes", len(src)))

	next, stop := iter.Pull2(lexer.Tokens(src,
		lexer.WithLogger(p.logger),
		lexer.WithContext(ctx),
	))
	defer stop()

	p.next = next

	prog, err := p.parseProgram()
	if err != nil {
		p.logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	p.logger.TraceContext(ctx, "parse done", slog.Int("statements", len(prog.Stmts)))

	return prog, nil
}

// ParseExpr parses src as a single expression.
func ParseExpr(ctx context.Context, src string, opts ...Option) (ast.Expr, error) {
	p := &parser{ctx: ctx, maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(p)
	}

	next, stop := iter.Pull2(lexer.Tokens(src, lexer.WithContext(ctx)))
	defer stop()

	p.next = next

	if err := p.advance(); err != nil {
		return nil, err
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != token.EOF {
		return nil, p.unexpected("end of input")
	}

	return e, nil
}

type parser struct {
	ctx      context.Context
	logger   log.Logger
	next     func() (token.Token, error, bool)
	tok      token.Token // lookahead
	depth    int
	maxDepth int
}

// advance moves the lookahead to the next token.
func (p *parser) advance() error {
	tok, err, ok := p.next()
	if err != nil {
		return err
	}

	if !ok {
		// The lexer always ends with EOF; stay there.
		tok = token.Token{Kind: token.EOF, Pos: p.tok.Pos}
	}

	p.tok = tok

	return nil
}

// expect consumes the lookahead if it is the operator, punctuation or
// keyword text, otherwise it fails naming text as the expected construct.
func (p *parser) expect(text string) (token.Token, error) {
	tok := p.tok
	if !tok.Is(text) {
		return tok, p.unexpected("'" + text + "'")
	}

	return tok, p.advance()
}

// accept consumes the lookahead if it matches text.
func (p *parser) accept(text string) (bool, error) {
	if !p.tok.Is(text) {
		return false, nil
	}

	return true, p.advance()
}

func (p *parser) identifier(what string) (token.Token, error) {
	tok := p.tok
	if tok.Kind != token.Identifier {
		return tok, p.unexpected(what)
	}

	return tok, p.advance()
}

func (p *parser) unexpected(expected string) error {
	return diag.ErrParse.
		WithPosition(p.tok.Pos).
		Withf("expected %s, found %s", expected, p.tok).
		With(
			slog.String("expected", expected),
			slog.String("found", p.tok.Text),
		)
}

// enter guards recursion depth; leave must be deferred by the caller.
func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return diag.ErrParse.
			WithPosition(p.tok.Pos).
			Withf("maximum nesting depth %d exceeded", p.maxDepth)
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) parseProgram() (*ast.Program, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	prog := &ast.Program{At: token.Position{Offset: 0, Line: 1, Column: 1}}

	for p.tok.Kind != token.EOF {
		if p.tok.Is("}") {
			return nil, p.unexpected("statement")
		}

		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		if s != nil {
			prog.Stmts = append(prog.Stmts, s)
		}
	}

	return prog, nil
}

// parseStatement returns a nil Stmt for an empty statement.
func (p *parser) parseStatement() (ast.Stmt, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.tok

	if tok.Kind == token.Keyword {
		switch tok.Text {
		case "var":
			d, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}

			return d, p.terminator()

		case "func":
			return p.parseFunction()

		case "if":
			return p.parseIf()

		case "while":
			return p.parseWhile()

		case "for":
			return p.parseFor()

		case "return":
			return p.parseReturn()
		}
	}

	switch {
	case tok.Is("{"):
		return p.parseBlock()

	case tok.Is(";"):
		return nil, p.advance()
	}

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ast.ExpressionStatement{X: x}, p.terminator()
}

// terminator consumes the ';' ending a simple statement. It may be omitted
// before '}' or at end of input.
func (p *parser) terminator() error {
	if p.tok.Is("}") || p.tok.Kind == token.EOF {
		return nil
	}

	_, err := p.expect(";")

	return err
}

func (p *parser) parseVarDecl() (*ast.VarDeclaration, error) {
	kw := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	name, err := p.identifier("variable name")
	if err != nil {
		return nil, err
	}

	d := &ast.VarDeclaration{Name: name.Text, At: kw.Pos}

	ok, err := p.accept("=")
	if err != nil || !ok {
		return d, err
	}

	d.Value, err = p.parseExpr()

	return d, err
}

func (p *parser) parseFunction() (*ast.FunctionDefinition, error) {
	kw := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	name, err := p.identifier("function name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	fn := &ast.FunctionDefinition{Name: name.Text, Params: []string{}, At: kw.Pos}
	seen := make(map[string]bool)

	for !p.tok.Is(")") {
		if len(fn.Params) > 0 {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}

		param, err := p.identifier("parameter name")
		if err != nil {
			return nil, err
		}

		if seen[param.Text] {
			return nil, diag.ErrParse.
				WithPosition(param.Pos).
				Withf("duplicate parameter %s in function %s", param.Text, fn.Name).
				With(slog.String("function", fn.Name), slog.String("param", param.Text))
		}

		seen[param.Text] = true
		fn.Params = append(fn.Params, param.Text)
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	if !p.tok.Is("{") {
		return nil, p.unexpected("function body '{'")
	}

	fn.Body, err = p.parseBlock()
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(p.ctx, "function",
		slog.String("name", fn.Name),
		slog.Int("params", len(fn.Params)),
		slog.String("pos", fn.At.String()),
	)

	return fn, nil
}

func (p *parser) parseBlock() (*ast.Block, error) {
	open, err := p.expect("{")
	if err != nil {
		return nil, err
	}

	b := &ast.Block{Stmts: []ast.Stmt{}, At: open.Pos}

	for !p.tok.Is("}") {
		if p.tok.Kind == token.EOF {
			return nil, p.unexpected("'}'")
		}

		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		if s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}

	return b, p.advance()
}

// parseCondition parses a parenthesized expression.
func (p *parser) parseCondition() (ast.Expr, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	_, err = p.expect(")")

	return cond, err
}

// parseBody parses the statement controlled by if, else, while or for.
// An empty statement is not allowed there.
func (p *parser) parseBody() (ast.Stmt, error) {
	if p.tok.Is(";") || p.tok.Is("}") || p.tok.Kind == token.EOF {
		return nil, p.unexpected("statement")
	}

	return p.parseStatement()
}

func (p *parser) parseIf() (*ast.If, error) {
	kw := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	then, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	n := &ast.If{Cond: cond, Then: then, At: kw.Pos}

	// The innermost unfinished if claims the else.
	ok, err := p.accept("else")
	if err != nil || !ok {
		return n, err
	}

	n.Else, err = p.parseBody()

	return n, err
}

func (p *parser) parseWhile() (*ast.While, error) {
	kw := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	return &ast.While{Cond: cond, Body: body, At: kw.Pos}, nil
}

func (p *parser) parseFor() (*ast.For, error) {
	kw := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	n := &ast.For{At: kw.Pos}

	switch {
	case p.tok.Is(";"):
	case p.tok.Is("var"):
		d, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}

		n.Init = d
	default:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		n.Init = &ast.ExpressionStatement{X: x}
	}

	if _, err := p.expect(";"); err != nil {
		return nil, err
	}

	if !p.tok.Is(";") {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		n.Cond = cond
	}

	if _, err := p.expect(";"); err != nil {
		return nil, err
	}

	if !p.tok.Is(")") {
		update, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		n.Update = update
	}

	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	n.Body = body

	return n, nil
}

func (p *parser) parseReturn() (*ast.Return, error) {
	kw := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}

	n := &ast.Return{At: kw.Pos}

	if !p.tok.Is(";") && !p.tok.Is("}") && p.tok.Kind != token.EOF {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		n.Value = v
	}

	return n, p.terminator()
}

func (p *parser) parseExpr() (ast.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	return p.parseAssignment()
}

// parseAssignment handles the right-associative assignment level. The left
// side is parsed as an ordinary expression and must turn out to be a plain
// name, not wrapped in parentheses.
func (p *parser) parseAssignment() (ast.Expr, error) {
	start := p.tok

	left, err := p.parseBinary(ast.PrecOr)
	if err != nil {
		return nil, err
	}

	if !p.tok.Is("=") {
		return left, nil
	}

	eq := p.tok

	target, ok := left.(*ast.VariableReference)
	if !ok || start.Kind != token.Identifier {
		return nil, diag.ErrParse.
			WithPosition(eq.Pos).
			Withf("invalid assignment target").
			With(slog.String("expected", "identifier"))
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ast.Assignment{Name: target.Name, Value: value, At: target.At}, nil
}

// parseBinary parses left-associative operators of precedence prec or
// higher.
func (p *parser) parseBinary(prec int) (ast.Expr, error) {
	if prec > ast.PrecMultiplicative {
		return p.parseUnary()
	}

	left, err := p.parseBinary(prec + 1)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.binaryOp()
		if !ok || op.Precedence() != prec {
			return left, nil
		}

		at := p.tok.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}

		left = &ast.BinaryOp{Op: op, Left: left, Right: right, At: at}
	}
}

func (p *parser) binaryOp() (ast.Op, bool) {
	if p.tok.Kind != token.Operator {
		return ast.OpInvalid, false
	}

	return ast.BinaryOpFor(p.tok.Text)
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.tok.Kind == token.Operator {
		if op, ok := ast.UnaryOpFor(p.tok.Text); ok {
			if err := p.enter(); err != nil {
				return nil, err
			}
			defer p.leave()

			at := p.tok.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}

			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}

			return &ast.UnaryOp{Op: op, Operand: operand, At: at}, nil
		}
	}

	return p.parseCall()
}

func (p *parser) parseCall() (ast.Expr, error) {
	callee, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.tok.Is("(") {
		open := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}

		call := &ast.Call{Callee: callee, Args: []ast.Expr{}, At: open.Pos}

		for !p.tok.Is(")") {
			if len(call.Args) > 0 {
				if _, err := p.expect(","); err != nil {
					return nil, err
				}
			}

			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			call.Args = append(call.Args, arg)
		}

		if err := p.advance(); err != nil {
			return nil, err
		}

		callee = call
	}

	return callee, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.tok

	switch tok.Kind {
	case token.Integer:
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, diag.ErrParse.WithPosition(tok.Pos).Wrap(err)
		}

		return &ast.Literal{Kind: ast.LiteralInt, Int: v, At: tok.Pos}, p.advance()

	case token.Float:
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, diag.ErrParse.WithPosition(tok.Pos).Wrap(err)
		}

		return &ast.Literal{Kind: ast.LiteralFloat, Float: v, At: tok.Pos}, p.advance()

	case token.String:
		s, err := token.Unquote(tok.Text)
		if err != nil {
			return nil, diag.ErrParse.WithPosition(tok.Pos).Wrap(err)
		}

		return &ast.Literal{Kind: ast.LiteralString, Str: s, At: tok.Pos}, p.advance()

	case token.Identifier:
		return &ast.VariableReference{Name: tok.Text, At: tok.Pos}, p.advance()

	case token.Keyword:
		switch tok.Text {
		case "true", "false":
			return &ast.Literal{Kind: ast.LiteralBool, Bool: tok.Text == "true", At: tok.Pos}, p.advance()
		case "nil":
			return &ast.Literal{Kind: ast.LiteralNil, At: tok.Pos}, p.advance()
		}

	case token.Punctuation:
		if tok.Is("(") {
			if err := p.advance(); err != nil {
				return nil, err
			}

			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			_, err = p.expect(")")

			return e, err
		}
	}

	return nil, p.unexpected("expression")
}
