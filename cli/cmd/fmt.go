package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/brewin/lang/ast"
	"github.com/ardnew/brewin/lang/lexer"
	"github.com/ardnew/brewin/lang/parser"
	"github.com/ardnew/brewin/log"
)

// Fmt reads a program, parses it, and formats it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical Brewin source (default)."`
	JSON   JSON   `cmd:""                    help:"Format syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Format syntax tree as YAML."`
	AST    AST    `cmd:""                    help:"Format syntax tree as S-expressions."`
	Tokens Tokens `cmd:""                    help:"List lexical tokens."`
}

// SourceArg is the program argument shared by the fmt subcommands.
type SourceArg struct {
	Source string `arg:"" default:"-" help:"Program file or '-' for stdin." name:"source"`
}

// parse reads and parses the program, reporting errors under format.
func (f SourceArg) parse(ctx context.Context, format string) (*ast.Program, error) {
	src, err := loadSource(ctx, f.Source, nil)
	if err != nil {
		return nil, err
	}

	prog, err := parser.Parse(ctx, src.Text,
		parser.WithLogger(log.With(slog.String("source", src.Name))))
	if err != nil {
		return nil, ErrFormat.
			With(slog.String("format", format)).
			Wrap(programError(src, err))
	}

	return prog, nil
}

// Native formats a program as canonical Brewin source.
type Native struct {
	Indent int `default:"2" help:"Indent width for formatted output" short:"i"`

	SourceArg
}

// Run executes the native command.
func (n *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := n.parse(ctx, "native")
	if err != nil {
		return err
	}

	return ast.Format(stdioFrom(ctx).Out, prog, n.Indent)
}

// JSON formats the syntax tree of a program as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output (0 for compact)" short:"i"`

	SourceArg
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := j.parse(ctx, "json")
	if err != nil {
		return err
	}

	return ast.FormatJSON(stdioFrom(ctx).Out, prog, j.Indent)
}

// YAML formats the syntax tree of a program as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)" short:"i"`

	SourceArg
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := y.parse(ctx, "yaml")
	if err != nil {
		return err
	}

	err = ast.FormatYAML(ctx, stdioFrom(ctx).Out, prog, y.Indent)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// AST formats the syntax tree of a program as S-expressions.
type AST struct {
	Indent int `default:"2" help:"Indent width for nested statements (0 for one line)" short:"i"`

	SourceArg
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := a.parse(ctx, "ast")
	if err != nil {
		return err
	}

	return ast.Fprint(stdioFrom(ctx).Out, prog, a.Indent)
}

// Tokens lists the lexical tokens of a program, one per line.
type Tokens struct {
	SourceArg
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := loadSource(ctx, t.Source, nil)
	if err != nil {
		return err
	}

	out := stdioFrom(ctx).Out

	for tok, err := range lexer.Tokens(src.Text, lexer.WithContext(ctx)) {
		if err != nil {
			return ErrFormat.
				With(slog.String("format", "tokens")).
				Wrap(programError(src, err))
		}

		_, err = fmt.Fprintf(out, "%s\t%s\t%s\n", tok.Pos, tok.Kind, tok.Text)
		if err != nil {
			return err
		}
	}

	return nil
}
