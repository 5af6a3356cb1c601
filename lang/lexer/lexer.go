// Package lexer converts Brewin source text into tokens.
//
// The token stream is lazy: [Tokens] returns an iterator that scans the
// source as it is consumed. Ranging over the iterator again rescans from the
// start; a single pass cannot be rewound.
package lexer

import (
	"context"
	"iter"
	"log/slog"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/brewin/lang/diag"
	"github.com/ardnew/brewin/lang/token"
	"github.com/ardnew/brewin/log"
)

// Option configures a scan.
type Option func(*lexer)

// WithLogger traces every produced token at [log.LevelTrace].
func WithLogger(logger log.Logger) Option {
	return func(l *lexer) { l.logger = logger }
}

// WithContext sets the context passed to the logger.
func WithContext(ctx context.Context) Option {
	return func(l *lexer) { l.ctx = ctx }
}

// Tokens returns the token sequence of src. The sequence always ends with a
// [token.EOF] token unless scanning fails, in which case the final element
// is a zero token paired with a LexError.
func Tokens(src string, opts ...Option) iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		l := newLexer(src, opts...)

		for {
			tok, err := l.next()
			if err != nil {
				yield(token.Token{}, err)

				return
			}

			if l.logger.Enabled(l.ctx, log.LevelTrace) {
				l.logger.TraceContext(l.ctx, "token",
					slog.String("kind", tok.Kind.String()),
					slog.String("text", tok.Text),
					slog.String("pos", tok.Pos.String()),
				)
			}

			if !yield(tok, nil) || tok.Kind == token.EOF {
				return
			}
		}
	}
}

// All scans src completely and returns every token including the final
// [token.EOF].
func All(src string, opts ...Option) ([]token.Token, error) {
	var toks []token.Token

	for tok, err := range Tokens(src, opts...) {
		if err != nil {
			return toks, err
		}

		toks = append(toks, tok)
	}

	return toks, nil
}

type lexer struct {
	ctx    context.Context
	logger log.Logger
	src    string
	pos    int
	line   int
	col    int
}

func newLexer(src string, opts ...Option) *lexer {
	l := &lexer{ctx: context.Background(), src: src, line: 1, col: 1}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *lexer) position() token.Position {
	return token.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *lexer) eof() bool { return l.pos >= len(l.src) }

// peek returns the rune at the current position without consuming it.
func (l *lexer) peek() rune {
	return l.peekN(0)
}

// peekN returns the rune n runes ahead of the current position.
func (l *lexer) peekN(n int) rune {
	p := l.pos
	for ; n > 0 && p < len(l.src); n-- {
		_, size := utf8.DecodeRuneInString(l.src[p:])
		p += size
	}

	if p >= len(l.src) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.src[p:])

	return r
}

// advance consumes one rune, tracking line and column.
func (l *lexer) advance() rune {
	if l.eof() {
		return 0
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

// invalid reports whether the bytes at the current position are not a valid
// UTF-8 encoding. An encoded U+FFFD is valid.
func (l *lexer) invalid() bool {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])

	return r == utf8.RuneError && size == 1
}

func (l *lexer) errorf(pos token.Position, format string, args ...any) error {
	return diag.ErrLex.WithPosition(pos).Withf(format, args...)
}

func (l *lexer) next() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}

	start := l.position()

	if l.eof() {
		return token.Token{Kind: token.EOF, Pos: start}, nil
	}

	r := l.peek()

	switch {
	case isIdentStart(r):
		return l.scanIdentifier(start), nil
	case isDigit(r):
		return l.scanNumber(start)
	case r == '"':
		return l.scanString(start)
	}

	if text, ok := matchOperator(l.src[l.pos:]); ok {
		for range text {
			l.advance()
		}

		return token.Token{Kind: token.Operator, Text: text, Pos: start}, nil
	}

	if isPunctuation(r) {
		l.advance()

		return token.Token{Kind: token.Punctuation, Text: string(r), Pos: start}, nil
	}

	if l.invalid() {
		return token.Token{}, l.errorf(start, "invalid UTF-8 encoding")
	}

	return token.Token{}, l.errorf(start, "unexpected character %s", strconv.QuoteRune(r))
}

// skipWhitespaceAndComments skips whitespace, line comments (// and #) and
// block comments (/* */).
func (l *lexer) skipWhitespaceAndComments() error {
	for !l.eof() {
		r := l.peek()

		switch {
		case unicode.IsSpace(r):
			l.advance()

		case r == '#' || (r == '/' && l.peekN(1) == '/'):
			for !l.eof() && l.peek() != '\n' {
				if l.invalid() {
					return l.errorf(l.position(), "invalid UTF-8 encoding")
				}

				l.advance()
			}

		case r == '/' && l.peekN(1) == '*':
			start := l.position()

			l.advance()
			l.advance()

			for {
				if l.eof() {
					return l.errorf(start, "unterminated block comment")
				}

				if l.peek() == '*' && l.peekN(1) == '/' {
					l.advance()
					l.advance()

					break
				}

				if l.invalid() {
					return l.errorf(l.position(), "invalid UTF-8 encoding")
				}

				l.advance()
			}

		default:
			return nil
		}
	}

	return nil
}

func (l *lexer) scanIdentifier(start token.Position) token.Token {
	for !l.eof() && isIdentPart(l.peek()) {
		l.advance()
	}

	text := l.src[start.Offset:l.pos]

	kind := token.Identifier
	if token.IsKeyword(text) {
		kind = token.Keyword
	}

	return token.Token{Kind: kind, Text: text, Pos: start}
}

func (l *lexer) scanNumber(start token.Position) (token.Token, error) {
	for isDigit(l.peek()) {
		l.advance()
	}

	kind := token.Integer

	if l.peek() == '.' && isDigit(l.peekN(1)) {
		kind = token.Float

		l.advance()

		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if isIdentStart(l.peek()) {
		return token.Token{}, l.errorf(start, "malformed number %q",
			l.src[start.Offset:l.pos]+string(l.peek()))
	}

	text := l.src[start.Offset:l.pos]

	var err error
	if kind == token.Integer {
		_, err = strconv.ParseInt(text, 10, 64)
	} else {
		_, err = strconv.ParseFloat(text, 64)
	}

	if err != nil {
		return token.Token{}, l.errorf(start, "number %s out of range", text)
	}

	return token.Token{Kind: kind, Text: text, Pos: start}, nil
}

func (l *lexer) scanString(start token.Position) (token.Token, error) {
	l.advance() // opening quote

	for {
		if l.eof() {
			return token.Token{}, l.errorf(start, "unterminated string literal")
		}

		at := l.position()

		if l.invalid() {
			return token.Token{}, l.errorf(at, "invalid UTF-8 encoding")
		}

		switch r := l.advance(); r {
		case '"':
			return token.Token{
				Kind: token.String,
				Text: l.src[start.Offset:l.pos],
				Pos:  start,
			}, nil

		case '\n':
			return token.Token{}, l.errorf(start, "unterminated string literal")

		case '\\':
			if l.eof() {
				return token.Token{}, l.errorf(start, "unterminated string literal")
			}

			c := l.advance()
			if c >= utf8.RuneSelf {
				return token.Token{}, l.errorf(at, "invalid escape sequence %q", `\`+string(c))
			}

			if _, ok := token.Escape(byte(c)); !ok {
				return token.Token{}, l.errorf(at, "invalid escape sequence %q", `\`+string(c))
			}
		}
	}
}

// operators in longest-match order.
var operators = []string{
	"==", "!=", "<=", ">=", "&&", "||",
	"=", "<", ">", "+", "-", "*", "/", "%", "!",
}

func matchOperator(s string) (string, bool) {
	for _, op := range operators {
		if len(s) >= len(op) && s[:len(op)] == op {
			return op, true
		}
	}

	return "", false
}

func isPunctuation(r rune) bool {
	switch r {
	case '(', ')', '{', '}', ',', ';':
		return true
	default:
		return false
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
