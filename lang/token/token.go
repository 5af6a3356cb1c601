// Package token defines the lexical tokens of the Brewin language and the
// source positions attached to them.
package token

import (
	"iter"
	"slices"
	"strconv"
)

// Position identifies a location in source text.
// Line and Column are 1-based; Column counts runes, not bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// IsValid reports whether the position refers to an actual source location.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}

	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Identifier
	Keyword
	Integer
	Float
	String
	Operator
	Punctuation
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case Integer:
		return "integer literal"
	case Float:
		return "float literal"
	case String:
		return "string literal"
	case Operator:
		return "operator"
	case Punctuation:
		return "punctuation"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Token is a classified lexeme. Text holds the raw source text, so a string
// literal keeps its surrounding quotes and escapes.
type Token struct {
	Text string
	Kind Kind
	Pos  Position
}

// Is reports whether t is an operator, punctuation, or keyword token whose
// text is exactly text.
func (t Token) Is(text string) bool {
	switch t.Kind {
	case Operator, Punctuation, Keyword:
		return t.Text == text
	default:
		return false
	}
}

// String describes the token for diagnostics.
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return t.Kind.String()
	case Identifier, Integer, Float, String:
		return t.Kind.String() + " " + t.Text
	default:
		return "'" + t.Text + "'"
	}
}

var keywords = []string{
	"else",
	"false",
	"for",
	"func",
	"if",
	"nil",
	"return",
	"true",
	"var",
	"while",
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool {
	_, found := slices.BinarySearch(keywords, s)

	return found
}

// Keywords returns an iterator over the reserved words in sorted order.
func Keywords() iter.Seq[string] { return slices.Values(keywords) }
