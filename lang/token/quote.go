package token

import (
	"errors"
	"strings"
)

// ErrEscape is returned by [Unquote] for an unknown escape sequence.
var ErrEscape = errors.New("invalid escape sequence")

// ErrQuote is returned by [Unquote] when raw is not a quoted literal.
var ErrQuote = errors.New("string literal must be double-quoted")

var escapes = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'\\': '\\',
	'"':  '"',
}

// Escape returns the decoded byte for the escape sequence \c.
func Escape(c byte) (byte, bool) {
	b, ok := escapes[c]

	return b, ok
}

// Unquote decodes the raw text of a string literal token.
func Unquote(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", ErrQuote
	}

	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var sb strings.Builder

	sb.Grow(len(body))

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)

			continue
		}

		i++
		if i >= len(body) {
			return "", ErrEscape
		}

		b, ok := Escape(body[i])
		if !ok {
			return "", ErrEscape
		}

		sb.WriteByte(b)
	}

	return sb.String(), nil
}

// Quote returns s as a string literal using the escapes [Unquote] accepts.
func Quote(s string) string {
	var sb strings.Builder

	sb.Grow(len(s) + 2)
	sb.WriteByte('"')

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}
