package repl

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/brewin/lang"
	"github.com/ardnew/brewin/lang/runtime"
)

// Signature hint styles.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // callee identifier
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// the argument list of a call to a named function. Parentheses inside string
// literals are ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Track the innermost open paren and the commas seen at its depth.
	var (
		opens  []int
		commas []int
		quoted bool
		escape bool
	)

	for i, r := range input[:cursor] {
		switch {
		case escape:
			escape = false
		case quoted:
			switch r {
			case '\\':
				escape = true
			case '"':
				quoted = false
			}
		case r == '"':
			quoted = true
		case r == '(':
			opens = append(opens, i)
			commas = append(commas, 0)
		case r == ')':
			if n := len(opens); n > 0 {
				opens, commas = opens[:n-1], commas[:n-1]
			}
		case r == ',':
			if n := len(commas); n > 0 {
				commas[n-1]++
			}
		}
	}

	if len(opens) == 0 {
		return functionCall{inCall: false}
	}

	open := opens[len(opens)-1]

	// Walk backward over the callee identifier, skipping blanks before the
	// paren.
	nameEnd := len(strings.TrimRight(input[:open], " \t"))
	nameStart := nameEnd

	for nameStart > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:nameStart])
		if !isIdentRune(r) {
			break
		}

		nameStart -= size
	}

	name := input[nameStart:nameEnd]
	if name == "" {
		return functionCall{inCall: false}
	}

	if first, _ := utf8.DecodeRuneInString(name); first >= '0' && first <= '9' {
		return functionCall{inCall: false}
	}

	return functionCall{
		name:     name,
		argIndex: commas[len(commas)-1],
		inCall:   true,
	}
}

// getSignature returns the signature of the function bound to name in the
// session and its parameter names. Returns an empty signature if name is not
// bound to a function.
func getSignature(
	sess *lang.Session,
	name string,
) (signature string, params []string) {
	v, ok := sess.Lookup(name)
	if !ok {
		return "", nil
	}

	fn, ok := v.(*runtime.Function)
	if !ok {
		return "", nil
	}

	params = paramNames(fn)

	return name + "(" + strings.Join(params, ", ") + ")", params
}

// signatureOf formats the signature of fn as bound to name.
func signatureOf(name string, fn *runtime.Function) string {
	return name + "(" + strings.Join(paramNames(fn), ", ") + ")"
}

// paramNames returns the parameter names of a closure, or placeholders
// describing the accepted argument counts of a builtin: "[argN]" for an
// optional argument and "...args" for any number of them.
func paramNames(fn *runtime.Function) []string {
	if !fn.IsNative() {
		return append([]string(nil), fn.Def.Params...)
	}

	params := make([]string, 0, fn.MinArgs+1)

	for i := range fn.MinArgs {
		params = append(params, "arg"+strconv.Itoa(i+1))
	}

	switch {
	case fn.MaxArgs < 0:
		params = append(params, "...args")

	default:
		for i := fn.MinArgs; i < fn.MaxArgs; i++ {
			params = append(params, "[arg"+strconv.Itoa(i+1)+"]")
		}
	}

	return params
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	// Parse signature: "funcName(param1, param2, ...)"
	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:openParen]

	// If no parameters, just render the signature
	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	// Build the signature with highlighted current parameter
	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		// A variadic parameter stays highlighted for every later argument.
		isVariadic := strings.HasPrefix(param, "...")

		if (isVariadic && currentArgIdx >= i) ||
			(!isVariadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
