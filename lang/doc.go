// Package lang runs programs written in Brewin, a small dynamically typed
// language with lexically scoped closures.
//
// # Language
//
//	// Comments start with // or #, or are enclosed in /* */.
//	var x = 3;
//	func add(a, b) { return a + b; }
//
//	if (x < 4) {
//	  x = add(x, 4);
//	} else {
//	  x = 0;
//	}
//
//	for (var i = 0; i < x; i = i + 1) print("i = ", i);
//	while (x > 0) x = x - 2;
//	return x;
//
// Values are Integer (64-bit, wrapping), Float, Boolean, String, nil and
// functions. Functions are first class and capture the scope they are
// defined in. Conditions must be Boolean; there is no implicit conversion
// between kinds except that Integer operands are promoted to Float when
// mixed with one. Integer division and modulo round toward negative
// infinity.
//
// The builtins are print, inputs, inputi, len and str. They live in a scope
// enclosing the program, together with any host globals, so a program may
// shadow them.
//
// # Running programs
//
// [Run] and [RunReader] evaluate a whole program in a fresh environment.
// A [Session] keeps one environment across inputs for interactive use.
// [Define] turns name=expression strings into host globals, and [Cache]
// shares parsed programs between runs.
//
// Errors from the language itself are *diag.Error values carrying a kind
// (LexError, ParseError, or one of the RuntimeError subkinds) and the
// source position; see package diag.
//
// The lexer, parser and evaluator live in the subpackages token, lexer, ast,
// parser, runtime and eval, and may be used directly.
package lang
