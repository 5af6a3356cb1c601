package ast

import "strconv"

// Op is a unary or binary operator.
type Op int

const (
	OpInvalid Op = iota

	OpAdd // +
	OpSub // -
	OpMul // *
	OpDiv // /
	OpMod // %

	OpEq // ==
	OpNe // !=
	OpLt // <
	OpLe // <=
	OpGt // >
	OpGe // >=

	OpAnd // &&
	OpOr  // ||

	OpNot // !
	OpNeg // unary -
)

var opText = [...]string{
	OpInvalid: "?",
	OpAdd:     "+",
	OpSub:     "-",
	OpMul:     "*",
	OpDiv:     "/",
	OpMod:     "%",
	OpEq:      "==",
	OpNe:      "!=",
	OpLt:      "<",
	OpLe:      "<=",
	OpGt:      ">",
	OpGe:      ">=",
	OpAnd:     "&&",
	OpOr:      "||",
	OpNot:     "!",
	OpNeg:     "-",
}

// String returns the source spelling of op.
func (op Op) String() string {
	if op < 0 || int(op) >= len(opText) {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}

	return opText[op]
}

// Name returns a spelling that distinguishes unary from binary minus.
func (op Op) Name() string {
	if op == OpNeg {
		return "neg"
	}

	return op.String()
}

// Precedence of binary operators, lowest first. Assignment binds loosest of
// all but is not an Op.
const (
	PrecLowest = iota
	PrecAssign
	PrecOr
	PrecAnd
	PrecEquality
	PrecRelational
	PrecAdditive
	PrecMultiplicative
	PrecUnary
	PrecCall
)

// Precedence returns the binding strength of a binary operator, or
// PrecLowest for anything else.
func (op Op) Precedence() int {
	switch op {
	case OpOr:
		return PrecOr
	case OpAnd:
		return PrecAnd
	case OpEq, OpNe:
		return PrecEquality
	case OpLt, OpLe, OpGt, OpGe:
		return PrecRelational
	case OpAdd, OpSub:
		return PrecAdditive
	case OpMul, OpDiv, OpMod:
		return PrecMultiplicative
	default:
		return PrecLowest
	}
}

// IsComparison reports whether op compares its operands.
func (op Op) IsComparison() bool {
	p := op.Precedence()

	return p == PrecEquality || p == PrecRelational
}

// BinaryOpFor returns the binary operator spelled text.
func BinaryOpFor(text string) (Op, bool) {
	for op := OpAdd; op <= OpOr; op++ {
		if opText[op] == text {
			return op, true
		}
	}

	return OpInvalid, false
}

// UnaryOpFor returns the prefix operator spelled text.
func UnaryOpFor(text string) (Op, bool) {
	switch text {
	case "!":
		return OpNot, true
	case "-":
		return OpNeg, true
	default:
		return OpInvalid, false
	}
}
