package interp

import (
	"strconv"

	"corelang/internal/operand"
	"corelang/internal/token"
)

// literalValue converts a scanner literal token (or one of codegen's
// synthetic None-default tokens) into the runtime Value it denotes.
func literalValue(t token.Token) operand.Value {
	switch t.Type {
	case token.Integer:
		n, _ := strconv.ParseInt(t.Value, 10, 64)
		return operand.Int(n)
	case token.Float:
		n, _ := strconv.ParseFloat(t.Value, 64)
		return operand.Real(n)
	case token.Str:
		return operand.Str(t.Value)
	case token.Bool:
		return operand.Bool(t.Value == "true")
	case token.None:
		return operand.Uninitialized()
	default:
		return operand.Undefined()
	}
}
