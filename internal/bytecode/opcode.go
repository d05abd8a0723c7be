// Package bytecode defines the instruction set emitted by the code
// generator and consumed by the interpreter: a flat vector of Instructions
// per code block, grouped into code frames by the FrameMap.
package bytecode

import "fmt"

type Opcode byte

const (
	Nop Opcode = iota
	Push
	PushNewCollection
	Pop
	Add
	Sub
	Mul
	Div
	Mod
	BwAnd
	BwOr
	Concat
	Lor
	Land
	Inc
	Dec
	Uminus
	Damnit
	LengthOf
	AddEq
	SubEq
	MulEq
	DivEq
	ModEq
	OrEq
	AndEq
	AppendEq
	Update
	Append
	Insert
	Alloc
	BlockBegin
	BlockEnd
	J
	Jt
	Jf
	Bl
	Break
	Continue
	Return
	Exit
	FunctionCall
	FetchIndexed
	Foreach
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	Print
	Eprint
	Println
	Eprintln
	Diag
	IncArgCount
)

var opcodeNames = [...]string{
	"Nop", "Push", "PushNewCollection", "Pop", "Add", "Sub", "Mul", "Div", "Mod",
	"BwAnd", "BwOr", "Concat", "Lor", "Land", "Inc", "Dec", "Uminus", "Damnit",
	"LengthOf", "AddEq", "SubEq", "MulEq", "DivEq", "ModEq", "OrEq", "AndEq",
	"AppendEq", "Update", "Append", "Insert", "Alloc", "BlockBegin", "BlockEnd",
	"J", "Jt", "Jf", "Bl", "Break", "Continue", "Return", "Exit", "FunctionCall",
	"FetchIndexed", "Foreach", "Lt", "Gt", "Le", "Ge", "Eq", "Ne", "Print",
	"Eprint", "Println", "Eprintln", "Diag", "IncArgCount",
}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", o)
}

type Mode byte

const (
	None Mode = iota
	Lit
	Var
	VarRef
	Arg
	Function
	Builtin
	Jump
	BlMode
	UpdateMode
	UpdateIndexed
	UpdateStructElement
	UpdateIndexedStructElement
	Array
	Dict
	AllocMode
	Internal
)

var modeNames = [...]string{
	"None", "Lit", "Var", "VarRef", "Arg", "Function", "Builtin", "Jump", "Bl",
	"Update", "UpdateIndexed", "UpdateStructElement", "UpdateIndexedStructElement",
	"Array", "Dict", "Alloc", "Internal",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}
