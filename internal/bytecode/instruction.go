package bytecode

import (
	"fmt"

	"corelang/internal/token"
)

// Instruction is the generator's unit of emission. Frame/Block/Addr are
// interpreted according to Opcode/Mode: a cell address, a jump target, or a
// pre-resolved payload (e.g. argument count). Qual carries whatever
// per-opcode multi-field qualifier the dispatch table in §4.6 calls for
// (break depth, dimension count, BL's paired return/break block numbers).
type Instruction struct {
	Op     Opcode
	Mode   Mode
	Frame  int
	Block  int
	Addr   int
	Qual   []int
	Name   int // interner index, for diagnostics
	Lit    token.Token
	Line   int
}

func (i Instruction) String() string {
	return fmt.Sprintf("%-6s %-8s f=%d b=%d a=%d q=%v n=%d", i.Op, i.Mode, i.Frame, i.Block, i.Addr, i.Qual, i.Name)
}

// CodeBlock is a vector of instructions with monotonic addresses. Block 0 of
// a function holds its entry code; subsequent blocks are opened by nested
// control constructs.
type CodeBlock struct {
	Instructions []Instruction
}

func (b *CodeBlock) Emit(ins Instruction) int {
	addr := len(b.Instructions)
	b.Instructions = append(b.Instructions, ins)
	return addr
}

func (b *CodeBlock) Patch(addr int, field func(*Instruction)) {
	field(&b.Instructions[addr])
}

func (b *CodeBlock) Len() int { return len(b.Instructions) }

// CodeFrame owns the ordered blocks for one declared function, or, for a
// builtin, carries only the dispatch metadata (no code).
type CodeFrame struct {
	Name       string
	Arity      int
	ParamNames []string
	Blocks     []*CodeBlock
	IsBuiltin  bool
	BuiltinID  int
}

func NewCodeFrame(name string, arity int) *CodeFrame {
	return &CodeFrame{Name: name, Arity: arity, Blocks: []*CodeBlock{{}}}
}

func (f *CodeFrame) NewBlock() int {
	f.Blocks = append(f.Blocks, &CodeBlock{})
	return len(f.Blocks) - 1
}

// FrameMap owns the ordered vector of code frames: builtins first, then one
// per declared function.
type FrameMap struct {
	Frames []*CodeFrame
	index  map[string]int
}

func NewFrameMap() *FrameMap {
	return &FrameMap{index: make(map[string]int)}
}

func (fm *FrameMap) AddBuiltin(name string, arity, builtinID int) int {
	f := &CodeFrame{Name: name, Arity: arity, IsBuiltin: true, BuiltinID: builtinID}
	fm.Frames = append(fm.Frames, f)
	idx := len(fm.Frames) - 1
	fm.index[name] = idx
	return idx
}

func (fm *FrameMap) AddFunction(name string, arity int, params []string) int {
	f := NewCodeFrame(name, arity)
	f.ParamNames = params
	fm.Frames = append(fm.Frames, f)
	idx := len(fm.Frames) - 1
	fm.index[name] = idx
	return idx
}

func (fm *FrameMap) Lookup(name string) (int, bool) {
	idx, ok := fm.index[name]
	return idx, ok
}

func (fm *FrameMap) Frame(i int) *CodeFrame { return fm.Frames[i] }
