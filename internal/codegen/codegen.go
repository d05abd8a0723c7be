// Package codegen walks a parsed Model and emits the linear bytecode
// described in §4.6: one CodeFrame per declared function (builtins occupy
// the first frames), each owning the CodeBlocks its control constructs
// open, addressed through the per-function symbol table built alongside.
package codegen

import (
	"fmt"

	"corelang/internal/bytecode"
	"corelang/internal/builtins"
	"corelang/internal/cplerr"
	"corelang/internal/interner"
	"corelang/internal/model"
	"corelang/internal/symtab"
	"corelang/internal/token"
)

// Generator holds the state threaded through one Model's compilation. Only
// one function is generated at a time, so the per-function fields
// (table/frame/frameIdx/blockNum) are simply overwritten between
// functions rather than stacked.
type Generator struct {
	fm      *bytecode.FrameMap
	model   *model.Model
	in      *interner.Interner
	globals *map[string]*symtab.Entry
	file    string
	argv    []string

	table    *symtab.Table
	frame    *bytecode.CodeFrame
	frameIdx int
	blockNum int

	breakableDepth int

	breakStack  []breakInfo
	returnStack []returnInfo
	errs        []error
}

type breakInfo struct {
	breakable bool
	block     int
	addr      int
}

type returnInfo struct {
	breakable bool
	block     int
	addr      int
}

func New(file string, in *interner.Interner) *Generator {
	return &Generator{
		fm:      bytecode.NewFrameMap(),
		in:      in,
		globals: symtab.NewGlobals(),
		file:    file,
	}
}

// Generate compiles m in full: builtin registration, a forward-declaration
// pass over every function's signature (so mutually recursive calls
// resolve), then a body-generation pass. argv is the command line's
// trailing arguments, assembled into a single array value bound to the
// entry function's parameter (see genEntryParams) — the forwarded
// arguments are baked into the entry frame's own bytecode at generation
// time rather than threaded through the interpreter positionally.
func Generate(file string, m *model.Model, in *interner.Interner, argv []string) (*bytecode.FrameMap, []error) {
	g := New(file, in)
	g.model = m
	g.argv = argv
	builtins.RegisterInto(g.fm)

	lits := symtab.NewFunctionTable(g.globals)
	for name, lit := range m.Literals {
		lits.AddLiteral(name, lit)
	}

	for _, fn := range m.Functions {
		params := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.Name
		}
		g.fm.AddFunction(fn.Name, len(fn.Params), params)
	}

	for _, fn := range m.Functions {
		g.genFunction(fn)
	}

	return g.fm, g.errs
}

func (g *Generator) fail(line int, format string, args ...interface{}) {
	g.errs = append(g.errs, cplerr.NewGenerationError(g.file, line, fmt.Sprintf(format, args...)))
}

func (g *Generator) curBlock() *bytecode.CodeBlock {
	return g.frame.Blocks[g.blockNum]
}

func (g *Generator) emit(ins bytecode.Instruction) int {
	return g.curBlock().Emit(ins)
}

// newCodeBlock opens a new CodeBlock in the current frame and returns its
// number; it does not switch the generator into it.
func (g *Generator) newCodeBlock() int {
	return g.frame.NewBlock()
}

func (g *Generator) genFunction(fn *model.Function) {
	idx, _ := g.fm.Lookup(fn.Name)
	g.frameIdx = idx
	g.frame = g.fm.Frame(idx)
	g.blockNum = 0

	g.table = symtab.NewFunctionTable(g.globals)
	g.table.PushScope(0)
	g.breakableDepth = 0

	if fn.IsEntry {
		g.genEntryParams(fn)
	} else {
		for _, p := range fn.Params {
			g.bindParam(p, fn.Line)
		}
	}

	g.genStatements(fn.Statements)

	// Fall off the end of block 0 with no explicit return: the interpreter
	// treats this as an Uninitialized return value.
	g.emit(bytecode.Instruction{Op: bytecode.Return, Mode: bytecode.None, Line: fn.Line})

	g.table.PopScope()
}

// bindParam allocates the operand slot(s) a parameter needs and registers
// its symbol-table entry. A struct-typed parameter arrives as a reference
// to the caller's flattened array (collections are reference types, per
// invariant 4): the generator still emits one Push/Arg but additionally
// walks the struct definition to register every member path against this
// same slot.
func (g *Generator) bindParam(p model.Param, line int) {
	nameID := g.in.Intern(p.Name)
	if p.StructType == "" {
		e := g.table.AddScalar(p.Name, nameID)
		g.emit(bytecode.Instruction{Op: bytecode.Push, Mode: bytecode.Arg, Block: e.Block, Addr: e.Index, Name: nameID, Line: line})
		return
	}
	e := g.table.AddStructInstance(p.Name, nameID)
	g.emit(bytecode.Instruction{Op: bytecode.Push, Mode: bytecode.Arg, Block: e.Block, Addr: e.Index, Name: nameID, Line: line})
	sd, structID, ok := g.model.StructByName(p.StructType)
	if !ok {
		g.fail(line, "unknown struct type %q for parameter %q", p.StructType, p.Name)
		return
	}
	g.registerStructPaths(sd, structID, e, p.Name, nil, line)
}

// genEntryParams assembles the command line's trailing arguments into a
// single array value and binds it to the entry function's declared
// parameter (if it names one), per the single-array calling convention: a
// PushNewCollection builds an empty array, then each argument is pushed as
// a string literal and folded in with Append (a `[...]` array literal
// instead pushes its elements first and builds the array with one
// PushNewCollection), so the first parameter never binds positionally. A
// second or later declared parameter (unusual for an entry function) still
// binds positionally through bindParam, since only one slot can hold the
// CLI array.
func (g *Generator) genEntryParams(fn *model.Function) {
	if len(fn.Params) == 0 {
		return
	}
	p := fn.Params[0]
	nameID := g.in.Intern(p.Name)
	g.table.AddScalar(p.Name, nameID)

	g.emit(bytecode.Instruction{Op: bytecode.PushNewCollection, Mode: bytecode.Array, Qual: []int{0}, Line: fn.Line})
	for _, a := range g.argv {
		g.emit(bytecode.Instruction{Op: bytecode.Push, Mode: bytecode.Lit, Lit: token.Token{Type: token.Str, Value: a}, Line: fn.Line})
		g.emit(bytecode.Instruction{Op: bytecode.Append, Line: fn.Line})
	}

	for _, extra := range fn.Params[1:] {
		g.bindParam(extra, fn.Line)
	}
}

func (g *Generator) genStatements(stmts []*model.Stmt) {
	for _, s := range stmts {
		g.genStmt(s)
	}
}
