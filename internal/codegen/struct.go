package codegen

import (
	"corelang/internal/bytecode"
	"corelang/internal/model"
	"corelang/internal/symtab"
	"corelang/internal/token"
)

// registerStructPaths records one EntryStructMember per field (leaf or
// substruct node) of sd against instance's cell, recursing into substructs
// so "p:sub:leaf" resolves through two levels of nested-array indexing. A
// duplicate qualified name (two fields sharing a name within the same
// struct) is a fatal generation error rather than a silent overwrite.
func (g *Generator) registerStructPaths(sd *model.StructDef, structID int, instance *symtab.Entry, prefix string, path []int, line int) {
	for i, f := range sd.Members {
		qualified := prefix + ":" + f.Name
		fieldPath := append(append([]int{}, path...), i)
		if _, ok := g.table.AddStructMember(qualified, structID, instance.Block, instance.Index, fieldPath, g.in.Intern(qualified)); !ok {
			g.fail(line, "duplicate struct member %q", qualified)
			return
		}
		if f.IsSubstruct {
			childSD := g.model.Structs[f.SubstructID]
			g.registerStructPaths(childSD, f.SubstructID, instance, qualified, fieldPath, line)
		}
	}
}

// buildStructValue emits code that leaves sd's nested-array representation
// on top of the operand stack: one element per field in declaration order,
// substructs recursing into their own nested array, scalar leaves either
// evaluating their initializer or defaulting to Uninitialized.
func (g *Generator) buildStructValue(sd *model.StructDef, line int) {
	for _, f := range sd.Members {
		if f.IsSubstruct {
			g.buildStructValue(g.model.Structs[f.SubstructID], line)
			continue
		}
		if len(f.Init) > 0 {
			g.genExpr(f.Init)
		} else {
			g.emit(bytecode.Instruction{Op: bytecode.Push, Mode: bytecode.Lit, Lit: token.Token{Type: token.None}, Line: line})
		}
	}
	g.emit(bytecode.Instruction{Op: bytecode.PushNewCollection, Mode: bytecode.Array, Qual: []int{len(sd.Members)}, Line: line})
}

func (g *Generator) genInstantiate(s *model.Stmt) {
	sd, structID, ok := g.model.StructByName(s.StructName)
	if !ok {
		g.fail(s.Line, "unknown struct type %q", s.StructName)
		return
	}
	nameID := g.in.Intern(s.InstanceName)
	e := g.table.AddStructInstance(s.InstanceName, nameID)
	g.emit(bytecode.Instruction{Op: bytecode.Alloc, Mode: bytecode.AllocMode, Block: e.Block, Addr: e.Index, Name: nameID, Line: s.Line})

	g.buildStructValue(sd, s.Line)
	g.emit(bytecode.Instruction{Op: bytecode.Update, Mode: bytecode.UpdateMode, Block: e.Block, Addr: e.Index, Name: nameID, Line: s.Line})

	g.registerStructPaths(sd, structID, e, s.InstanceName, nil, s.Line)
}
