package interp

import (
	"corelang/internal/bytecode"
	"corelang/internal/cplerr"
	"corelang/internal/operand"
)

// execPushNewCollection builds an array or dict literal from values already
// sitting on the operand stack (pushed by the element expressions that
// preceded this instruction in postfix order) and leaves the result on top.
func (it *Interp) execPushNewCollection(instr bytecode.Instruction) {
	n := 0
	if len(instr.Qual) > 0 {
		n = instr.Qual[0]
	}
	switch instr.Mode {
	case bytecode.Array:
		elems := make([]operand.Value, n)
		for i := n - 1; i >= 0; i-- {
			elems[i] = it.mem.DerefTOS()
		}
		it.mem.Push(operand.Value{Kind: operand.KindArray, Arr: &operand.Array{Elems: elems}})

	case bytecode.Dict:
		pairs := make([]operand.Value, 2*n)
		for i := len(pairs) - 1; i >= 0; i-- {
			pairs[i] = it.mem.DerefTOS()
		}
		d := operand.NewDict()
		for i := 0; i < n; i++ {
			d.Set(operand.StringKey(pairs[2*i]), pairs[2*i+1])
		}
		it.mem.Push(operand.Value{Kind: operand.KindDict, Dict: d})
	}
}

// execFetchIndexed reads a struct member through its compile-time-constant
// path (Mode Var, base at a fixed cell) or applies runtime-computed indices
// to a value already on the operand stack (Mode Internal, the dynamic
// `expr[i]...` form).
func (it *Interp) execFetchIndexed(instr bytecode.Instruction) error {
	switch instr.Mode {
	case bytecode.Var:
		base := it.mem.FetchLocal(instr.Block, instr.Addr)
		it.mem.Push(operand.IndexInto(base, pathToValues(instr.Qual)))
		return nil

	case bytecode.Internal:
		dims := 0
		if len(instr.Qual) > 0 {
			dims = instr.Qual[0]
		}
		indices := make([]operand.Value, dims)
		for i := dims - 1; i >= 0; i-- {
			indices[i] = it.mem.DerefTOS()
		}
		base := it.mem.DerefTOS()
		if !base.IsCollection() {
			return cplerr.NewRuntimeError("cannot index a non-collection value")
		}
		it.mem.Push(operand.IndexInto(base, indices))
		return nil
	}
	return nil
}
