package interp

import (
	"corelang/internal/bytecode"
	"corelang/internal/cplerr"
	"corelang/internal/operand"
)

// execCall pops the instruction's declared argument count off the operand
// stack (in reverse, since they were pushed left to right), dispatches to
// the callee, and leaves its return value on top of the stack. When the
// call stood alone as a statement (Qual[1] set by the generator), an
// uninitialized return is treated as a runtime error instead of being
// pushed and immediately discarded — it almost always means the callee
// fell off its end without a return.
func (it *Interp) execCall(instr bytecode.Instruction) error {
	argc := 0
	if len(instr.Qual) > 0 {
		argc = instr.Qual[0]
	}
	args := make([]operand.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = it.mem.DerefTOS()
	}
	v, code, err := it.callFrame(instr.Frame, args)
	if err != nil {
		if _, isExit := err.(errExit); isExit {
			_ = code
			return err
		}
		return err
	}
	if len(instr.Qual) > 1 && instr.Qual[1] != 0 && v.Kind == operand.KindUninitialized {
		return cplerr.NewRuntimeError("function call used as a statement returned no value")
	}
	it.mem.Push(v)
	return nil
}

var compoundBinOp = map[bytecode.Opcode]bytecode.Opcode{
	bytecode.AddEq: bytecode.Add,
	bytecode.SubEq: bytecode.Sub,
	bytecode.MulEq: bytecode.Mul,
	bytecode.DivEq: bytecode.Div,
	bytecode.ModEq: bytecode.Mod,
	bytecode.OrEq:  bytecode.BwOr,
	bytecode.AndEq: bytecode.BwAnd,
}

// applyCompound computes the new cell value for a compound assignment
// operator. AppendEq is not a binaryOp: it pushes onto an array in place or
// concatenates onto a string, rather than combining two scalars.
func applyCompound(op bytecode.Opcode, cur, rhs operand.Value) (operand.Value, error) {
	if op == bytecode.Update {
		return rhs, nil
	}
	if op == bytecode.AppendEq {
		switch cur.Kind {
		case operand.KindArray:
			if err := operand.AppendTo(cur, rhs); err != nil {
				return operand.Value{}, err
			}
			return cur, nil
		case operand.KindString:
			return operand.Str(cur.Str + operand.ToDisplayString(rhs)), nil
		default:
			return operand.Value{}, nil
		}
	}
	binOp, ok := compoundBinOp[op]
	if !ok {
		return rhs, nil
	}
	return binaryOp(binOp, cur, rhs)
}

func pathToValues(path []int) []operand.Value {
	out := make([]operand.Value, len(path))
	for i, p := range path {
		out[i] = operand.Int(int64(p))
	}
	return out
}

// execUpdate implements the four assignment-target addressing modes
// described for the Update family of opcodes: a plain scalar cell, an
// array/dict element reached by runtime-computed indices, a struct leaf
// reached by a compile-time-constant path, and a struct field that is
// itself an array indexed further at runtime.
func (it *Interp) execUpdate(instr bytecode.Instruction) error {
	rhs := it.mem.DerefTOS()

	switch instr.Mode {
	case bytecode.UpdateMode:
		cur := it.mem.FetchLocal(instr.Block, instr.Addr)
		newVal, err := applyCompound(instr.Op, cur, rhs)
		if err != nil {
			return err
		}
		it.mem.Update(instr.Block, instr.Addr, newVal)
		return nil

	case bytecode.UpdateIndexed:
		dims := instr.Qual[0]
		indices := make([]operand.Value, dims)
		for i := dims - 1; i >= 0; i-- {
			indices[i] = it.mem.DerefTOS()
		}
		base := it.mem.FetchLocal(instr.Block, instr.Addr)
		if instr.Op != bytecode.Update {
			cur := operand.IndexInto(base, indices)
			newVal, err := applyCompound(instr.Op, cur, rhs)
			if err != nil {
				return err
			}
			rhs = newVal
		}
		return operand.UpdateIndexed(base, indices, rhs)

	case bytecode.UpdateStructElement:
		base := it.mem.FetchLocal(instr.Block, instr.Addr)
		indices := pathToValues(instr.Qual)
		if instr.Op != bytecode.Update {
			cur := operand.IndexInto(base, indices)
			newVal, err := applyCompound(instr.Op, cur, rhs)
			if err != nil {
				return err
			}
			rhs = newVal
		}
		return operand.UpdateIndexed(base, indices, rhs)

	case bytecode.UpdateIndexedStructElement:
		n := len(instr.Qual)
		dims := instr.Qual[n-1]
		path := instr.Qual[:n-1]
		runtime := make([]operand.Value, dims)
		for i := dims - 1; i >= 0; i-- {
			runtime[i] = it.mem.DerefTOS()
		}
		base := it.mem.FetchLocal(instr.Block, instr.Addr)
		full := append(pathToValues(path), runtime...)
		if instr.Op != bytecode.Update {
			cur := operand.IndexInto(base, full)
			newVal, err := applyCompound(instr.Op, cur, rhs)
			if err != nil {
				return err
			}
			rhs = newVal
		}
		return operand.UpdateIndexed(base, full, rhs)
	}
	return nil
}
