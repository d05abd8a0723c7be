package interp

import (
	"corelang/internal/bytecode"
	"corelang/internal/cplerr"
	"corelang/internal/operand"
)

// execForeach implements the loop-head test/fetch/increment step: Block/Addr
// name the loop variable's cell, Qual is
// [exitAddr, idxBlock, idxAddr, collBlock, collAddr]. Arrays iterate by
// element, dicts by key (in insertion order).
func (it *Interp) execForeach(instr bytecode.Instruction, block, ip *int) {
	next := *ip + 1
	idxVal := it.mem.FetchLocal(instr.Qual[1], instr.Qual[2])
	coll := it.mem.FetchLocal(instr.Qual[3], instr.Qual[4])
	idx := int(idxVal.Num)

	var elem operand.Value
	length := 0
	switch coll.Kind {
	case operand.KindArray:
		length = len(coll.Arr.Elems)
		if idx < length {
			elem = coll.Arr.Elems[idx]
		}
	case operand.KindDict:
		keys := coll.Dict.Keys()
		length = len(keys)
		if idx < length {
			elem = operand.Str(keys[idx])
		}
	}

	if idx >= length {
		*ip = instr.Qual[0]
		return
	}

	it.mem.Update(instr.Block, instr.Addr, elem)
	it.mem.Update(instr.Qual[1], instr.Qual[2], operand.Value{Kind: operand.KindNumber, Num: float64(idx + 1), NumSub: operand.SubInt})
	*ip = next
}

// unwind pops (blockEnd, break) bookkeeping pairs until Break or Continue's
// depth (defaulting to 1, or a runtime value popped off the operand stack
// when the statement carried a depth expression) of breakable levels has
// been consumed; non-breakable pairs (if/else and eval arms) are popped on
// the way without counting. Every breakable level but the last is tunneled
// through as a break, since intermediate loops must be exited entirely to
// reach the Nth enclosing one; the last level lands on the break target for
// Break, or the paired BL-return address for Continue (which re-enters the
// enclosing block's own back-edge jump).
//
// A depth exceeding the number of enclosing breakable blocks still on the
// stack is a runtime error rather than a silent jump to block 0: codegen
// rejects this for a literal depth, but a depth computed from an expression
// can't be checked until it is actually popped here.
func (it *Interp) unwind(instr bytecode.Instruction, blockEndStack *[]blockEndRec, breakStack *[]breakRec) (int, int, error) {
	hasDepthExpr := 0
	depth := 1
	if len(instr.Qual) > 0 {
		hasDepthExpr = instr.Qual[0]
	}
	if len(instr.Qual) > 1 {
		depth = instr.Qual[1]
	}
	if hasDepthExpr != 0 {
		v := it.mem.DerefTOS()
		depth = int(v.Num)
	}
	if depth < 1 {
		depth = 1
	}
	breakable := 0
	for _, b := range *breakStack {
		if b.breakable {
			breakable++
		}
	}
	if depth > breakable {
		return 0, 0, cplerr.NewRuntimeError("break/continue depth exceeds enclosing breakable block count")
	}
	isBreak := instr.Op == bytecode.Break

	block, addr := 0, 0
	for remaining := depth; remaining > 0; {
		n := len(*blockEndStack) - 1
		rec := (*blockEndStack)[n]
		brec := (*breakStack)[n]
		*blockEndStack = (*blockEndStack)[:n]
		*breakStack = (*breakStack)[:n]
		it.mem.PopBlock()

		if !brec.breakable {
			continue
		}
		remaining--
		if remaining > 0 || isBreak {
			block, addr = brec.block, brec.addr
		} else {
			block, addr = rec.block, rec.addr
		}
	}
	return block, addr, nil
}
