// Package interp runs the bytecode a codegen.Generate call produced: a
// fetch-decode-dispatch loop per code block, branch-and-link control
// transfer between blocks of the same frame, and genuine Go-level
// recursion only at FunctionCall (a different CPL function).
package interp

import (
	"fmt"
	"io"
	"os"
	"time"

	"corelang/internal/bytecode"
	"corelang/internal/builtins"
	"corelang/internal/cplerr"
	"corelang/internal/operand"
)

// StatsSink receives one sample per executed instruction when runtime
// statistics collection is enabled (-p on the CLI).
type StatsSink interface {
	Record(op bytecode.Opcode, mode bytecode.Mode, qual []int, elapsed time.Duration)
}

type Interp struct {
	fm       *bytecode.FrameMap
	mem      *operand.Memory
	Warnings bool
	Stats    StatsSink
	Stdout   io.Writer
	Stderr   io.Writer
}

func New(fm *bytecode.FrameMap) *Interp {
	return &Interp{fm: fm, mem: operand.NewMemory(), Stdout: os.Stdout, Stderr: os.Stderr}
}

// blockEndRec and breakRec are the paired bookkeeping stacks described in
// §4.6: every Bl pushes exactly one of each, and BlockEnd/Break/Continue
// pop them together so frame/operand-block depth stays in lockstep.
type blockEndRec struct {
	block, addr int
}

type breakRec struct {
	breakable   bool
	block, addr int
}

// RunEntry invokes the named entry function with argv already converted to
// string Values, and returns the process exit code.
func (it *Interp) RunEntry(entryName string, argv []string) (int, error) {
	idx, ok := it.fm.Lookup(entryName)
	if !ok {
		return 1, cplerr.NewRuntimeError(fmt.Sprintf("no entry function %q", entryName))
	}
	args := make([]operand.Value, len(argv))
	for i, a := range argv {
		args[i] = operand.Str(a)
	}
	_, code, err := it.callFrame(idx, args)
	return code, err
}

// callFrame is the recursion point for a genuine CPL function call (as
// opposed to the in-frame BL used by if/while/loop/foreach). It returns the
// function's return value, a non-zero process exit code if Exit executed,
// and any fatal error.
func (it *Interp) callFrame(frameIdx int, args []operand.Value) (operand.Value, int, error) {
	frame := it.fm.Frame(frameIdx)
	if frame.IsBuiltin {
		v, err := builtins.Call(frame.BuiltinID, args)
		return v, 0, err
	}

	it.mem.PushFrame()
	defer it.mem.PopFrame()

	argIdx := 0
	nextArg := func() operand.Value {
		if argIdx < len(args) {
			v := args[argIdx]
			argIdx++
			return v
		}
		return operand.Uninitialized()
	}

	block := 0
	ip := 0
	var blockEndStack []blockEndRec
	var breakStack []breakRec
	retVal := operand.Uninitialized()

	for {
		blk := frame.Blocks[block]
		if ip >= len(blk.Instructions) {
			if block == 0 {
				break // fell off the end of the entry block: implicit Uninitialized return
			}
			return operand.Uninitialized(), 0, cplerr.NewRuntimeError("control fell off the end of a non-entry code block")
		}
		instr := blk.Instructions[ip]
		start := time.Now()
		advance := true
		exitCode := -1

		switch instr.Op {
		case bytecode.Nop:
			// no-op

		case bytecode.Push:
			switch instr.Mode {
			case bytecode.Lit:
				it.mem.Push(literalValue(instr.Lit))
			case bytecode.Var:
				it.mem.Push(it.mem.FetchAt(it.mem.CurrentFrameIndex(), instr.Block, instr.Addr))
			case bytecode.VarRef:
				it.mem.Push(operand.RefVal(operand.Ref{Frame: it.mem.CurrentFrameIndex(), Block: instr.Block, Index: instr.Addr}))
			case bytecode.Arg:
				it.mem.Push(nextArg())
			}

		case bytecode.PushNewCollection:
			it.execPushNewCollection(instr)

		case bytecode.Append:
			v := it.mem.DerefTOS()
			arr := it.mem.DerefTOS()
			if err := operand.AppendTo(arr, v); err != nil {
				return operand.Uninitialized(), 0, err
			}
			it.mem.Push(arr)

		case bytecode.Pop:
			it.mem.Pop()

		case bytecode.Add, bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Mod,
			bytecode.BwAnd, bytecode.BwOr, bytecode.Concat, bytecode.Lor, bytecode.Land,
			bytecode.Lt, bytecode.Gt, bytecode.Le, bytecode.Ge, bytecode.Eq, bytecode.Ne:
			rhs := it.mem.DerefTOS()
			lhs := it.mem.DerefTOS()
			v, err := binaryOp(instr.Op, lhs, rhs)
			if err != nil {
				if it.Warnings {
					fmt.Fprintln(it.Stderr, err)
					it.mem.Push(operand.Undefined())
				} else {
					return operand.Uninitialized(), 0, err
				}
			} else {
				it.mem.Push(v)
			}

		case bytecode.Uminus:
			v := it.mem.DerefTOS()
			it.mem.Push(negate(v))

		case bytecode.Damnit:
			v := it.mem.DerefTOS()
			it.mem.Push(operand.Bool(!truthy(v)))

		case bytecode.LengthOf:
			v := it.mem.DerefTOS()
			it.mem.Push(lengthOf(v))

		case bytecode.Inc, bytecode.Dec:
			cur := it.mem.FetchAt(it.mem.CurrentFrameIndex(), instr.Block, instr.Addr)
			delta := 1.0
			if instr.Op == bytecode.Dec {
				delta = -1.0
			}
			it.mem.Update(instr.Block, instr.Addr, operand.Value{Kind: operand.KindNumber, Num: cur.Num + delta, NumSub: cur.NumSub})

		case bytecode.Update, bytecode.AddEq, bytecode.SubEq, bytecode.MulEq, bytecode.DivEq,
			bytecode.ModEq, bytecode.OrEq, bytecode.AndEq, bytecode.AppendEq:
			if err := it.execUpdate(instr); err != nil {
				if !it.Warnings {
					return operand.Uninitialized(), 0, err
				}
				fmt.Fprintln(it.Stderr, err)
			}

		case bytecode.Alloc:
			it.mem.Alloc(it.mem.CurrentFrameIndex(), instr.Block, instr.Addr, instr.Name)

		case bytecode.BlockBegin:
			it.mem.PushBlock()

		case bytecode.BlockEnd:
			if len(blockEndStack) == 0 {
				break
			}
			n := len(blockEndStack) - 1
			rec := blockEndStack[n]
			blockEndStack = blockEndStack[:n]
			breakStack = breakStack[:len(breakStack)-1]
			it.mem.PopBlock()
			block, ip = rec.block, rec.addr
			advance = false

		case bytecode.J:
			ip = instr.Addr
			advance = false

		case bytecode.Jt:
			v := it.mem.DerefTOS()
			if truthy(v) {
				ip = instr.Addr
				advance = false
			}

		case bytecode.Jf:
			v := it.mem.DerefTOS()
			if !truthy(v) {
				ip = instr.Addr
				advance = false
			}

		case bytecode.Bl:
			blockEndStack = append(blockEndStack, blockEndRec{block: instr.Block, addr: instr.Addr})
			breakStack = append(breakStack, breakRec{
				breakable: instr.Qual[0] != 0,
				block:     instr.Qual[2],
				addr:      instr.Qual[3],
			})
			block, ip = instr.Qual[1], 0
			advance = false

		case bytecode.Break, bytecode.Continue:
			var uerr error
			block, ip, uerr = it.unwind(instr, &blockEndStack, &breakStack)
			if uerr != nil {
				return operand.Uninitialized(), 0, uerr
			}
			advance = false

		case bytecode.Foreach:
			it.execForeach(instr, &block, &ip)
			advance = false

		case bytecode.FetchIndexed:
			if err := it.execFetchIndexed(instr); err != nil {
				if it.Warnings {
					fmt.Fprintln(it.Stderr, err)
					it.mem.Push(operand.Undefined())
				} else {
					return operand.Uninitialized(), 0, err
				}
			}

		case bytecode.Return:
			if instr.Mode == bytecode.Internal {
				retVal = it.mem.DerefTOS()
			}
			return retVal, 0, nil

		case bytecode.Exit:
			code := 0
			if instr.Mode == bytecode.Internal {
				v := it.mem.DerefTOS()
				code = int(v.Num)
			}
			exitCode = code

		case bytecode.FunctionCall:
			if err := it.execCall(instr); err != nil {
				if ee, ok := err.(errExit); ok {
					return operand.Uninitialized(), ee.code, err
				}
				return operand.Uninitialized(), 0, err
			}

		case bytecode.Print, bytecode.Println:
			v := it.mem.DerefTOS()
			fmt.Fprint(it.Stdout, operand.ToDisplayString(v))
			if instr.Op == bytecode.Println {
				fmt.Fprintln(it.Stdout)
			}

		case bytecode.Eprint, bytecode.Eprintln:
			v := it.mem.DerefTOS()
			fmt.Fprint(it.Stderr, operand.ToDisplayString(v))
			if instr.Op == bytecode.Eprintln {
				fmt.Fprintln(it.Stderr)
			}

		default:
			return operand.Uninitialized(), 0, cplerr.NewRuntimeError(fmt.Sprintf("unimplemented opcode %s", instr.Op))
		}

		if it.Stats != nil {
			it.Stats.Record(instr.Op, instr.Mode, instr.Qual, time.Since(start))
		}
		if exitCode >= 0 {
			return retVal, exitCode, errExit{code: exitCode}
		}
		if advance {
			ip++
		}
	}

	return retVal, 0, nil
}

// errExit signals a program-level `exit` rather than a fault; RunEntry's
// caller distinguishes it by type when deciding what to print.
type errExit struct{ code int }

func (e errExit) Error() string { return fmt.Sprintf("exit(%d)", e.code) }

// IsExit reports whether err came from an `exit` statement rather than a
// fault, and the code it carried, so a caller can tell "program finished"
// from "program crashed" without reaching into interp's internals.
func IsExit(err error) (int, bool) {
	ee, ok := err.(errExit)
	return ee.code, ok
}
