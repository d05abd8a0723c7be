// cmd/corelang/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kr/pretty"

	"corelang/internal/bytecode"
	"corelang/internal/codegen"
	"corelang/internal/interner"
	"corelang/internal/interp"
	"corelang/internal/parser"
	"corelang/internal/repl"
	"corelang/internal/stats"
	"corelang/internal/token"
)

// Debug bits named in the CLI usage text. debugPostfix and debugMemory are
// reserved: the parser converts one expression at a time rather than
// building one flat postfix stream, and an operand-memory tracer would need
// a hook into the interpreter's fetch-decode loop that doesn't exist yet.
const (
	debugTokens = 1 << iota
	debugPostfix
	debugBytecode
	debugMemory
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements the CLI surface and returns the process exit code; split
// out from main so testscript-driven tests can invoke it in-process instead
// of exec'ing a built binary.
func run(args []string) int {
	if len(args) == 0 {
		showUsage()
		return 0
	}

	if args[0] == "repl" {
		repl.Start()
		return 0
	}

	var (
		debugFlags int
		outFile    string
		statsFile  string
		warnings   bool
		source     string
		forward    []string
	)

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-h" || a == "--help":
			showUsage()
			return 0
		case a == "-w":
			warnings = true
		case strings.HasPrefix(a, "-d"):
			debugFlags = parseDebugBits(a[2:])
		case strings.HasPrefix(a, "-o"):
			outFile = a[2:]
		case strings.HasPrefix(a, "-p"):
			statsFile = a[2:]
		case source == "":
			source = a
		default:
			forward = append(forward, a)
		}
	}

	if source == "" {
		showUsage()
		return 1
	}

	src, err := os.ReadFile(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read %s: %v\n", source, err)
		return 1
	}

	toks, err := token.NewScanner(string(src), source).ScanTokens()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if debugFlags&debugTokens != 0 {
		fmt.Fprintf(os.Stderr, "# tokens\n%# v\n", pretty.Formatter(toks))
	}

	m, errs := parser.Parse(toks, source)
	if len(errs) > 0 {
		reportAll(errs)
		return 1
	}
	if m.EntryFunction == "" {
		fmt.Fprintln(os.Stderr, "no entry function declared")
		return 1
	}

	in := interner.New()
	fm, errs := codegen.Generate(source, m, in, forward)
	if len(errs) > 0 {
		reportAll(errs)
		return 1
	}
	if debugFlags&debugBytecode != 0 {
		dumpFrames(fm)
	}

	it := interp.New(fm)
	it.Warnings = warnings
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not create %s: %v\n", outFile, err)
			return 1
		}
		defer f.Close()
		it.Stdout = f
	}
	var collector *stats.Collector
	if statsFile != "" {
		collector = stats.NewCollector()
		it.Stats = collector
	}
	code, err := it.RunEntry(m.EntryFunction, forward)
	if collector != nil {
		if werr := collector.WriteCSV(statsFile); werr != nil {
			fmt.Fprintf(os.Stderr, "could not write stats to %s: %v\n", statsFile, werr)
		}
	}
	if err != nil {
		if exitCode, ok := interp.IsExit(err); ok {
			return exitCode
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return code
}

func parseDebugBits(spec string) int {
	if spec == "" {
		return 0
	}
	bits := 0
	for _, part := range strings.Split(spec, "+") {
		if n, err := strconv.Atoi(part); err == nil {
			bits |= n
		}
	}
	return bits
}

func reportAll(errs []error) {
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e)
	}
}

func dumpFrames(fm *bytecode.FrameMap) {
	for i, f := range fm.Frames {
		if f.IsBuiltin {
			continue
		}
		fmt.Fprintf(os.Stderr, "# frame %d: %s/%d\n", i, f.Name, f.Arity)
		for b, blk := range f.Blocks {
			for a, ins := range blk.Instructions {
				fmt.Fprintf(os.Stderr, "  [%d:%d] %s\n", b, a, ins)
			}
		}
	}
}

func showUsage() {
	fmt.Println(`corelang <source> [switches] [args...]
corelang repl

switches:
  -d<bits>   debug dump (1=tokens,2=postfix,4=bytecode,8=memory), combine with +
  -o<file>   redirect stdout to file
  -p<file>   write per-opcode runtime stats to CSV
  -w         treat runtime type errors as warnings instead of faults
  -h         this help text`)
}
