// Package repl implements an interactive line-at-a-time session: each line
// is scanned, parsed, generated, and run against a fresh interpreter, the
// way the teacher's REPL recompiles a fresh chunk per line rather than
// growing one persistent program.
package repl

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"corelang/internal/codegen"
	"corelang/internal/interner"
	"corelang/internal/interp"
	"corelang/internal/parser"
	"corelang/internal/token"
)

// Start reads lines from stdin until EOF or a bare "exit", feeding each one
// through the full tokenize/parse/generate/run pipeline in isolation. The
// prompt is suppressed when stdin is not a terminal, so piped input (e.g.
// `corelang repl < script.txt` in a test harness) doesn't interleave
// prompt text into captured output.
func Start() {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if interactive {
		fmt.Println("corelang REPL | type 'exit' to quit")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print(">>> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}
		runLine(line)
	}
}

// runLine wraps the line in a throwaway entry function so the existing
// function-scoped pipeline (which expects at least one entry fn) can
// compile and run a single statement or expression.
func runLine(line string) {
	src := "entry fn __repl { " + line + " }"

	toks, err := token.NewScanner(src, "<repl>").ScanTokens()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	m, errs := parser.Parse(toks, "<repl>")
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return
	}

	in := interner.New()
	fm, errs := codegen.Generate("<repl>", m, in, nil)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return
	}

	it := interp.New(fm)
	if _, err := it.RunEntry(m.EntryFunction, nil); err != nil {
		if _, ok := interp.IsExit(err); !ok {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
