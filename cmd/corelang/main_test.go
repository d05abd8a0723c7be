package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain registers "corelang" as an in-process command so testscript's
// .txtar scripts can exercise the real CLI surface (flag parsing, exit
// codes, stdout/stderr) without a separate `go build` step.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"corelang": run1,
	}))
}

func run1() int { return run(os.Args[1:]) }

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{Dir: "testdata/script"})
}
