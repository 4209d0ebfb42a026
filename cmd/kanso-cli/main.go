// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"ducc/internal/ir"
	"ducc/internal/parser"
	"ducc/internal/semantic"
	"ducc/internal/types"
	"ducc/repl"
)

// usage: kanso-cli [-dump-ir | -S] <file.ka>
// With no file argument, falls into a REPL over stdin. Flags are parsed
// by hand (no flag package) the way the teacher's cmd/kanso-cli/main.go
// walks os.Args itself.
func main() {
	var dumpIR, emitAsm bool
	var path string

	for _, arg := range os.Args[1:] {
		switch arg {
		case "-dump-ir":
			dumpIR = true
		case "-S":
			emitAsm = true
		default:
			path = arg
		}
	}

	if path == "" {
		repl.Start(os.Stdin)
		return
	}

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	reg := types.NewRegistry()
	p := parser.New(string(source), reg)
	prog, err := p.ParseProgram()
	if err != nil {
		color.Red("%s: parse error: %s", path, err)
		os.Exit(1)
	}

	an := semantic.New(reg)
	if errs := an.Analyze(prog); len(errs) > 0 {
		for _, e := range errs {
			color.Red("%s: %s", path, e)
		}
		os.Exit(1)
	}

	m, buildErrs := ir.Build(prog)
	if len(buildErrs) > 0 {
		for _, e := range buildErrs {
			color.Red("%s: %s", path, e)
		}
		os.Exit(1)
	}

	for _, fn := range m.Functions {
		ir.OptimizeFunction(m.Values, fn)
	}

	switch {
	case dumpIR, emitAsm:
		// -S is spec.md's "assembly-like" request; the IR dump is the
		// only target this repo generates, so both flags print it.
		fmt.Print(ir.Dump(m))
	default:
		color.Green("compiled %s: %d function(s), %d error(s)", path, len(m.Functions), len(buildErrs))
	}
}
