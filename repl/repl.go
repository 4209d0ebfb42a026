// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"

	"ducc/internal/ir"
	"ducc/internal/parser"
	"ducc/internal/semantic"
	"ducc/internal/types"
)

const PROMPT = ">> "

// Start runs a line-at-a-time read-eval-print loop: each line is parsed
// as a standalone translation unit, semantically annotated, lowered to
// IR, locally optimised, and dumped in spec.md §6's textual form.
// Grounded on the teacher's repl/repl.go shape (bufio.Scanner over in,
// print the parsed form back), extended from "print the AST" to
// "print the optimised IR dump" since that is this repo's deliverable.
func Start(in io.Reader) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Print(PROMPT)
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		reg := types.NewRegistry()
		p := parser.New(line, reg)
		prog, err := p.ParseProgram()
		if err != nil {
			color.Red("parse error: %s", err)
			continue
		}

		an := semantic.New(reg)
		if errs := an.Analyze(prog); len(errs) > 0 {
			for _, e := range errs {
				color.Red("semantic error: %s", e)
			}
			continue
		}

		m, errs := ir.Build(prog)
		if len(errs) > 0 {
			for _, e := range errs {
				color.Red("build error: %s", e)
			}
			continue
		}
		for _, fn := range m.Functions {
			ir.OptimizeFunction(m.Values, fn)
		}

		color.Green("%s", ir.Dump(m))
	}
}
