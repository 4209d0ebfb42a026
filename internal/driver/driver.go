// Package driver runs the build -> optimise -> generate pipeline over
// one or many independent translation units, per spec.md §5's
// concurrency model: "multiple modules may be processed in parallel by
// independent workers sharing no state". Grounded on the teacher's
// internal/lsp/handler.go concurrency posture (a protected shared
// document/diagnostics map guarded by a mutex around otherwise
// independent per-document work), generalized here to a bounded worker
// pool over translation units instead of LSP documents.
package driver

import (
	"runtime"
	"sync"

	deadlock "github.com/sasha-s/go-deadlock"

	"ducc/internal/ast"
	"ducc/internal/ir"
)

// Unit is one translation unit to compile: a name (for diagnostics) and
// its already-parsed, already-semantically-annotated AST. Parsing and
// semantic analysis are themselves embarrassingly parallel but are not
// this package's concern; driver.CompileAll only owns the IR phase.
type Unit struct {
	Name string
	Prog *ast.Program
}

// Result is one Unit's compiled output: its Module and any errors the
// builder accumulated. ir.Build always returns a Module; when it reported
// errors, that Module is the partial output and has not been optimised.
type Result struct {
	Name   string
	Module *ir.Module
	Errors []error
}

// CompileAll builds and optimises every unit concurrently over a
// bounded worker pool sized to runtime.GOMAXPROCS, matching spec.md
// §5's "independent workers sharing no state" — each worker owns its
// own Builder and Module exclusively for the duration of one Unit.
// Generation is left to the caller (see DumpAll). The state shared
// across workers is the results slice, pre-sized and written by index
// without the lock (no two workers ever touch the same slot), and an
// aggregated error count, which is the only thing guarded by
// go-deadlock's Mutex instead of sync.Mutex so a future addition that
// introduces a second lock gets cycle detection for free — the same
// defensive-locking posture the teacher's internal/lsp/handler.go takes
// with its document map's sync.RWMutex.
func CompileAll(units []Unit) []Result {
	results := make([]Result, len(units))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(units) {
		workers = len(units)
	}
	if workers < 1 {
		workers = 1
	}

	var mu deadlock.Mutex
	totalErrors := 0

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				u := units[idx]
				m, errs := ir.Build(u.Prog)
				if len(errs) == 0 {
					for _, fn := range m.Functions {
						ir.OptimizeFunction(m.Values, fn)
					}
				}

				mu.Lock()
				totalErrors += len(errs)
				mu.Unlock()

				results[idx] = Result{Name: u.Name, Module: m, Errors: errs}
			}
		}()
	}
	for i := range units {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// TotalErrors sums every Result's error count, a convenience for
// callers that just want a pass/fail signal across a whole compile.
func TotalErrors(results []Result) int {
	n := 0
	for _, r := range results {
		n += len(r.Errors)
	}
	return n
}

// DumpAll renders every successfully built Result's Module via
// ir.Dump, skipping those whose build reported errors (their Module is
// only partial output) or that carry no Module.
func DumpAll(results []Result) map[string]string {
	out := make(map[string]string, len(results))
	for _, r := range results {
		if r.Module == nil || len(r.Errors) > 0 {
			continue
		}
		out[r.Name] = ir.Dump(r.Module)
	}
	return out
}
