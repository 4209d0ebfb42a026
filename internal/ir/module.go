package ir

import (
	"ducc/internal/types"

	"github.com/segmentio/ksuid"
)

// Extern is a function declared but defined outside this translation
// unit, per spec.md §3's Module.externs.
type Extern struct {
	Name       string
	ParamTypes []types.Type
	ReturnType types.Type
}

// Module is one translation unit's fully lowered IR: its externs,
// global variables, functions, and the shared value pool they all draw
// operands from. BuildID stamps each Module with a k-sortable unique
// identifier so a driver compiling many modules concurrently (spec.md
// §5) can correlate diagnostics and dump output back to the module that
// produced them.
type Module struct {
	BuildID   string
	Externs   []*Extern
	Globals   []*Value
	Functions []*Function
	Values    *Pool

	identToGlobal map[string]*Value
}

// NewModule creates an empty Module with a fresh BuildID.
func NewModule() *Module {
	return &Module{
		Values:        NewPool(),
		identToGlobal: map[string]*Value{},
		BuildID:       ksuid.New().String(),
	}
}

// AddExtern registers an extern declaration.
func (m *Module) AddExtern(name string, params []types.Type, ret types.Type) *Extern {
	e := &Extern{Name: name, ParamTypes: params, ReturnType: ret}
	m.Externs = append(m.Externs, e)
	return e
}

// AddGlobal registers a module-level variable and returns its Value.
func (m *Module) AddGlobal(name string, t types.Type) *Value {
	v := m.Values.NewGlobal(name, t)
	m.Globals = append(m.Globals, v)
	m.identToGlobal[name] = v
	return v
}

// Global resolves a previously added global by name.
func (m *Module) Global(name string) (*Value, bool) {
	v, ok := m.identToGlobal[name]
	return v, ok
}

// AddFunction registers a fully built function.
func (m *Module) AddFunction(f *Function) {
	m.Functions = append(m.Functions, f)
}

// Validate checks every function's block invariants.
func (m *Module) Validate() error {
	for _, f := range m.Functions {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}
