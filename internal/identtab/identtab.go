// Package identtab implements the identifier table / syntax context that
// spec.md lists as an external collaborator: it maps identifier ids to
// their declared spellings (Latin and Cyrillic) and declared types.
//
// Grounded on original_source/libs/macro/parser.c's to_reprtab_full, which
// registers each keyword/identifier under four spellings (upper/lower
// Latin, upper/lower Cyrillic) in a packed representation table; this
// package keeps the dual-spelling idea but reimplements the table as a
// plain Go slice+map instead of RuC's packed vector.
package identtab

import "ducc/internal/types"

// Dialect selects which spelling of an identifier to render.
type Dialect int

const (
	Latin Dialect = iota
	Cyrillic
)

// ID is a stable identifier handle into a Table.
type ID int

type entry struct {
	latin    string
	cyrillic string
	typ      types.Type
}

// Table owns identifier spellings and their declared types. No other
// package in this module populates or consults it: internal/semantic
// resolves names through its own scope chain, and the IR builder through
// its own per-function name maps.
type Table struct {
	entries []entry
	byLatin map[string]ID
}

// New creates an empty identifier table.
func New() *Table {
	return &Table{byLatin: make(map[string]ID)}
}

// Declare registers a new identifier with both spellings and its declared
// type, returning a fresh ID. cyrillic may be empty if the identifier was
// only ever spelled in Latin script.
func (t *Table) Declare(latin, cyrillic string, typ types.Type) ID {
	id := ID(len(t.entries))
	t.entries = append(t.entries, entry{latin: latin, cyrillic: cyrillic, typ: typ})
	if latin != "" {
		t.byLatin[latin] = id
	}
	return id
}

// Lookup resolves a Latin spelling to its ID, if declared.
func (t *Table) Lookup(latin string) (ID, bool) {
	id, ok := t.byLatin[latin]
	return id, ok
}

// Spelling returns the identifier's spelling in the requested dialect,
// falling back to the Latin spelling when no Cyrillic form was recorded.
func (t *Table) Spelling(id ID, d Dialect) string {
	e := t.entries[id]
	if d == Cyrillic && e.cyrillic != "" {
		return e.cyrillic
	}
	return e.latin
}

// Type returns the declared type of id.
func (t *Table) Type(id ID) types.Type {
	return t.entries[id].typ
}

// SetType updates the declared type of an already-registered identifier
// (used when a forward reference's type is refined during semantic
// analysis).
func (t *Table) SetType(id ID, typ types.Type) {
	e := t.entries[id]
	e.typ = typ
	t.entries[id] = e
}
