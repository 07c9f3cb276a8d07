// Package module implements the blueprint system: grouping a set of
// tables and a reducer into a unit that can be mounted at a path, and
// composing several such units into one application's state machine.
//
// A blueprint's owned tables would, in a language with dependent types,
// be a compile-time tuple indexed by name. Go has no such thing, so Owns
// is a runtime list of TableSpecs and Schema is a runtime map from name to
// a type-erased table handle; Lookup recovers the concrete type with a
// single type assertion at the point a reducer actually needs a table,
// the same trade the rest of this module makes wherever the design notes
// call for evidence a dependently-typed host would carry at compile time.
package module

import "fmt"

// TableSpec describes one table a blueprint owns: its name, and a
// function that mounts it at a concrete byte prefix, producing a
// type-erased handle — concretely a state.Table[K,V] or
// state.OrderedTable[K,V] — that Lookup recovers with a type assertion.
type TableSpec struct {
	Name  string
	Mount func(prefix []byte) any
}

// Schema is the runtime stand-in for a compile-time tuple of mounted
// tables: table name to type-erased handle.
type Schema map[string]any

// TablesProvider hands a reducer exactly the tables it is entitled to see
// — either the full set a blueprint owns, or the narrowed subset another
// blueprint's Needs declared.
type TablesProvider struct {
	schema Schema
}

// NewTablesProvider wraps an already-mounted Schema.
func NewTablesProvider(schema Schema) TablesProvider {
	return TablesProvider{schema: schema}
}

// Narrow returns a provider exposing only the named tables, failing if any
// of them is absent from p. Mount calls this once per blueprint against
// the composed set of everything mounted so far, the runtime check
// standing in for a compile-time Requires constraint.
func (p TablesProvider) Narrow(names ...string) (TablesProvider, error) {
	out := make(Schema, len(names))
	for _, n := range names {
		h, ok := p.schema[n]
		if !ok {
			return TablesProvider{}, fmt.Errorf("module: table %q not available to narrow", n)
		}
		out[n] = h
	}
	return TablesProvider{schema: out}, nil
}

// Lookup recovers a concrete table type from p by name, the runtime
// substitute for the compile-time Lookup(Provides, Name) evidence the
// design notes describe. Call it with the concrete state.Table[K,V] or
// state.OrderedTable[K,V] type as T.
func Lookup[T any](p TablesProvider, name string) (T, error) {
	var zero T
	h, ok := p.schema[name]
	if !ok {
		return zero, fmt.Errorf("module: table %q not found", name)
	}
	t, ok := h.(T)
	if !ok {
		return zero, fmt.Errorf("module: table %q is not of the requested type", name)
	}
	return t, nil
}

// merge combines two schemas, failing if they share a name.
func (p TablesProvider) merge(o TablesProvider) (TablesProvider, error) {
	out := make(Schema, len(p.schema)+len(o.schema))
	for k, v := range p.schema {
		out[k] = v
	}
	for k, v := range o.schema {
		if _, exists := out[k]; exists {
			return TablesProvider{}, fmt.Errorf("module: table name %q mounted twice", k)
		}
		out[k] = v
	}
	return TablesProvider{schema: out}, nil
}
