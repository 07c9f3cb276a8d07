package module

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sigilaris/sigil/internal/xlog"
	"github.com/sigilaris/sigil/state"
)

// ModuleId routes a composed transaction to the mounted Module that should
// handle it. It is carried in the transaction envelope rather than
// inferred from payload shape, so routing never depends on guessing at a
// transaction's type.
type ModuleId = uuid.UUID

// Event is an application-defined fact a reducer emits alongside its
// state changes — a balance changed, a key was registered, a group was
// disbanded. Name is free text; Data is whatever payload the blueprint
// that emitted it wants attached.
type Event struct {
	Name string
	Data any
}

// TxResult is a reducer's successful outcome: any events it raised plus
// whatever typed result value the caller wants back.
type TxResult struct {
	Events []Event
	Data   any
}

// ReducerContext is everything a blueprint's reducer gets to see: its own
// owned tables (Owned), the narrowed subset of another blueprint's tables
// it declared in Needs, and the transaction payload to apply.
type ReducerContext struct {
	Owned TablesProvider
	Needs TablesProvider
	Tx    any
}

// Reducer is the pure transaction-application logic of a blueprint: given
// the tables it owns and needs, and a transaction, produce a StoreF
// computation that applies it.
type Reducer func(ctx ReducerContext) state.StoreF[TxResult]

// Blueprint is a mountable unit: the tables it owns, the names of tables
// it needs from elsewhere, and the reducer that interprets transactions
// against them.
type Blueprint struct {
	Owns    []TableSpec
	Needs   []string
	Reducer Reducer
}

// Module is a Blueprint mounted at a concrete Path: its tables are bound
// to real byte prefixes, its Needs are resolved against a supplied
// TablesProvider, and it has been assigned a ModuleId for routing.
type Module struct {
	Path     state.Path
	ModuleId ModuleId
	Owned    Schema
	Needs    TablesProvider
	Apply    func(tx any) state.StoreF[TxResult]
}

// Mount binds bp's owned tables to path, checks that the prefixes of bp's
// own tables are prefix-free among themselves, narrows needsProvider down
// to exactly bp.Needs, and returns the mounted Module. Tables of other
// mounted modules are not part of that check.
//
// needsProvider should be the Schema of every blueprint mounted so far in
// the same application, so bp's Needs can be resolved against it; pass an
// empty TablesProvider for a blueprint with no Needs.
func Mount(bp Blueprint, path state.Path, needsProvider TablesProvider) (*Module, error) {
	seen := make(map[string]bool, len(bp.Owns))
	owned := make(Schema, len(bp.Owns))
	pairs := make([]struct {
		Path state.Path
		Name string
	}, 0, len(bp.Owns))

	for _, spec := range bp.Owns {
		if seen[spec.Name] {
			xlog.Error("module mount failed: duplicate owned table", "path", path, "table", spec.Name)
			return nil, fmt.Errorf("module: blueprint declares %q more than once in Owns", spec.Name)
		}
		seen[spec.Name] = true

		prefix := state.TablePrefix(path, spec.Name)
		owned[spec.Name] = spec.Mount(prefix)
		pairs = append(pairs, struct {
			Path state.Path
			Name string
		}{Path: path, Name: spec.Name})
	}

	if err := state.ValidatePrefixFree(pairs); err != nil {
		xlog.Error("module mount failed: prefix collision", "path", path, "err", err)
		return nil, err
	}

	narrowed, err := needsProvider.Narrow(bp.Needs...)
	if err != nil {
		xlog.Error("module mount failed: unresolved need", "path", path, "needs", bp.Needs, "err", err)
		return nil, fmt.Errorf("module: mounting at %v: %w", path, err)
	}

	ownedProvider := NewTablesProvider(owned)
	reducer := bp.Reducer
	apply := func(tx any) state.StoreF[TxResult] {
		if reducer == nil {
			return state.Raise[TxResult](fmt.Errorf("module: blueprint at %v has no reducer", path))
		}
		return reducer(ReducerContext{Owned: ownedProvider, Needs: narrowed, Tx: tx})
	}

	id := uuid.New()
	xlog.Info("module mounted", "path", path, "moduleId", id, "tables", len(bp.Owns))
	return &Module{
		Path:     path,
		ModuleId: id,
		Owned:    owned,
		Needs:    narrowed,
		Apply:    apply,
	}, nil
}

// Provider exposes m's owned tables for another blueprint's Needs to
// narrow against when it is mounted.
func (m *Module) Provider() TablesProvider { return NewTablesProvider(m.Owned) }
