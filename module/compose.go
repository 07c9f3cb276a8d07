package module

import (
	"fmt"

	"github.com/sigilaris/sigil/internal/xlog"
	"github.com/sigilaris/sigil/state"
)

// RoutedTx pairs a transaction payload with the ModuleId of the mounted
// Module that should apply it — the envelope shape a composed
// application's transactions carry on the wire.
type RoutedTx struct {
	ModuleId ModuleId
	Tx       any
}

// Composed is several Modules combined into one application: applying a
// RoutedTx dispatches to whichever Module owns its ModuleId. This is the
// recommended way to combine modules — routing is explicit in the
// envelope, so two modules can own tables with the same local name
// without any risk of one silently shadowing the other's reducer.
type Composed struct {
	byID map[ModuleId]*Module
}

// Compose indexes modules by ModuleId. Mounting each module before
// composing (rather than composing blueprints directly) is what lets
// Needs be resolved against an arbitrary earlier subset of the
// application's modules.
func Compose(modules ...*Module) *Composed {
	byID := make(map[ModuleId]*Module, len(modules))
	for _, m := range modules {
		byID[m.ModuleId] = m
	}
	return &Composed{byID: byID}
}

// Apply routes rtx to the module it names.
func (c *Composed) Apply(rtx RoutedTx) state.StoreF[TxResult] {
	m, ok := c.byID[rtx.ModuleId]
	if !ok {
		xlog.Error("reducer dispatch failed: unknown module id", "moduleId", rtx.ModuleId)
		return state.Raise[TxResult](fmt.Errorf("module: no mounted module for id %s", rtx.ModuleId))
	}
	xlog.Debug("reducer dispatch", "moduleId", rtx.ModuleId, "path", m.Path)
	return m.Apply(rtx.Tx)
}

// Extend merges two modules mounted at the same path into one whose
// reducer tries m1's first and falls back to m2's if m1 fails. This
// collapses "transaction doesn't belong to this module" and "transaction
// belongs to this module but is invalid" into the same failure path, so
// Compose's explicit routing is the preferred way to combine modules;
// Extend exists only for the narrow case of two blueprints meant to
// interpret the exact same transaction shape with one as a fallback for
// the other.
func Extend(m1, m2 *Module) (*Module, error) {
	if !pathsEqual(m1.Path, m2.Path) {
		return nil, fmt.Errorf("module: Extend requires matching paths, got %v and %v", m1.Path, m2.Path)
	}

	merged, err := m1.Provider().merge(m2.Provider())
	if err != nil {
		return nil, fmt.Errorf("module: Extend: %w", err)
	}

	apply := func(tx any) state.StoreF[TxResult] {
		return func(s state.StoreState) (state.StoreState, TxResult, error) {
			s1, res, err := state.Run(m1.Apply(tx), s)
			if err == nil {
				return s1, res, nil
			}
			xlog.Debug("reducer dispatch: falling back to extended module", "path", m1.Path, "err", err)
			return state.Run(m2.Apply(tx), s)
		}
	}

	return &Module{
		Path:     m1.Path,
		ModuleId: m1.ModuleId,
		Owned:    merged.schema,
		Needs:    m1.Needs,
		Apply:    apply,
	}, nil
}

func pathsEqual(a, b state.Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
