// Package cplscheme implements the coupling protocol state: the
// CouplingData registry backing every exchanged field, and the
// CouplingScheme state machine that drives time-window advancement,
// convergence iteration, and checkpoint/rollback.
package cplscheme

import (
	"github.com/google/uuid"
	"github.com/mpcouple/coupler/mesh"
)

// Handle identifies a registered CouplingData by the mesh and data it
// belongs to. A naive map keyed by (mesh id, data id) invites a
// default-constructible CouplingData that panics if ever actually used —
// a trap for map-indexing code. Handle/Registry.Lookup return a
// (value, ok) pair instead, so an unset entry is never silently
// constructed.
type Handle struct {
	MeshID uuid.UUID
	DataID uuid.UUID
}

// Registry maps (mesh-id, data-id) to the CouplingData record the scheme
// exchanges for that pair.
type Registry struct {
	entries map[Handle]*CouplingData
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Handle]*CouplingData)}
}

// Register creates and stores a CouplingData for (m, d), called once
// during configuration for every exchanged field. initialize marks
// whether this field must be filled with non-zero initial values before
// the first exchange.
func (r *Registry) Register(m *mesh.Mesh, d *mesh.Data, initialize bool) *CouplingData {
	cd := &CouplingData{
		Data:       d,
		Mesh:       m,
		Initialize: initialize,
		Dimension:  d.Dimension,
	}
	r.entries[handleOf(m, d)] = cd
	return cd
}

// Lookup returns the CouplingData for (m, d) and whether it was found.
func (r *Registry) Lookup(m *mesh.Mesh, d *mesh.Data) (*CouplingData, bool) {
	cd, ok := r.entries[handleOf(m, d)]
	return cd, ok
}

// All returns every registered CouplingData, for operations (swap on
// commit, store/restore on checkpoint) that apply uniformly across the
// whole registry.
func (r *Registry) All() []*CouplingData {
	out := make([]*CouplingData, 0, len(r.entries))
	for _, cd := range r.entries {
		out = append(out, cd)
	}
	return out
}

func handleOf(m *mesh.Mesh, d *mesh.Data) Handle {
	return Handle{MeshID: m.ID, DataID: d.ID}
}
