package cplscheme

import "github.com/pkg/errors"

// Action tags a solver must acknowledge before the scheme proceeds.
// Implicit schemes require the solver to save its own state before each
// convergence attempt and reload it after a rollback, in addition to
// whatever Checkpoint the scheme itself drives — a solver that keeps
// state the Checkpoint hook doesn't reach (e.g. a restart file) polls
// these instead of wiring a Checkpoint.
const (
	ActionWriteIterationCheckpoint = "write-iteration-checkpoint"
	ActionReadIterationCheckpoint  = "read-iteration-checkpoint"
)

// Participant is the solver-facing facade over a CouplingScheme: the
// initialize/advance/finalize lifecycle, bounds-checked block data
// access by local vertex id, and the action-tag handshake
// for solver-managed checkpoint state.
type Participant struct {
	Scheme *CouplingScheme

	pending map[string]bool
}

// NewParticipant wraps scheme in a Participant facade.
func NewParticipant(scheme *CouplingScheme) *Participant {
	return &Participant{Scheme: scheme, pending: make(map[string]bool)}
}

// Initialize runs the scheme's initial-data exchange and returns the
// largest internal step the solver may take before the next Advance.
func (p *Participant) Initialize() (float64, error) {
	if err := p.Scheme.Initialize(); err != nil {
		return 0, err
	}
	return p.Scheme.MaxDt(), nil
}

// Advance runs computedDt of solver progress through the scheme and
// returns the largest internal step the solver may take next. When an
// implicit window is about to test convergence it raises
// ActionWriteIterationCheckpoint before exchanging, and
// ActionReadIterationCheckpoint after a rollback — a solver not wired
// through the Checkpoint hook should act on these before calling Advance
// again.
func (p *Participant) Advance(computedDt float64) (float64, error) {
	if p.Scheme.Type.implicit() {
		p.pending[ActionWriteIterationCheckpoint] = true
	}
	prevIteration := p.Scheme.iteration
	if err := p.Scheme.Advance(computedDt); err != nil {
		return 0, err
	}
	if p.Scheme.Type.implicit() && p.Scheme.windowDone && prevIteration > 1 {
		p.pending[ActionReadIterationCheckpoint] = true
	}
	return p.Scheme.MaxDt(), nil
}

// Finalize closes out the scheme.
func (p *Participant) Finalize() error { return p.Scheme.Finalize() }

// IsCouplingOngoing reports whether Advance should be called again.
func (p *Participant) IsCouplingOngoing() bool { return p.Scheme.IsCouplingOngoing() }

// IsTimeWindowComplete reports whether the most recent Advance closed
// out a time window, as opposed to only buffering a sub-cycling step.
func (p *Participant) IsTimeWindowComplete() bool { return p.Scheme.IsTimeWindowComplete() }

// IsActionRequired reports whether tag is still pending acknowledgment.
func (p *Participant) IsActionRequired(tag string) bool { return p.pending[tag] }

// MarkActionFulfilled clears tag, acknowledging the solver has acted on it.
func (p *Participant) MarkActionFulfilled(tag string) { delete(p.pending, tag) }

// WriteBlockVectorData writes values (vertex-major, cd.Dimension
// components per vertex) into cd's pending-write buffer at the given
// local vertex ids, bounds-checked against len(localIDs)*cd.Dimension.
func (p *Participant) WriteBlockVectorData(cd *CouplingData, localIDs []int, values []float64) error {
	dim := cd.Dimension
	if len(values) != len(localIDs)*dim {
		return errors.Errorf("write_block_vector_data: got %d values for %d ids at dimension %d", len(values), len(localIDs), dim)
	}
	if cd.NewValues == nil {
		cd.NewValues = append([]float64(nil), cd.Data.Values...)
	}
	for i, id := range localIDs {
		if id < 0 || (id+1)*dim > len(cd.NewValues) {
			return errors.Errorf("write_block_vector_data: local id %d out of range", id)
		}
		copy(cd.NewValues[id*dim:(id+1)*dim], values[i*dim:(i+1)*dim])
	}
	return nil
}

// ReadBlockVectorData reads cd's current live values at the given local
// vertex ids, bounds-checked the same way WriteBlockVectorData is.
func (p *Participant) ReadBlockVectorData(cd *CouplingData, localIDs []int) ([]float64, error) {
	dim := cd.Dimension
	out := make([]float64, len(localIDs)*dim)
	for i, id := range localIDs {
		if id < 0 || (id+1)*dim > len(cd.Data.Values) {
			return nil, errors.Errorf("read_block_vector_data: local id %d out of range", id)
		}
		copy(out[i*dim:(i+1)*dim], cd.Data.Values[id*dim:(id+1)*dim])
	}
	return out, nil
}
