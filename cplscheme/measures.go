package cplscheme

import "gonum.org/v1/gonum/floats"

// MeasureKind selects the convergence test a Measure applies.
type MeasureKind int

const (
	// Absolute converges once the L2 norm of the change since the
	// previous iteration drops below Limit.
	Absolute MeasureKind = iota
	// Relative converges once that change, relative to the L2 norm of
	// the current values, drops below Limit.
	Relative
	// ResidualRelative converges once the current iteration's residual
	// norm, relative to the first iteration's residual norm within this
	// time window, drops below Limit.
	ResidualRelative
	// MinIterations converges only once at least MinIterCount rounds
	// have run, regardless of how the data behaves — used to force a
	// minimum number of coupling iterations per window.
	MinIterations
)

// Measure is one convergence test the second participant evaluates every
// iteration of an implicit scheme. A window only converges once every
// configured Measure agrees (conjunction).
type Measure struct {
	Kind          MeasureKind
	Limit         float64
	Data          *CouplingData
	MinIterCount  int
	firstResidual float64
	haveFirst     bool
}

// Reset clears per-window state (the residual-relative baseline) at the
// start of a new time window.
func (m *Measure) Reset() {
	m.haveFirst = false
	m.firstResidual = 0
}

// Converged evaluates this measure for the current iteration number
// (1-based, counting the iteration about to be judged).
func (m *Measure) Converged(iteration int) bool {
	switch m.Kind {
	case MinIterations:
		return iteration >= m.MinIterCount
	case Absolute:
		return m.residualNorm() < m.Limit
	case Relative:
		norm := floats.Norm(m.candidate(), 2)
		if norm == 0 {
			return m.residualNorm() < m.Limit
		}
		return m.residualNorm()/norm < m.Limit
	case ResidualRelative:
		r := m.residualNorm()
		if !m.haveFirst {
			m.haveFirst = true
			m.firstResidual = r
			return r == 0
		}
		if m.firstResidual == 0 {
			return r == 0
		}
		return r/m.firstResidual < m.Limit
	default:
		return false
	}
}

// candidate is the values this iteration actually exchanged: NewValues if
// the round wrote one (the common case, mid-iteration, before commit),
// falling back to the live values pre-exchange.
func (m *Measure) candidate() []float64 {
	if m.Data.NewValues != nil {
		return m.Data.NewValues
	}
	return m.Data.Data.Values
}

// residualNorm is the L2 norm of the change between this iteration's
// candidate and the previous iteration's values. With no prior iteration
// yet recorded, the residual is taken to be the candidate itself (first
// write in the window), matching the behavior a brand-new field's first
// iteration must have to avoid a spurious convergence on window one.
func (m *Measure) residualNorm() float64 {
	cur := m.candidate()
	prev := m.Data.Previous(1)
	if prev == nil {
		return floats.Norm(cur, 2)
	}
	diff := make([]float64, len(cur))
	copy(diff, cur)
	floats.Sub(diff, prev)
	return floats.Norm(diff, 2)
}
