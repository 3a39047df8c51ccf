package cplscheme

import (
	"github.com/mpcouple/coupler/errs"
	"github.com/mpcouple/coupler/internal/diag"
	"github.com/mpcouple/coupler/m2n"
	"github.com/pkg/errors"
)

var (
	errDoubleInit     = errors.New("Initialize called more than once")
	errNotInitialized = errors.New("Advance called before Initialize")
	errAlreadyDone    = errors.New("Advance called after coupling finished")
)

// Role distinguishes the two participants of a two-party coupling scheme.
// Ordering matters: serial schemes always run the first participant's
// send before the second's, and only the second participant evaluates
// convergence measures.
type Role int

const (
	First Role = iota
	Second
)

// Type selects one of the four coupling protocols: serial
// participants run strictly in turn, parallel participants exchange in
// the same round; explicit schemes never iterate within a window,
// implicit schemes iterate until every Measure converges.
type Type int

const (
	SerialExplicit Type = iota
	ParallelExplicit
	SerialImplicit
	ParallelImplicit
)

func (t Type) implicit() bool {
	return t == SerialImplicit || t == ParallelImplicit
}

func (t Type) serial() bool {
	return t == SerialExplicit || t == SerialImplicit
}

// Exchange binds one CouplingData to the m2n channel carrying it and
// records which participant writes it. Configuration order across
// Exchanges is the order operations are applied in: sends happen in
// slice order and receives happen in slice order; whether a participant's
// sends or its receives come first is set by exchangeRound.
type Exchange struct {
	Data    *CouplingData
	From    Role
	Channel m2n.DistributedCommunication
	Rank    int
}

// ConvergenceLink carries the one-bit convergence verdict the second
// participant broadcasts to the first at the end of every implicit
// iteration, so both sides advance or roll back in lockstep without
// re-deriving the measures on both ends. transport.Transport satisfies
// this directly.
type ConvergenceLink interface {
	SendBool(v bool) error
	ReceiveBool() (bool, error)
}

// Checkpoint lets a solver register extra state (outside any
// CouplingData) that must roll back alongside the exchanged fields when
// an implicit iteration fails to converge.
type Checkpoint interface {
	Store()
	Restore()
}

// CouplingScheme drives time-window advancement for one participant: it
// owns that participant's Exchanges, evaluates Measures (implicit
// schemes only), and exposes the state a solver polls to decide whether
// to keep stepping, write a checkpoint, or stop.
type CouplingScheme struct {
	Participant string
	Rank        int
	Role        Role
	Type        Type

	// Dt is the fixed time-window size this scheme advances by. A
	// solver's own internal step may be smaller (sub-cycling): Advance
	// accumulates sub-steps and only exchanges once their sum reaches
	// Dt.
	Dt            float64
	MaxTime       float64
	MaxWindows    int
	MaxIterations int
	MaxHistory    int

	Exchanges []Exchange
	Measures  []Measure
	// Registry, when set, is the authoritative set of CouplingData that
	// Store/Restore/Swap apply to on checkpoint/commit — wider than
	// Exchanges when fields are registered for this participant but not
	// carried by any Exchange this scheme drives. Nil falls back to just
	// the Exchanges' own data.
	Registry *Registry
	Control  ConvergenceLink
	Solver   Checkpoint

	Log *diag.Logger

	t           float64
	windowT     float64
	window      int
	iteration   int
	windowDone  bool
	done        bool
	initialized bool
}

// IsCouplingOngoing reports whether another Advance call is expected —
// false once MaxTime or MaxWindows has been reached.
func (cs *CouplingScheme) IsCouplingOngoing() bool {
	return !cs.done
}

// IsTimeWindowComplete reports whether the time window active when
// Advance last returned was exchanged and, for implicit schemes,
// converged — as opposed to only having accumulated a sub-cycling step.
func (cs *CouplingScheme) IsTimeWindowComplete() bool {
	return cs.windowDone
}

// Time returns the total coupled time advanced so far.
func (cs *CouplingScheme) Time() float64 { return cs.t }

// TimeWindow returns the 0-based index of the time window currently (or
// most recently) active.
func (cs *CouplingScheme) TimeWindow() int { return cs.window }

// Iteration returns the 1-based index of the implicit iteration
// currently (or most recently) active. Explicit schemes are always at 1.
func (cs *CouplingScheme) Iteration() int { return cs.iteration }

// MaxDt returns the largest internal step the solver may take without
// overshooting the end of the current time window.
func (cs *CouplingScheme) MaxDt() float64 {
	if cs.done {
		return 0
	}
	remaining := cs.Dt - cs.windowT
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Initialize performs the first data exchange if any Exchange's data is
// flagged Initialize, before the first window. Must be called exactly
// once before the first Advance.
func (cs *CouplingScheme) Initialize() error {
	if cs.initialized {
		return errs.Usage(cs.Participant, cs.Rank, "Initialize", errDoubleInit)
	}
	cs.initialized = true
	cs.iteration = 1
	needsInit := false
	for _, ex := range cs.Exchanges {
		if ex.Data.Initialize {
			needsInit = true
		}
	}
	if !needsInit {
		return nil
	}
	return cs.exchangeRound()
}

// Advance accumulates computedDt of solver progress and, once the
// accumulated sub-steps reach Dt, runs one coupling round: a single
// send/receive pass for explicit schemes, or iterated send/receive with
// convergence checking for implicit schemes. It returns only once the
// round (if any) has fully settled — converged, or bounded out at
// MaxIterations.
func (cs *CouplingScheme) Advance(computedDt float64) error {
	if !cs.initialized {
		return errs.Usage(cs.Participant, cs.Rank, "Advance", errNotInitialized)
	}
	if !cs.IsCouplingOngoing() {
		return errs.Usage(cs.Participant, cs.Rank, "Advance", errAlreadyDone)
	}

	cs.windowT += computedDt
	cs.t += computedDt
	cs.windowDone = false

	if cs.windowT+1e-12 < cs.Dt {
		return nil // sub-cycling: solver hasn't finished this window yet
	}
	cs.windowT = 0

	if cs.Type.implicit() {
		if err := cs.runImplicitRound(); err != nil {
			return err
		}
	} else {
		if err := cs.exchangeRound(); err != nil {
			return err
		}
		cs.commitWindow()
	}

	cs.windowDone = true
	cs.window++
	cs.iteration = 1
	for i := range cs.Measures {
		cs.Measures[i].Reset()
	}

	if cs.MaxWindows > 0 && cs.window >= cs.MaxWindows {
		cs.done = true
	}
	if cs.MaxTime > 0 && cs.t+1e-12 >= cs.MaxTime {
		cs.done = true
	}
	return nil
}

// Finalize releases nothing this implementation owns directly, but gives
// a symmetric bracket to Initialize and a place for a future teardown
// step (closing Control, flushing logs) without changing callers.
func (cs *CouplingScheme) Finalize() error {
	cs.logf(false, "coupling finished after %d windows, t=%.6g", cs.window, cs.t)
	return nil
}

// logf routes through Log if the caller configured one, and is a no-op
// otherwise — Log is optional, unlike the rest of this struct's fields.
func (cs *CouplingScheme) logf(warn bool, format string, args ...any) {
	if cs.Log == nil {
		return
	}
	if warn {
		cs.Log.Warnf(format, args...)
		return
	}
	cs.Log.Infof(format, args...)
}

// checkpointData is the full set of CouplingData that Store/Restore/Swap
// apply to. When Registry is set it is the authoritative superset — it can
// hold fields registered for this participant that no Exchange carries
// over the wire this round, and those still need checkpoint consistency.
// Without a Registry, the Exchanges' own data is the only data in play.
func (cs *CouplingScheme) checkpointData() []*CouplingData {
	if cs.Registry != nil {
		return cs.Registry.All()
	}
	out := make([]*CouplingData, len(cs.Exchanges))
	for i := range cs.Exchanges {
		out[i] = cs.Exchanges[i].Data
	}
	return out
}

func (cs *CouplingScheme) runImplicitRound() error {
	for _, cd := range cs.checkpointData() {
		cd.Store()
	}
	if cs.Solver != nil {
		cs.Solver.Store()
	}

	for {
		if err := cs.exchangeRound(); err != nil {
			return err
		}

		converged, err := cs.evaluateConvergence()
		if err != nil {
			return err
		}

		for i := range cs.Exchanges {
			cs.Exchanges[i].Data.SnapshotIteration()
		}

		if converged || cs.iteration >= cs.MaxIterations {
			if !converged {
				cs.logf(true, "window %d did not converge within %d iterations", cs.window, cs.MaxIterations)
			}
			cs.commitWindow()
			return nil
		}

		for _, cd := range cs.checkpointData() {
			cd.Restore()
		}
		if cs.Solver != nil {
			cs.Solver.Restore()
		}
		cs.iteration++
	}
}

// evaluateConvergence runs every Measure (only meaningful on the second
// participant, whose exchanges carry the values being measured) and
// broadcasts the conjunction as a single bit over Control so both
// participants act on the same verdict.
func (cs *CouplingScheme) evaluateConvergence() (bool, error) {
	if cs.Role == Second {
		converged := true
		for i := range cs.Measures {
			if !cs.Measures[i].Converged(cs.iteration) {
				converged = false
				break
			}
		}
		if err := cs.Control.SendBool(converged); err != nil {
			return false, err
		}
		return converged, nil
	}
	return cs.Control.ReceiveBool()
}

// commitWindow swaps every checkpointData field's pending write into its
// live values and checkpoints solver-side state, closing out the window.
func (cs *CouplingScheme) commitWindow() {
	for _, cd := range cs.checkpointData() {
		cd.Swap(cs.MaxHistory)
	}
	if cs.Solver != nil {
		cs.Solver.Store()
	}
}

// exchangeRound runs one send/receive pass across every Exchange, ordered
// per Type.serial: a serial scheme's first participant sends everything
// before the second sends anything back; a parallel scheme sends and
// receives in the same round with no ordering dependency between sides.
func (cs *CouplingScheme) exchangeRound() error {
	if cs.Type.serial() {
		if cs.Role == First {
			if err := cs.sendOwn(); err != nil {
				return err
			}
			return cs.recvPeer()
		}
		if err := cs.recvPeer(); err != nil {
			return err
		}
		return cs.sendOwn()
	}

	// Sends run alongside receives, so a send blocked until the peer reads
	// never waits on the peer's own send finishing first.
	sent := make(chan error, 1)
	go func() { sent <- cs.sendOwn() }()
	if err := cs.recvPeer(); err != nil {
		return err
	}
	return <-sent
}

func (cs *CouplingScheme) sendOwn() error {
	for _, ex := range cs.Exchanges {
		if ex.From != cs.Role {
			continue
		}
		values := ex.Data.Data.Values
		if ex.Data.NewValues != nil {
			values = ex.Data.NewValues
		}
		if err := ex.Channel.Send(ex.Rank, values, ex.Data.Dimension); err != nil {
			return err
		}
	}
	return nil
}

func (cs *CouplingScheme) recvPeer() error {
	for i := range cs.Exchanges {
		ex := &cs.Exchanges[i]
		if ex.From == cs.Role {
			continue
		}
		values, err := ex.Channel.Receive(ex.Rank, ex.Data.Dimension)
		if err != nil {
			return err
		}
		ex.Data.NewValues = values
	}
	return nil
}
