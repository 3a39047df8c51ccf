package cplscheme

import "github.com/mpcouple/coupler/mesh"

// CouplingData tracks one exchanged field across time windows and
// iterations: the live values buffer (owned by Mesh, not by CouplingData —
// this record only ever holds a pointer to the owning Data, never a raw
// pointer into its Values slice), a pending write not yet swapped in, and
// a bounded history for convergence measures and rollback.
type CouplingData struct {
	// Data is the field this record tracks. Its Values slice is the
	// "current" values the coupling scheme reads and writes between
	// exchanges; CouplingData never takes a sub-slice pointer into it,
	// since Swap replaces the slice wholesale.
	Data *mesh.Data
	Mesh *mesh.Mesh

	// Initialize marks a field whose values must be seeded by the
	// owning solver before the first exchange, rather than starting at
	// the zero value.
	Initialize bool
	Dimension  int

	// NewValues holds a value written during the current iteration that
	// has not yet been swapped into Data.Values.
	NewValues []float64

	// OldValues is a bounded history: index 0 is the previous iteration
	// within the current time window, later indices are previous time
	// windows. Swap prepends the values displaced by the swap and
	// truncates to maxHistory.
	OldValues [][]float64

	checkpoint []float64
}

// Swap moves NewValues into the live Data.Values (leaving NewValues unset
// for the next write), and records the values it displaced as the newest
// history entry, truncating to maxHistory columns. Calling Swap a second
// time with NewValues set back to OldValues[0] returns the live values to
// exactly what they were before the first Swap.
func (cd *CouplingData) Swap(maxHistory int) {
	displaced := append([]float64(nil), cd.Data.Values...)
	if cd.NewValues != nil {
		cd.Data.Values = cd.NewValues
		cd.NewValues = nil
	}
	hist := append([][]float64{displaced}, cd.OldValues...)
	if maxHistory > 0 && len(hist) > maxHistory {
		hist = hist[:maxHistory]
	}
	cd.OldValues = hist
}

// Store snapshots the live values for a later Restore — used at the start
// of an implicit iteration so a failed convergence check can roll back.
func (cd *CouplingData) Store() {
	cd.checkpoint = append([]float64(nil), cd.Data.Values...)
}

// Restore overwrites the live values with the last Store snapshot.
func (cd *CouplingData) Restore() {
	if cd.checkpoint == nil {
		return
	}
	cd.Data.Values = append([]float64(nil), cd.checkpoint...)
}

// Previous returns the values from n iterations back (n=1 is the most
// recent previous iteration), or nil if history doesn't reach that far.
func (cd *CouplingData) Previous(n int) []float64 {
	if n <= 0 || n > len(cd.OldValues) {
		return nil
	}
	return cd.OldValues[n-1]
}

// SnapshotIteration records this iteration's candidate (NewValues if the
// round wrote one, otherwise the unchanged live values) as OldValues[0],
// the baseline the next iteration's convergence measures compare against.
// Called once per implicit iteration, unlike Swap, which only updates
// history at window commit.
func (cd *CouplingData) SnapshotIteration() {
	candidate := cd.NewValues
	if candidate == nil {
		candidate = cd.Data.Values
	}
	snap := append([]float64(nil), candidate...)
	if len(cd.OldValues) == 0 {
		cd.OldValues = [][]float64{snap}
		return
	}
	cd.OldValues[0] = snap
}
