package cplscheme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Swap then swap again with NewValues set back to the history it
// displaced restores the live values bit-exactly,
// once history depth reaches at least 2.
func TestSwapTwiceRestoresOriginalValues(t *testing.T) {
	m, d := scalarMesh(t, "side")
	registry := NewRegistry()
	cd := registry.Register(m, d, false)
	cd.Data.Values[0] = 1.0

	cd.NewValues = []float64{2.0}
	cd.Swap(2)
	assert.Equal(t, []float64{2.0}, cd.Data.Values)
	require.Len(t, cd.OldValues, 1)
	assert.Equal(t, []float64{1.0}, cd.OldValues[0])

	cd.NewValues = append([]float64(nil), cd.OldValues[0]...)
	cd.Swap(2)
	assert.Equal(t, []float64{1.0}, cd.Data.Values)
	require.Len(t, cd.OldValues, 2)
}

func TestStoreRestoreRoundTrips(t *testing.T) {
	m, d := scalarMesh(t, "side")
	registry := NewRegistry()
	cd := registry.Register(m, d, false)
	cd.Data.Values[0] = 5.0

	cd.Store()
	cd.Data.Values[0] = 99.0
	cd.Restore()
	assert.Equal(t, 5.0, cd.Data.Values[0])
}

func TestRegistryLookupMissingIsFalse(t *testing.T) {
	m, d := scalarMesh(t, "side")
	other, otherData := scalarMesh(t, "other")
	registry := NewRegistry()
	registry.Register(m, d, false)

	_, ok := registry.Lookup(other, otherData)
	assert.False(t, ok)
}

func TestMaxHistoryTruncatesOldValues(t *testing.T) {
	m, d := scalarMesh(t, "side")
	registry := NewRegistry()
	cd := registry.Register(m, d, false)

	for i := 0; i < 5; i++ {
		cd.NewValues = []float64{float64(i)}
		cd.Swap(2)
	}
	assert.Len(t, cd.OldValues, 2)
}
