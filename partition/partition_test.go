package partition

import (
	"math/rand"
	"testing"

	"github.com/mpcouple/coupler/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGlobalMesh(t *testing.T, n int) *mesh.Mesh {
	m, err := mesh.New("global", 3)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		_, err := m.AddVertex([]float64{
			float64(i%10) / 10, float64((i/10)%10) / 10, float64(i/100) / 10,
		})
		require.NoError(t, err)
	}
	for i, v := range m.Vertices {
		v.GlobalIndex = i
	}
	return m
}

// Every globally owned vertex has exactly one owner rank.
func TestOwnershipCoversEveryVertexExactlyOnce(t *testing.T) {
	global := buildGlobalMesh(t, 37)
	boxes := []mesh.BoundingBox{
		{Min: []float64{0, 0, 0}, Max: []float64{1, 1, 1}},
		{Min: []float64{0, 0, 0}, Max: []float64{1, 1, 1}},
		{Min: []float64{0, 0, 0}, Max: []float64{1, 1, 1}},
	}
	rp := &ReceivedPartition{SafetyFactor: 0, Filter: NoFilter}
	locals, err := rp.Compute(global, boxes)
	require.NoError(t, err)

	owner := AssignOwnership(locals, len(global.Vertices))
	require.Len(t, owner, len(global.Vertices))

	seen := make(map[int]int)
	for gi, r := range owner {
		seen[gi]++
		_ = r
	}
	for gi := 0; gi < len(global.Vertices); gi++ {
		assert.Equal(t, 1, seen[gi], "vertex %d must have exactly one owner", gi)
	}
}

// Re-running the ownership assignment on the same candidate set is
// idempotent.
func TestOwnershipAssignmentIsDeterministic(t *testing.T) {
	global := buildGlobalMesh(t, 50)
	boxes := []mesh.BoundingBox{
		{Min: []float64{0, 0, 0}, Max: []float64{0.5, 1, 1}},
		{Min: []float64{0.4, 0, 0}, Max: []float64{1, 1, 1}},
	}
	rp := &ReceivedPartition{SafetyFactor: 0.1, Filter: FilterFirst}

	locals1, err := rp.Compute(global, boxes)
	require.NoError(t, err)
	owner1 := AssignOwnership(locals1, len(global.Vertices))

	locals2, err := rp.Compute(global, boxes)
	require.NoError(t, err)
	owner2 := AssignOwnership(locals2, len(global.Vertices))

	assert.Equal(t, owner1, owner2)
}

// FilterFirst keeps only vertices that fall inside the inflated local box.
func TestFilterFirstKeepsOnlyLocallyRelevantVertices(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	global, err := mesh.New("fluid", 3)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		_, err := global.AddVertex([]float64{rnd.Float64(), rnd.Float64(), rnd.Float64()})
		require.NoError(t, err)
	}
	for i, v := range global.Vertices {
		v.GlobalIndex = i
	}

	box := mesh.BoundingBox{Min: []float64{0, 0, 0}, Max: []float64{0.5, 0.5, 0.5}}
	safety := 0.05
	rp := &ReceivedPartition{SafetyFactor: safety, Filter: FilterFirst}
	locals, err := rp.Compute(global, []mesh.BoundingBox{box})
	require.NoError(t, err)

	inflated := box.Inflated(safety)
	for _, v := range locals[0].Vertices {
		assert.True(t, inflated.Contains(v.Coords))
	}
	assert.Less(t, len(locals[0].Vertices), len(global.Vertices))
}

func TestFeedbackMapInvertsReceiverNeedsBySender(t *testing.T) {
	needs := [][]int{
		{0, 1}, // receiver 0 needs providers 0 and 1
		{1},    // receiver 1 needs provider 1
	}
	fm := InvertFeedback(needs)
	assert.ElementsMatch(t, []int{0}, fm[0])
	assert.ElementsMatch(t, []int{0, 1}, fm[1])
}
