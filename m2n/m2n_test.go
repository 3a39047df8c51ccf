package m2n

import (
	"sync"
	"testing"

	"github.com/mpcouple/coupler/comm"
	"github.com/mpcouple/coupler/mesh"
	"github.com/mpcouple/coupler/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoVertexLocalMesh(t *testing.T, coords [][]float64, globalIdx []int) *mesh.Mesh {
	m, err := mesh.New("side", 3)
	require.NoError(t, err)
	for i, c := range coords {
		v, err := m.AddVertex(c)
		require.NoError(t, err)
		v.GlobalIndex = globalIdx[i]
	}
	return m
}

// Round-trip identity: the L2 norm of what's sent equals what's received,
// for a single-rank GatherScatter exchange.
func TestGatherScatterSingleRankRoundTrip(t *testing.T) {
	localMesh := twoVertexLocalMesh(t, [][]float64{{0, 0, 0}, {1, 0, 0}}, []int{0, 1})

	groupSend := comm.NewGroup(1)
	groupRecv := comm.NewGroup(1)
	peerA, peerB := transport.NewLoopback("Fluid", 0, "Structure", 0)
	defer peerA.Close()
	defer peerB.Close()

	sender := &GatherScatter{
		Group:       groupSend,
		LocalMeshes: []*mesh.Mesh{localMesh},
		GlobalCount: 2,
		Constraint:  mesh.Consistent,
		Peer:        peerA,
	}
	receiver := &GatherScatter{
		Group:       groupRecv,
		LocalMeshes: []*mesh.Mesh{localMesh},
		GlobalCount: 2,
		Constraint:  mesh.Consistent,
		Peer:        peerB,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	var recvErr, sendErr error
	var got []float64
	go func() {
		defer wg.Done()
		sendErr = sender.Send(0, []float64{1.0, 2.0}, 1)
	}()
	go func() {
		defer wg.Done()
		got, recvErr = receiver.Receive(0, 1)
	}()
	wg.Wait()

	require.NoError(t, sendErr)
	require.NoError(t, recvErr)
	assert.Equal(t, []float64{1.0, 2.0}, got)
}

func TestPointToPointDeliversOnlyToInterestedReceivers(t *testing.T) {
	senderMesh := twoVertexLocalMesh(t, [][]float64{{0, 0, 0}, {1, 0, 0}}, []int{0, 1})
	receiverMesh := twoVertexLocalMesh(t, [][]float64{{1, 0, 0}}, []int{1}) // only vertex 1 relevant

	senderSide, receiverSide := transport.NewLoopback("Fluid", 0, "Structure", 0)
	defer senderSide.Close()
	defer receiverSide.Close()

	sender := &PointToPoint{
		Channels:        map[int]*transport.Transport{0: senderSide},
		LocalMesh:       senderMesh,
		VertexReceivers: map[int][]int{1: {0}}, // only vertex global-index 1 is wanted
		GlobalCount:     2,
		Constraint:      mesh.Consistent,
	}
	receiver := &PointToPoint{
		Channels:        map[int]*transport.Transport{0: receiverSide},
		LocalMesh:       receiverMesh,
		ExpectedSenders: []int{0},
		GlobalCount:     2,
		Constraint:      mesh.Consistent,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	var sendErr, recvErr error
	var got []float64
	go func() {
		defer wg.Done()
		sendErr = sender.Send(0, []float64{10.0, 20.0}, 1)
	}()
	go func() {
		defer wg.Done()
		got, recvErr = receiver.Receive(0, 1)
	}()
	wg.Wait()

	require.NoError(t, sendErr)
	require.NoError(t, recvErr)
	assert.Equal(t, []float64{20.0}, got)
}

func TestPointToPointConservativeDuplicatesSum(t *testing.T) {
	contributions := map[int][]contribution{
		0: {{rank: 0, values: []float64{1}}, {rank: 1, values: []float64{2}}},
	}
	out := resequence(1, 1, contributions, mesh.Conservative)
	assert.Equal(t, []float64{3}, out)
}

func TestPointToPointConsistentLastWriterWinsByRank(t *testing.T) {
	contributions := map[int][]contribution{
		0: {{rank: 0, values: []float64{1}}, {rank: 1, values: []float64{2}}},
	}
	out := resequence(1, 1, contributions, mesh.Consistent)
	assert.Equal(t, []float64{2}, out)
}
