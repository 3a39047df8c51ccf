package partition

import (
	"math"
	"sort"
)

// AssignOwners implements the ownership policy: for each vertex in
// globally sorted order, the candidate rank with the smallest rank id that
// has not yet exceeded its fair share becomes owner. Fair share is
// ceil(numVertices / numRanks). The result is deterministic and
// load-balanced independent of message arrival order — re-running this on
// the same candidate set always produces the same assignment.
//
// candidates maps a global vertex index to the set of local ranks whose
// filter accepted that vertex. Vertices absent from candidates are not
// assigned an owner (they were not relevant to any local rank).
func AssignOwners(candidates map[int][]int, numVertices, numRanks int) map[int]int {
	if numRanks == 0 {
		return map[int]int{}
	}
	fairShare := int(math.Ceil(float64(numVertices) / float64(numRanks)))

	globalIdx := make([]int, 0, len(candidates))
	for gi := range candidates {
		globalIdx = append(globalIdx, gi)
	}
	sort.Ints(globalIdx)

	owned := make([]int, numRanks)
	owner := make(map[int]int, len(candidates))
	for _, gi := range globalIdx {
		ranks := append([]int{}, candidates[gi]...)
		sort.Ints(ranks)
		for _, r := range ranks {
			if owned[r] < fairShare {
				owner[gi] = r
				owned[r]++
				break
			}
		}
		if _, ok := owner[gi]; !ok {
			// Every candidate rank is already at fair share (can happen
			// when load is uneven across the filter); fall back to the
			// least-loaded candidate to guarantee exactly one owner.
			best := ranks[0]
			for _, r := range ranks[1:] {
				if owned[r] < owned[best] {
					best = r
				}
			}
			owner[gi] = best
			owned[best]++
		}
	}
	return owner
}

// VertexDistribution builds the per-rank ordered local-index lists and the
// vertexOffsets prefix sum, given for each rank a map from local vertex
// index to whether that rank owns the vertex.
func VertexDistribution(ownerByRankLocal []map[int]bool) (dist map[int][]int, offsets []int) {
	dist = make(map[int][]int, len(ownerByRankLocal))
	offsets = make([]int, len(ownerByRankLocal)+1)
	for r, owns := range ownerByRankLocal {
		var locals []int
		for li, isOwner := range owns {
			if isOwner {
				locals = append(locals, li)
			}
		}
		sort.Ints(locals)
		dist[r] = locals
		offsets[r+1] = offsets[r] + len(locals)
	}
	return dist, offsets
}
