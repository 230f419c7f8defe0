package network

import "github.com/avren/wiremesh/mesh"

// Topology is the read-only adjacency view the closure computation needs.
// *mesh.Mesh satisfies it; LinkedAnchors must filter stale targets.
type Topology interface {
	LinkedAnchors(p mesh.Position) []mesh.Position
}

// Closure computes the BFS closure of start over g: the set of anchors
// reachable from start via live links, including start itself. It is a
// pure function over a topology snapshot; committing the result into
// component records is the Tracker's job.
//
// Traversal follows link insertion order, which is irrelevant to the
// resulting set but keeps traversal deterministic.
// Complexity: O(n·d) for n reachable anchors of degree ≤ d.
func Closure(g Topology, start mesh.Position) map[mesh.Position]struct{} {
	visited := map[mesh.Position]struct{}{start: {}}
	queue := []mesh.Position{start}
	for qi := 0; qi < len(queue); qi++ {
		cur := queue[qi]
		for _, nbr := range g.LinkedAnchors(cur) {
			if _, seen := visited[nbr]; seen {
				continue
			}
			visited[nbr] = struct{}{}
			queue = append(queue, nbr)
		}
	}
	return visited
}
