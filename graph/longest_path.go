package graph

// LongestPaths computes, for every node reachable from Source, the length
// of the longest path from Source to that node, via Kahn's algorithm
// adapted to relax edges by maximum instead of counting in-degree down to
// a minimum (spec §4.1: "topological relaxation, O(V+E)"). A node that
// cannot be reached from Source gets a distance of 0, matching the
// convention that only the makespan-relevant nodes ever matter downstream.
//
// Returns ErrCycleDetected if the disjunctive arcs currently installed
// close a cycle, in which case dist/pred are nil.
func (g *Graph) LongestPaths() (dist map[int]int, pred map[int]int, err error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	indeg := make(map[int]int, len(g.nodes))
	for id := range g.nodes {
		indeg[id] = 0
	}
	for _, edges := range g.adj {
		for _, e := range edges {
			indeg[e.to]++
		}
	}

	queue := make([]int, 0, len(g.nodes))
	for id, d := range indeg {
		if d == 0 {
			queue = append(queue, id)
		}
	}

	dist = make(map[int]int, len(g.nodes))
	pred = make(map[int]int, len(g.nodes))
	visited := 0

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++

		for _, e := range g.successorsLocked(id) {
			cand := dist[id] + e.weight
			if cand > dist[e.to] {
				dist[e.to] = cand
				pred[e.to] = id
			}
			indeg[e.to]--
			if indeg[e.to] == 0 {
				queue = append(queue, e.to)
			}
		}
	}

	if visited != len(g.nodes) {
		return nil, nil, ErrCycleDetected
	}
	return dist, pred, nil
}

// PathTo reconstructs the longest Source-to-target path from a pred map
// produced by LongestPaths, in Source-to-target order.
func PathTo(pred map[int]int, target int) []int {
	var rev []int
	cur := target
	for {
		rev = append(rev, cur)
		p, ok := pred[cur]
		if !ok {
			break
		}
		cur = p
	}
	out := make([]int, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}

// Makespan returns the longest-path length to Sink, i.e. the schedule's
// makespan under the currently consolidated machine sequences.
func (g *Graph) Makespan() (int, []int, error) {
	dist, pred, err := g.LongestPaths()
	if err != nil {
		return 0, nil, err
	}
	return dist[Sink], PathTo(pred, Sink), nil
}

// LongestPathsFromSink computes, for every node, the length of the
// longest path from that node to Sink (spec §4.1's longest_path_from:
// "including p(o, assign(o)) and all downstream weights"), by running the
// same topological relaxation over the transposed edge set with Sink as
// the source.
func (g *Graph) LongestPathsFromSink() (map[int]int, error) {
	g.mu.RLock()
	rev := make(map[int][]edge, len(g.nodes))
	outdeg := make(map[int]int, len(g.nodes))
	for id := range g.nodes {
		outdeg[id] = 0
	}
	for from, edges := range g.adj {
		for _, e := range edges {
			rev[e.to] = append(rev[e.to], edge{to: from, weight: e.weight})
			outdeg[from]++
		}
	}
	nodeCount := len(g.nodes)
	g.mu.RUnlock()

	queue := make([]int, 0, nodeCount)
	for id, d := range outdeg {
		if d == 0 {
			queue = append(queue, id)
		}
	}

	dist := make(map[int]int, nodeCount)
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++

		for _, e := range rev[id] {
			cand := dist[id] + e.weight
			if cand > dist[e.to] {
				dist[e.to] = cand
			}
			outdeg[e.to]--
			if outdeg[e.to] == 0 {
				queue = append(queue, e.to)
			}
		}
	}

	if visited != nodeCount {
		return nil, ErrCycleDetected
	}
	return dist, nil
}
