// Package schrage implements the single-machine list-scheduling algorithm
// of spec §4.3: given release (r), processing (p), and delivery/tail (q)
// times for a set of operations on one machine, produce a non-preemptive
// sequence minimizing maximum lateness greedily, propagating release
// dates along same-job precedence chains first.
//
// This is the inner loop Carlier's branch-and-bound repeatedly calls with
// tightened r/q bounds (spec §4.4), so it is kept allocation-light and
// deterministic: ties always break on the lowest operation id.
package schrage

import "github.com/arborix/fjssp/instance"

// Input is one single-machine subproblem. Ops, R, P, and Q are parallel
// slices indexed the same way; JobPred[i] is the index within Ops of the
// same-job operation that must finish before Ops[i] starts, or -1.
type Input struct {
	Ops     []int
	R, P, Q []int
	JobPred []int
}

// Result is the outcome of one Schrage run.
type Result struct {
	Lmax     int
	Start    map[int]int
	Finish   map[int]int
	Sequence []int
}

// Run executes the Schrage heuristic of spec §4.3 over in, after
// propagating release dates along same-job chains.
func Run(in Input) Result {
	r := append([]int(nil), in.R...)
	propagateReleaseDates(in, r)

	n := len(in.Ops)
	remaining := make([]bool, n)
	for i := range remaining {
		remaining[i] = true
	}
	inSequence := make([]bool, n)

	result := Result{
		Start:  make(map[int]int, n),
		Finish: make(map[int]int, n),
	}

	t := minOverRemaining(r, remaining)
	var ready []int

	done := 0
	for done < n {
		for i := 0; i < n; i++ {
			if !remaining[i] || r[i] > t {
				continue
			}
			pred := in.JobPred[i]
			if pred >= 0 && !inSequence[pred] {
				continue
			}
			ready = append(ready, i)
			remaining[i] = false
		}

		if len(ready) > 0 {
			bi := 0
			for k, i := range ready {
				if in.Q[i] > in.Q[ready[bi]] || (in.Q[i] == in.Q[ready[bi]] && in.Ops[i] < in.Ops[ready[bi]]) {
					bi = k
				}
			}
			chosen := ready[bi]
			ready = append(ready[:bi], ready[bi+1:]...)

			op := in.Ops[chosen]
			result.Sequence = append(result.Sequence, op)
			result.Start[op] = t
			t += in.P[chosen]
			result.Finish[op] = t
			inSequence[chosen] = true
			done++

			if t+in.Q[chosen] > result.Lmax {
				result.Lmax = t + in.Q[chosen]
			}
		} else {
			t = minOverRemaining(r, remaining)
		}
	}

	return result
}

func minOverRemaining(r []int, remaining []bool) int {
	best := 0
	first := true
	for i, rem := range remaining {
		if !rem {
			continue
		}
		if first || r[i] < best {
			best = r[i]
			first = false
		}
	}
	return best
}

// propagateReleaseDates implements spec §4.3's preprocessing step: for
// consecutive same-job ops u, v within in.Ops, r[v] <- max(r[v], r[u]+p[u]).
func propagateReleaseDates(in Input, r []int) {
	// JobPred forms chains no longer than a job's operation count, so a
	// small fixed-point sweep converges quickly; relaxation (rather than
	// a single ordered pass) avoids depending on Ops being pre-sorted in
	// job-chain order.
	changed := true
	for changed {
		changed = false
		for i, pred := range in.JobPred {
			if pred < 0 {
				continue
			}
			cand := r[pred] + in.P[pred]
			if cand > r[i] {
				r[i] = cand
				changed = true
			}
		}
	}
}

// FromInstance builds a schrage.Input for machine's current operation set
// given each operation's (release, tail) pair already computed by the
// caller (typically from graph.LongestPaths), deriving JobPred from inst.
func FromInstance(inst *instance.Instance, machine int, ops []int, release, tail map[int]int) Input {
	idxOf := make(map[int]int, len(ops))
	for i, o := range ops {
		idxOf[o] = i
	}

	in := Input{
		Ops:     append([]int(nil), ops...),
		R:       make([]int, len(ops)),
		P:       make([]int, len(ops)),
		Q:       make([]int, len(ops)),
		JobPred: make([]int, len(ops)),
	}
	for i, o := range ops {
		in.R[i] = release[o]
		in.Q[i] = tail[o]
		t, _ := inst.ProcessingTime(o, machine)
		in.P[i] = t
		in.JobPred[i] = -1
		for _, pred := range inst.JobPredecessors(o) {
			if pi, ok := idxOf[pred]; ok {
				in.JobPred[i] = pi
			}
		}
	}
	return in
}
