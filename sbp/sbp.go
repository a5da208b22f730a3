// Package sbp implements the Shifting Bottleneck Procedure of spec §4.5:
// given a Solution with a fixed machine assignment but no consolidated
// machine orders, iteratively pick the currently most constraining
// ("bottleneck") machine, fix its sequence via the Carlier solver, and
// reoptimize every previously-fixed machine once against the updated
// graph. The reoptimization pass is not repeated when it changes an
// order; each outer iteration runs it exactly once.
package sbp

import (
	"errors"
	"fmt"
	"sort"

	"github.com/arborix/fjssp/carlier"
	"github.com/arborix/fjssp/flog"
	"github.com/arborix/fjssp/instance"
	"github.com/arborix/fjssp/schrage"
	"github.com/arborix/fjssp/solution"
)

// ErrInfeasibleSubproblem is returned when a machine's operation set
// cannot be scheduled at all, which should not happen on well-formed
// inputs (spec §7).
var ErrInfeasibleSubproblem = errors.New("sbp: infeasible single-machine subproblem")

// Options configure Run.
type Options struct {
	MaxDepth int          // Carlier branch-and-bound depth cap; 0 uses carlier.DefaultMaxDepth.
	Logger   *flog.Logger // nil-safe; pass flog.Discard() or leave zero to silence.
}

// candidate holds the Carlier result computed for one unconsolidated
// machine during a single outer iteration.
type candidate struct {
	machine  int
	lateness int
	sequence []int
}

// Run executes the Shifting Bottleneck Procedure over sol, whose
// Solution.Assign must already be fixed (by the Constructive Builder),
// consolidating one machine's order per outer iteration and reoptimizing
// previously consolidated machines until the set of unconsolidated,
// non-empty machines is empty (spec §4.5). Each outer iteration
// reoptimizes every other consolidated machine exactly once, in machine id
// order; it does not loop until their orders stop changing.
func Run(inst *instance.Instance, sol *solution.Solution, opts Options) error {
	resetMachineOrders(inst, sol)

	consolidated := make(map[int]bool, len(inst.M))
	log := opts.Logger

	for {
		pending := unconsolidatedMachines(inst, sol, consolidated)
		if len(pending) == 0 {
			break
		}

		best, err := pickBottleneck(inst, sol, pending, opts)
		if err != nil {
			return err
		}
		log.Log("consolidating machine %d (lateness %d)", best.machine, best.lateness)
		exit := log.Enter()

		if err := applyMachineOrder(inst, sol, best.machine, best.sequence); err != nil {
			exit()
			return fmt.Errorf("sbp: consolidate machine %d: %w", best.machine, err)
		}
		consolidated[best.machine] = true

		if err := recomputeTimes(sol); err != nil {
			exit()
			return fmt.Errorf("sbp: recompute after consolidating %d: %w", best.machine, err)
		}

		if err := reoptimizeConsolidated(inst, sol, consolidated, best.machine, opts); err != nil {
			exit()
			return err
		}
		exit()
	}

	return nil
}

// resetMachineOrders retracts any previously consolidated disjunctive
// edges and rebuilds sol.MachineSeq purely from sol.Assign (in operation
// id order), so Run always starts from "assignment fixed, no machine
// order chosen yet" regardless of how the caller produced sol (spec
// §4.5's precondition).
func resetMachineOrders(inst *instance.Instance, sol *solution.Solution) {
	for _, m := range inst.M {
		sol.Graph.RemoveSequence(m)
	}
	for i := range sol.MachineSeq {
		sol.MachineSeq[i] = nil
	}
	for _, o := range inst.O {
		m := sol.Assign[o]
		mi := machineIndex(inst, m)
		sol.MachineSeq[mi] = append(sol.MachineSeq[mi], o)
	}
}

func unconsolidatedMachines(inst *instance.Instance, sol *solution.Solution, consolidated map[int]bool) []int {
	var pending []int
	for i, m := range inst.M {
		if consolidated[m] {
			continue
		}
		if len(sol.MachineSeq[i]) > 0 {
			pending = append(pending, m)
		}
	}
	return pending
}

func pickBottleneck(inst *instance.Instance, sol *solution.Solution, pending []int, opts Options) (candidate, error) {
	var best candidate
	best.lateness = -1

	sort.Ints(pending)
	for _, m := range pending {
		cand, err := solveMachine(inst, sol, m, opts)
		if err != nil {
			return candidate{}, err
		}
		if cand.lateness > best.lateness {
			best = cand
		}
	}
	return best, nil
}

// solveMachine computes r/p/q for machine m's current operation set from
// the graph's present longest-path distances, then solves the resulting
// single-machine maximum-lateness subproblem (trivially if one op, else
// via Carlier), per spec §4.5 step 2.
func solveMachine(inst *instance.Instance, sol *solution.Solution, m int, opts Options) (candidate, error) {
	mi := machineIndex(inst, m)
	ops := sol.MachineSeq[mi]
	if len(ops) == 0 {
		return candidate{machine: m}, nil
	}

	release, tail, err := releaseAndTail(sol, inst, m, ops)
	if err != nil {
		return candidate{}, err
	}

	if len(ops) == 1 {
		o := ops[0]
		t, _ := inst.ProcessingTime(o, m)
		return candidate{machine: m, lateness: release[o] + t + tail[o], sequence: ops}, nil
	}

	in := schrage.FromInstance(inst, m, ops, release, tail)
	res := carlier.Solve(in, opts.MaxDepth)
	if len(res.Sequence) != len(ops) {
		return candidate{}, fmt.Errorf("%w: machine %d", ErrInfeasibleSubproblem, m)
	}
	return candidate{machine: m, lateness: res.Lmax, sequence: res.Sequence}, nil
}

// releaseAndTail computes r[o] = longest_path_to(o) and
// q[o] = longest_path_from(o) - p(o,m) for each op in ops, from the
// graph's current (possibly partial) state.
func releaseAndTail(sol *solution.Solution, inst *instance.Instance, m int, ops []int) (release, tail map[int]int, err error) {
	dist, _, err := sol.Graph.LongestPaths()
	if err != nil {
		return nil, nil, err
	}
	fromSink, err := sol.Graph.LongestPathsFromSink()
	if err != nil {
		return nil, nil, err
	}
	release = make(map[int]int, len(ops))
	tail = make(map[int]int, len(ops))
	for _, o := range ops {
		release[o] = dist[o]
		t, _ := inst.ProcessingTime(o, m)
		tail[o] = fromSink[o] - t
	}
	return release, tail, nil
}

func applyMachineOrder(inst *instance.Instance, sol *solution.Solution, m int, seq []int) error {
	mi := machineIndex(inst, m)
	sol.MachineSeq[mi] = append([]int(nil), seq...)
	return sol.Graph.ConsolidateSequence(m, seq, func(op int) int {
		t, _ := inst.ProcessingTime(op, m)
		return t
	})
}

// reoptimizeConsolidated implements spec §4.5 step 5: for each previously
// consolidated machine other than the one just fixed, retract its
// consolidated edges, recompute r/q against the now-updated graph, solve
// again, and reinsert (possibly reordered) edges.
func reoptimizeConsolidated(inst *instance.Instance, sol *solution.Solution, consolidated map[int]bool, justFixed int, opts Options) error {
	var machines []int
	for m := range consolidated {
		if m != justFixed {
			machines = append(machines, m)
		}
	}
	sort.Ints(machines)
	log := opts.Logger

	for _, m := range machines {
		sol.Graph.RemoveSequence(m)

		cand, err := solveMachine(inst, sol, m, opts)
		if err != nil {
			return fmt.Errorf("sbp: reoptimize machine %d: %w", m, err)
		}
		if cand.sequence != nil && !sameOrder(sol.MachineSeq[machineIndex(inst, m)], cand.sequence) {
			log.Log("reoptimized machine %d order changed", m)
		}
		if err := applyMachineOrder(inst, sol, m, cand.sequence); err != nil {
			return fmt.Errorf("sbp: reoptimize machine %d: %w", m, err)
		}
	}

	return recomputeTimes(sol)
}

func sameOrder(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func recomputeTimes(sol *solution.Solution) error {
	return sol.Recompute()
}

func machineIndex(inst *instance.Instance, machine int) int {
	for i, m := range inst.M {
		if m == machine {
			return i
		}
	}
	return -1
}
