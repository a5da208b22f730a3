// Package builder implements the constructive heuristic of spec §4.2: a
// machine-selection strategy (greedy, GRASP, or random) applied
// independently per operation, followed by an active-list scheduler that
// turns the resulting assignment into start/finish times and per-machine
// sequences.
//
// Strategy selection follows the teacher corpus's tagged-variant style
// (spec §9: "represented as tagged variants with explicit match arms, not
// subclassing") rather than an interface hierarchy, since there are only
// three strategies and no caller needs to add new ones dynamically.
package builder

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/arborix/fjssp/graph"
	"github.com/arborix/fjssp/instance"
	"github.com/arborix/fjssp/rng"
	"github.com/arborix/fjssp/solution"
)

// ErrDeadlock is returned when a full outer pass of the active-list
// scheduler makes no progress; per spec §4.2 and §7 this is fatal and
// indicates cyclic dependencies that cannot occur on valid input.
var ErrDeadlock = errors.New("builder: deadlock, no schedulable operation found in a full pass")

// Strategy selects machines for each operation independently.
type Strategy int

const (
	// Greedy picks among machines minimizing p[(o,m)], random tie-break.
	Greedy Strategy = iota
	// GRASP accepts candidates within an alpha-relative band of the best
	// processing time and chooses uniformly among them.
	GRASP
	// Random picks uniformly over all eligible machines.
	Random
)

// Options configure one Build call.
type Options struct {
	Strategy Strategy
	// Alpha is the GRASP restricted-candidate-list parameter, in [0, 1].
	// Ignored by Greedy and Random.
	Alpha float64
}

// DefaultOptions returns Greedy selection (Alpha is unused by Greedy).
// cmd/fjssp does not use this default for its "constr.heur" column; it
// builds with GRASP at the configured grasp_alpha.
func DefaultOptions() Options {
	return Options{Strategy: Greedy, Alpha: 0.0}
}

// Option mutates an Options value.
type Option func(*Options)

// WithStrategy selects the machine-choice strategy.
func WithStrategy(s Strategy) Option {
	return func(o *Options) { o.Strategy = s }
}

// WithAlpha sets the GRASP restricted-candidate-list parameter.
func WithAlpha(alpha float64) Option {
	return func(o *Options) { o.Alpha = alpha }
}

// Build assigns machines and schedules every operation of inst, returning
// a fully-scheduled Solution. r drives all tie-breaking and strategy
// randomness (spec §5: all randomness must flow from one seeded source).
func Build(inst *instance.Instance, r *rand.Rand, opts ...Option) (*solution.Solution, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	sol := solution.New(inst)
	if err := chooseMachines(inst, sol, r, cfg); err != nil {
		return nil, err
	}
	if err := scheduleActiveList(inst, sol); err != nil {
		return nil, err
	}
	return sol, nil
}

func chooseMachines(inst *instance.Instance, sol *solution.Solution, r *rand.Rand, cfg Options) error {
	for _, o := range inst.O {
		eligible := inst.Mi[o]
		var m int
		switch cfg.Strategy {
		case Greedy:
			m = pickGreedy(inst, o, eligible, r)
		case GRASP:
			m = pickGRASP(inst, o, eligible, r, cfg.Alpha)
		case Random:
			m = rng.Choice(eligible, r)
		default:
			return fmt.Errorf("builder: unknown strategy %d", cfg.Strategy)
		}
		sol.Assign[o] = m
	}
	return nil
}

func pickGreedy(inst *instance.Instance, op int, eligible []int, r *rand.Rand) int {
	best := eligible[0]
	bestT, _ := inst.ProcessingTime(op, best)
	var ties []int
	ties = append(ties, best)
	for _, m := range eligible[1:] {
		t, _ := inst.ProcessingTime(op, m)
		switch {
		case t < bestT:
			best, bestT = m, t
			ties = ties[:0]
			ties = append(ties, m)
		case t == bestT:
			ties = append(ties, m)
		}
	}
	return rng.Choice(ties, r)
}

// pickGRASP implements spec §4.2's restricted-candidate-list rule:
// pmin = min p, pmax = max p over M_i[o]; accept m with
// p(o,m) <= pmin + alpha*(pmax-pmin); choose uniformly among accepted.
func pickGRASP(inst *instance.Instance, op int, eligible []int, r *rand.Rand, alpha float64) int {
	pmin, pmax := -1, -1
	for _, m := range eligible {
		t, _ := inst.ProcessingTime(op, m)
		if pmin == -1 || t < pmin {
			pmin = t
		}
		if pmax == -1 || t > pmax {
			pmax = t
		}
	}
	threshold := float64(pmin) + alpha*float64(pmax-pmin)

	var candidates []int
	for _, m := range eligible {
		t, _ := inst.ProcessingTime(op, m)
		if float64(t) <= threshold {
			candidates = append(candidates, m)
		}
	}
	return rng.Choice(candidates, r)
}

// priorityKey is the active-list scheduler's tie-break tuple of spec §4.2,
// compared lexicographically and maximized.
type priorityKey struct {
	localRemaining  int
	globalRemaining int
	p               int
	remainingOps    int
}

func (a priorityKey) less(b priorityKey) bool {
	if a.localRemaining != b.localRemaining {
		return a.localRemaining < b.localRemaining
	}
	if a.globalRemaining != b.globalRemaining {
		return a.globalRemaining < b.globalRemaining
	}
	if a.p != b.p {
		return a.p < b.p
	}
	return a.remainingOps < b.remainingOps
}

// scheduleActiveList runs spec §4.2's active-list algorithm given a fixed
// assignment, populating sol.MachineSeq, sol.Start, sol.Finish, and
// sol.Makespan, and rebuilding sol.Graph to reflect the final order.
func scheduleActiveList(inst *instance.Instance, sol *solution.Solution) error {
	n := inst.NumOps()
	scheduled := make([]bool, n)
	start := make([]int, n)
	finish := make([]int, n)
	numScheduled := 0

	machineReady := make(map[int]int, len(inst.M))
	for _, m := range inst.M {
		machineReady[m] = 0
	}
	machineIdx := make(map[int]int, len(inst.M))
	for i, m := range inst.M {
		machineIdx[m] = i
	}

	for numScheduled < n {
		progressed := false

		order := append([]int(nil), inst.M...)
		sort.SliceStable(order, func(i, j int) bool {
			return machineReady[order[i]] < machineReady[order[j]]
		})

		for _, m := range order {
			var ready []int
			for _, o := range inst.Om[m] {
				if scheduled[o] || sol.Assign[o] != m {
					continue
				}
				allPredsDone := true
				for _, pred := range inst.JobPredecessors(o) {
					if !scheduled[pred] {
						allPredsDone = false
						break
					}
				}
				if allPredsDone {
					ready = append(ready, o)
				}
			}
			if len(ready) == 0 {
				continue
			}

			best := ready[0]
			bestKey := priorityKeyOf(inst, sol, best, m, scheduled)
			for _, o := range ready[1:] {
				k := priorityKeyOf(inst, sol, o, m, scheduled)
				if bestKey.less(k) {
					best, bestKey = o, k
				}
			}

			readyAt := machineReady[m]
			for _, pred := range inst.JobPredecessors(best) {
				if finish[pred] > readyAt {
					readyAt = finish[pred]
				}
			}
			t, _ := inst.ProcessingTime(best, m)
			start[best] = readyAt
			finish[best] = readyAt + t
			machineReady[m] = finish[best]
			scheduled[best] = true
			numScheduled++
			progressed = true

			sol.MachineSeq[machineIdx[m]] = append(sol.MachineSeq[machineIdx[m]], best)
		}

		if !progressed {
			return ErrDeadlock
		}
	}

	sol.Start = start
	sol.Finish = finish
	makespan := 0
	for _, f := range finish {
		if f > makespan {
			makespan = f
		}
	}
	sol.Makespan = makespan

	return rebuildGraph(inst, sol)
}

func priorityKeyOf(inst *instance.Instance, sol *solution.Solution, op, machine int, scheduled []bool) priorityKey {
	localRemaining := 0
	globalRemaining := 0
	remainingOps := 0
	for _, succ := range inst.JobSuccessors(op) {
		if scheduled[succ] {
			continue
		}
		remainingOps++
		m := sol.Assign[succ]
		t, _ := inst.ProcessingTime(succ, m)
		globalRemaining += t
		if m == machine {
			localRemaining += t
		}
	}
	p, _ := inst.ProcessingTime(op, machine)
	return priorityKey{
		localRemaining:  localRemaining,
		globalRemaining: globalRemaining,
		p:               p,
		remainingOps:    remainingOps,
	}
}

// rebuildGraph installs conjunctive edges plus the consolidated
// disjunctive edges implied by sol.MachineSeq, reflecting the assignment
// that scheduleActiveList just computed.
func rebuildGraph(inst *instance.Instance, sol *solution.Solution) error {
	for _, pj := range inst.Pj {
		for _, prec := range pj {
			t, _ := inst.ProcessingTime(prec.From, sol.Assign[prec.From])
			if err := sol.Graph.AddConjunctive(prec.From, prec.To, t); err != nil {
				return fmt.Errorf("builder: rebuild graph: %w", err)
			}
		}
	}
	for _, seq := range inst.Oj {
		if len(seq) == 0 {
			continue
		}
		if err := sol.Graph.AddConjunctive(graph.Source, seq[0], 0); err != nil {
			return fmt.Errorf("builder: rebuild graph: %w", err)
		}
		last := seq[len(seq)-1]
		t, _ := inst.ProcessingTime(last, sol.Assign[last])
		if err := sol.Graph.AddConjunctive(last, graph.Sink, t); err != nil {
			return fmt.Errorf("builder: rebuild graph: %w", err)
		}
	}
	for i, m := range inst.M {
		seq := sol.MachineSeq[i]
		if len(seq) == 0 {
			continue
		}
		if err := sol.Graph.ConsolidateSequence(m, seq, func(op int) int {
			t, _ := inst.ProcessingTime(op, m)
			return t
		}); err != nil {
			return fmt.Errorf("builder: consolidate machine %d: %w", m, err)
		}
	}
	return nil
}
