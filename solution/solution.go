// Package solution models a single schedule under construction or repair:
// the machine assignment and sequence vectors, the start/finish times they
// imply, and the disjunctive graph backing the makespan computation (spec
// §4, §4.7). Grounded on the reference implementation's Solution class,
// restructured around an owned *graph.Graph the way the teacher corpus
// wraps a mutable core.Graph behind a small stateful type.
package solution

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/arborix/fjssp/graph"
	"github.com/arborix/fjssp/instance"
	"github.com/arborix/fjssp/rng"
)

// ErrIncompleteSchedule is returned by operations that require every
// operation to carry an assignment and timing, such as FindCriticalPath.
var ErrIncompleteSchedule = errors.New("solution: schedule is incomplete")

// Solution is a mutable schedule for one Instance. The zero value is not
// usable; construct with New.
type Solution struct {
	inst *instance.Instance

	// Assign[o] is the machine chosen for operation o, or -1 if unassigned.
	Assign []int
	// MachineSeq[m] is the ordered list of operations processing machine m,
	// indexed by position in inst.M (not by raw machine id).
	MachineSeq [][]int
	// Start/Finish are indexed by operation id; nil until Recompute runs.
	Start, Finish []int
	Makespan      int

	Graph *graph.Graph
}

// New creates an empty Solution over inst with no operations assigned.
func New(inst *instance.Instance) *Solution {
	assign := make([]int, inst.NumOps())
	for i := range assign {
		assign[i] = -1
	}
	s := &Solution{
		inst:       inst,
		Assign:     assign,
		MachineSeq: make([][]int, len(inst.M)),
		Graph:      graph.New(),
	}
	for _, o := range inst.O {
		_ = s.Graph.AddNode(o)
	}
	return s
}

func (s *Solution) machineIndex(machine int) int {
	for i, m := range s.inst.M {
		if m == machine {
			return i
		}
	}
	return -1
}

// Clone performs a deep copy: independent slices and a freshly rebuilt
// graph, so mutating the clone never affects the original (grounded on
// the teacher corpus's CloneEmpty/Clone pair, which always copies value
// state rather than aliasing maps/slices).
func (s *Solution) Clone() *Solution {
	out := &Solution{
		inst:       s.inst,
		Assign:     append([]int(nil), s.Assign...),
		MachineSeq: make([][]int, len(s.MachineSeq)),
		Makespan:   s.Makespan,
	}
	for i, seq := range s.MachineSeq {
		out.MachineSeq[i] = append([]int(nil), seq...)
	}
	if s.Start != nil {
		out.Start = append([]int(nil), s.Start...)
	}
	if s.Finish != nil {
		out.Finish = append([]int(nil), s.Finish...)
	}
	out.Graph = graph.New()
	for _, o := range s.inst.O {
		_ = out.Graph.AddNode(o)
	}
	for _, pj := range s.inst.Pj {
		for _, prec := range pj {
			t, _ := s.inst.ProcessingTime(prec.From, s.Assign[prec.From])
			_ = out.Graph.AddConjunctive(prec.From, prec.To, t)
		}
	}
	for _, j := range s.inst.Oj {
		if len(j) == 0 {
			continue
		}
		_ = out.Graph.AddConjunctive(graph.Source, j[0], 0)
	}
	for last := range s.inst.Oj {
		seq := s.inst.Oj[last]
		if len(seq) == 0 {
			continue
		}
		op := seq[len(seq)-1]
		t, _ := s.inst.ProcessingTime(op, s.Assign[op])
		_ = out.Graph.AddConjunctive(op, graph.Sink, t)
	}
	for i, seq := range out.MachineSeq {
		if len(seq) == 0 {
			continue
		}
		machine := s.inst.M[i]
		_ = out.Graph.ConsolidateSequence(machine, seq, func(op int) int {
			t, _ := s.inst.ProcessingTime(op, machine)
			return t
		})
	}
	return out
}

// RebuildConjunctiveGraph discards the current graph entirely and
// installs a fresh one containing only the conjunctive (job-precedence)
// edges implied by the current Assign vector, with no machine orders
// consolidated. Used after a local-search reassignment changes Assign,
// per spec §4.6 step 5: "Rebuild neighbor's partial graph (conjunctive
// edges only, with weights from new assignment)" before handing the
// Solution to sbp.Run for repair.
func (s *Solution) RebuildConjunctiveGraph() error {
	s.Graph = graph.New()
	for _, o := range s.inst.O {
		if err := s.Graph.AddNode(o); err != nil {
			return err
		}
	}
	for _, pj := range s.inst.Pj {
		for _, prec := range pj {
			t, _ := s.inst.ProcessingTime(prec.From, s.Assign[prec.From])
			if err := s.Graph.AddConjunctive(prec.From, prec.To, t); err != nil {
				return err
			}
		}
	}
	for _, seq := range s.inst.Oj {
		if len(seq) == 0 {
			continue
		}
		if err := s.Graph.AddConjunctive(graph.Source, seq[0], 0); err != nil {
			return err
		}
		last := seq[len(seq)-1]
		t, _ := s.inst.ProcessingTime(last, s.Assign[last])
		if err := s.Graph.AddConjunctive(last, graph.Sink, t); err != nil {
			return err
		}
	}
	return nil
}

// Assigned reports whether op currently has a machine assignment.
func (s *Solution) Assigned(op int) bool {
	return s.Assign[op] >= 0
}

// Recompute rebuilds Start/Finish/Makespan from the current graph state
// (after AddConjunctive/ConsolidateSequence calls have been issued by the
// caller) via a longest-path pass.
func (s *Solution) Recompute() error {
	dist, _, err := s.Graph.LongestPaths()
	if err != nil {
		return fmt.Errorf("solution: recompute: %w", err)
	}
	s.Start = make([]int, s.inst.NumOps())
	s.Finish = make([]int, s.inst.NumOps())
	makespan := 0
	for _, o := range s.inst.O {
		s.Start[o] = dist[o]
		t, ok := s.inst.ProcessingTime(o, s.Assign[o])
		if !ok {
			return fmt.Errorf("solution: recompute: op %d not assigned to an eligible machine", o)
		}
		s.Finish[o] = s.Start[o] + t
		if s.Finish[o] > makespan {
			makespan = s.Finish[o]
		}
	}
	s.Makespan = makespan
	return nil
}

// FindCriticalPath returns one randomly-chosen longest chain of operations
// ending at the makespan (spec §4.7), plus whether alternative critical
// paths exist: more than one finishing operation achieved the makespan, or
// some backward step had more than one distinct tight predecessor (job and
// machine predecessor). Grounded on the reference
// implementation's _find_a_critical_path, generalized to take an explicit
// *rand.Rand rather than a global numpy RNG.
func (s *Solution) FindCriticalPath(r *rand.Rand) ([]int, bool, error) {
	if s.Start == nil || s.Finish == nil {
		return nil, false, ErrIncompleteSchedule
	}

	var endOps []int
	for _, o := range s.inst.O {
		if s.Finish[o] == s.Makespan {
			endOps = append(endOps, o)
		}
	}
	if len(endOps) == 0 {
		return nil, false, ErrIncompleteSchedule
	}
	multiple := len(endOps) > 1

	current := rng.Choice(endOps, r)
	path := []int{current}

	for s.Start[current] > 0 {
		var predOps []int

		if preds := s.inst.JobPredecessors(current); len(preds) > 0 {
			prev := preds[len(preds)-1]
			if s.Finish[prev] == s.Start[current] {
				predOps = append(predOps, prev)
			}
		}

		machine := s.Assign[current]
		mi := s.machineIndex(machine)
		if mi >= 0 {
			seq := s.MachineSeq[mi]
			for i, op := range seq {
				if op == current && i > 0 {
					prev := seq[i-1]
					if s.Finish[prev] == s.Start[current] && (len(predOps) == 0 || predOps[0] != prev) {
						predOps = append(predOps, prev)
					}
				}
			}
		}

		if len(predOps) == 0 {
			break
		}
		if len(predOps) > 1 {
			multiple = true
		}
		current = rng.Choice(predOps, r)
		path = append([]int{current}, path...)
	}

	return path, multiple, nil
}
