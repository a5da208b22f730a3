package graph

import (
	"testing"

	"pgregory.net/rapid"
)

// TestMakespanMatchesSequentialSumOnSingleMachineChain is a property test
// in the style of the scheduler corpus's reconcile_cluster_prop_test.go:
// for a random single-job, single-machine sequence of processing times,
// the disjunctive graph's makespan must equal their plain sum, since a
// single machine carrying every operation in a fixed order admits no
// parallelism.
func TestMakespanMatchesSequentialSumOnSingleMachineChain(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		times := make([]int, n)
		for i := range times {
			times[i] = rapid.IntRange(1, 50).Draw(t, "p")
		}

		g := New()
		ops := make([]int, n)
		for i := 0; i < n; i++ {
			ops[i] = i
			if err := g.AddNode(i); err != nil {
				t.Fatalf("AddNode: %v", err)
			}
		}

		if err := g.AddConjunctive(Source, 0, 0); err != nil {
			t.Fatalf("AddConjunctive source: %v", err)
		}
		for i := 0; i < n-1; i++ {
			if err := g.AddConjunctive(ops[i], ops[i+1], times[i]); err != nil {
				t.Fatalf("AddConjunctive chain: %v", err)
			}
		}
		if err := g.AddConjunctive(ops[n-1], Sink, times[n-1]); err != nil {
			t.Fatalf("AddConjunctive sink: %v", err)
		}

		weight := make(map[int]int, n)
		for i, op := range ops {
			weight[op] = times[i]
		}
		if err := g.ConsolidateSequence(99, ops, func(op int) int { return weight[op] }); err != nil {
			t.Fatalf("ConsolidateSequence: %v", err)
		}

		ms, _, err := g.Makespan()
		if err != nil {
			t.Fatalf("Makespan: %v", err)
		}

		want := 0
		for _, p := range times {
			want += p
		}
		if ms != want {
			t.Fatalf("makespan %d, want sequential sum %d", ms, want)
		}
	})
}

// TestConsolidateThenRemoveRestoresPriorMakespan checks that
// RemoveSequence is a true inverse of ConsolidateSequence: consolidating
// a random order and then removing it must restore the makespan computed
// before consolidation, for any number of independent single-op "jobs"
// sharing one machine.
func TestConsolidateThenRemoveRestoresPriorMakespan(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 10).Draw(t, "n")

		g := New()
		weight := make(map[int]int, n)
		ops := make([]int, n)
		for i := 0; i < n; i++ {
			ops[i] = i
			p := rapid.IntRange(1, 30).Draw(t, "p")
			weight[i] = p
			if err := g.AddNode(i); err != nil {
				t.Fatalf("AddNode: %v", err)
			}
			if err := g.AddConjunctive(Source, i, 0); err != nil {
				t.Fatalf("AddConjunctive source: %v", err)
			}
			if err := g.AddConjunctive(i, Sink, p); err != nil {
				t.Fatalf("AddConjunctive sink: %v", err)
			}
		}

		before, _, err := g.Makespan()
		if err != nil {
			t.Fatalf("Makespan before: %v", err)
		}

		order := append([]int(nil), ops...)
		for i := len(order) - 1; i > 0; i-- {
			j := rapid.IntRange(0, i).Draw(t, "swap")
			order[i], order[j] = order[j], order[i]
		}
		if err := g.ConsolidateSequence(1, order, func(op int) int { return weight[op] }); err != nil {
			t.Fatalf("ConsolidateSequence: %v", err)
		}
		g.RemoveSequence(1)

		after, _, err := g.Makespan()
		if err != nil {
			t.Fatalf("Makespan after: %v", err)
		}
		if after != before {
			t.Fatalf("makespan after remove = %d, want %d", after, before)
		}
	})
}
