// Package localsearch implements the Tabu-aware neighbor generator of
// spec §4.6: given a fully scheduled Solution, it reassigns a handful of
// flexible critical-path operations to alternative machines and calls sbp
// to repair the resulting partial graph, tracking recently-applied moves
// per solution structural-hash key so the same reassignment is not
// retried immediately.
//
// The structural hash uses xxhash over the per-machine sequence vectors
// (spec §9: "the hash of a tuple-of-tuples over seq[m] canonicalizes a
// solution's schedule"), in the spirit of the teacher corpus's use of
// compact non-cryptographic hashing for cache/structural keys.
package localsearch

import (
	"encoding/binary"
	"math/rand"

	"github.com/cespare/xxhash/v2"

	"github.com/arborix/fjssp/instance"
	"github.com/arborix/fjssp/rng"
	"github.com/arborix/fjssp/sbp"
	"github.com/arborix/fjssp/solution"
)

// Intensity selects how many critical-path operations a single call
// attempts to reassign (spec §4.6 step 3).
type Intensity int

const (
	Intensity0 Intensity = iota
	Intensity1
	Intensity2
	Intensity3
)

// DefaultMaxAttempts bounds how many times Generate retries before giving
// up and reporting "no neighbor" (spec §4.6 step 6).
const DefaultMaxAttempts = 100

// Key canonicalizes a Solution's machine sequences into a structural hash
// (spec §9), used to key per-solution Tabu state.
type Key uint64

// HashOf computes the structural key of sol's current machine sequences.
func HashOf(sol *solution.Solution) Key {
	h := xxhash.New()
	buf := make([]byte, 8)
	for _, seq := range sol.MachineSeq {
		for _, op := range seq {
			binary.LittleEndian.PutUint64(buf, uint64(int64(op)))
			_, _ = h.Write(buf)
		}
		// Separator between machines' sequences so [1,2][3] and [1][2,3]
		// hash differently.
		binary.LittleEndian.PutUint64(buf, ^uint64(0))
		_, _ = h.Write(buf)
	}
	return Key(h.Sum64())
}

type move struct {
	op      int
	machine int
}

// state is the per-key Tabu state of spec §4.6.
type state struct {
	queue     []int
	tabuMoves []move
	tabuCap   int
}

// Searcher owns the Tabu map across calls to Generate, keyed by Key.
type Searcher struct {
	inst       *instance.Instance
	maxAttempt int
	states     map[Key]*state
	sbpOpts    sbp.Options
}

// New creates a Searcher for inst. maxAttempts <= 0 uses DefaultMaxAttempts.
func New(inst *instance.Instance, maxAttempts int, sbpOpts sbp.Options) *Searcher {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Searcher{inst: inst, maxAttempt: maxAttempts, states: make(map[Key]*state), sbpOpts: sbpOpts}
}

// Generate attempts to produce one neighbor of sol at the given intensity
// and relative temperature, per spec §4.6. ok is false if no neighbor
// could be produced within the attempt budget (§4.6 step 6).
func (s *Searcher) Generate(sol *solution.Solution, key Key, intensity Intensity, tRel float64, r *rand.Rand) (neighbor *solution.Solution, makespan int, ok bool, err error) {
	st, exists := s.states[key]
	if !exists || len(st.queue) == 0 {
		path, _, ferr := sol.FindCriticalPath(r)
		if ferr != nil {
			return nil, 0, false, ferr
		}
		flexible := flexibleOps(s.inst, path)
		if len(flexible) == 0 {
			return nil, 0, false, nil
		}
		rng.ShuffleInts(flexible, r)

		tabuCap := 0
		for _, op := range flexible {
			tabuCap += len(s.inst.Mi[op]) - 1
		}
		st = &state{queue: flexible, tabuCap: tabuCap}
		s.states[key] = st
	}

	chosen := selectOps(st.queue, intensity, tRel, r)
	if len(chosen) == 0 {
		return nil, 0, false, nil
	}
	st.queue = popOps(st.queue, chosen)

	for attempt := 0; attempt < s.maxAttempt; attempt++ {
		candidate := sol.Clone()
		applied := 0
		var appliedMoves []move

		for _, op := range chosen {
			alts := alternativeMachines(s.inst, op, candidate.Assign[op])
			rng.ShuffleInts(alts, r)
			for _, m := range alts {
				if isTabu(st, op, m) {
					continue
				}
				candidate.Assign[op] = m
				appliedMoves = append(appliedMoves, move{op: op, machine: m})
				applied++
				break
			}
		}

		if applied == 0 {
			continue
		}

		if err := candidate.RebuildConjunctiveGraph(); err != nil {
			return nil, 0, false, err
		}
		if err := sbp.Run(s.inst, candidate, s.sbpOpts); err != nil {
			return nil, 0, false, err
		}

		st.tabuMoves = append(st.tabuMoves, appliedMoves...)
		if st.tabuCap > 0 {
			for len(st.tabuMoves) > st.tabuCap {
				st.tabuMoves = st.tabuMoves[1:]
			}
		}

		return candidate, candidate.Makespan, true, nil
	}

	return nil, 0, false, nil
}

func isTabu(st *state, op, machine int) bool {
	for _, mv := range st.tabuMoves {
		if mv.op == op && mv.machine == machine {
			return true
		}
	}
	return false
}

func flexibleOps(inst *instance.Instance, path []int) []int {
	var out []int
	for _, op := range path {
		if len(inst.Mi[op]) > 1 {
			out = append(out, op)
		}
	}
	return out
}

func alternativeMachines(inst *instance.Instance, op, current int) []int {
	var out []int
	for _, m := range inst.Mi[op] {
		if m != current {
			out = append(out, m)
		}
	}
	return out
}

// selectOps implements spec §4.6 step 3's intensity-indexed op-count
// rules, then returns that many ops: a random subset of queue at
// Intensity3, otherwise the front of queue. queue itself is not modified;
// Generate removes the chosen ops with popOps.
func selectOps(queue []int, intensity Intensity, tRel float64, r *rand.Rand) []int {
	if len(queue) == 0 {
		return nil
	}
	n := 1
	switch intensity {
	case Intensity0:
		n = 1
	case Intensity1:
		n = maxInt(2, int(0.05*tRel*float64(len(queue))))
	case Intensity2:
		n = maxInt(3, int(0.10*tRel*float64(len(queue))))
	case Intensity3:
		frac := 0.15 + 0.30*tRel
		if frac > 0.30 {
			frac = 0.30
		}
		n = int(frac * float64(len(queue)))
		if n == 0 {
			n = 1
		}
	}
	if n > len(queue) {
		n = len(queue)
	}

	if intensity == Intensity3 {
		shuffled := append([]int(nil), queue...)
		rng.ShuffleInts(shuffled, r)
		return shuffled[:n]
	}
	return append([]int(nil), queue[:n]...)
}

// popOps removes chosen's ops from queue, preserving the relative order of
// what remains, so a subsequent Generate call on the same key sees the
// queue shrink instead of re-selecting the same ops indefinitely.
func popOps(queue, chosen []int) []int {
	remove := make(map[int]int, len(chosen))
	for _, op := range chosen {
		remove[op]++
	}
	out := queue[:0:0]
	for _, op := range queue {
		if remove[op] > 0 {
			remove[op]--
			continue
		}
		out = append(out, op)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
