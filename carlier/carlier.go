// Package carlier implements the branch-and-bound solver of spec §4.4:
// minimize maximum lateness on one machine by repeatedly tightening the
// release/delivery windows of a contiguous critical block found in a
// Schrage schedule.
//
// The search is organized as a dedicated engine struct carrying the
// incumbent and a bounded recursion depth, in the style of the teacher
// corpus's bbEngine for TSP branch-and-bound (tsp/bb.go), rather than as
// free functions closing over shared state.
package carlier

import (
	"math"

	"github.com/arborix/fjssp/schrage"
)

// DefaultMaxDepth bounds worst-case branching cost (spec §4.4: "Bounded
// recursion depth (default 30) caps worst-case cost; on cap return
// current incumbent").
const DefaultMaxDepth = 30

// Result is the outcome of a Carlier solve.
type Result struct {
	Lmax     int
	Sequence []int
}

type engine struct {
	maxDepth int
	bestL    int
	bestSeq  []int
	index    map[int]int // op id -> position in the root Input.Ops
}

// Solve runs Carlier's branch-and-bound over in, returning the best
// maximum lateness found and the sequence achieving it. If len(in.Ops)
// <= 1 no branching is needed.
func Solve(in schrage.Input, maxDepth int) Result {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if len(in.Ops) <= 1 {
		res := schrage.Run(in)
		return Result{Lmax: res.Lmax, Sequence: res.Sequence}
	}

	idx := make(map[int]int, len(in.Ops))
	for i, o := range in.Ops {
		idx[o] = i
	}

	e := &engine{maxDepth: maxDepth, bestL: -1, index: idx}
	e.branch(in, 0)
	return Result{Lmax: e.bestL, Sequence: e.bestSeq}
}

func (e *engine) branch(in schrage.Input, depth int) int {
	res := schrage.Run(in)
	if e.bestL < 0 || res.Lmax < e.bestL {
		e.bestL = res.Lmax
		e.bestSeq = res.Sequence
	}

	if depth >= e.maxDepth {
		return res.Lmax
	}

	block, ok := criticalBlock(in, res)
	if !ok {
		return res.Lmax
	}

	if lowerBound(in, block) == res.Lmax {
		return res.Lmax
	}

	if sameJobPair(in, e.index, block) {
		return res.Lmax
	}

	k, j2, ok := branchingOp(in, block)
	if !ok {
		return res.Lmax
	}

	posK := indexOfOp(block, k)
	posJ2 := indexOfOp(block, j2)
	jBlock := block[posK+1 : posJ2+1]

	fA := e.childBefore(in, k, jBlock, depth)
	fB := e.childAfter(in, k, jBlock, depth)

	best := fA
	if fB < best {
		best = fB
	}
	return best
}

// criticalBlock implements spec §4.4 step 3: locate b = argmax(finish+q)
// = L, walk backward while finish[prev] == start[cur]. Returns the
// contiguous block as operation ids, in sequence order.
func criticalBlock(in schrage.Input, res schrage.Result) ([]int, bool) {
	b := -1
	for i, op := range res.Sequence {
		if res.Finish[op]+qOf(in, op) == res.Lmax {
			b = i
		}
	}
	if b < 0 {
		return nil, false
	}

	a := b
	for a > 0 {
		prevOp := res.Sequence[a-1]
		curOp := res.Sequence[a]
		if res.Finish[prevOp] != res.Start[curOp] {
			break
		}
		a--
	}
	return append([]int(nil), res.Sequence[a:b+1]...), true
}

// lowerBound implements spec §4.4 step 4's optimality test:
// LB = min r[o] + sum p[o] + min q[o] over the critical block C. When the
// Schrage schedule's Lmax already equals LB, no reordering of C can do
// better, so branch can return L without descending further.
func lowerBound(in schrage.Input, block []int) int {
	minR := -1
	minQ := -1
	sumP := 0
	for _, o := range block {
		r, p, q := rOf(in, o), pOf(in, o), qOf(in, o)
		sumP += p
		if minR < 0 || r < minR {
			minR = r
		}
		if minQ < 0 || q < minQ {
			minQ = q
		}
	}
	return minR + sumP + minQ
}

func qOf(in schrage.Input, op int) int {
	for i, o := range in.Ops {
		if o == op {
			return in.Q[i]
		}
	}
	return 0
}

func pOf(in schrage.Input, op int) int {
	for i, o := range in.Ops {
		if o == op {
			return in.P[i]
		}
	}
	return 0
}

func rOf(in schrage.Input, op int) int {
	for i, o := range in.Ops {
		if o == op {
			return in.R[i]
		}
	}
	return 0
}

func indexOfOp(block []int, op int) int {
	for i, o := range block {
		if o == op {
			return i
		}
	}
	return -1
}

// sameJobPair reports whether block contains two operations of the same
// job, per spec §4.4 step 5's no-branch policy, using the Input's JobPred
// chain (which only links consecutive same-job ops within this
// subproblem) to decide ancestry.
func sameJobPair(in schrage.Input, index map[int]int, block []int) bool {
	for a := 0; a < len(block); a++ {
		for b := a + 1; b < len(block); b++ {
			if isJobAncestor(in, index, block[a], block[b]) || isJobAncestor(in, index, block[b], block[a]) {
				return true
			}
		}
	}
	return false
}

func isJobAncestor(in schrage.Input, index map[int]int, ancOp, opID int) bool {
	cur, ok := index[opID]
	if !ok {
		return false
	}
	ancIdx, ok := index[ancOp]
	if !ok {
		return false
	}
	for {
		pred := in.JobPred[cur]
		if pred < 0 {
			return false
		}
		if pred == ancIdx {
			return true
		}
		cur = pred
	}
}

// branchingOp implements spec §4.4 step 6: scan block[:-1] from the
// right; k is the latest op with q[k] < q[i2], where i2 = block[-1].
func branchingOp(in schrage.Input, block []int) (k, i2 int, ok bool) {
	last := block[len(block)-1]
	qLast := qOf(in, last)
	for i := len(block) - 2; i >= 0; i-- {
		op := block[i]
		if qOf(in, op) < qLast {
			return op, last, true
		}
	}
	return 0, 0, false
}

// childBefore implements Child A of spec §4.4 step 7: "process k before
// J". q'[k] = max(q[k], sum p[j in J] + q[last(J)]); recurse only if
// q'[k] > q[k].
func (e *engine) childBefore(in schrage.Input, k int, jBlock []int, depth int) int {
	sumP := 0
	for _, j := range jBlock {
		sumP += pOf(in, j)
	}
	qLastJ := qOf(in, jBlock[len(jBlock)-1])
	qK := qOf(in, k)
	qPrime := sumP + qLastJ
	if qK > qPrime {
		qPrime = qK
	}
	if qPrime <= qK {
		return math.MaxInt
	}

	child := withUpdatedQ(in, k, qPrime)
	return e.branch(child, depth+1)
}

// childAfter implements Child B of spec §4.4 step 7: "process k after J".
// r'[k] = max(r[k], min r[j in J] + sum p[j in J]); recurse only if
// r'[k] > r[k].
func (e *engine) childAfter(in schrage.Input, k int, jBlock []int, depth int) int {
	sumP := 0
	minR := -1
	for _, j := range jBlock {
		sumP += pOf(in, j)
		rj := rOf(in, j)
		if minR < 0 || rj < minR {
			minR = rj
		}
	}
	rPrime := minR + sumP
	if rPrime <= rOf(in, k) {
		return math.MaxInt
	}

	child := withUpdatedR(in, k, rPrime)
	return e.branch(child, depth+1)
}

func withUpdatedQ(in schrage.Input, op, q int) schrage.Input {
	out := cloneInput(in)
	for i, o := range out.Ops {
		if o == op {
			out.Q[i] = q
			break
		}
	}
	return out
}

func withUpdatedR(in schrage.Input, op, r int) schrage.Input {
	out := cloneInput(in)
	for i, o := range out.Ops {
		if o == op {
			out.R[i] = r
			break
		}
	}
	return out
}

func cloneInput(in schrage.Input) schrage.Input {
	return schrage.Input{
		Ops:     append([]int(nil), in.Ops...),
		R:       append([]int(nil), in.R...),
		P:       append([]int(nil), in.P...),
		Q:       append([]int(nil), in.Q...),
		JobPred: append([]int(nil), in.JobPred...),
	}
}
