package carlier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborix/fjssp/schrage"
)

func TestSolveSingleOp(t *testing.T) {
	in := schrage.Input{Ops: []int{0}, R: []int{0}, P: []int{5}, Q: []int{2}, JobPred: []int{-1}}
	res := Solve(in, 0)
	assert.Equal(t, 7, res.Lmax)
	assert.Equal(t, []int{0}, res.Sequence)
}

func TestSolveMatchesScrageWhenOptimalityGapClosedImmediately(t *testing.T) {
	// Two independent ops with no precedence and no overlap in windows:
	// the initial Schrage pass is already optimal (LB == L), so Solve
	// should return without branching, matching a direct Run.
	in := schrage.Input{
		Ops:     []int{0, 1},
		R:       []int{0, 100},
		P:       []int{5, 5},
		Q:       []int{0, 0},
		JobPred: []int{-1, -1},
	}
	direct := schrage.Run(in)
	res := Solve(in, DefaultMaxDepth)
	assert.Equal(t, direct.Lmax, res.Lmax)
}

func TestSolveSameJobBlockDoesNotBranch(t *testing.T) {
	// Two ops of the same job (JobPred links them): the critical block
	// contains a same-job pair, so branching must stop at the first
	// Schrage pass per spec §4.4 step 5.
	in := schrage.Input{
		Ops:     []int{0, 1},
		R:       []int{0, 0},
		P:       []int{3, 4},
		Q:       []int{1, 0},
		JobPred: []int{-1, 0},
	}
	direct := schrage.Run(in)
	res := Solve(in, DefaultMaxDepth)
	assert.Equal(t, direct.Lmax, res.Lmax)
}

func TestSolveNeverWorseThanInitialSchrage(t *testing.T) {
	in := schrage.Input{
		Ops:     []int{0, 1, 2},
		R:       []int{0, 0, 2},
		P:       []int{4, 2, 3},
		Q:       []int{3, 1, 5},
		JobPred: []int{-1, -1, -1},
	}
	direct := schrage.Run(in)
	res := Solve(in, DefaultMaxDepth)
	require.LessOrEqual(t, res.Lmax, direct.Lmax)
}
