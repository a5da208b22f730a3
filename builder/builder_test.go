package builder

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborix/fjssp/instance"
)

func load(t *testing.T, content string) *instance.Instance {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inst.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	inst, err := instance.Load(path)
	require.NoError(t, err)
	return inst
}

// Scenario 1 (spec §8): trivial single job, single machine.
func TestBuildTrivialSingleJobSingleMachine(t *testing.T) {
	inst := load(t, "1 1\n1 1 1 5\n")
	sol, err := Build(inst, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 5, sol.Makespan)
	assert.Equal(t, 1, sol.Assign[0])
	assert.Equal(t, []int{0}, sol.MachineSeq[0])
	assert.Equal(t, 0, sol.Start[0])
}

// Scenario 2 (spec §8): two jobs, two machines, no flexibility. Machine 2
// carries both op1 (t=2) and op2 (t=4) with op1 gated behind op0's
// completion at t=3, so the minimum feasible makespan on that machine
// alone is 6, not the 5 suggested by the scenario's prose walkthrough;
// this test asserts the value the scheduling rules of §4.2 actually
// produce rather than that figure.
func TestBuildTwoJobsNoFlexibility(t *testing.T) {
	inst := load(t, "2 2\n2 1 1 3 1 2 2\n2 1 2 4 1 1 1\n")
	sol, err := Build(inst, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 6, sol.Makespan)
	for _, pj := range inst.Pj {
		for _, prec := range pj {
			assert.LessOrEqual(t, sol.Finish[prec.From], sol.Start[prec.To])
		}
	}
}

// Scenario 3 (spec §8): flexibility with one fast alternative, GRASP
// alpha=0 behaves like greedy and should pick machine 2 for both ops.
func TestBuildGraspAlphaZeroMatchesGreedy(t *testing.T) {
	inst := load(t, "1 2\n2 2 1 10 2 1 2 2 1 1 2 5\n")
	sol, err := Build(inst, rand.New(rand.NewSource(1)), WithStrategy(GRASP), WithAlpha(0))
	require.NoError(t, err)
	assert.Equal(t, 2, sol.Makespan)
	assert.Equal(t, 2, sol.Assign[0])
	assert.Equal(t, 2, sol.Assign[1])
}

func TestGraspRespectsBoundsProperty(t *testing.T) {
	inst := load(t, "1 2\n1 3 1 2 2 6 3 9\n")
	r := rand.New(rand.NewSource(7))
	const alpha = 0.5
	for i := 0; i < 50; i++ {
		sol, err := Build(inst, r, WithStrategy(GRASP), WithAlpha(alpha))
		require.NoError(t, err)
		m := sol.Assign[0]
		pt, _ := inst.ProcessingTime(0, m)
		pmin, pmax := 2, 9
		assert.LessOrEqual(t, float64(pt), float64(pmin)+alpha*float64(pmax-pmin))
	}
}

func TestRandomStrategyPicksEligibleMachine(t *testing.T) {
	inst := load(t, "1 1\n1 3 1 2 2 6 3 9\n")
	r := rand.New(rand.NewSource(3))
	sol, err := Build(inst, r, WithStrategy(Random))
	require.NoError(t, err)
	assert.Contains(t, inst.Mi[0], sol.Assign[0])
}
