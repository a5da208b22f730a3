package localsearch

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborix/fjssp/builder"
	"github.com/arborix/fjssp/instance"
	"github.com/arborix/fjssp/sbp"
)

func load(t *testing.T, content string) *instance.Instance {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inst.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	inst, err := instance.Load(path)
	require.NoError(t, err)
	return inst
}

// buildFlexible gives each operation two eligible machines so a neighbor
// move is always available.
func buildFlexible(t *testing.T) *instance.Instance {
	t.Helper()
	return load(t, "1 2\n2 2 1 5 2 3 2 1 4 2 6\n")
}

func TestHashOfIsStableAndOrderSensitive(t *testing.T) {
	inst := buildFlexible(t)
	sol, err := builder.Build(inst, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	h1 := HashOf(sol)
	h2 := HashOf(sol)
	assert.Equal(t, h1, h2)

	sol.MachineSeq[0] = append([]int(nil), sol.MachineSeq[0]...)
	if len(sol.MachineSeq[0]) > 1 {
		sol.MachineSeq[0][0], sol.MachineSeq[0][1] = sol.MachineSeq[0][1], sol.MachineSeq[0][0]
		assert.NotEqual(t, h1, HashOf(sol))
	}
}

func TestGenerateProducesFeasibleNeighbor(t *testing.T) {
	inst := buildFlexible(t)
	r := rand.New(rand.NewSource(1))
	sol, err := builder.Build(inst, r)
	require.NoError(t, err)
	require.NoError(t, sbp.Run(inst, sol, sbp.Options{}))

	s := New(inst, 0, sbp.Options{})
	key := HashOf(sol)
	neighbor, makespan, ok, err := s.Generate(sol, key, Intensity0, 0.5, r)
	require.NoError(t, err)
	if ok {
		assert.Equal(t, neighbor.Makespan, makespan)
		for _, pj := range inst.Pj {
			for _, prec := range pj {
				assert.LessOrEqual(t, neighbor.Finish[prec.From], neighbor.Start[prec.To])
			}
		}
	}
}

func TestGenerateReturnsFalseWithNoFlexibleOps(t *testing.T) {
	inst := load(t, "1 1\n1 1 1 5\n")
	r := rand.New(rand.NewSource(1))
	sol, err := builder.Build(inst, r)
	require.NoError(t, err)
	require.NoError(t, sbp.Run(inst, sol, sbp.Options{}))

	s := New(inst, 0, sbp.Options{})
	_, _, ok, err := s.Generate(sol, HashOf(sol), Intensity0, 0.5, r)
	require.NoError(t, err)
	assert.False(t, ok)
}
