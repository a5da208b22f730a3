package solution

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborix/fjssp/graph"
	"github.com/arborix/fjssp/instance"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inst.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// buildTwoJobTwoMachine constructs a tiny hand-rolled instance: two jobs,
// each with a single operation, both eligible only on their own machine.
func buildTwoJobTwoMachine(t *testing.T) *instance.Instance {
	t.Helper()
	inst, err := instance.Load(writeTemp(t, "2 2\n1 1 0 3\n1 1 1 5\n"))
	require.NoError(t, err)
	return inst
}

func TestSolutionRecomputeSimpleChain(t *testing.T) {
	inst := buildTwoJobTwoMachine(t)
	s := New(inst)
	s.Assign[0] = 0
	s.Assign[1] = 1

	require.NoError(t, s.Graph.AddConjunctive(graph.Source, 0, 0))
	require.NoError(t, s.Graph.AddConjunctive(graph.Source, 1, 0))
	require.NoError(t, s.Graph.AddConjunctive(0, graph.Sink, 3))
	require.NoError(t, s.Graph.AddConjunctive(1, graph.Sink, 5))

	require.NoError(t, s.Recompute())
	assert.Equal(t, 5, s.Makespan)
	assert.Equal(t, 0, s.Start[0])
	assert.Equal(t, 3, s.Finish[0])
	assert.Equal(t, 0, s.Start[1])
	assert.Equal(t, 5, s.Finish[1])
}

func TestCloneIsIndependent(t *testing.T) {
	inst := buildTwoJobTwoMachine(t)
	s := New(inst)
	s.Assign[0] = 0
	s.Assign[1] = 1
	s.MachineSeq[0] = []int{0}
	s.MachineSeq[1] = []int{1}

	clone := s.Clone()
	clone.Assign[0] = 1
	clone.MachineSeq[0][0] = 99

	assert.Equal(t, 0, s.Assign[0])
	assert.Equal(t, 0, s.MachineSeq[0][0])
}

func TestFindCriticalPathRequiresRecompute(t *testing.T) {
	inst := buildTwoJobTwoMachine(t)
	s := New(inst)
	_, _, err := s.FindCriticalPath(rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrIncompleteSchedule)
}

func TestFindCriticalPathOnChain(t *testing.T) {
	// job 0: op0 -> op1, both on machine 0 in sequence; the makespan is a
	// single deterministic chain back to op0.
	inst, err := instance.Load(writeTemp(t, "1 1\n2 1 0 3 1 0 4\n"))
	require.NoError(t, err)

	s := New(inst)
	s.Assign[0] = 0
	s.Assign[1] = 0
	s.MachineSeq[0] = []int{0, 1}

	require.NoError(t, s.Graph.AddConjunctive(graph.Source, 0, 0))
	require.NoError(t, s.Graph.AddConjunctive(0, 1, 3))
	require.NoError(t, s.Graph.AddConjunctive(1, graph.Sink, 4))

	require.NoError(t, s.Recompute())
	cp, multiple, err := s.FindCriticalPath(rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.False(t, multiple)
	assert.Equal(t, []int{0, 1}, cp)
}
