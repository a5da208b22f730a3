// Package instance holds the immutable problem data for the Flexible
// Job-Shop Scheduling Problem: jobs, operations, machine eligibility,
// processing times, and technological precedence (spec §3).
//
// Parsing the instance file format and the known-optimum lookup table
// are external-collaborator concerns per the distilled specification,
// but a complete, testable module needs a concrete implementation behind
// that boundary, so Load and LoadOptimumTable are implemented here
// against the exact grammar described in spec §6.
package instance

import "errors"

// Sentinel errors for instance loading and validation.
var (
	// ErrEmptyEligibility indicates an operation has no eligible machines.
	ErrEmptyEligibility = errors.New("instance: operation has empty machine eligibility set")
	// ErrMalformed indicates the instance file does not match the grammar of spec §6.
	ErrMalformed = errors.New("instance: malformed input")
	// ErrNoJobs indicates an instance declares zero jobs.
	ErrNoJobs = errors.New("instance: num_jobs must be positive")
	// ErrNoMachines indicates an instance declares zero machines.
	ErrNoMachines = errors.New("instance: num_machines must be positive")
	// ErrNonPositiveProcessingTime indicates a processing time ≤ 0 was read.
	ErrNonPositiveProcessingTime = errors.New("instance: processing time must be positive")
)

// Precedence is a consecutive technological precedence pair (u, v) within
// a job: u must finish before v starts.
type Precedence struct {
	From int
	To   int
}

// MachineOption pairs an eligible machine id with its processing time for
// one operation.
type MachineOption struct {
	Machine int
	Time    int
}

// Instance is the read-only problem data of spec §3. All operation and
// machine ids are plain ints: operation ids are assigned 0..N-1 in file
// order; machine ids are the raw ids from the file, collected into a
// sorted M slice (not remapped to a dense range, since spec §6 says raw
// machine ids are not assumed to be contiguous or 0-based, and several
// building blocks index p by the raw id directly).
type Instance struct {
	Name        string
	NumJobs     int
	NumMachines int

	// O is 0..N-1, the global operation ids in file order.
	O []int
	// M is the sorted set of machine ids that appear in the file.
	M []int

	// Mi[o] is the set of eligible machines for operation o.
	Mi [][]int
	// P maps (op, machine) -> processing time; only defined for m in Mi[o].
	P map[[2]int]int

	// JobOfOp[o] is the job id owning operation o.
	JobOfOp []int
	// Oj[j] is the ordered tuple of operations belonging to job j.
	Oj [][]int
	// Pj[j] is the consecutive precedence pairs along job j.
	Pj [][]Precedence
	// Om[m] is the set of operations for which m is eligible.
	Om map[int][]int

	// Optimum is the known lower bound for gap reporting, or nil if unknown.
	Optimum *int
}

// ProcessingTime returns p[(o,m)] and whether m is eligible for o.
func (inst *Instance) ProcessingTime(op, machine int) (int, bool) {
	t, ok := inst.P[[2]int{op, machine}]
	return t, ok
}

// NumOps returns |O|.
func (inst *Instance) NumOps() int { return len(inst.O) }

// TechSequence returns the technological sequence of job j as a flat
// operation list (recovered from original_source/instance.py's S_j: a
// convenience view already implied by Pj, kept as a derived accessor
// rather than a stored field to match spec §3's data model literally).
func (inst *Instance) TechSequence(job int) []int {
	return append([]int(nil), inst.Oj[job]...)
}

// JobSuccessors returns the operations that follow op within its job, in
// technological order (used by the active-list scheduler's priority key,
// spec §4.2).
func (inst *Instance) JobSuccessors(op int) []int {
	job := inst.JobOfOp[op]
	seq := inst.Oj[job]
	for i, o := range seq {
		if o == op {
			return append([]int(nil), seq[i+1:]...)
		}
	}
	return nil
}

// JobPredecessors returns the operations that precede op within its job,
// in technological order.
func (inst *Instance) JobPredecessors(op int) []int {
	job := inst.JobOfOp[op]
	seq := inst.Oj[job]
	for i, o := range seq {
		if o == op {
			return append([]int(nil), seq[:i]...)
		}
	}
	return nil
}
