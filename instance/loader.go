package instance

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Load reads an instance file in the format of spec §6:
//
//	line 1: num_jobs num_machines
//	next num_jobs lines, one per job:
//	  n_ops k_1 m_{1,1} t_{1,1} ... k_2 m_{2,1} t_{2,1} ...
//
// Operation ids are assigned globally in file order (0-based). Machine
// ids are taken verbatim from the file and collected into Instance.M.
func Load(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("instance: open %s: %w", path, err)
	}
	defer f.Close()

	inst, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("instance: parse %s: %w", path, err)
	}
	name := filepath.Base(path)
	inst.Name = strings.TrimSuffix(name, filepath.Ext(name))
	return inst, nil
}

// parse implements the grammar against an io.Reader, independent of
// filesystem concerns, so it can be unit tested against strings.Reader.
func parse(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	tokens := newTokenizer(sc)

	numJobs, err := tokens.nextInt()
	if err != nil {
		return nil, fmt.Errorf("%w: reading num_jobs: %v", ErrMalformed, err)
	}
	numMachines, err := tokens.nextInt()
	if err != nil {
		return nil, fmt.Errorf("%w: reading num_machines: %v", ErrMalformed, err)
	}
	if numJobs <= 0 {
		return nil, ErrNoJobs
	}
	if numMachines <= 0 {
		return nil, ErrNoMachines
	}

	inst := &Instance{
		NumJobs:     numJobs,
		NumMachines: numMachines,
		P:           make(map[[2]int]int),
		Om:          make(map[int][]int),
	}

	machineSet := make(map[int]struct{})
	opCounter := 0

	for j := 0; j < numJobs; j++ {
		nOps, err := tokens.nextInt()
		if err != nil {
			return nil, fmt.Errorf("%w: job %d: reading n_ops: %v", ErrMalformed, j, err)
		}
		jobOps := make([]int, 0, nOps)

		for o := 0; o < nOps; o++ {
			k, err := tokens.nextInt()
			if err != nil {
				return nil, fmt.Errorf("%w: job %d op %d: reading eligibility count: %v", ErrMalformed, j, o, err)
			}
			if k <= 0 {
				return nil, fmt.Errorf("%w: job %d op %d: %w", ErrMalformed, j, o, ErrEmptyEligibility)
			}

			opID := opCounter
			opCounter++
			eligible := make([]int, 0, k)

			for m := 0; m < k; m++ {
				machine, err := tokens.nextInt()
				if err != nil {
					return nil, fmt.Errorf("%w: op %d machine %d: %v", ErrMalformed, opID, m, err)
				}
				t, err := tokens.nextInt()
				if err != nil {
					return nil, fmt.Errorf("%w: op %d machine %d: reading processing time: %v", ErrMalformed, opID, m, err)
				}
				if t <= 0 {
					return nil, fmt.Errorf("%w: op %d machine %d: %w", ErrMalformed, opID, m, ErrNonPositiveProcessingTime)
				}

				eligible = append(eligible, machine)
				machineSet[machine] = struct{}{}
				inst.P[[2]int{opID, machine}] = t
				inst.Om[machine] = append(inst.Om[machine], opID)
			}

			inst.O = append(inst.O, opID)
			inst.Mi = append(inst.Mi, eligible)
			inst.JobOfOp = append(inst.JobOfOp, j)
			jobOps = append(jobOps, opID)
		}

		inst.Oj = append(inst.Oj, jobOps)
		var prec []Precedence
		for i := 1; i < len(jobOps); i++ {
			prec = append(prec, Precedence{From: jobOps[i-1], To: jobOps[i]})
		}
		inst.Pj = append(inst.Pj, prec)
	}

	inst.M = make([]int, 0, len(machineSet))
	for m := range machineSet {
		inst.M = append(inst.M, m)
	}
	sort.Ints(inst.M)

	for m, ops := range inst.Om {
		sorted := append([]int(nil), ops...)
		sort.Ints(sorted)
		inst.Om[m] = sorted
	}

	return inst, nil
}

// tokenizer reads whitespace-delimited integer tokens across lines,
// matching spec §6's "lines delimited by newlines; tokens by whitespace".
type tokenizer struct {
	sc     *bufio.Scanner
	fields []string
	idx    int
}

func newTokenizer(sc *bufio.Scanner) *tokenizer {
	return &tokenizer{sc: sc}
}

func (t *tokenizer) nextInt() (int, error) {
	for t.idx >= len(t.fields) {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}
		t.fields = strings.Fields(t.sc.Text())
		t.idx = 0
	}
	tok := t.fields[t.idx]
	t.idx++
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("token %q is not an integer: %w", tok, err)
	}
	return v, nil
}

// optimumRecord mirrors one entry of files/instances/instances.json (§6).
type optimumRecord struct {
	Name    string `json:"name"`
	Optimum *int   `json:"optimum"`
}

// LoadOptimumTable parses the known-optimum JSON array of spec §6 into a
// name -> optimum map. A record with a null optimum is simply absent from
// the map; callers resolve a missing entry as "optimum unknown" (nan gap).
func LoadOptimumTable(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("instance: read optimum table %s: %w", path, err)
	}
	var records []optimumRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("instance: decode optimum table %s: %w", path, err)
	}
	table := make(map[string]int, len(records))
	for _, rec := range records {
		if rec.Optimum != nil {
			table[rec.Name] = *rec.Optimum
		}
	}
	return table, nil
}

// ResolveOptimum looks up inst.Name in table and sets inst.Optimum,
// leaving it nil (gap reported as "nan" per §6) when absent.
func (inst *Instance) ResolveOptimum(table map[string]int) {
	if v, ok := table[inst.Name]; ok {
		opt := v
		inst.Optimum = &opt
	}
}
