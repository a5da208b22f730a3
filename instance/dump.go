package instance

import (
	"fmt"
	"io"
)

// Dump writes a human-readable echo of the parsed instance: the sets and
// maps of spec §3, one per line. Grounded on the reference implementation's
// instance print routine; cmd/fjssp writes it to <name>.dump.txt next to
// the instance file on every run.
func (inst *Instance) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "instance %q: %d jobs, %d machines, %d operations\n",
		inst.Name, inst.NumJobs, inst.NumMachines, inst.NumOps()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "O  = %v\n", inst.O); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "M  = %v\n", inst.M); err != nil {
		return err
	}
	for _, o := range inst.O {
		opts := inst.Mi[o]
		if _, err := fmt.Fprintf(w, "  op %d (job %d): M_i=%v", o, inst.JobOfOp[o], opts); err != nil {
			return err
		}
		for _, m := range opts {
			t, _ := inst.ProcessingTime(o, m)
			if _, err := fmt.Fprintf(w, " p(%d,%d)=%d", o, m, t); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	for j, seq := range inst.Oj {
		if _, err := fmt.Fprintf(w, "O_%d = %v, P_%d = %v\n", j, seq, j, inst.Pj[j]); err != nil {
			return err
		}
	}
	if inst.Optimum != nil {
		if _, err := fmt.Fprintf(w, "known optimum = %d\n", *inst.Optimum); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, "known optimum = unknown"); err != nil {
			return err
		}
	}
	return nil
}
