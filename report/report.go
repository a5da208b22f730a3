// Package report writes the per-instance results.csv of spec §6 Outputs.
// No pack example wires a CSV library, and Go's standard encoding/csv
// already handles quoting/escaping correctly, so this is one of the few
// ambient concerns left on the standard library rather than a third-party
// dependency (see DESIGN.md).
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Row is one instance's results.csv record. Fields left unset (zero
// makespan with HasX false) are written as empty columns, matching
// spec §6's "columns (when applicable)".
type Row struct {
	Instance string

	SolverMakespan int
	SolverTime     float64
	SolverGap      float64
	HasSolver      bool

	ConstrMakespan int
	ConstrGap      float64
	HasConstr      bool

	SAMakespan int
	SATime     float64
	SAGap      float64
	HasSA      bool
}

var header = []string{
	"instance",
	"solver makespan", "solver time", "solver gap",
	"constr.heur makespan", "constr.heur gap",
	"SA makespan", "SA time", "SA gap",
}

// WriteCSV writes rows to w with the spec §6 Outputs column set, one
// header line followed by one data line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: writing header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Instance,
			optInt(row.SolverMakespan, row.HasSolver),
			optFloat(row.SolverTime, row.HasSolver),
			optFloat(row.SolverGap, row.HasSolver),
			optInt(row.ConstrMakespan, row.HasConstr),
			optFloat(row.ConstrGap, row.HasConstr),
			optInt(row.SAMakespan, row.HasSA),
			optFloat(row.SATime, row.HasSA),
			optFloat(row.SAGap, row.HasSA),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("report: writing row for %s: %w", row.Instance, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: flushing: %w", err)
	}
	return nil
}

func optInt(v int, has bool) string {
	if !has {
		return ""
	}
	return strconv.Itoa(v)
}

func optFloat(v float64, has bool) string {
	if !has {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
