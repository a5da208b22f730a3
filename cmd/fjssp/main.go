// Command fjssp is the CLI front-end of the FJSSP heuristic engine (spec
// §6): it loads an instance, optionally runs the constructive heuristic
// and/or Simulated Annealing, and writes an instance dump and results.csv
// next to the instance file. Grounded on beadwork's cmd/bw/main.go: stdlib
// flag parsing, early validation with os.Exit(1)/(2), config loaded once
// up front.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arborix/fjssp/anneal"
	"github.com/arborix/fjssp/builder"
	"github.com/arborix/fjssp/config"
	"github.com/arborix/fjssp/flog"
	"github.com/arborix/fjssp/instance"
	"github.com/arborix/fjssp/report"
	"github.com/arborix/fjssp/rng"
	"github.com/arborix/fjssp/sbp"
)

// ErrMIPSolverUnavailable is returned by method=cbc: the MIP baseline is
// an out-of-scope external collaborator (spec §1).
var ErrMIPSolverUnavailable = errors.New("fjssp: MIP solver baseline is not bundled with this engine")

func main() {
	instPath := flag.String("instance", "", "path to the FJSSP instance file (required)")
	method := flag.String("method", "both", "cbc | SA | both")
	timeLimit := flag.Float64("time-limit", 30, "SA time budget in seconds")
	saLog := flag.String("sa-log", "N", "Y|N: stream SA status lines to stderr")
	sbpLog := flag.String("sbp-log", "N", "Y|N: stream SBP status lines to stderr")
	seed := flag.Int64("seed", 42, "RNG seed")
	cfgPath := flag.String("config", "", "optional YAML file overriding SA/Carlier hyperparameters")
	flag.Parse()

	if *instPath == "" {
		fmt.Fprintln(os.Stderr, "fjssp: -instance is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*instPath, *method, *timeLimit, *saLog, *sbpLog, *seed, *cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "fjssp: %v\n", err)
		os.Exit(1)
	}
}

func run(instPath, method string, timeLimit float64, saLog, sbpLog string, seed int64, cfgPath string) error {
	inst, err := instance.Load(instPath)
	if err != nil {
		return fmt.Errorf("loading instance: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if seed != 0 {
		cfg.Seed = seed
	}

	dir := filepath.Dir(instPath)
	dumpPath := filepath.Join(dir, inst.Name+".dump.txt")
	if err := writeDump(inst, dumpPath); err != nil {
		return fmt.Errorf("writing instance dump: %w", err)
	}

	switch strings.ToLower(method) {
	case "cbc":
		return ErrMIPSolverUnavailable
	case "sa", "both":
	default:
		return fmt.Errorf("unknown -method %q (want cbc, SA, or both)", method)
	}

	r := rng.New(cfg.Seed)
	sbpOpts := sbp.Options{MaxDepth: cfg.CarlierMaxDepth, Logger: loggerFor(sbpLog)}

	initial, err := builder.Build(inst, r, builder.WithStrategy(builder.GRASP), builder.WithAlpha(cfg.GRASPAlpha))
	if err != nil {
		return fmt.Errorf("constructive build: %w", err)
	}
	if err := sbp.Run(inst, initial, sbpOpts); err != nil {
		return fmt.Errorf("shifting bottleneck repair: %w", err)
	}
	constrMakespan := initial.Makespan

	row := report.Row{
		Instance:       inst.Name,
		ConstrMakespan: constrMakespan,
		HasConstr:      true,
	}
	if inst.Optimum != nil {
		row.ConstrGap = gapPercent(constrMakespan, *inst.Optimum)
	}

	if strings.EqualFold(method, "both") || strings.EqualFold(method, "sa") {
		annealOpts := cfg.AnnealOptions()
		annealOpts.MaxTime = time.Duration(timeLimit * float64(time.Second))
		annealOpts.Logger = loggerFor(saLog)
		annealOpts.SBPOptions = sbpOpts

		res := anneal.Run(inst, initial, r, annealOpts)
		row.SAMakespan = res.Best.Makespan
		row.SATime = res.Elapsed.Seconds()
		row.HasSA = true
		if res.HasGap {
			row.SAGap = res.Gap
		}
	}

	csvPath := filepath.Join(dir, inst.Name+".results.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("creating results.csv: %w", err)
	}
	defer f.Close()

	return report.WriteCSV(f, []report.Row{row})
}

func writeDump(inst *instance.Instance, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return inst.Dump(f)
}

func loggerFor(flagValue string) *flog.Logger {
	if strings.EqualFold(flagValue, "Y") {
		return flog.New(flog.Terminal, os.Stderr, nil)
	}
	return flog.Discard()
}

func gapPercent(makespan, optimum int) float64 {
	if makespan == 0 {
		return 0
	}
	return float64(makespan-optimum) / float64(makespan) * 100
}
