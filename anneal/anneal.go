// Package anneal implements the two-phase Simulated Annealing metaheuristic
// of spec §4.8: an initial temperature calibration targeting a worsening-move
// acceptance rate in [0.2, 0.5], followed by an annealing loop that drives
// localsearch's Tabu-aware neighbor generator, escalates intensity on
// stagnation, and diversifies via GRASP rebuilds.
package anneal

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/arborix/fjssp/builder"
	"github.com/arborix/fjssp/flog"
	"github.com/arborix/fjssp/instance"
	"github.com/arborix/fjssp/localsearch"
	"github.com/arborix/fjssp/rng"
	"github.com/arborix/fjssp/sbp"
	"github.com/arborix/fjssp/solution"
)

// Defaults per spec §4.8.
const (
	DefaultAlpha   = 0.97
	DefaultBeta    = 1.1
	DefaultK       = 2
	DefaultTFinal  = 0.01
	DefaultMaxTime = 300 * time.Second
	DefaultT0Param = 2.0
)

// Options configure Run.
type Options struct {
	Alpha       float64
	Beta        float64
	K           int
	TFinal      float64
	MaxTime     time.Duration
	T0Param     float64
	MaxAttempts int
	// SBPOptions is passed through to every repair call local search makes
	// (spec §4.6 step 5), so -sbp-log and the config file's
	// carlier_max_depth apply to SA's inner repairs the same way they apply
	// to the initial SBP pass.
	SBPOptions sbp.Options
	Logger     *flog.Logger
	Clock      rng.Clock
}

// DefaultOptions returns the spec §4.8 default parameterization.
func DefaultOptions() Options {
	return Options{
		Alpha:   DefaultAlpha,
		Beta:    DefaultBeta,
		K:       DefaultK,
		TFinal:  DefaultTFinal,
		MaxTime: DefaultMaxTime,
		T0Param: DefaultT0Param,
		Clock:   rng.WallClock{},
	}
}

// Event is one status message recorded during Run. Run writes each
// message to its Logger as it happens and returns all of them, in order,
// in Result.Events once the run is over; they are not delivered to the
// caller while the run is in progress.
type Event struct {
	Message  string
	Makespan int
}

// Result is the outcome of a full SA run (spec §4.8's final return).
type Result struct {
	// RunID uniquely tags this run so its Events can be correlated across
	// concurrent invocations sharing one log sink, the way the corpus's
	// entity ids (bevi's Player.UUID) disambiguate interleaved streams.
	RunID   uuid.UUID
	Best    *solution.Solution
	Elapsed time.Duration
	Gap     float64
	HasGap  bool
	Events  []Event
}

// Run executes Phase 1 (temperature calibration) then Phase 2 (annealing)
// starting from initial, a fully-scheduled Solution produced by the
// Constructive Builder and repaired by sbp. r drives all randomness.
func Run(inst *instance.Instance, initial *solution.Solution, r *rand.Rand, opts Options) Result {
	cfg := mergeDefaults(opts)
	log := cfg.Logger
	clock := cfg.Clock
	startedAt := clock.Now()

	var events []Event
	emit := func(format string, makespan int) {
		events = append(events, Event{Message: format, Makespan: makespan})
		log.Log("%s", format)
	}

	searcher := localsearch.New(inst, cfg.MaxAttempts, cfg.SBPOptions)

	runID := uuid.New()
	current := initial
	best := initial.Clone()
	emit(fmt.Sprintf("run %s: initial solution built", runID), current.Makespan)

	log.Log("phase 1: calibrating temperature")
	var t0 float64
	log.WithScope(func() {
		t0, current = calibrate(inst, current, searcher, r, cfg, clock, startedAt)
	})
	emit("temperature calibrated", current.Makespan)

	log.Log("phase 2: annealing")
	var result Result
	log.WithScope(func() {
		result = anneal(inst, current, best, searcher, r, cfg, clock, startedAt, t0, emit)
	})
	result.RunID = runID
	result.Elapsed = clock.Now().Sub(startedAt)
	result.Events = events

	if inst.Optimum != nil && result.Best.Makespan > 0 {
		result.Gap = math.Round(100*float64(result.Best.Makespan-*inst.Optimum)/float64(result.Best.Makespan)*10000) / 10000
		result.HasGap = true
	}

	return result
}

func mergeDefaults(opts Options) Options {
	cfg := opts
	if cfg.Alpha == 0 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.Beta == 0 {
		cfg.Beta = DefaultBeta
	}
	if cfg.K == 0 {
		cfg.K = DefaultK
	}
	if cfg.TFinal == 0 {
		cfg.TFinal = DefaultTFinal
	}
	if cfg.MaxTime == 0 {
		cfg.MaxTime = DefaultMaxTime
	}
	if cfg.T0Param == 0 {
		cfg.T0Param = DefaultT0Param
	}
	if cfg.Logger == nil {
		cfg.Logger = flog.Discard()
	}
	if cfg.Clock == nil {
		cfg.Clock = rng.WallClock{}
	}
	return cfg
}

// calibrate implements spec §4.8 Phase 1, returning the calibrated
// temperature and the solution current evolved to during calibration.
func calibrate(inst *instance.Instance, current *solution.Solution, searcher *localsearch.Searcher, r *rand.Rand, cfg Options, clock rng.Clock, startedAt time.Time) (float64, *solution.Solution) {
	makespan := float64(current.Makespan)
	temp := cfg.T0Param
	lo, hi := 0.1*makespan, 5*makespan
	if temp < lo {
		temp = lo
	}
	if temp > hi {
		temp = hi
	}

	deadline := startedAt.Add(cfg.MaxTime * 15 / 100)
	iterations := cfg.K * inst.NumOps()

	for clock.Now().Before(deadline) {
		accepted := 0
		worseningTotal := 0
		var outcomes []float64

		for i := 0; i < iterations; i++ {
			key := localsearch.HashOf(current)
			neighbor, makespanN, ok, err := searcher.Generate(current, key, localsearch.Intensity0, 1.0, r)
			if err != nil || !ok {
				continue
			}
			delta := float64(makespanN - current.Makespan)
			if delta <= 0 {
				outcomes = append(outcomes, 1)
				current = neighbor
				accepted++
			} else {
				worseningTotal++
				if r.Float64() < math.Exp(-delta/temp) {
					outcomes = append(outcomes, 1)
					current = neighbor
					accepted++
				} else {
					outcomes = append(outcomes, 0)
				}
			}
		}

		rate := 0.0
		if len(outcomes) > 0 {
			rate = stat.Mean(outcomes, nil)
		}

		switch {
		case rate < 0.2:
			temp *= cfg.Beta
		case rate > 0.5:
			temp *= 0.9
		default:
			return temp, current
		}
	}

	return temp, current
}

type emitFunc func(format string, makespan int)

// anneal implements spec §4.8 Phase 2.
func anneal(inst *instance.Instance, current, best *solution.Solution, searcher *localsearch.Searcher, r *rand.Rand, cfg Options, clock rng.Clock, startedAt time.Time, t0 float64, emit emitFunc) Result {
	temp := t0
	intensity := localsearch.Intensity0
	noImprove := 0
	noNeighbor := 0
	iterPerTemp := cfg.K * inst.NumOps()
	deadline := startedAt.Add(cfg.MaxTime)

	for temp > cfg.TFinal && clock.Now().Before(deadline) {
		cfg.Logger.Log("temperature round at T=%.4f", temp)
		exitRound := cfg.Logger.Enter()

		for iter := 0; iter < iterPerTemp && clock.Now().Before(deadline); iter++ {
			path, multiple, err := current.FindCriticalPath(r)
			feasible := err == nil && (multiple || hasFlexibleOp(inst, path))
			if !feasible {
				noNeighbor++
				alpha := rebuildAlpha(noNeighbor, iterPerTemp)
				cfg.Logger.Log("no feasible critical path, rebuilding")
				current = rebuild(inst, r, alpha, &best, cfg)
				temp = t0
				intensity = localsearch.Intensity0
				noImprove = 0
				continue
			}

			key := localsearch.HashOf(current)
			neighbor, makespanN, ok, genErr := searcher.Generate(current, key, intensity, temp/cfg.T0Param, r)
			if genErr != nil {
				continue
			}
			if !ok {
				cfg.Logger.Log("local search exhausted its attempt budget, rebuilding")
				current = rebuild(inst, r, 0.5, &best, cfg)
				temp = t0
				intensity = localsearch.Intensity0
				noImprove = 0
				continue
			}

			delta := float64(makespanN - current.Makespan)
			if delta <= 0 {
				current = neighbor
				if neighbor.Makespan < best.Makespan {
					best = neighbor.Clone()
					emit("new best found", best.Makespan)
					noImprove = 0
					intensity = localsearch.Intensity0
				} else {
					noImprove++
				}
			} else {
				if r.Float64() < math.Exp(-delta/temp) {
					current = neighbor
				}
				noImprove++
			}

			if noImprove > int(0.8*float64(iterPerTemp)) {
				if intensity < localsearch.Intensity3 {
					intensity++
					cfg.Logger.Log("stagnating, escalating intensity to %d", intensity)
					noImprove = 0
				} else {
					alpha := 0.5 + stagnationSeverity(noImprove, iterPerTemp)
					cfg.Logger.Log("stagnating at max intensity, rebuilding")
					current = rebuild(inst, r, alpha, &best, cfg)
					intensity = localsearch.Intensity0
					noImprove = 0
				}
			}
		}
		exitRound()
		temp *= cfg.Alpha
	}

	return Result{Best: best}
}

func hasFlexibleOp(inst *instance.Instance, path []int) bool {
	for _, op := range path {
		if len(inst.Mi[op]) > 1 {
			return true
		}
	}
	return false
}

func rebuildAlpha(noNeighbor, iterPerTemp int) float64 {
	ratio := float64(noNeighbor) / float64(maxInt(1, iterPerTemp))
	f := 0.2
	switch {
	case ratio > 0.6:
		f = 0.9
	case ratio > 0.3:
		f = 0.6
	}
	return 0.1 + f
}

func stagnationSeverity(noImprove, iterPerTemp int) float64 {
	ratio := float64(noImprove) / float64(maxInt(1, iterPerTemp))
	switch {
	case ratio > 1.5:
		return 0.5
	case ratio > 1.0:
		return 0.35
	default:
		return 0.2
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// rebuildStream tags the RNG substream rebuild draws from, derived off the
// main stream so a rebuild's construction randomness never perturbs the
// annealing loop's own acceptance-draw sequence (rng.Derive).
const rebuildStream uint64 = 0xB0B5

// rebuild performs a GRASP-rebuild diversification step of spec §4.8: a
// fresh construction at the given alpha, repaired by sbp, updating best
// if it improves. Returns the new current solution.
func rebuild(inst *instance.Instance, r *rand.Rand, alpha float64, best **solution.Solution, cfg Options) *solution.Solution {
	br := rng.Derive(r, rebuildStream)
	sol, err := builder.Build(inst, br, builder.WithStrategy(builder.GRASP), builder.WithAlpha(alpha))
	if err != nil {
		return *best
	}
	if err := sbp.Run(inst, sol, cfg.SBPOptions); err != nil {
		return *best
	}
	if sol.Makespan < (*best).Makespan {
		*best = sol.Clone()
		cfg.Logger.Log("rebuild improved best to %d", sol.Makespan)
	}
	return sol
}
