// Package fjssp is a Flexible Job-Shop Scheduling Problem heuristic
// engine: instance loading, a disjunctive-graph makespan model, a
// GRASP/Greedy/Random constructive builder, single-machine scheduling via
// Schrage and Carlier, the Shifting Bottleneck Procedure, and a Tabu-aware
// Simulated Annealing metaheuristic.
//
// A schedule assigns each operation of each job to one of its eligible
// machines and orders the operations sharing a machine, minimizing the
// makespan: the completion time of the last operation across all jobs.
//
// Under the hood, everything is organized under subpackages:
//
//	instance/    — instance file and known-optimum table loading
//	graph/       — disjunctive graph: conjunctive + consolidated
//	             machine-order edges, longest-path makespan computation
//	solution/    — a schedule under construction: assignment, sequences,
//	             timing, critical-path extraction
//	builder/     — constructive active-list scheduler (Greedy/GRASP/Random)
//	schrage/     — single-machine r/p/q scheduling heuristic
//	carlier/     — single-machine maximum-lateness branch and bound
//	sbp/         — Shifting Bottleneck Procedure machine-order consolidation
//	localsearch/ — Tabu-aware critical-path neighbor generator
//	anneal/      — two-phase Simulated Annealing driving local search
//	config/      — YAML hyperparameter overrides
//	report/      — results.csv writer
//	cmd/fjssp/   — CLI entrypoint
//
// A single seeded *rand.Rand (package rng) is threaded explicitly through
// every randomized decision so runs are reproducible given the same seed.
package fjssp
