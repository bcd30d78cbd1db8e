// Package operations runs the accident analysis as an ordered set of steps.
//
// Core Components:
//
// Manager: executes the registered steps sequentially in dependency order,
// wrapping each one in a tracing span and recording its duration and outcome
// in the run metrics. A failed step skips every step that depends on it.
//
// Step: one unit of work (ingest, clean, export, explore, impute, model,
// report). Steps communicate only through the RunData held by the
// OperationState; each step materializes its output before the next begins.
//
// Registry: registration and topological ordering of steps.
//
// Pipeline: wires the standard steps to configuration, paths, metrics and
// logger, and selects which steps a command runs.
//
// Non-critical steps (model) may fail without failing the run: their error
// is recorded on the run data and the report still gets written.
package operations
