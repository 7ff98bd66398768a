// Package pipeline runs the two beam-test workflows.
//
// Produce takes one run through validate, decode, plot, and relocate,
// leaving the reports, the decoded file, and a manifest in the run's working
// directory. Combine selects the good runs of one beam energy from the run
// log and merges their ROOT files with hadd. Runs lists what a selection
// would contain without touching any file.
//
// External tools are launched through a [proc.Runner] and the run log is
// read through a [runlog.Source], so tests substitute both.
package pipeline
