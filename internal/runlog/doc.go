// Package runlog reads the beam-test run log and selects runs from it.
//
// The run log is a spreadsheet exported as CSV. It is fetched once per
// invocation (see [Loader]) and treated as a read-only snapshot. [Log.Select]
// applies the quality, run-range and category predicates in a fixed order;
// rows whose run number is blank or non-numeric never match a selection.
package runlog
