// Package proc runs the external executables the pipelines delegate to
// (decoder, ROOT macros, hadd). Output is captured rather than streamed, and
// every run yields a [Result] whose Err classifies the failure.
//
// [Group] is the fork/join primitive: it starts N independent commands and
// returns only after all of them have exited.
package proc
