// Package naming derives every run-specific file and directory name from a
// run number. All functions are pure: the same run and template always give
// the same path, and nothing here touches the file system.
//
// Templates use two placeholders:
//
//	{run}  zero-padded run token, at least three digits ("007", "123", "1234")
//	{num}  plain decimal run number ("7")
//
// Run numbers above 999 are never truncated; the token simply grows.
package naming
