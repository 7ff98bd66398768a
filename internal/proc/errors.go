package proc

import "github.com/pkg/errors"

// Failure classes carried (wrapped) in Result.Err.
var (
	ErrNotFound = errors.New("executable not found")
	ErrExit     = errors.New("non-zero exit status")
	ErrTimeout  = errors.New("step timed out")
)
