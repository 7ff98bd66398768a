// Package merge combines per-run ROOT files into one with hadd.
package merge

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/eeemcal/beamprod/internal/proc"
)

// ErrNoInputs is returned when there is nothing to merge.
var ErrNoInputs = errors.New("no input files to merge")

// Command builds `hadd [-f] <output> <inputs...>`. Inputs keep their order.
func Command(hadd, output string, inputs []string, force bool) proc.Command {
	args := make([]string, 0, len(inputs)+2)
	if force {
		args = append(args, "-f")
	}
	args = append(args, output)
	args = append(args, inputs...)
	return proc.Command{Name: "hadd", Path: hadd, Args: args}
}

// Run merges inputs into output and waits for hadd to exit.
func Run(ctx context.Context, r proc.Runner, hadd, output string, inputs []string, force bool) (proc.Result, error) {
	if len(inputs) == 0 {
		return proc.Result{}, ErrNoInputs
	}
	res := r.Run(ctx, Command(hadd, output, inputs, force))
	return res, res.Err
}

// MissingInputs returns the inputs that don't exist on disk.
func MissingInputs(inputs []string) []string {
	var missing []string
	for _, p := range inputs {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			missing = append(missing, p)
		}
	}
	return missing
}
