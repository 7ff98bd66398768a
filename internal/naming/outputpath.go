package naming

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TokenWidth is the minimum width of the zero-padded run token.
const TokenWidth = 3

// ErrNegativeRun is returned for run numbers below zero.
var ErrNegativeRun = errors.New("run number must not be negative")

// RunToken returns the zero-padded run token used in file names.
func RunToken(run int) (string, error) {
	if run < 0 {
		return "", errors.Wrapf(ErrNegativeRun, "run %d", run)
	}
	s := strconv.Itoa(run)
	if len(s) < TokenWidth {
		s = strings.Repeat("0", TokenWidth-len(s)) + s
	}
	return s, nil
}

// Expand substitutes {run} and {num} in tmpl.
func Expand(tmpl string, run int) (string, error) {
	tok, err := RunToken(run)
	if err != nil {
		return "", err
	}
	r := strings.NewReplacer("{run}", tok, "{num}", strconv.Itoa(run))
	return r.Replace(tmpl), nil
}

// Template is a file name template rooted in a directory.
type Template struct {
	Dir  string
	Name string
}

// Path returns Dir joined with the expanded Name.
func (t Template) Path(run int) (string, error) {
	name, err := Expand(t.Name, run)
	if err != nil {
		return "", err
	}
	return filepath.Join(t.Dir, name), nil
}

// Paths expands the template for each run, preserving order.
func (t Template) Paths(runs []int) ([]string, error) {
	out := make([]string, 0, len(runs))
	for _, r := range runs {
		p, err := t.Path(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
