package display

import (
	"fmt"
	"io"

	"github.com/eeemcal/beamprod/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	if term.Magenta != "" {
		fmt.Fprint(w, term.Magenta)
	}
	fmt.Fprint(w, ` _                                              _
| |__   ___  __ _ _ __ ___  _ __  _ __ ___   __| |
| '_ \ / _ \/ _`+"`"+` | '_ `+"`"+` _ \| '_ \| '__/ _ \ / _`+"`"+` |
| |_) |  __/ (_| | | | | | | |_) | | | (_) | (_| |
|_.__/ \___|\__,_|_| |_| |_| .__/|_|  \___/ \__,_|
                           |_|
`)
	if term.Magenta != "" {
		fmt.Fprintln(w, term.NC)
	}
}
