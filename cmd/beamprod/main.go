// Command beamprod is the CLI entrypoint for the beam-test production tool.
//
// It loads configuration (defaults, beamprod.yaml, BEAMPROD_* environment,
// flags), sets up logging, and dispatches to one of the subcommands:
// produce, merge, runs, or check.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/eeemcal/beamprod/internal/config"
	"github.com/eeemcal/beamprod/internal/logging"
	"github.com/eeemcal/beamprod/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

// Exit statuses.
const (
	exitOK       = 0
	exitFailure  = 1
	exitNotFound = 2 // Run missing from the run log or raw file absent.
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Cancel on SIGINT/SIGTERM; running tools are killed through the context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if a.log != nil {
		defer a.log.Close()
	}
	return exitCode(a, err)
}

// exitCode maps an error to the process status and reports it. Errors from
// the pipeline were already logged; bootstrap and usage errors were not.
func exitCode(a *app, err error) int {
	if err == nil {
		return exitOK
	}
	if a.log == nil || !a.logged {
		fmt.Fprintf(os.Stderr, "beamprod: %v\n", err)
	}
	if errors.Is(err, context.Canceled) {
		if a.log != nil {
			a.log.Warn("Interrupted")
		}
		return exitFailure
	}
	if pipeline.IsInputNotFound(err) {
		return exitNotFound
	}
	return exitFailure
}

// app carries state shared by the subcommands once setup has run.
type app struct {
	flags  config.Flags
	cfg    config.Config
	log    *logging.Logger
	logged bool // The returned error has already been logged.
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "beamprod",
		Short: "Beam-test run production: decode, plot, and merge runs from the run log",
		Long: `beamprod drives the beam-test offline production.

  produce  decode one run, render its QA plots, and collect the reports
  merge    merge the good runs of one beam energy with hadd
  runs     list the runs a selection would contain
  check    verify tools, directories, and run log access`,
		Version:           fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	a.flags.BindGlobal(root.PersistentFlags())

	root.AddCommand(
		newProduceCmd(a),
		newMergeCmd(a),
		newRunsCmd(a),
		newCheckCmd(a),
	)
	return root
}

// setup builds the effective configuration and the logger. Precedence, low
// to high: defaults, config file, environment, flags.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	fs := cmd.Flags()
	if fl := fs.Lookup("config"); fl != nil && fl.Changed {
		if _, err := os.Stat(a.flags.ConfigFile); err != nil {
			return errors.Wrap(err, "config file")
		}
	}

	cfg, err := config.Load(a.flags.ConfigFile)
	if err != nil {
		return err
	}
	a.flags.Apply(&cfg, fs)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// fail marks err as already reported through the logger.
func (a *app) fail(err error) error {
	if err != nil {
		a.logged = true
	}
	return err
}
