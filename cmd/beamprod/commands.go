package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/eeemcal/beamprod/internal/check"
	"github.com/eeemcal/beamprod/internal/display"
	"github.com/eeemcal/beamprod/internal/pipeline"
	"github.com/eeemcal/beamprod/internal/runlog"
)

var errChecksFailed = errors.New("system check failed")

func newProduceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "produce --run N",
		Short: "Decode one run, render its plots, and collect the reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := &a.cfg, a.log
			display.PrintBanner(cmd.OutOrStdout())
			log.Info("=== beamprod v%s: produce run %d ===", version, a.flags.Run)

			if !cfg.DryRun {
				needs := check.Needs{Root: true, Decoder: !cfg.SkipDecode}
				if err := check.CheckDeps(cfg, needs); err != nil {
					log.Error("%v", err)
					return a.fail(err)
				}
			}

			_, err := pipeline.New(cfg, log).Produce(cmd.Context(), a.flags.Run)
			return a.fail(err)
		},
	}
	a.flags.BindProduce(cmd.Flags())
	_ = cmd.MarkFlagRequired("run")
	return cmd
}

func newMergeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge the good runs of one beam energy with hadd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := &a.cfg, a.log
			display.PrintBanner(cmd.OutOrStdout())
			log.Info("=== beamprod v%s: merge runs %d-%d, %s %q ===",
				version, cfg.Merge.RunMin, cfg.Merge.RunMax, cfg.RunLog.CategoryColumn, cfg.Merge.Category)

			if !cfg.DryRun {
				if err := check.CheckDeps(cfg, check.Needs{Hadd: true}); err != nil {
					log.Error("%v", err)
					return a.fail(err)
				}
			}

			_, err := pipeline.New(cfg, log).Combine(cmd.Context())
			return a.fail(err)
		},
	}
	a.flags.BindMerge(cmd.Flags())
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List the good runs in the merge range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Without --category every beam energy is listed.
			category := ""
			if cmd.Flags().Changed("category") {
				category = a.flags.Category
			}
			err := pipeline.New(&a.cfg, a.log).Runs(cmd.Context(), cmd.OutOrStdout(), category)
			if err != nil {
				a.log.Error("%v", err)
			}
			return a.fail(err)
		},
	}
	a.flags.BindSelection(cmd.Flags())
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify tools, directories, and run log access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			display.PrintBanner(cmd.OutOrStdout())
			if !check.RunCheck(cmd.Context(), &a.cfg, runlog.NewLoader(&a.cfg), a.log) {
				a.log.Error("One or more checks failed")
				return a.fail(errChecksFailed)
			}
			a.log.Success("All checks passed")
			return nil
		},
	}
}
