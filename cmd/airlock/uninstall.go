package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airlock-sh/airlock/internal/ledger"
	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/pipeline"
	"github.com/airlock-sh/airlock/internal/report"
	"github.com/airlock-sh/airlock/internal/statedir"
	"github.com/airlock-sh/airlock/internal/step"
)

func newUninstallCmd() *cobra.Command {
	var (
		bundleFlag string
		prefixFlag string
	)
	cmd := &cobra.Command{
		Use:   messages.UninstallUse,
		Short: messages.UninstallShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := newRunContext(cmd.OutOrStdout(), cmd.ErrOrStderr(), bundleFlag, prefixFlag)
			if err != nil {
				return err
			}
			defer rc.close()

			lock, err := statedir.Acquire(rc.cfg.StateDir)
			if err != nil {
				return err
			}
			defer func() {
				_ = lock.Release()
			}()

			_, _ = fmt.Fprint(rc.out, messages.UninstallStart)

			p := pipeline.New(rc.cfg, rc.sys, rc.out, rc.log)
			led := ledger.New()
			executor := &step.Executor{Ledger: led, Out: rc.out, Log: rc.log}
			runErr := executor.RunAll(p.UninstallSteps())

			summary := report.Summarize(led)
			report.Render(rc.out, messages.ReportRemovalHeader, summary)
			if runErr != nil {
				_, _ = fmt.Fprintln(rc.out, runErr)
			}
			if summary.ExitCode() != 0 {
				return &SilentExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bundleFlag, "bundle", "", messages.FlagBundle)
	cmd.Flags().StringVar(&prefixFlag, "prefix", "", messages.FlagPrefix)
	return cmd
}
