package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airlock-sh/airlock/internal/airgap"
	"github.com/airlock-sh/airlock/internal/ledger"
	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/pipeline"
	"github.com/airlock-sh/airlock/internal/report"
	"github.com/airlock-sh/airlock/internal/statedir"
	"github.com/airlock-sh/airlock/internal/step"
	"github.com/airlock-sh/airlock/internal/verify"
)

func newInstallCmd() *cobra.Command {
	var (
		skipVerify bool
		assumeYes  bool
		bundleFlag string
		prefixFlag string
	)
	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
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

			if _, err := rc.sys.Stat(rc.cfg.BundleDir); err != nil {
				return fmt.Errorf(messages.InstallBundleMissingFmt, rc.cfg.BundleDir)
			}
			_, _ = fmt.Fprintf(rc.out, messages.InstallStartFmt, rc.cfg.BundleDir)

			confirm := airgap.ConfirmFunc(airgap.PromptShutdown)
			if assumeYes {
				confirm = airgap.AlwaysAuthorize
			}
			guard := &airgap.Guard{
				Sys:         rc.sys,
				Out:         rc.out,
				Log:         rc.log,
				Probes:      airgap.DefaultProbes(rc.sys),
				RecordsPath: rc.cfg.InterfaceRecordsPath(),
				Confirm:     confirm,
			}
			if err := guard.Enforce(cmd.Context()); err != nil {
				return err
			}

			verifier := &verify.Verifier{Bypass: skipVerify, Out: rc.out, Log: rc.log}
			if err := verifier.CheckManifestSignature(rc.cfg.BundleDir); err != nil {
				return err
			}
			if err := verifier.VerifyBundle(rc.cfg.BundleDir); err != nil {
				return err
			}

			p := pipeline.New(rc.cfg, rc.sys, rc.out, rc.log)
			led := ledger.New()
			executor := &step.Executor{Ledger: led, Out: rc.out, Log: rc.log}
			runErr := executor.RunAll(p.InstallSteps())

			summary := report.Summarize(led)
			report.Render(rc.out, messages.ReportHeader, summary)
			if runErr != nil {
				_, _ = fmt.Fprintln(rc.out, runErr)
			}
			if summary.ExitCode() != 0 {
				return &SilentExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, messages.FlagSkipVerify)
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, messages.FlagYes)
	cmd.Flags().StringVar(&bundleFlag, "bundle", "", messages.FlagBundle)
	cmd.Flags().StringVar(&prefixFlag, "prefix", "", messages.FlagPrefix)
	return cmd
}
