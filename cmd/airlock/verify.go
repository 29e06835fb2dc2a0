package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/verify"
)

// newVerifyCmd re-verifies every bundle artifact without installing.
func newVerifyCmd() *cobra.Command {
	var (
		skipVerify bool
		bundleFlag string
	)
	cmd := &cobra.Command{
		Use:   messages.VerifyUse,
		Short: messages.VerifyShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := newRunContext(cmd.OutOrStdout(), cmd.ErrOrStderr(), bundleFlag, "")
			if err != nil {
				return err
			}
			defer rc.close()

			if _, err := rc.sys.Stat(rc.cfg.BundleDir); err != nil {
				return fmt.Errorf(messages.InstallBundleMissingFmt, rc.cfg.BundleDir)
			}

			verifier := &verify.Verifier{Bypass: skipVerify, Out: rc.out, Log: rc.log}
			if err := verifier.CheckManifestSignature(rc.cfg.BundleDir); err != nil {
				return err
			}
			return verifier.VerifyBundle(rc.cfg.BundleDir)
		},
	}
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, messages.FlagSkipVerify)
	cmd.Flags().StringVar(&bundleFlag, "bundle", "", messages.FlagBundle)
	return cmd
}
