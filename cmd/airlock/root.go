package main

import (
	"github.com/spf13/cobra"

	"github.com/airlock-sh/airlock/internal/messages"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newInstallCmd(),
		newUninstallCmd(),
		newCheckCmd(),
		newRestoreNetCmd(),
		newVerifyCmd(),
	)
	return cmd
}
