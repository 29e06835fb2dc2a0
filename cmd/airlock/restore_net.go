package main

import (
	"github.com/spf13/cobra"

	"github.com/airlock-sh/airlock/internal/airgap"
	"github.com/airlock-sh/airlock/internal/messages"
)

// newRestoreNetCmd brings previously disabled interfaces back up. It is a
// separate, explicitly invoked operation; install never restores on its own.
func newRestoreNetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.RestoreNetUse,
		Short: messages.RestoreNetShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := newRunContext(cmd.OutOrStdout(), cmd.ErrOrStderr(), "", "")
			if err != nil {
				return err
			}
			defer rc.close()

			guard := &airgap.Guard{
				Sys:         rc.sys,
				Out:         rc.out,
				Log:         rc.log,
				RecordsPath: rc.cfg.InterfaceRecordsPath(),
			}
			_, err = guard.RestoreInterfaces()
			return err
		},
	}
}
