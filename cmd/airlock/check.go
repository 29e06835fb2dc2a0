package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airlock-sh/airlock/internal/airgap"
	"github.com/airlock-sh/airlock/internal/messages"
)

// newCheckCmd probes for connectivity and reports the evidence without
// touching anything. Exit 1 means the host is reachable.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.CheckUse,
		Short: messages.CheckShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := newRunContext(cmd.OutOrStdout(), cmd.ErrOrStderr(), "", "")
			if err != nil {
				return err
			}
			defer rc.close()

			_, _ = fmt.Fprint(rc.out, messages.AirgapChecking)
			reachable, evidence := airgap.CheckConnectivity(cmd.Context(), airgap.DefaultProbes(rc.sys))
			rc.log.Info("connectivity check",
				"location", "cmd.check",
				"reachable", reachable,
				"hits", len(evidence))
			if !reachable {
				_, _ = fmt.Fprint(rc.out, messages.AirgapIsolated)
				return nil
			}

			_, _ = fmt.Fprint(rc.out, messages.AirgapReachableHeader)
			for _, ev := range evidence {
				_, _ = fmt.Fprintf(rc.out, messages.AirgapEvidenceFmt, ev.Probe, ev.Detail)
			}
			active, err := airgap.ListActiveInterfaces()
			if err != nil {
				return err
			}
			if len(active) > 0 {
				_, _ = fmt.Fprint(rc.out, messages.AirgapActiveInterfacesHeader)
				for _, name := range active {
					_, _ = fmt.Fprintf(rc.out, messages.AirgapInterfaceLineFmt, name)
				}
			}
			return &SilentExitError{Code: 1}
		},
	}
}
