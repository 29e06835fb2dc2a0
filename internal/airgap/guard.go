package airgap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/go-logr/logr"

	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/statedir"
	"github.com/airlock-sh/airlock/internal/system"
)

// ErrAborted reports that the guard refused to let installation proceed.
var ErrAborted = errors.New(messages.AirgapAborted)

// ErrRequiresTerminal reports that an operator decision was needed but no
// interactive terminal is attached.
var ErrRequiresTerminal = errors.New(messages.AirgapRequiresTerminal)

var (
	netInterfaces = net.Interfaces
	timeNow       = time.Now
)

// ConfirmFunc asks the operator whether to disable the listed interfaces and
// continue. Returning false (or any error) aborts the run.
type ConfirmFunc func(interfaces []string, evidence []Evidence) (bool, error)

// Guard enforces the airgap requirement before installation.
type Guard struct {
	Sys         system.System
	Out         io.Writer
	Log         logr.Logger
	Probes      []Probe
	RecordsPath string
	// Confirm is consulted only when connectivity is detected. A nil
	// Confirm always aborts.
	Confirm ConfirmFunc
}

// ListActiveInterfaces returns the names of all interfaces that are up,
// excluding loopback.
func ListActiveInterfaces() ([]string, error) {
	ifaces, err := netInterfaces()
	if err != nil {
		return nil, err
	}
	var active []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		active = append(active, iface.Name)
	}
	return active, nil
}

// Enforce checks connectivity and, if the host is reachable, either disables
// every active non-loopback interface under operator authorization or aborts.
// Connectivity with no identifiable interface always aborts: ambiguity
// resolves to safety, not convenience.
func (g *Guard) Enforce(ctx context.Context) error {
	_, _ = fmt.Fprint(g.Out, messages.AirgapChecking)
	reachable, evidence := CheckConnectivity(ctx, g.Probes)
	g.Log.Info("connectivity check",
		"location", "airgap.Enforce",
		"reachable", reachable,
		"probes", len(g.Probes),
		"hits", len(evidence))
	if !reachable {
		_, _ = fmt.Fprint(g.Out, messages.AirgapIsolated)
		return nil
	}

	_, _ = fmt.Fprint(g.Out, messages.AirgapReachableHeader)
	for _, ev := range evidence {
		_, _ = fmt.Fprintf(g.Out, messages.AirgapEvidenceFmt, ev.Probe, ev.Detail)
	}

	active, err := ListActiveInterfaces()
	if err != nil {
		return err
	}
	if len(active) == 0 {
		g.Log.Info("no interface identified for detected connectivity",
			"location", "airgap.Enforce")
		return fmt.Errorf("%w: %s", ErrAborted, messages.AirgapNoInterfaceToCut)
	}

	_, _ = fmt.Fprint(g.Out, messages.AirgapActiveInterfacesHeader)
	for _, name := range active {
		_, _ = fmt.Fprintf(g.Out, messages.AirgapInterfaceLineFmt, name)
	}

	if g.Confirm == nil {
		return ErrAborted
	}
	authorized, err := g.Confirm(active, evidence)
	if err != nil {
		return err
	}
	if !authorized {
		return ErrAborted
	}
	return g.disableInterfaces(active)
}

// disableInterfaces brings each interface down, recording what it changed so
// restore-net can undo it. Records from an earlier run that has not been
// restored yet are merged, never replaced: the record file stays authoritative
// until a restore completes.
func (g *Guard) disableInterfaces(names []string) error {
	records, err := statedir.LoadInterfaceRecords(g.RecordsPath)
	if err != nil {
		return err
	}
	recorded := make(map[string]bool, len(records))
	for _, rec := range records {
		recorded[rec.Name] = true
	}

	for _, name := range names {
		_, _ = fmt.Fprintf(g.Out, messages.AirgapDisablingFmt, name)
		if out, err := g.Sys.Run("ip", "link", "set", "dev", name, "down"); err != nil {
			// Persist what was already disabled before failing, so a
			// partial shutdown is still restorable.
			_ = statedir.SaveInterfaceRecords(g.RecordsPath, records)
			return fmt.Errorf(messages.AirgapDisableFailedFmt, name, fmt.Errorf("%v: %s", err, out))
		}
		if !recorded[name] {
			recorded[name] = true
			records = append(records, statedir.InterfaceRecord{
				Name:       name,
				WasUp:      true,
				DisabledAt: timeNow(),
			})
		}
		g.Log.Info("interface disabled",
			"location", "airgap.disableInterfaces",
			"interface", name)
	}
	if err := statedir.SaveInterfaceRecords(g.RecordsPath, records); err != nil {
		return fmt.Errorf(messages.AirgapRecordWriteFmt, g.RecordsPath, err)
	}
	return nil
}
