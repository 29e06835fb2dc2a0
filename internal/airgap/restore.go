package airgap

import (
	"errors"
	"fmt"
	"net"

	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/statedir"
)

// RestoreResult reports the per-interface outcome of a restore pass.
type RestoreResult struct {
	Name      string
	Err       error
	AlreadyUp bool
}

var interfaceByName = net.InterfaceByName

// RestoreInterfaces brings every recorded interface back up. It is invoked
// only explicitly (restore-net), never as part of install or uninstall.
// An interface that is already up is a no-op, and a failure on one interface
// does not stop the rest. Records for interfaces that failed to come back up
// are kept on disk so the restore can be retried.
func (g *Guard) RestoreInterfaces() ([]RestoreResult, error) {
	records, err := statedir.LoadInterfaceRecords(g.RecordsPath)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		_, _ = fmt.Fprint(g.Out, messages.AirgapRestoreNoRecords)
		return nil, nil
	}

	var (
		results   []RestoreResult
		remaining []statedir.InterfaceRecord
	)
	for _, rec := range records {
		_, _ = fmt.Fprintf(g.Out, messages.AirgapRestoringFmt, rec.Name)
		res := g.restoreOne(rec)
		results = append(results, res)
		switch {
		case res.Err != nil:
			_, _ = fmt.Fprintf(g.Out, messages.AirgapRestoreFailedFmt, rec.Name, res.Err)
			remaining = append(remaining, rec)
		case res.AlreadyUp:
			_, _ = fmt.Fprintf(g.Out, messages.AirgapRestoreAlreadyFmt, rec.Name)
		default:
			_, _ = fmt.Fprintf(g.Out, messages.AirgapRestoreOKFmt, rec.Name)
		}
		g.Log.Info("interface restore attempted",
			"location", "airgap.RestoreInterfaces",
			"interface", rec.Name,
			"alreadyUp", res.AlreadyUp,
			"failed", res.Err != nil)
	}

	if len(remaining) > 0 {
		if err := statedir.SaveInterfaceRecords(g.RecordsPath, remaining); err != nil {
			return results, err
		}
		return results, errors.New(messages.AirgapRestorePartial)
	}
	if err := statedir.ClearInterfaceRecords(g.RecordsPath); err != nil {
		return results, err
	}
	_, _ = fmt.Fprint(g.Out, messages.AirgapRestoreDone)
	return results, nil
}

func (g *Guard) restoreOne(rec statedir.InterfaceRecord) RestoreResult {
	if iface, err := interfaceByName(rec.Name); err == nil && iface.Flags&net.FlagUp != 0 {
		return RestoreResult{Name: rec.Name, AlreadyUp: true}
	}
	if out, err := g.Sys.Run("ip", "link", "set", "dev", rec.Name, "up"); err != nil {
		return RestoreResult{Name: rec.Name, Err: fmt.Errorf("%v: %s", err, out)}
	}
	return RestoreResult{Name: rec.Name}
}
