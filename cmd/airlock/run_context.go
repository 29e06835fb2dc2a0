package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"

	"github.com/airlock-sh/airlock/internal/config"
	"github.com/airlock-sh/airlock/internal/eventlog"
	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/system"
)

var (
	loadConfigFunc = config.Load
	timeNowFunc    = time.Now
)

// runContext bundles the resolved configuration, the transcript-teed output
// writer, and the structured event logger for one command invocation.
type runContext struct {
	cfg     config.Config
	sys     system.System
	out     io.Writer
	log     logr.Logger
	closers []func() error
}

// newRunContext resolves configuration, applies flag overrides, and opens
// the event log and console transcript under the state directory. A log or
// transcript that cannot be opened is warned about on stderr; the run itself
// proceeds.
func newRunContext(stdout, stderr io.Writer, bundleFlag, prefixFlag string) (*runContext, error) {
	cfg, err := loadConfigFunc()
	if err != nil {
		return nil, err
	}
	if bundleFlag != "" {
		cfg.BundleDir = bundleFlag
	}
	if prefixFlag != "" {
		cfg.Prefix = prefixFlag
	}

	rc := &runContext{cfg: cfg, sys: system.RealSystem{}, out: stdout, log: logr.Discard()}

	sessionID := sessionID()
	runID := fmt.Sprintf("run-%d", timeNowFunc().Unix())
	if log, closeLog, err := eventlog.Open(cfg.EventLogPath, sessionID, runID); err == nil {
		rc.log = log
		rc.closers = append(rc.closers, closeLog)
	} else {
		_, _ = fmt.Fprintf(stderr, messages.WarnEventLogFmt, cfg.EventLogPath, err)
	}
	if out, closeTee, err := eventlog.Tee(stdout, cfg.TranscriptPath); err == nil {
		rc.out = out
		if closeTee != nil {
			rc.closers = append(rc.closers, closeTee)
		}
	} else {
		_, _ = fmt.Fprintf(stderr, messages.WarnTranscriptFmt, cfg.TranscriptPath, err)
	}
	return rc, nil
}

// close releases the log and transcript files.
func (rc *runContext) close() {
	for _, fn := range rc.closers {
		_ = fn()
	}
}

func sessionID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "airlock"
	}
	return "airlock-" + host
}
