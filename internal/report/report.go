// Package report renders the final per-component status table and aggregate
// counts from a ledger. Summarize is a pure function of ledger state.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/airlock-sh/airlock/internal/ledger"
	"github.com/airlock-sh/airlock/internal/messages"
)

// Counts aggregates outcomes across the run.
type Counts struct {
	Success int
	Failed  int
	Skipped int
}

// Summary is the report model: aggregate counts plus the per-component
// entries in pipeline order.
type Summary struct {
	Counts  Counts
	Entries []ledger.Entry
}

// Summarize builds a summary from the ledger. It has no side effects.
func Summarize(l *ledger.Ledger) Summary {
	s := Summary{Entries: l.Entries()}
	for _, e := range s.Entries {
		switch e.Outcome {
		case ledger.OutcomeSuccess:
			s.Counts.Success++
		case ledger.OutcomeFailed:
			s.Counts.Failed++
		case ledger.OutcomeSkipped:
			s.Counts.Skipped++
		}
	}
	return s
}

// ExitCode is 1 exactly when at least one step failed. Skipped steps are an
// expected outcome under airgap constraints and never fail the run.
func (s Summary) ExitCode() int {
	if s.Counts.Failed > 0 {
		return 1
	}
	return 0
}

// Render writes the human-readable report.
func Render(out io.Writer, header string, s Summary) {
	_, _ = fmt.Fprint(out, header)
	for _, e := range s.Entries {
		_, _ = fmt.Fprintf(out, messages.ReportLineFmt, outcomeLabel(e.Outcome), e.Component.Title())
		if e.Reason != "" && e.Outcome != ledger.OutcomeSuccess {
			_, _ = fmt.Fprintf(out, messages.ReportReasonFmt, e.Reason)
		}
	}
	_, _ = fmt.Fprintf(out, messages.ReportCountsFmt, s.Counts.Success, s.Counts.Failed, s.Counts.Skipped)
}

func outcomeLabel(o ledger.Outcome) string {
	switch o {
	case ledger.OutcomeSuccess:
		return color.GreenString(messages.ReportLabelSuccess)
	case ledger.OutcomeFailed:
		return color.RedString(messages.ReportLabelFailed)
	case ledger.OutcomeSkipped:
		return color.YellowString(messages.ReportLabelSkipped)
	}
	return messages.ReportLabelUnknown
}
