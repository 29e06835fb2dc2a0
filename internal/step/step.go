// Package step runs ordered fallback chains of installation strategies and
// records a single terminal outcome per component into the ledger.
package step

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"

	"github.com/airlock-sh/airlock/internal/ledger"
	"github.com/airlock-sh/airlock/internal/messages"
)

// Strategy is one way to achieve a step's goal. Strategies in a chain are
// tried strictly in order; the first success concludes the step.
type Strategy struct {
	// Name identifies the strategy in progress output and logs.
	Name string
	// RequiresNetwork marks strategies that inherently need network access.
	// The executor never runs them; they count as inapplicable, so a chain
	// consisting only of such strategies concludes skipped, not failed.
	RequiresNetwork bool
	// Applicable reports whether the strategy's preconditions hold.
	// A nil Applicable means the strategy is always applicable.
	Applicable func() (bool, string)
	// Run attempts the strategy. A nil error concludes the step as success.
	Run func() error
}

// Step declares one component's fallback chain and its failure policy.
type Step struct {
	Component  ledger.Component
	Strategies []Strategy
	// ContinueOnFailure controls whether a failed outcome lets the pipeline
	// proceed. Steps whose failure makes every later step pointless (no
	// package repository at all) set this false.
	ContinueOnFailure bool
}

// Executor runs steps sequentially and records outcomes.
type Executor struct {
	Ledger *ledger.Ledger
	Out    io.Writer
	Log    logr.Logger
}

// RunStep tries the step's strategies in order and records exactly one
// outcome for its component. The recorded outcome is never altered by
// later steps.
func (e *Executor) RunStep(s Step) ledger.Outcome {
	_, _ = fmt.Fprintf(e.Out, messages.StepRunningFmt, s.Component.Title())

	var (
		attempted   bool
		lastErr     error
		skipReasons []string
	)
	for _, strat := range s.Strategies {
		if strat.RequiresNetwork {
			_, _ = fmt.Fprintf(e.Out, messages.StepStrategySkipFmt, strat.Name, messages.ReasonRequiresNetwork)
			e.Log.Info("strategy not applicable",
				"location", "step.RunStep",
				"component", s.Component.String(),
				"strategy", strat.Name,
				"reason", messages.ReasonRequiresNetwork)
			skipReasons = append(skipReasons, messages.ReasonRequiresNetwork)
			continue
		}
		if strat.Applicable != nil {
			ok, reason := strat.Applicable()
			if !ok {
				_, _ = fmt.Fprintf(e.Out, messages.StepStrategySkipFmt, strat.Name, reason)
				e.Log.Info("strategy not applicable",
					"location", "step.RunStep",
					"component", s.Component.String(),
					"strategy", strat.Name,
					"reason", reason)
				skipReasons = append(skipReasons, reason)
				continue
			}
		}

		_, _ = fmt.Fprintf(e.Out, messages.StepStrategyFmt, strat.Name)
		attempted = true
		if err := strat.Run(); err != nil {
			lastErr = err
			_, _ = fmt.Fprintf(e.Out, messages.StepStrategyFailFmt, strat.Name, err)
			e.Log.Error(err, "strategy failed",
				"location", "step.RunStep",
				"component", s.Component.String(),
				"strategy", strat.Name)
			continue
		}

		_, _ = fmt.Fprintf(e.Out, messages.StepSuccessFmt, s.Component.Title())
		e.record(s.Component, ledger.OutcomeSuccess, "")
		return ledger.OutcomeSuccess
	}

	if attempted {
		reason := messages.ReasonAllStrategiesFail
		if lastErr != nil {
			reason = lastErr.Error()
		}
		_, _ = fmt.Fprintf(e.Out, messages.StepFailedFmt, s.Component.Title())
		e.record(s.Component, ledger.OutcomeFailed, reason)
		return ledger.OutcomeFailed
	}

	reason := skipReason(skipReasons)
	_, _ = fmt.Fprintf(e.Out, messages.StepSkippedFmt, s.Component.Title(), reason)
	e.record(s.Component, ledger.OutcomeSkipped, reason)
	return ledger.OutcomeSkipped
}

// RunAll runs every step in order. Steps whose failure policy allows it do
// not stop the pipeline; a failed step with ContinueOnFailure=false records
// skipped outcomes for all remaining steps and returns an error.
func (e *Executor) RunAll(steps []Step) error {
	for i, s := range steps {
		outcome := e.RunStep(s)
		if outcome == ledger.OutcomeFailed && !s.ContinueOnFailure {
			abortReason := fmt.Sprintf("aborted: %s failed", s.Component)
			for _, rest := range steps[i+1:] {
				e.record(rest.Component, ledger.OutcomeSkipped, abortReason)
			}
			return fmt.Errorf(messages.StepAbortFmt, s.Component, fmt.Errorf("%s", e.Ledger.Reason(s.Component)))
		}
	}
	return nil
}

func (e *Executor) record(c ledger.Component, o ledger.Outcome, reason string) {
	e.Ledger.Record(c, o, reason)
	e.Log.Info("step concluded",
		"location", "step.record",
		"component", c.String(),
		"outcome", o.String(),
		"reason", reason)
}

// skipReason coalesces per-strategy skip reasons into one step-level reason.
func skipReason(reasons []string) string {
	switch len(reasons) {
	case 0:
		return messages.ReasonNoUsableStrategy
	case 1:
		return reasons[0]
	}
	unique := reasons[:0]
	seen := map[string]bool{}
	for _, r := range reasons {
		if !seen[r] {
			seen[r] = true
			unique = append(unique, r)
		}
	}
	if len(unique) == 1 {
		return unique[0]
	}
	return strings.Join(unique, "; ")
}
