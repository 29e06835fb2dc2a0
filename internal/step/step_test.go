package step

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlock-sh/airlock/internal/ledger"
	"github.com/airlock-sh/airlock/internal/messages"
)

func newExecutor() (*Executor, *ledger.Ledger, *bytes.Buffer) {
	led := ledger.New()
	out := &bytes.Buffer{}
	return &Executor{Ledger: led, Out: out, Log: logr.Discard()}, led, out
}

func alwaysFail(err error) Strategy {
	return Strategy{Name: "failing strategy", Run: func() error { return err }}
}

func alwaysSucceed(ran *bool) Strategy {
	return Strategy{Name: "succeeding strategy", Run: func() error {
		if ran != nil {
			*ran = true
		}
		return nil
	}}
}

func TestRunStepFallbackChain(t *testing.T) {
	// First strategy fails, second succeeds: the step is success and the
	// chain stops at the first success.
	exec, led, _ := newExecutor()
	var ran bool
	outcome := exec.RunStep(Step{
		Component:  ledger.ComponentEditor,
		Strategies: []Strategy{alwaysFail(errors.New("boom")), alwaysSucceed(&ran)},
	})
	require.Equal(t, ledger.OutcomeSuccess, outcome)
	require.True(t, ran)
	assert.Equal(t, ledger.OutcomeSuccess, led.Status(ledger.ComponentEditor))
}

func TestRunStepAllStrategiesFail(t *testing.T) {
	exec, led, _ := newExecutor()
	outcome := exec.RunStep(Step{
		Component:  ledger.ComponentToolchain,
		Strategies: []Strategy{alwaysFail(errors.New("installer exited 2"))},
	})
	require.Equal(t, ledger.OutcomeFailed, outcome)
	assert.Equal(t, "installer exited 2", led.Reason(ledger.ComponentToolchain))
}

func TestRunStepInapplicableStrategyIsNotAFailure(t *testing.T) {
	exec, led, out := newExecutor()
	var ran bool
	outcome := exec.RunStep(Step{
		Component: ledger.ComponentModelRuntime,
		Strategies: []Strategy{
			{
				Name:       "needs missing artifact",
				Applicable: func() (bool, string) { return false, "artifact not present in bundle" },
				Run:        func() error { return errors.New("must not run") },
			},
			alwaysSucceed(&ran),
		},
	})
	require.Equal(t, ledger.OutcomeSuccess, outcome)
	require.True(t, ran)
	assert.Equal(t, ledger.OutcomeSuccess, led.Status(ledger.ComponentModelRuntime))
	assert.Contains(t, out.String(), "not applicable")
}

func TestRunStepNetworkOnlyChainConcludesSkipped(t *testing.T) {
	// A chain whose only strategies need network access concludes skipped:
	// the environment constraint is expected, not an error.
	exec, led, _ := newExecutor()
	outcome := exec.RunStep(Step{
		Component: ledger.ComponentToolchain,
		Strategies: []Strategy{
			{Name: "rustup over the network", RequiresNetwork: true},
		},
	})
	require.Equal(t, ledger.OutcomeSkipped, outcome)
	assert.Equal(t, messages.ReasonRequiresNetwork, led.Reason(ledger.ComponentToolchain))
}

func TestRunStepAllInapplicableConcludesSkipped(t *testing.T) {
	exec, led, _ := newExecutor()
	outcome := exec.RunStep(Step{
		Component: ledger.ComponentEditorExtensions,
		Strategies: []Strategy{
			{
				Name:       "needs codium",
				Applicable: func() (bool, string) { return false, "codium not found on PATH" },
				Run:        func() error { return nil },
			},
		},
	})
	require.Equal(t, ledger.OutcomeSkipped, outcome)
	assert.Equal(t, "codium not found on PATH", led.Reason(ledger.ComponentEditorExtensions))
}

func TestRunStepEmptyChainConcludesSkipped(t *testing.T) {
	exec, _, _ := newExecutor()
	outcome := exec.RunStep(Step{Component: ledger.ComponentLanguagePackages})
	assert.Equal(t, ledger.OutcomeSkipped, outcome)
}

func TestRunAllScenario(t *testing.T) {
	// Spec scenario: A's chain recovers via fallback, B's only strategy
	// fails. The pipeline runs to completion and the ledger reads
	// {A: success, B: failed}.
	exec, led, _ := newExecutor()
	steps := []Step{
		{
			Component:         ledger.ComponentEditor,
			ContinueOnFailure: true,
			Strategies:        []Strategy{alwaysFail(errors.New("strategy1 failed")), alwaysSucceed(nil)},
		},
		{
			Component:         ledger.ComponentToolchain,
			ContinueOnFailure: true,
			Strategies:        []Strategy{alwaysFail(errors.New("only strategy failed"))},
		},
	}
	require.NoError(t, exec.RunAll(steps))
	assert.Equal(t, ledger.OutcomeSuccess, led.Status(ledger.ComponentEditor))
	assert.Equal(t, ledger.OutcomeFailed, led.Status(ledger.ComponentToolchain))
	assert.True(t, led.HasFailure())
}

func TestRunAllFatalStepAbortsAndRecordsRemainder(t *testing.T) {
	exec, led, _ := newExecutor()
	var ran bool
	steps := []Step{
		{
			Component:         ledger.ComponentRepository,
			ContinueOnFailure: false,
			Strategies:        []Strategy{alwaysFail(errors.New("no repository"))},
		},
		{
			Component:         ledger.ComponentSystemPackages,
			ContinueOnFailure: true,
			Strategies:        []Strategy{alwaysSucceed(&ran)},
		},
	}
	err := exec.RunAll(steps)
	require.Error(t, err)
	assert.False(t, ran, "steps after a fatal failure must not run")
	assert.Equal(t, ledger.OutcomeFailed, led.Status(ledger.ComponentRepository))
	// The remaining component still ends the run with exactly one outcome.
	assert.Equal(t, ledger.OutcomeSkipped, led.Status(ledger.ComponentSystemPackages))
	assert.True(t, strings.Contains(led.Reason(ledger.ComponentSystemPackages), "aborted"))
}

func TestRunStepDoesNotAlterRecordedOutcome(t *testing.T) {
	exec, led, _ := newExecutor()
	exec.RunStep(Step{
		Component:  ledger.ComponentEditor,
		Strategies: []Strategy{alwaysSucceed(nil)},
	})
	// A later, unrelated attempt against the same component must not
	// rewrite the recorded outcome.
	exec.RunStep(Step{
		Component:  ledger.ComponentEditor,
		Strategies: []Strategy{alwaysFail(errors.New("late failure"))},
	})
	assert.Equal(t, ledger.OutcomeSuccess, led.Status(ledger.ComponentEditor))
}

func TestSkipReasonCoalescing(t *testing.T) {
	assert.Equal(t, messages.ReasonNoUsableStrategy, skipReason(nil))
	assert.Equal(t, "a", skipReason([]string{"a"}))
	assert.Equal(t, "a", skipReason([]string{"a", "a"}))
	assert.Equal(t, "a; b", skipReason([]string{"a", "b"}))
}
