// Package ledger records the final outcome of each component in a pipeline run.
package ledger

// Component identifies one installable/removable unit of the environment.
// The set is closed so the final report can be exhaustive by construction.
type Component int

const (
	ComponentRepository Component = iota
	ComponentSystemPackages
	ComponentEditor
	ComponentEditorExtensions
	ComponentModelRuntime
	ComponentToolchain
	ComponentLanguagePackages
)

// String returns the stable key used in logs and reports.
func (c Component) String() string {
	switch c {
	case ComponentRepository:
		return "repository"
	case ComponentSystemPackages:
		return "system-packages"
	case ComponentEditor:
		return "editor"
	case ComponentEditorExtensions:
		return "editor-extensions"
	case ComponentModelRuntime:
		return "model-runtime"
	case ComponentToolchain:
		return "toolchain"
	case ComponentLanguagePackages:
		return "language-packages"
	}
	return "unknown"
}

// Title returns the human-readable name used in step banners.
func (c Component) Title() string {
	switch c {
	case ComponentRepository:
		return "Package repository"
	case ComponentSystemPackages:
		return "System packages"
	case ComponentEditor:
		return "Editor (VSCodium)"
	case ComponentEditorExtensions:
		return "Editor extensions"
	case ComponentModelRuntime:
		return "Model runtime (Ollama)"
	case ComponentToolchain:
		return "Rust toolchain"
	case ComponentLanguagePackages:
		return "Python packages"
	}
	return "Unknown component"
}

// Outcome is the terminal state of one component for one pipeline run.
type Outcome int

const (
	// OutcomeUnknown means the component's step has not concluded.
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeFailed
	OutcomeSkipped
)

// String returns the outcome keyword used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// Entry pairs a component with its recorded outcome and explanatory reason.
type Entry struct {
	Component Component
	Outcome   Outcome
	Reason    string
}

// Ledger accumulates one outcome per component, in recording order.
// Outcomes are first-write-wins: once a component's step has concluded,
// nothing later in the run may alter it.
type Ledger struct {
	order   []Component
	entries map[Component]Entry
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[Component]Entry)}
}

// Record stores the outcome for component. Subsequent calls for the same
// component are ignored and report false.
func (l *Ledger) Record(component Component, outcome Outcome, reason string) bool {
	if _, exists := l.entries[component]; exists {
		return false
	}
	l.entries[component] = Entry{Component: component, Outcome: outcome, Reason: reason}
	l.order = append(l.order, component)
	return true
}

// Status returns the recorded outcome for component, or OutcomeUnknown if
// its step has not concluded.
func (l *Ledger) Status(component Component) Outcome {
	return l.entries[component].Outcome
}

// Reason returns the explanatory reason recorded with the outcome, if any.
func (l *Ledger) Reason(component Component) string {
	return l.entries[component].Reason
}

// Entries returns all recorded entries in recording order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.order))
	for _, c := range l.order {
		out = append(out, l.entries[c])
	}
	return out
}

// HasFailure reports whether any component recorded OutcomeFailed.
func (l *Ledger) HasFailure() bool {
	for _, e := range l.entries {
		if e.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}
