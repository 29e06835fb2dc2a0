package airgap

import (
	"github.com/charmbracelet/huh"

	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/terminal"
)

var (
	isInteractive = terminal.IsInteractive
	runFormFunc   = func(form *huh.Form) error { return form.Run() }
)

// PromptShutdown asks the operator to choose between disabling the listed
// interfaces and aborting. Without an interactive terminal the choice cannot
// be made, so the safer outcome (abort) is forced via an error that names
// the --yes escape hatch.
func PromptShutdown(interfaces []string, _ []Evidence) (bool, error) {
	if !isInteractive() {
		return false, ErrRequiresTerminal
	}

	choice := messages.AirgapChoiceAbort
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(messages.AirgapPromptTitle).
			Options(
				huh.NewOption(messages.AirgapChoiceAbort, messages.AirgapChoiceAbort),
				huh.NewOption(messages.AirgapChoiceDisable, messages.AirgapChoiceDisable),
			).
			Value(&choice),
	))
	if err := runFormFunc(form); err != nil {
		return false, err
	}
	return choice == messages.AirgapChoiceDisable, nil
}

// AlwaysAuthorize is the ConfirmFunc installed by --yes.
func AlwaysAuthorize([]string, []Evidence) (bool, error) { return true, nil }
