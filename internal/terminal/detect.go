// Package terminal reports whether the process is attached to an interactive terminal.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether both stdin and stdout are terminals.
// The airgap guard only prompts the operator when this holds; otherwise
// detected connectivity aborts the run unless --yes was passed.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
