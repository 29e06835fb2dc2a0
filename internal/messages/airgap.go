package messages

// Airgap guard messages.
const (
	AirgapChecking       = "Checking for network connectivity...\n"
	AirgapIsolated       = "No network connectivity detected; host appears airgapped.\n"
	AirgapReachableHeader = "Network connectivity detected:\n"
	AirgapEvidenceFmt     = "  - %s: %s\n"

	AirgapActiveInterfacesHeader = "Active non-loopback interfaces:\n"
	AirgapInterfaceLineFmt       = "  - %s\n"

	AirgapPromptTitle      = "The airgap requirement is not met. How should airlock proceed?"
	AirgapChoiceDisable    = "Disable the interfaces above and continue"
	AirgapChoiceAbort      = "Abort the installation"
	AirgapRequiresTerminal = "connectivity was detected and no interactive terminal is available; re-run with --yes to authorize disabling interfaces, or disconnect the network and retry"

	AirgapAborted           = "installation aborted: host has network connectivity"
	AirgapNoInterfaceToCut  = "connectivity was detected but no active non-loopback interface could be identified; refusing to guess, aborting"
	AirgapDisablingFmt      = "Disabling interface %s...\n"
	AirgapDisableFailedFmt  = "disable interface %s: %w"
	AirgapRecordWriteFmt    = "record disabled interface %s: %w"

	AirgapRestoreNoRecords   = "No interface records found; nothing to restore.\n"
	AirgapRestoringFmt       = "Restoring interface %s...\n"
	AirgapRestoreOKFmt       = "  restored %s\n"
	AirgapRestoreAlreadyFmt  = "  %s already up\n"
	AirgapRestoreFailedFmt   = "  failed to restore %s: %v\n"
	AirgapRestorePartial     = "some interfaces could not be restored"
	AirgapRestoreDone        = "All recorded interfaces restored.\n"

	ProbeNameICMPPrimary   = "icmp 1.1.1.1"
	ProbeNameICMPSecondary = "icmp 8.8.8.8"
	ProbeNameDNS           = "dns lookup"
	ProbeNameHTTPS         = "https head"
)
