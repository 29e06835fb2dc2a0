package messages

// Pipeline and step messages.
const (
	InstallBundleMissingFmt = "bundle directory not found: %s"
	InstallRepoMissingFmt   = "no package repository in bundle (expected %s); cannot continue"
	InstallStartFmt         = "Installing offline development environment from %s\n"
	UninstallStart          = "Removing offline development environment\n"

	StepRunningFmt       = "==> %s\n"
	StepStrategyFmt      = "    trying: %s\n"
	StepStrategySkipFmt  = "    not applicable: %s (%s)\n"
	StepStrategyFailFmt  = "    failed: %s (%v)\n"
	StepSuccessFmt       = "    done: %s\n"
	StepSkippedFmt       = "    skipped: %s (%s)\n"
	StepFailedFmt        = "    FAILED: %s\n"
	StepAbortFmt         = "step %s failed and is marked fatal: %w"

	ReasonRequiresNetwork   = "requires network access"
	ReasonNotInstalled      = "not installed"
	ReasonArtifactMissing   = "artifact not present in bundle"
	ReasonNoUsableStrategy  = "no strategy applicable in an airgapped environment"
	ReasonAllStrategiesFail = "all strategies failed"
)
