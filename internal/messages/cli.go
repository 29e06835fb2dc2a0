package messages

// CLI messages for user-facing commands and flags.
const (
	// RootUse is the CLI command name.
	RootUse = "airlock"
	// RootShort is the short description for the root command.
	RootShort = "Provision and remove an offline development environment"
	RootLong  = "airlock installs a bundled development environment (system packages, editor,\nmodel runtime, language toolchain) onto an airgapped machine, verifying artifact\nintegrity and confirming the machine has no network access before touching it."

	VersionTemplate  = "{{.Version}}\n"
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"

	// InstallUse is the install command name.
	InstallUse   = "install"
	InstallShort = "Verify the bundle and install every component"

	// UninstallUse is the uninstall command name.
	UninstallUse   = "uninstall"
	UninstallShort = "Remove every installed component and restore package sources"

	// CheckUse is the check command name.
	CheckUse   = "check"
	CheckShort = "Probe for network connectivity and report the evidence"

	// RestoreNetUse is the restore-net command name.
	RestoreNetUse   = "restore-net"
	RestoreNetShort = "Bring previously disabled network interfaces back up"

	// VerifyUse is the verify command name.
	VerifyUse   = "verify"
	VerifyShort = "Verify bundle artifact digests without installing"

	FlagSkipVerify = "Skip digest verification and only check that artifacts exist (weakens integrity guarantees)"
	FlagYes        = "Authorize disabling live network interfaces without prompting"
	FlagBundle     = "Path to the offline bundle directory"
	FlagPrefix     = "Installation prefix"
)
