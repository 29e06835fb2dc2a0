package messages

// Report rendering messages.
const (
	ReportHeader        = "\nInstallation report:\n"
	ReportRemovalHeader = "\nRemoval report:\n"
	ReportLineFmt       = "%s %s\n"
	ReportReasonFmt     = "      %s\n"
	ReportCountsFmt     = "\n%d succeeded, %d failed, %d skipped\n"

	ReportLabelSuccess = "[ OK ]"
	ReportLabelFailed  = "[FAIL]"
	ReportLabelSkipped = "[SKIP]"
	ReportLabelUnknown = "[ ?? ]"
)
