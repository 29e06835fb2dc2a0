package messages

// Verifier messages.
const (
	VerifySidecarNotFoundFmt = "digest sidecar not found for %s (expected %s)"
	VerifySidecarEmpty       = "digest sidecar is empty"
	VerifySidecarNoDigestFmt = "no digest for %s"
	VerifyHashFmt            = "hash %s: %w"
	VerifyMismatchFmt        = "%w for %s (expected %s, got %s)"

	VerifyBypassWarning = "WARNING: digest verification bypassed; artifacts are checked for existence only. Integrity is NOT guaranteed.\n"
	VerifyBypassPassFmt = "  exists (unverified): %s\n"
	VerifyPassFmt       = "  verified: %s\n"

	VerifyManifestHeaderFmt = "Verifying %d artifact(s) in %s...\n"
	VerifyAllPassed         = "All artifacts verified.\n"

	VerifySignatureCheckFmt   = "Checking bundle manifest signature with %s...\n"
	VerifySignatureOK         = "Manifest signature valid.\n"
	VerifySignatureInvalidFmt = "manifest signature verification failed: %w"
	VerifySignatureKeyFmt     = "load minisign public key %s: %w"
)
