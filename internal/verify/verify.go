// Package verify validates transferred bundle artifacts against their sha256
// sidecars. Artifacts are re-verified on the install side even when they were
// checked once upstream.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-logr/logr"

	"github.com/airlock-sh/airlock/internal/messages"
)

// ErrNotFound reports that the artifact itself is missing.
var ErrNotFound = errors.New("artifact not found")

// ErrMismatch reports that the artifact's digest does not match its sidecar.
var ErrMismatch = errors.New("digest mismatch")


// Verifier checks artifacts against expected digests. With Bypass set it
// only checks that each artifact exists on disk and never computes a digest;
// this trades integrity for speed and is logged loudly, never silently.
type Verifier struct {
	Bypass bool
	Out    io.Writer
	Log    logr.Logger

	warned bool
}

// VerifyFile checks path against the digest in sidecarPath. The sidecar may
// hold `digest  filename` lines or a single bare digest. Returns nil on
// pass, an error wrapping ErrMismatch on digest mismatch, and an error
// wrapping ErrNotFound when the artifact is missing.
func (v *Verifier) VerifyFile(path, sidecarPath string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if v.Bypass {
		v.warnBypass()
		_, _ = fmt.Fprintf(v.Out, messages.VerifyBypassPassFmt, filepath.Base(path))
		return nil
	}

	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return fmt.Errorf(messages.VerifySidecarNotFoundFmt, filepath.Base(path), sidecarPath)
	}
	expected, err := ExtractDigest(data, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("%s: %w", sidecarPath, err)
	}

	actual, err := hashFile(path)
	if err != nil {
		return fmt.Errorf(messages.VerifyHashFmt, path, err)
	}
	if actual != expected {
		v.Log.Info("digest mismatch",
			"location", "verify.VerifyFile",
			"artifact", path,
			"expected", expected,
			"actual", actual)
		return fmt.Errorf(messages.VerifyMismatchFmt, ErrMismatch, filepath.Base(path), expected, actual)
	}

	_, _ = fmt.Fprintf(v.Out, messages.VerifyPassFmt, filepath.Base(path))
	v.Log.Info("artifact verified",
		"location", "verify.VerifyFile",
		"artifact", path,
		"digest", actual)
	return nil
}

// VerifyBundle verifies every artifact in bundleDir that has a `.sha256`
// sidecar next to it. Any mismatch is fatal; the first error is returned.
func (v *Verifier) VerifyBundle(bundleDir string) error {
	sidecars, err := filepath.Glob(filepath.Join(bundleDir, "*", "*.sha256"))
	if err != nil {
		return err
	}
	sort.Strings(sidecars)

	_, _ = fmt.Fprintf(v.Out, messages.VerifyManifestHeaderFmt, len(sidecars), bundleDir)
	for _, sidecar := range sidecars {
		artifact := strings.TrimSuffix(sidecar, ".sha256")
		if err := v.VerifyFile(artifact, sidecar); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprint(v.Out, messages.VerifyAllPassed)
	return nil
}

// ExtractDigest parses sidecar contents for name's sha256 digest. A file
// whose first line is a bare hex digest is accepted as-is; any embedded
// filename in that form is ignored because upstream registries publish
// hash-only receipts with display-oriented formatting. Multi-line sidecars
// are scanned as `digest  filename` manifests.
func ExtractDigest(data []byte, name string) (string, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New(messages.VerifySidecarEmpty)
	}

	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
	}
	if token := strings.Fields(firstLine); len(token) == 1 && isHexDigest(token[0]) {
		return strings.ToLower(token[0]), nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if !isHexDigest(fields[0]) {
			continue
		}
		if filepath.Base(fields[len(fields)-1]) == name {
			return strings.ToLower(fields[0]), nil
		}
	}
	return "", fmt.Errorf(messages.VerifySidecarNoDigestFmt, name)
}

func (v *Verifier) warnBypass() {
	if v.warned {
		return
	}
	v.warned = true
	_, _ = fmt.Fprint(v.Out, messages.VerifyBypassWarning)
	v.Log.Info("digest verification bypassed",
		"location", "verify.warnBypass",
		"integrity", "existence-only")
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// isHexDigest accepts any even-length hex token so sidecars are not tied to
// one digest algorithm; a wrong-algorithm digest simply fails comparison.
func isHexDigest(value string) bool {
	if len(value) == 0 || len(value)%2 != 0 {
		return false
	}
	for _, ch := range value {
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') && (ch < 'A' || ch > 'F') {
			return false
		}
	}
	return true
}
