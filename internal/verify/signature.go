package verify

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedisct1/go-minisign"

	"github.com/airlock-sh/airlock/internal/messages"
)

const (
	// ManifestName is the bundle-level checksum manifest written upstream.
	ManifestName = "manifest.sha256"
	// SignatureName is the optional minisign receipt for the manifest.
	SignatureName = "manifest.sha256.minisig"
	// PublicKeyName is the minisign public key shipped inside the bundle.
	PublicKeyName = "minisign.pub"
)

// CheckManifestSignature verifies the bundle manifest against its minisign
// receipt when both the receipt and the public key are present. A bundle
// without a receipt passes; a receipt that fails to verify is fatal.
func (v *Verifier) CheckManifestSignature(bundleDir string) error {
	sigPath := filepath.Join(bundleDir, SignatureName)
	keyPath := filepath.Join(bundleDir, PublicKeyName)
	if _, err := os.Stat(sigPath); err != nil {
		return nil
	}
	if _, err := os.Stat(keyPath); err != nil {
		return nil
	}

	_, _ = fmt.Fprintf(v.Out, messages.VerifySignatureCheckFmt, PublicKeyName)

	manifest, err := os.ReadFile(filepath.Join(bundleDir, ManifestName))
	if err != nil {
		return fmt.Errorf(messages.VerifySignatureInvalidFmt, err)
	}
	pubKey, err := minisign.NewPublicKeyFromFile(keyPath)
	if err != nil {
		return fmt.Errorf(messages.VerifySignatureKeyFmt, keyPath, err)
	}
	sig, err := minisign.NewSignatureFromFile(sigPath)
	if err != nil {
		return fmt.Errorf(messages.VerifySignatureInvalidFmt, err)
	}
	valid, err := pubKey.Verify(manifest, sig)
	if err != nil {
		return fmt.Errorf(messages.VerifySignatureInvalidFmt, err)
	}
	if !valid {
		return fmt.Errorf(messages.VerifySignatureInvalidFmt, fmt.Errorf("signature does not match manifest"))
	}

	_, _ = fmt.Fprint(v.Out, messages.VerifySignatureOK)
	v.Log.Info("manifest signature verified",
		"location", "verify.CheckManifestSignature",
		"manifest", ManifestName)
	return nil
}
