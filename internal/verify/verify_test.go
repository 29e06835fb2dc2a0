package verify

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir, name string, content []byte) (string, string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	digest := sha256.Sum256(content)
	sidecar := path + ".sha256"
	line := fmt.Sprintf("%s  %s\n", hex.EncodeToString(digest[:]), name)
	require.NoError(t, os.WriteFile(sidecar, []byte(line), 0o644))
	return path, sidecar
}

func newVerifier(bypass bool) (*Verifier, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Verifier{Bypass: bypass, Out: out, Log: logr.Discard()}, out
}

func TestVerifyFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, sidecar := writeArtifact(t, dir, "tool.tar.gz", []byte("archive contents"))
	v, _ := newVerifier(false)
	require.NoError(t, v.VerifyFile(path, sidecar))
}

func TestVerifyFileDetectsSingleByteMutation(t *testing.T) {
	dir := t.TempDir()
	path, sidecar := writeArtifact(t, dir, "tool.tar.gz", []byte("archive contents"))

	mutated := []byte("archive contentz")
	require.NoError(t, os.WriteFile(path, mutated, 0o644))

	v, _ := newVerifier(false)
	err := v.VerifyFile(path, sidecar)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMismatch), "want ErrMismatch, got %v", err)
	assert.Contains(t, err.Error(), "digest mismatch for tool.tar.gz")
}

func TestVerifyFileBareDigestSidecar(t *testing.T) {
	// Hash-only receipts carry a single digest token and no filename; the
	// verifier must compare against its own computation of the file hash.
	dir := t.TempDir()
	content := []byte("model weights")
	path := filepath.Join(dir, "model.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	digest := sha256.Sum256(content)
	sidecar := filepath.Join(dir, "model.bin.sha256")
	require.NoError(t, os.WriteFile(sidecar, []byte(hex.EncodeToString(digest[:])+"\n"), 0o644))

	v, _ := newVerifier(false)
	require.NoError(t, v.VerifyFile(path, sidecar))
}

func TestVerifyFileMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	v, _ := newVerifier(false)
	err := v.VerifyFile(filepath.Join(dir, "missing.deb"), filepath.Join(dir, "missing.deb.sha256"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBypassMonotonicity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anything.vsix")
	require.NoError(t, os.WriteFile(path, []byte("whatever"), 0o644))

	v, out := newVerifier(true)
	// Existing file passes regardless of content and with no sidecar at all.
	require.NoError(t, v.VerifyFile(path, filepath.Join(dir, "nonexistent.sha256")))
	assert.Contains(t, out.String(), "WARNING")

	// Missing file still errors.
	err := v.VerifyFile(filepath.Join(dir, "gone.vsix"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBypassWarningEmittedOnce(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o644))

	v, out := newVerifier(true)
	require.NoError(t, v.VerifyFile(a, ""))
	require.NoError(t, v.VerifyFile(b, ""))
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("WARNING")))
}

func TestVerifyBundle(t *testing.T) {
	bundle := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(bundle, "ollama"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(bundle, "debs"), 0o755))
	writeArtifact(t, filepath.Join(bundle, "ollama"), "ollama-linux-amd64.tgz", []byte("runtime"))
	writeArtifact(t, filepath.Join(bundle, "debs"), "editor.deb", []byte("package"))

	v, out := newVerifier(false)
	require.NoError(t, v.VerifyBundle(bundle))
	assert.Contains(t, out.String(), "2 artifact(s)")
}

func TestVerifyBundleStopsOnMismatch(t *testing.T) {
	bundle := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(bundle, "rust"), 0o755))
	path, _ := writeArtifact(t, filepath.Join(bundle, "rust"), "rust.tar.xz", []byte("toolchain"))
	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0o644))

	v, _ := newVerifier(false)
	err := v.VerifyBundle(bundle)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMismatch))
}

func TestExtractDigest(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		file    string
		want    string
		wantErr bool
	}{
		{name: "manifest line", data: "abc123  file.bin\n", file: "file.bin", want: "abc123"},
		{name: "manifest with path", data: "abc123  ./release/file.bin\n", file: "file.bin", want: "abc123"},
		{name: "manifest picks matching file", data: "aa11  other.bin\nbb22  file.bin\n", file: "file.bin", want: "bb22"},
		{name: "bare digest ignores filename", data: "deadbeef\n", file: "anything.tgz", want: "deadbeef"},
		{name: "bare digest uppercase normalized", data: "DEADBEEF", file: "x", want: "deadbeef"},
		{name: "comment lines ignored", data: "# checksums\nabc123  file.bin\n", file: "file.bin", want: "abc123"},
		{name: "no match", data: "abc123  other.bin\n", file: "file.bin", wantErr: true},
		{name: "empty", data: "", file: "file.bin", wantErr: true},
		{name: "odd-length token is not a digest", data: "abc  file.bin\n", file: "file.bin", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractDigest([]byte(tc.data), tc.file)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
