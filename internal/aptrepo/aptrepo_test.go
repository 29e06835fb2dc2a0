package aptrepo

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/system"
)

// testManager builds a Manager whose apt paths live under a scratch root, so
// the real filesystem operations never leave the test sandbox.
func testManager(t *testing.T) (*Manager, *bytes.Buffer, string) {
	t.Helper()
	root := t.TempDir()
	sourcesDir := filepath.Join(root, "sources.list.d")
	require.NoError(t, os.MkdirAll(sourcesDir, 0o755))
	debsDir := filepath.Join(root, "bundle", "debs")
	require.NoError(t, os.MkdirAll(debsDir, 0o755))

	out := &bytes.Buffer{}
	m := New(system.RealSystem{}, out, logr.Discard(), debsDir, filepath.Join(root, "backup"))
	m.SourcesList = filepath.Join(root, "sources.list")
	m.SourcesDir = sourcesDir
	return m, out, root
}

func TestConfigureWritesTrustedStanza(t *testing.T) {
	m, _, _ := testManager(t)
	require.NoError(t, m.Configure())

	data, err := os.ReadFile(m.ListPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[trusted=yes]")
	assert.Contains(t, string(data), "file:"+m.DebsDir)
	assert.True(t, m.Configured())
}

func TestConfigureDisablesExistingSources(t *testing.T) {
	m, out, _ := testManager(t)
	original := "deb http://deb.debian.org/debian trixie main\n# already a comment\n"
	require.NoError(t, os.WriteFile(m.SourcesList, []byte(original), 0o644))
	extra := filepath.Join(m.SourcesDir, "vendor.list")
	require.NoError(t, os.WriteFile(extra, []byte("deb https://vendor.example stable main\n"), 0o644))

	require.NoError(t, m.Configure())

	data, err := os.ReadFile(m.SourcesList)
	require.NoError(t, err)
	assert.Contains(t, string(data), messages.RepoDisabledMarker+"deb http://deb.debian.org")
	assert.Contains(t, string(data), "# already a comment")

	vendor, err := os.ReadFile(extra)
	require.NoError(t, err)
	assert.Contains(t, string(vendor), messages.RepoDisabledMarker)

	// The operator sees what changed before it changes.
	assert.Contains(t, out.String(), "-deb http://deb.debian.org")
	assert.Contains(t, out.String(), "+"+messages.RepoDisabledMarker)
}

func TestConfigureSkipsOwnListFile(t *testing.T) {
	m, _, _ := testManager(t)
	require.NoError(t, m.Configure())
	require.NoError(t, m.Configure())

	data, err := os.ReadFile(m.ListPath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), messages.RepoDisabledMarker,
		"airlock must never disable its own list file")
}

func TestRestoreBringsSourcesBackVerbatim(t *testing.T) {
	m, _, _ := testManager(t)
	original := "deb http://deb.debian.org/debian trixie main\n"
	require.NoError(t, os.WriteFile(m.SourcesList, []byte(original), 0o600))
	require.NoError(t, m.Configure())

	require.NoError(t, m.Restore())

	data, err := os.ReadFile(m.SourcesList)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))

	info, err := os.Stat(m.SourcesList)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(m.ListPath())
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(m.BackupDir)
	assert.True(t, os.IsNotExist(err), "backup dir is removed once consumed")
}

func TestRestoreWithoutConfigureIsNoOp(t *testing.T) {
	m, _, _ := testManager(t)
	require.NoError(t, m.Restore())
	require.NoError(t, m.Restore())
}

func TestBackupIndexNotDuplicatedOnReconfigure(t *testing.T) {
	m, _, _ := testManager(t)
	require.NoError(t, os.WriteFile(m.SourcesList, []byte("deb http://a main\n"), 0o644))
	require.NoError(t, m.Configure())

	// A second configure sees the file already disabled and leaves the
	// original backup alone.
	require.NoError(t, m.Configure())
	entries, err := m.loadIndex()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, m.SourcesList, entries[0].OriginalPath)
}

func TestDisableLines(t *testing.T) {
	in := "deb http://a main\n\n# comment\n  deb http://b main\n"
	got := disableLines(in)
	assert.Equal(t,
		messages.RepoDisabledMarker+"deb http://a main\n\n# comment\n"+
			messages.RepoDisabledMarker+"  deb http://b main\n",
		got)
	assert.Equal(t, got, disableLines(got), "disabling twice changes nothing")
}
