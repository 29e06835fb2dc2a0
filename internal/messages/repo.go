package messages

// Package repository messages.
const (
	RepoAddingFmt         = "Adding local package repository at %s\n"
	RepoRemoving          = "Removing local package repository\n"
	RepoStanzaFmt         = "deb [trusted=yes] file:%s ./\n"
	RepoWriteListFmt      = "write repository list %s: %w"
	RepoReadSourcesFmt    = "read sources file %s: %w"
	RepoWriteSourcesFmt   = "write sources file %s: %w"
	RepoBackupFmt         = "back up sources file %s: %w"
	RepoRestoreFmt        = "restore sources file %s: %w"
	RepoDisabledMarker    = "# airlock-disabled "
	RepoSourcesDiffHeader = "Changes to package sources:\n"
)
