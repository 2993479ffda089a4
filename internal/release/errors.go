package release

import "errors"

// Sentinel errors for the release flow.
var (
	// ErrEmptyVersion indicates a release was requested without a version.
	ErrEmptyVersion = errors.New("empty release version")
	// ErrDocsRepoMissing indicates the sibling documentation repository is
	// not present on disk.
	ErrDocsRepoMissing = errors.New("documentation repository not found")
	// ErrAlreadyReleased indicates this version already completed the
	// publish flow; a version is never re-released without manual
	// intervention.
	ErrAlreadyReleased = errors.New("version already released")
	// ErrInvalidTransition indicates a release step transition that is not
	// the single next step.
	ErrInvalidTransition = errors.New("invalid release step transition")
	// ErrNoFetchCommand indicates no artifact fetch command is configured
	// for the upload flow.
	ErrNoFetchCommand = errors.New("no artifact fetch command configured")
	// ErrNoArtifacts indicates the fetch produced no artifacts for the
	// version.
	ErrNoArtifacts = errors.New("no artifacts found for version")
	// ErrNotTagged indicates an upload was requested for a version whose
	// tag was never pushed.
	ErrNotTagged = errors.New("version has not been tagged")
)
