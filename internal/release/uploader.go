package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/shipyard/internal/exec"
	"github.com/papapumpkin/shipyard/internal/ui"
)

// Uploader runs the deferred signed-artifact upload for an already-tagged
// version. It is a separate invocation by design: artifacts are produced by
// an asynchronous external build of the pushed tag, and the operator re-runs
// this command once that build has completed. It is never auto-retried.
type Uploader struct {
	Runner  exec.Runner
	Version string
	DistDir string
	// FetchCmd downloads the externally-built artifacts for the version
	// into the distribution directory.
	FetchCmd []string
	// UploadTool uploads and signs the artifacts.
	UploadTool string
	// SigningIdentity, when set, selects the signing key.
	SigningIdentity string
	// StateDir is the persisted release state directory; the version must
	// have reached the tagged step before an upload is attempted.
	StateDir string
	Printer  *ui.Printer
}

// Upload discards stale local copies for the version prefix, fetches the
// externally-built artifacts, and uploads them with cryptographic signing.
func (u *Uploader) Upload(ctx context.Context) error {
	if strings.TrimSpace(u.Version) == "" {
		return ErrEmptyVersion
	}
	if len(u.FetchCmd) == 0 {
		return ErrNoFetchCommand
	}

	st, err := LoadState(u.StateDir, u.Version)
	if err != nil {
		return err
	}
	if !st.Step.Reached(StepTagged) {
		return fmt.Errorf("release %s: %w", u.Version, ErrNotTagged)
	}

	// Stale copies from a previous attempt must never be uploaded.
	stale, err := u.versionArtifacts()
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing stale artifact %s: %w", path, err)
		}
	}

	if err := os.MkdirAll(u.DistDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", u.DistDir, err)
	}
	distAbs, err := filepath.Abs(u.DistDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", u.DistDir, err)
	}
	if _, err := u.Runner.Run(ctx, exec.Command{
		Name: u.FetchCmd[0],
		Args: u.FetchCmd[1:],
		Env: []string{
			"SHIPYARD_VERSION=" + u.Version,
			"SHIPYARD_DIST=" + distAbs,
		},
	}); err != nil {
		return fmt.Errorf("fetching artifacts for %s: %w", u.Version, err)
	}

	files, err := u.versionArtifacts()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("release %s: %w", u.Version, ErrNoArtifacts)
	}

	args := []string{"upload", "--sign"}
	if u.SigningIdentity != "" {
		args = append(args, "--identity", u.SigningIdentity)
	}
	args = append(args, files...)
	if _, err := u.Runner.Run(ctx, exec.Command{
		Name: u.UploadTool,
		Args: args,
	}); err != nil {
		return fmt.Errorf("uploading artifacts for %s: %w", u.Version, err)
	}

	if u.Printer != nil {
		u.Printer.ReleaseStep(fmt.Sprintf("uploaded %d signed artifact(s) for %s", len(files), u.Version))
	}
	return nil
}

// versionArtifacts lists distribution files carrying the version in their
// name.
func (u *Uploader) versionArtifacts() ([]string, error) {
	pattern := filepath.Join(u.DistDir, "*"+u.Version+"*")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts %s: %w", pattern, err)
	}
	return files, nil
}
