package release

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/papapumpkin/shipyard/internal/exec"
)

func newUploadFixture(t *testing.T, step Step) (*Uploader, *fakeRunner) {
	t.Helper()
	root := t.TempDir()
	stateDir := filepath.Join(root, "state")
	dist := filepath.Join(root, "dist")

	st := &State{Version: "9.9.0", Step: step}
	if err := st.Save(stateDir); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{}
	// The fetch command drops the externally-built artifacts into
	// SHIPYARD_DIST, like the real download script would.
	runner.onRun = func(c exec.Command) error {
		if c.Name != "fetch-artifacts" {
			return nil
		}
		for _, e := range c.Env {
			if dir, ok := strings.CutPrefix(e, "SHIPYARD_DIST="); ok {
				for _, name := range []string{"backend-9.9.0.tar.gz", "worker-9.9.0.tar.gz"} {
					if err := os.WriteFile(filepath.Join(dir, name), []byte("tar"), 0644); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}

	return &Uploader{
		Runner:          runner,
		Version:         "9.9.0",
		DistDir:         dist,
		FetchCmd:        []string{"fetch-artifacts"},
		UploadTool:      "twine",
		SigningIdentity: "release@example.com",
		StateDir:        stateDir,
	}, runner
}

func TestUploadHappyPath(t *testing.T) {
	t.Parallel()

	u, runner := newUploadFixture(t, StepTagged)
	if err := u.Upload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runner.calls) != 2 {
		t.Fatalf("ran %d commands, want 2 (fetch, upload)", len(runner.calls))
	}
	up := runner.calls[1]
	if up.Name != "twine" {
		t.Errorf("upload tool = %q, want twine", up.Name)
	}
	argv := strings.Join(up.Args, " ")
	if !strings.HasPrefix(argv, "upload --sign --identity release@example.com") {
		t.Errorf("upload args = %q", argv)
	}
	if !strings.Contains(argv, "backend-9.9.0.tar.gz") || !strings.Contains(argv, "worker-9.9.0.tar.gz") {
		t.Errorf("upload args missing artifacts: %q", argv)
	}
}

func TestUploadRequiresTag(t *testing.T) {
	t.Parallel()

	u, runner := newUploadFixture(t, StepValidated)
	if err := u.Upload(context.Background()); !errors.Is(err, ErrNotTagged) {
		t.Fatalf("err = %v, want ErrNotTagged", err)
	}
	if len(runner.calls) != 0 {
		t.Error("commands ran for an untagged version")
	}
}

func TestUploadPurgesStaleArtifacts(t *testing.T) {
	t.Parallel()

	u, runner := newUploadFixture(t, StepTagged)
	if err := os.MkdirAll(u.DistDir, 0755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(u.DistDir, "backend-9.9.0.tar.gz.partial")
	if err := os.WriteFile(stale, []byte("truncated"), 0644); err != nil {
		t.Fatal(err)
	}
	unrelated := filepath.Join(u.DistDir, "backend-9.8.0.tar.gz")
	if err := os.WriteFile(unrelated, []byte("tar"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := u.Upload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale artifact of the same version survived")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("other-version artifact was removed")
	}
	argv := strings.Join(runner.calls[1].Args, " ")
	if strings.Contains(argv, "partial") || strings.Contains(argv, "9.8.0") {
		t.Errorf("upload includes files it must not: %q", argv)
	}
}

func TestUploadNoArtifacts(t *testing.T) {
	t.Parallel()

	u, runner := newUploadFixture(t, StepTagged)
	runner.onRun = nil // fetch produces nothing

	if err := u.Upload(context.Background()); !errors.Is(err, ErrNoArtifacts) {
		t.Fatalf("err = %v, want ErrNoArtifacts", err)
	}
	if len(runner.calls) != 1 {
		t.Errorf("ran %d commands, want only the fetch", len(runner.calls))
	}
}

func TestUploadPreconditions(t *testing.T) {
	t.Parallel()

	u, _ := newUploadFixture(t, StepTagged)
	u.Version = ""
	if err := u.Upload(context.Background()); !errors.Is(err, ErrEmptyVersion) {
		t.Errorf("err = %v, want ErrEmptyVersion", err)
	}

	u2, _ := newUploadFixture(t, StepTagged)
	u2.FetchCmd = nil
	if err := u2.Upload(context.Background()); !errors.Is(err, ErrNoFetchCommand) {
		t.Errorf("err = %v, want ErrNoFetchCommand", err)
	}
}
