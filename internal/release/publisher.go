// Package release sequences the irreversible steps of publishing a version:
// precondition checks, signed tag push, and documentation publish, with the
// signed artifact upload deferred to a separate invocation. Progress is
// persisted per version so a re-run after a partial failure resumes instead
// of repeating irreversible steps.
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

// Tagger is the version-control capability used for the tag step; satisfied
// by *gitx.Client rooted at the project repository.
type Tagger interface {
	TagSigned(ctx context.Context, tag, message string) error
	PushTag(ctx context.Context, remote, tag string) error
}

// DocsRepo is the version-control capability used for the docs publish step;
// satisfied by *gitx.Client rooted at the docs repository.
type DocsRepo interface {
	CommitAll(ctx context.Context, message string) error
	Push(ctx context.Context, remote string) error
}

// Publisher drives the tag and docs steps for one version.
type Publisher struct {
	Runner exec.Runner
	Tagger Tagger
	Docs   DocsRepo

	Version string
	// Date is the UTC release date recorded in the tag message.
	Date   string
	Remote string

	// DocsRepoDir is the sibling documentation repository; its presence is
	// a release precondition.
	DocsRepoDir string
	// DocsBuildCmd builds the documentation for the version.
	DocsBuildCmd []string
	// DocsOutDir is where the docs build writes its output.
	DocsOutDir string

	// StateDir holds the persisted per-version release state.
	StateDir string
	Printer  *ui.Printer
}

// Publish runs preconditions → tag → docs. No external system is mutated
// until every precondition passes. A pushed tag followed by a docs failure
// is an accepted partial state: it is surfaced in the error and the
// persisted step, never rolled back or silently retried.
func (p *Publisher) Publish(ctx context.Context) error {
	if strings.TrimSpace(p.Version) == "" {
		return ErrEmptyVersion
	}
	if fi, err := os.Stat(p.DocsRepoDir); err != nil || !fi.IsDir() {
		return fmt.Errorf("%s: %w", p.DocsRepoDir, ErrDocsRepoMissing)
	}

	st, err := LoadState(p.StateDir, p.Version)
	if err != nil {
		return err
	}
	if st.Step == StepDocsPublished {
		return fmt.Errorf("release %s: %w", p.Version, ErrAlreadyReleased)
	}

	if st.Step == StepPending {
		if err := st.advance(StepValidated); err != nil {
			return err
		}
		if err := st.Save(p.StateDir); err != nil {
			return err
		}
	}
	p.step("preconditions ok")

	if st.Step.Reached(StepTagged) {
		if p.Printer != nil {
			p.Printer.Skip("tag", "already pushed for "+p.Version)
		}
	} else {
		if err := p.tag(ctx); err != nil {
			return err
		}
		if err := st.advance(StepTagged); err != nil {
			return err
		}
		if err := st.Save(p.StateDir); err != nil {
			// The tag is already on the remote; losing the marker must
			// be visible to the operator.
			return fmt.Errorf("tag %s pushed but state not persisted: %w", p.tagName(), err)
		}
		p.step("tag " + p.tagName() + " pushed")
	}

	if err := p.publishDocs(ctx); err != nil {
		return fmt.Errorf("tag %s is pushed; docs publish failed and can be resumed: %w", p.tagName(), err)
	}
	if err := st.advance(StepDocsPublished); err != nil {
		return err
	}
	if err := st.Save(p.StateDir); err != nil {
		return err
	}
	p.step("docs published for " + p.Version)
	return nil
}

func (p *Publisher) tagName() string {
	return "v" + p.Version
}

func (p *Publisher) tag(ctx context.Context) error {
	msg := fmt.Sprintf("release %s (%s)", p.Version, p.Date)
	if err := p.Tagger.TagSigned(ctx, p.tagName(), msg); err != nil {
		return err
	}
	return p.Tagger.PushTag(ctx, p.Remote, p.tagName())
}

// publishDocs builds the documentation, replaces the docs repository's copy
// for this version (deleting the prior copy first so no stale files
// survive), commits, and pushes.
func (p *Publisher) publishDocs(ctx context.Context) error {
	if len(p.DocsBuildCmd) > 0 {
		if _, err := p.Runner.Run(ctx, exec.Command{
			Name: p.DocsBuildCmd[0],
			Args: p.DocsBuildCmd[1:],
			Env:  []string{"SHIPYARD_VERSION=" + p.Version},
		}); err != nil {
			return fmt.Errorf("building docs: %w", err)
		}
	}

	target := filepath.Join(p.DocsRepoDir, p.Version)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("removing prior docs copy %s: %w", target, err)
	}
	if err := copyTree(p.DocsOutDir, target); err != nil {
		return fmt.Errorf("copying docs into %s: %w", target, err)
	}

	if err := p.Docs.CommitAll(ctx, "docs for "+p.Version); err != nil {
		return err
	}
	return p.Docs.Push(ctx, p.Remote)
}

func (p *Publisher) step(msg string) {
	if p.Printer != nil {
		p.Printer.ReleaseStep(msg)
	}
}
