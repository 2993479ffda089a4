// Package relnotes drives the external changelog tool that assembles release
// notes from accumulated change fragments. Generation is guarded: if the
// generated index is already staged for commit, the generator does nothing,
// so back-to-back invocations never produce duplicate entries.
package relnotes

import (
	"context"
	"fmt"
	"strings"

	"github.com/papapumpkin/shipyard/internal/exec"
)

// Outcome describes what a Generate call did.
type Outcome string

const (
	// OutcomeGenerated means notes were written to the working tree.
	OutcomeGenerated Outcome = "generated"
	// OutcomeStaged means the generated index was already staged and
	// generation was skipped entirely.
	OutcomeStaged Outcome = "already-staged"
	// OutcomeEmpty means the draft showed no pending changes and the
	// changelog was left untouched.
	OutcomeEmpty Outcome = "no-changes"
	// OutcomeToolMissing means the changelog tool is not installed.
	OutcomeToolMissing Outcome = "tool-missing"
)

// emptyDraftMarker is what the changelog tool prints in a draft when no
// change fragments are pending.
const emptyDraftMarker = "No significant changes"

// StagedChecker is the version-control capability the generator queries;
// satisfied by *gitx.Client.
type StagedChecker interface {
	IsStaged(ctx context.Context, path string) (bool, error)
}

// Generator produces the draft changelog.
type Generator struct {
	Runner exec.Runner
	Git    StagedChecker
	// Tool is the changelog generator executable.
	Tool string
	// Dir is the directory the tool runs in.
	Dir string
	// IndexFile is the generated changelog index whose staged state gates
	// regeneration, relative to the repository root.
	IndexFile string
	// Force regenerates even when the index is already staged.
	Force bool
}

// Generate runs the guarded generation flow. It never commits; committing
// the generated notes is the caller's responsibility.
func (g *Generator) Generate(ctx context.Context) (Outcome, error) {
	if !g.Force {
		staged, err := g.Git.IsStaged(ctx, g.IndexFile)
		if err != nil {
			return "", err
		}
		if staged {
			return OutcomeStaged, nil
		}
	}

	if !g.Runner.LookPath(g.Tool) {
		return OutcomeToolMissing, nil
	}

	draft, err := g.Runner.Run(ctx, exec.Command{
		Name: g.Tool,
		Args: []string{"--draft"},
		Dir:  g.Dir,
	})
	if err != nil {
		return "", fmt.Errorf("drafting release notes: %w", err)
	}
	if strings.Contains(draft.Stdout, emptyDraftMarker) {
		return OutcomeEmpty, nil
	}

	// Full generation. The tool asks whether to delete consumed change
	// fragments; answer "n" so the flow runs unattended and fragments
	// survive for inspection.
	if _, err := g.Runner.Run(ctx, exec.Command{
		Name:  g.Tool,
		Dir:   g.Dir,
		Stdin: "n\n",
	}); err != nil {
		return "", fmt.Errorf("generating release notes: %w", err)
	}
	return OutcomeGenerated, nil
}
