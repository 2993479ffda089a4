// Package gitx drives the git CLI for the pieces of the pipeline that touch
// version control: the staged-change query gating release notes, signed
// release tags, and the docs repository commit/push.
package gitx

import (
	"context"
	"fmt"
	"strings"

	"github.com/papapumpkin/shipyard/internal/exec"
)

// Client runs git commands rooted at a repository directory.
type Client struct {
	Runner exec.Runner
	// Dir is the repository working directory.
	Dir string
}

// IsRepo reports whether Dir is inside a git work tree.
func (c *Client) IsRepo(ctx context.Context) bool {
	_, err := c.git(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// IsStaged reports whether the given path has changes staged for commit.
func (c *Client) IsStaged(ctx context.Context, path string) (bool, error) {
	out, err := c.git(ctx, "diff", "--cached", "--name-only", "--", path)
	if err != nil {
		return false, fmt.Errorf("querying staged changes: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// TagSigned creates a signed, annotated tag locally.
func (c *Client) TagSigned(ctx context.Context, tag, message string) error {
	if _, err := c.git(ctx, "tag", "-s", "-m", message, tag); err != nil {
		return fmt.Errorf("creating tag %s: %w", tag, err)
	}
	return nil
}

// PushTag pushes a tag to the named remote. This is irreversible from the
// pipeline's point of view: a pushed tag is never deleted automatically.
func (c *Client) PushTag(ctx context.Context, remote, tag string) error {
	if _, err := c.git(ctx, "push", remote, tag); err != nil {
		return fmt.Errorf("pushing tag %s to %s: %w", tag, remote, err)
	}
	return nil
}

// CommitAll stages everything in the repository and commits it. If the work
// tree is clean no commit is created and no error is returned.
func (c *Client) CommitAll(ctx context.Context, message string) error {
	if _, err := c.git(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	// Clean tree: diff --cached --quiet exits zero.
	if _, err := c.git(ctx, "diff", "--cached", "--quiet"); err == nil {
		return nil
	}
	if _, err := c.git(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}

// Push pushes the current branch to the named remote.
func (c *Client) Push(ctx context.Context, remote string) error {
	if _, err := c.git(ctx, "push", remote); err != nil {
		return fmt.Errorf("pushing to %s: %w", remote, err)
	}
	return nil
}

func (c *Client) git(ctx context.Context, args ...string) (string, error) {
	res, err := c.Runner.Run(ctx, exec.Command{
		Name: "git",
		Args: append([]string{"-C", c.Dir}, args...),
	})
	if err != nil {
		return res.Stdout, err
	}
	return res.Stdout, nil
}
