// Package env provisions the isolated build environment every pipeline stage
// runs inside. Provisioning is idempotent: a stamp file inside the sandbox
// marks a completed install, and a stamped sandbox is never touched again.
package env

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/shipyard/internal/exec"
)

const stampFileName = ".provisioned.toml"

// baseTools are the pinned tools installed into every new sandbox before the
// project requirements. Versions move only with the toolset version.
var baseTools = map[string][]string{
	"2025.2": {"pip==25.2", "setuptools==80.9.0", "wheel==0.45.1"},
	"2025.1": {"pip==25.0", "setuptools==78.1.0", "wheel==0.45.1"},
}

// stamp records a completed provisioning inside the sandbox.
type stamp struct {
	Toolset       string    `toml:"toolset"`
	ProvisionedAt time.Time `toml:"provisioned_at"`
}

// Provisioner creates and validates the build sandbox.
type Provisioner struct {
	Runner  exec.Runner
	Sandbox string
	// Toolset selects the pinned base tool set.
	Toolset string
	// EnvTool is the isolated-environment manager executed to create the
	// sandbox (e.g. virtualenv).
	EnvTool string
	// Requirements is the project dependency manifest; empty skips the
	// project install step.
	Requirements string
}

// Provisioned reports whether the sandbox carries a provisioning stamp.
// A stamped sandbox is complete; a directory without a stamp (e.g. after an
// interrupted install) is re-provisioned from scratch.
func (p *Provisioner) Provisioned() bool {
	_, err := os.Stat(filepath.Join(p.Sandbox, stampFileName))
	return err == nil
}

// ReadStamp returns the recorded toolset version of a provisioned sandbox.
func (p *Provisioner) ReadStamp() (string, error) {
	data, err := os.ReadFile(filepath.Join(p.Sandbox, stampFileName))
	if err != nil {
		return "", err
	}
	var s stamp
	if err := toml.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("parsing sandbox stamp: %w", err)
	}
	return s.Toolset, nil
}

// Ensure makes the sandbox usable. If already provisioned it is a no-op and
// returns created=false without spawning any process. Otherwise it creates
// the sandbox, installs the pinned base tools and the project requirements,
// and writes the stamp last so a partial install is never mistaken for a
// complete one.
func (p *Provisioner) Ensure(ctx context.Context) (created bool, err error) {
	if p.Provisioned() {
		return false, nil
	}

	pins, ok := baseTools[p.Toolset]
	if !ok {
		return false, fmt.Errorf("toolset %q: %w", p.Toolset, ErrUnknownToolset)
	}

	if _, err := p.Runner.Run(ctx, exec.Command{
		Name: p.EnvTool,
		Args: []string{p.Sandbox},
	}); err != nil {
		return false, fmt.Errorf("creating sandbox %s: %w", p.Sandbox, err)
	}

	pip := filepath.Join(p.Sandbox, "bin", "pip")
	if _, err := p.Runner.Run(ctx, exec.Command{
		Name: pip,
		Args: append([]string{"install", "--upgrade"}, pins...),
	}); err != nil {
		return false, fmt.Errorf("installing base tools: %w", err)
	}

	if p.Requirements != "" {
		if _, err := p.Runner.Run(ctx, exec.Command{
			Name: pip,
			Args: []string{"install", "-r", p.Requirements},
		}); err != nil {
			return false, fmt.Errorf("installing %s: %w", p.Requirements, err)
		}
	}

	if err := p.writeStamp(); err != nil {
		return false, err
	}
	return true, nil
}

// writeStamp writes the stamp file atomically (write temp + rename).
func (p *Provisioner) writeStamp() error {
	data, err := toml.Marshal(stamp{
		Toolset:       p.Toolset,
		ProvisionedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshaling sandbox stamp: %w", err)
	}

	path := filepath.Join(p.Sandbox, stampFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing sandbox stamp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming sandbox stamp: %w", err)
	}
	return nil
}

// BuildEnv returns the environment additions that place a sandbox's tools
// first on PATH for package builds.
func BuildEnv(sandbox string) []string {
	abs, err := filepath.Abs(sandbox)
	if err != nil {
		abs = sandbox
	}
	return []string{
		"VIRTUAL_ENV=" + abs,
		"PATH=" + filepath.Join(abs, "bin") + string(os.PathListSeparator) + os.Getenv("PATH"),
	}
}
