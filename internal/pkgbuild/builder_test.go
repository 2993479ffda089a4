package pkgbuild

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/papapumpkin/shipyard/internal/exec"
	"github.com/papapumpkin/shipyard/internal/manifest"
)

// fakeRunner records invocations; commands whose argv contains failMatch
// fail.
type fakeRunner struct {
	calls     []exec.Command
	failMatch string
}

func (f *fakeRunner) Run(_ context.Context, c exec.Command) (exec.Result, error) {
	f.calls = append(f.calls, c)
	if f.failMatch != "" && strings.Contains(c.Name+" "+strings.Join(c.Args, " "), f.failMatch) {
		return exec.Result{}, errors.New("exit status 1")
	}
	return exec.Result{}, nil
}

func (f *fakeRunner) LookPath(string) bool { return true }

func testManifest() *manifest.Manifest {
	return &manifest.Manifest{Packages: []manifest.Package{
		{Name: "ui-core", Dir: "www/ui-core", Role: manifest.RoleDependency,
			Install: []string{"yarn", "install"}, Build: []string{"yarn", "build"}},
		{Name: "ui-grid", Dir: "www/ui-grid", Role: manifest.RoleDependency,
			Build: []string{"yarn", "build", "grid"}},
		{Name: "backend", Dir: "master", Role: manifest.RoleLeaf,
			Build: []string{"pip", "install", "-e", "master"}, Package: []string{"pip", "wheel", "master"}},
		{Name: "worker", Dir: "worker", Role: manifest.RoleLeaf,
			Build: []string{"pip", "install", "-e", "worker"}, Package: []string{"pip", "wheel", "worker"}},
		{Name: "web", Dir: "www/app", Role: manifest.RoleLeaf,
			Build: []string{"pip", "install", "-e", "web"}, Package: []string{"pip", "wheel", "web"}},
	}}
}

func newBuilder(t *testing.T, runner *fakeRunner) *Builder {
	t.Helper()
	return &Builder{
		Runner:   runner,
		Manifest: testManifest(),
		Sandbox:  t.TempDir(),
	}
}

func TestBuildDependenciesOrder(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	b := newBuilder(t, runner)

	if err := b.BuildDependencies(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, c := range runner.calls {
		got = append(got, c.Name+" "+strings.Join(c.Args, " "))
	}
	want := []string{"yarn install", "yarn build", "yarn build grid"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("command order = %v, want %v", got, want)
	}
	if !b.DependenciesBuilt() {
		t.Error("dependency stamp missing after successful build")
	}
}

// Building leaves before dependencies is a usage error that must fail
// deterministically, not a silent degraded build.
func TestBuildLeavesRequiresDependencies(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	b := newBuilder(t, runner)

	err := b.BuildLeaves(context.Background(), ModeDevelop)
	if !errors.Is(err, ErrDependenciesNotBuilt) {
		t.Fatalf("err = %v, want ErrDependenciesNotBuilt", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("leaf builds ran despite missing dependencies: %v", runner.calls)
	}
}

// With three leaf packages where the second fails, the third must not be
// attempted and the error must name the failing package.
func TestBuildLeavesFailFast(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{failMatch: "-e worker"}
	b := newBuilder(t, runner)
	if err := b.BuildDependencies(context.Background()); err != nil {
		t.Fatalf("deps: %v", err)
	}
	depCalls := len(runner.calls)

	err := b.BuildLeaves(context.Background(), ModeDevelop)
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BuildError", err)
	}
	if be.Package != "worker" {
		t.Errorf("failing package = %q, want worker", be.Package)
	}
	if got := len(runner.calls) - depCalls; got != 2 {
		t.Errorf("leaf commands attempted = %d, want 2 (backend + worker only)", got)
	}
}

func TestBuildLeavesPackageMode(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	b := newBuilder(t, runner)
	if err := b.BuildDependencies(context.Background()); err != nil {
		t.Fatalf("deps: %v", err)
	}

	if err := b.BuildLeaves(context.Background(), ModePackage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wheels int
	for _, c := range runner.calls {
		if strings.Contains(strings.Join(c.Args, " "), "wheel") {
			wheels++
		}
	}
	if wheels != 3 {
		t.Errorf("ran %d package commands, want one per leaf", wheels)
	}
}

// A leaf without a package command must fail a package-mode build instead of
// silently producing nothing.
func TestBuildLeavesPackageModeMissingCommand(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	b := newBuilder(t, runner)
	for i, p := range b.Manifest.Packages {
		if p.Name == "worker" {
			b.Manifest.Packages[i].Package = nil
		}
	}
	if err := b.BuildDependencies(context.Background()); err != nil {
		t.Fatalf("deps: %v", err)
	}

	err := b.BuildLeaves(context.Background(), ModePackage)
	if !errors.Is(err, ErrNoPackageCommand) {
		t.Fatalf("err = %v, want ErrNoPackageCommand", err)
	}
	if !strings.Contains(err.Error(), "worker") {
		t.Errorf("error does not name the package: %v", err)
	}
	// Fail-fast: web's package command must not run after worker failed.
	for _, c := range runner.calls {
		if strings.Contains(strings.Join(c.Args, " "), "wheel web") {
			t.Error("web was attempted after the missing-command failure")
		}
	}
}

func TestBuildRunsInSandboxEnv(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	b := newBuilder(t, runner)

	if err := b.BuildDependencies(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := runner.calls[0]
	if c.Dir != "www/ui-core" {
		t.Errorf("command dir = %q, want www/ui-core", c.Dir)
	}
	var sawVenv bool
	for _, e := range c.Env {
		if strings.HasPrefix(e, "VIRTUAL_ENV=") {
			sawVenv = true
		}
	}
	if !sawVenv {
		t.Errorf("command env lacks VIRTUAL_ENV: %v", c.Env)
	}
}

func TestClearDepsStamp(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	b := newBuilder(t, runner)
	if err := b.BuildDependencies(context.Background()); err != nil {
		t.Fatalf("deps: %v", err)
	}

	if err := b.ClearDepsStamp(); err != nil {
		t.Fatalf("clearing stamp: %v", err)
	}
	if b.DependenciesBuilt() {
		t.Error("stamp survived ClearDepsStamp")
	}
	// Clearing an absent stamp is not an error.
	if err := b.ClearDepsStamp(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}
