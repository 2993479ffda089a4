package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/papapumpkin/shipyard/internal/history"
)

func TestExecuteSequential(t *testing.T) {
	t.Parallel()

	var order []string
	stages := []Stage{
		{Name: "first", Run: func(context.Context) error {
			order = append(order, "first")
			return nil
		}},
		{Name: "second", Run: func(context.Context) error {
			order = append(order, "second")
			return nil
		}},
	}

	p := &Pipeline{}
	if err := p.Execute(context.Background(), "build deps", stages); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("stages ran as %v", order)
	}
}

func TestExecuteFailFast(t *testing.T) {
	t.Parallel()

	boom := errors.New("provisioning failed")
	var laterRan bool
	stages := []Stage{
		{Name: "first", Run: func(context.Context) error { return boom }},
		{Name: "second", Run: func(context.Context) error {
			laterRan = true
			return nil
		}},
	}

	p := &Pipeline{}
	if err := p.Execute(context.Background(), "tarballs", stages); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the stage error", err)
	}
	if laterRan {
		t.Error("stage after the failure was attempted")
	}
}

func TestExecuteJournalsRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	stages := []Stage{
		{Name: "provision environment", Run: func(context.Context) error { return nil }},
		{Name: "build dependency packages", Run: func(context.Context) error {
			return errors.New("exit status 1")
		}},
	}

	p := &Pipeline{History: store}
	if err := p.Execute(ctx, "build deps", stages); err == nil {
		t.Fatal("expected stage failure")
	}

	run, err := store.LastRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if run.Command != "build deps" || run.Outcome != "failed" {
		t.Errorf("journaled run = %+v", run)
	}

	recorded, err := store.StagesFor(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recorded) != 2 {
		t.Fatalf("journaled %d stages, want 2", len(recorded))
	}
	if recorded[0].Outcome != "ok" {
		t.Errorf("stage[0].Outcome = %q", recorded[0].Outcome)
	}
	if recorded[1].Outcome != "failed" || recorded[1].Detail != "exit status 1" {
		t.Errorf("stage[1] = %+v", recorded[1])
	}
}

// Two pipelines sharing a lock path must not run at the same time: the second
// acquisition fails immediately instead of blocking.
func TestExecuteLockConflict(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), "pipeline.lock")
	p := &Pipeline{LockPath: lockPath}

	inside := make(chan struct{})
	proceed := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- p.Execute(context.Background(), "build deps", []Stage{
			{Name: "hold", Run: func(context.Context) error {
				close(inside)
				<-proceed
				return nil
			}},
		})
	}()

	<-inside
	second := &Pipeline{LockPath: lockPath}
	err := second.Execute(context.Background(), "tarballs", nil)
	if !errors.Is(err, ErrPipelineLocked) {
		t.Errorf("err = %v, want ErrPipelineLocked", err)
	}

	close(proceed)
	if err := <-done; err != nil {
		t.Fatalf("holding pipeline failed: %v", err)
	}

	// Lock released: a fresh run acquires it again.
	if err := second.Execute(context.Background(), "tarballs", nil); err != nil {
		t.Errorf("run after release failed: %v", err)
	}
}
