// Package pipeline sequences the stages a shipyard command is composed of.
// Stages run sequentially and fail-fast; the run and each stage outcome are
// recorded in the history journal, and a file lock guarantees the sandbox
// and distribution directory are owned by a single run at a time.
package pipeline

import (
	"context"
	"time"

	"github.com/papapumpkin/shipyard/internal/history"
	"github.com/papapumpkin/shipyard/internal/ui"
)

// Stage is one named step of a command.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pipeline executes stages in order.
type Pipeline struct {
	// History records the run; nil disables journaling.
	History *history.Store
	Printer *ui.Printer
	// LockPath guards against concurrent runs; empty disables locking.
	LockPath string
}

// Execute runs the stages sequentially. The first failure aborts the run
// without attempting the remaining stages; completed stages are never rolled
// back.
func (p *Pipeline) Execute(ctx context.Context, command string, stages []Stage) error {
	if p.LockPath != "" {
		lock, err := acquireLock(p.LockPath)
		if err != nil {
			return err
		}
		defer lock.release()
	}

	var runID string
	if p.History != nil {
		id, err := p.History.BeginRun(ctx, command)
		if err != nil {
			return err
		}
		runID = id
	}

	for _, stage := range stages {
		if p.Printer != nil {
			p.Printer.StageStart(stage.Name)
		}
		start := time.Now()
		err := stage.Run(ctx)
		elapsed := time.Since(start)

		if err != nil {
			p.recordStage(ctx, runID, stage.Name, "failed", err.Error(), elapsed)
			p.finishRun(ctx, runID, "failed")
			return err
		}

		p.recordStage(ctx, runID, stage.Name, "ok", "", elapsed)
		if p.Printer != nil {
			p.Printer.StageDone(stage.Name, elapsed)
		}
	}

	p.finishRun(ctx, runID, "ok")
	return nil
}

// recordStage journals a stage outcome. Journaling failures never mask the
// stage result; they are reported as warnings.
func (p *Pipeline) recordStage(ctx context.Context, runID, stage, outcome, detail string, d time.Duration) {
	if p.History == nil || runID == "" {
		return
	}
	if err := p.History.RecordStage(ctx, runID, stage, outcome, detail, d); err != nil && p.Printer != nil {
		p.Printer.Warn(err.Error())
	}
}

func (p *Pipeline) finishRun(ctx context.Context, runID, outcome string) {
	if p.History == nil || runID == "" {
		return
	}
	if err := p.History.FinishRun(ctx, runID, outcome); err != nil && p.Printer != nil {
		p.Printer.Warn(err.Error())
	}
}
