// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/monosync/internal/config"
	"github.com/example/monosync/internal/core/effects"
	"github.com/example/monosync/internal/core/syncerr"
	"github.com/example/monosync/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place the finalize plan does I/O.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) (*ExecutionReport, error)
}

// ExecutionReport collects what happened while executing a plan.
type ExecutionReport struct {
	Executed []string
	Warnings []string
}

// DefaultEffectExecutor implements EffectExecutor against the sync ports.
type DefaultEffectExecutor struct {
	vcs     secondary.VersionControl
	markers *MarkerStore
	state   secondary.OperationStateStore
	cfg     config.Config
	logger  *slog.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor(vcs secondary.VersionControl, markers *MarkerStore, state secondary.OperationStateStore, cfg config.Config, logger *slog.Logger) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{vcs: vcs, markers: markers, state: state, cfg: cfg, logger: logger}
}

// Execute processes effects in sequence and stops at the first required failure.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) (*ExecutionReport, error) {
	report := &ExecutionReport{}
	if err := e.execute(ctx, effs, report); err != nil {
		return report, err
	}
	return report, nil
}

func (e *DefaultEffectExecutor) execute(ctx context.Context, effs []effects.Effect, report *ExecutionReport) error {
	for _, eff := range effs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.executeOne(ctx, eff, report); err != nil {
			return err
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect, report *ExecutionReport) error {
	switch typed := eff.(type) {
	case effects.GitEffect:
		err := e.executeGit(ctx, typed)
		if err != nil && typed.Optional {
			msg := fmt.Sprintf("%s %s failed: %v", typed.Operation, typed.Branch, err)
			e.logger.Warn(msg)
			report.Warnings = append(report.Warnings, msg)
			return nil
		}
		if err == nil {
			report.Executed = append(report.Executed, typed.Operation)
		}
		return err
	case effects.MarkerEffect:
		if err := e.markers.Advance(ctx, typed.Position); err != nil {
			return err
		}
		report.Executed = append(report.Executed, "marker")
		return nil
	case effects.StateEffect:
		return e.executeState(ctx, typed, report)
	case effects.CompositeEffect:
		return e.execute(ctx, typed.Effects, report)
	case effects.NoEffect:
		return nil
	case effects.LogEffect:
		e.logger.Log(ctx, levelOf(typed.Level), typed.Message)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeGit(ctx context.Context, eff effects.GitEffect) error {
	switch eff.Operation {
	case effects.OpSubmit:
		e.logger.Info("submitting to target", "branch", eff.Branch, "target", e.cfg.Target)
		if err := e.vcs.SubmitToTarget(ctx, eff.Branch); err != nil {
			return syncerr.E("finalize.submit", syncerr.Upstream, err)
		}
		return nil
	case effects.OpRefreshMirror:
		if err := e.vcs.RebaseMirror(ctx, eff.Branch, e.cfg.TrackingRef); err != nil {
			return syncerr.E("finalize.refresh-mirror", syncerr.Upstream, err)
		}
		return nil
	case effects.OpMerge:
		err := e.vcs.MergeInto(ctx, secondary.MergeRequest{
			Branch:   eff.Branch,
			Upstream: eff.Upstream,
			Source:   eff.Source,
			Message:  eff.Message,
		})
		if err != nil {
			return syncerr.E("finalize.merge", syncerr.Upstream, err)
		}
		return nil
	case effects.OpPushBranch:
		if err := e.vcs.PushBranch(ctx, eff.Remote, eff.Branch); err != nil {
			return syncerr.E("finalize.push", syncerr.Upstream, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown git operation: %s", eff.Operation)
	}
}

func (e *DefaultEffectExecutor) executeState(ctx context.Context, eff effects.StateEffect, report *ExecutionReport) error {
	switch eff.Operation {
	case "clear":
		if err := e.state.Clear(ctx); err != nil {
			return syncerr.E("finalize.clear-state", syncerr.State, err)
		}
		report.Executed = append(report.Executed, "clear-state")
		return nil
	default:
		return fmt.Errorf("unknown state operation: %s", eff.Operation)
	}
}

func levelOf(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
