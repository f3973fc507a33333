// Package render sequences validation and the external render call, and
// turns the terminal outcome into a Result the caller maps to an exit code.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"photomesh/internal/apperr"
	"photomesh/internal/detail"
	"photomesh/internal/engine"
	"photomesh/internal/progress"
	"photomesh/internal/validate"
)

// Request is everything one run needs from the command line.
type Request struct {
	InputDir       string
	OutputFile     string
	Detail         string
	Policy         validate.Policy
	SkipValidation bool
}

// Result is the terminal state of a run.
type Result struct {
	State     State
	ModelPath string
	Report    *validate.Report
	Err       error
	Elapsed   time.Duration
}

// ExitCode maps the result to the process exit status.
func (r Result) ExitCode() int {
	if r.State == Succeeded {
		return 0
	}
	return 1
}

// Orchestrator drives one run at a time through its states.
type Orchestrator struct {
	engine    engine.Engine
	validator *validate.Validator
	progress  *progress.Aggregator
	logger    *zap.Logger
	onState   func(State)
	state     State
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithValidator replaces the default corpus validator.
func WithValidator(v *validate.Validator) Option {
	return func(o *Orchestrator) { o.validator = v }
}

// WithAggregator records render progress into agg instead of a private one.
func WithAggregator(agg *progress.Aggregator) Option {
	return func(o *Orchestrator) { o.progress = agg }
}

// WithStateHook calls fn on every state transition, from the goroutine
// running Run.
func WithStateHook(fn func(State)) Option {
	return func(o *Orchestrator) { o.onState = fn }
}

func New(eng engine.Engine, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		engine: eng,
		logger: logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.validator == nil {
		o.validator = validate.New(logger)
	}
	if o.progress == nil {
		o.progress = &progress.Aggregator{}
	}
	return o
}

// Progress exposes the aggregator fed by the render engine.
func (o *Orchestrator) Progress() *progress.Aggregator {
	return o.progress
}

// Run validates req, renders it, and blocks until the engine delivers its
// terminal outcome. Every error is logged before Run returns.
func (o *Orchestrator) Run(ctx context.Context, req Request) Result {
	started := time.Now()
	o.transition(Idle)

	if o.engine == nil || !o.engine.Supported() {
		return o.abort(started, nil, apperr.ErrEngineUnsupported)
	}

	o.transition(Validating)

	level, err := detail.Parse(req.Detail)
	if err != nil {
		return o.abort(started, nil, err)
	}

	outputFile, err := prepareOutput(req.OutputFile)
	if err != nil {
		return o.abort(started, nil, err)
	}

	inputDir, err := checkInputDir(req.InputDir)
	if err != nil {
		return o.abort(started, nil, err)
	}

	var report *validate.Report
	if req.SkipValidation {
		o.logger.Warn("input checks skipped")
	} else {
		r, err := o.validator.ValidateDir(ctx, inputDir, req.Policy)
		if err != nil {
			if r.Total > 0 {
				report = &r
			}
			return o.abort(started, report, err)
		}
		report = &r
	}

	o.transition(Rendering)
	o.progress.Record(0)
	o.logger.Info("rendering",
		zap.String("input", inputDir),
		zap.String("output", outputFile),
		zap.Stringer("detail", level),
	)

	done, err := o.engine.Render(ctx, engine.Request{
		InputDir:   inputDir,
		OutputFile: outputFile,
		Detail:     level,
	}, o.progress.Record)
	if err != nil {
		if !errors.Is(err, apperr.ErrEngineUnsupported) && !errors.Is(err, apperr.ErrRenderFailed) {
			err = fmt.Errorf("%w: %v", apperr.ErrRenderFailed, err)
		}
		return o.fail(started, report, err)
	}

	// No deadline and no cancellation: the engine always delivers.
	outcome := <-done
	if outcome.Err != nil {
		err := outcome.Err
		if !errors.Is(err, apperr.ErrRenderFailed) {
			err = fmt.Errorf("%w: %v", apperr.ErrRenderFailed, err)
		}
		return o.fail(started, report, err)
	}

	o.transition(Succeeded)
	o.logger.Info("model written", zap.String("path", outcome.ModelPath))
	return Result{
		State:     Succeeded,
		ModelPath: outcome.ModelPath,
		Report:    report,
		Elapsed:   time.Since(started),
	}
}

func (o *Orchestrator) abort(started time.Time, report *validate.Report, err error) Result {
	o.transition(Aborted)
	o.logError(err)
	return Result{State: Aborted, Report: report, Err: err, Elapsed: time.Since(started)}
}

func (o *Orchestrator) fail(started time.Time, report *validate.Report, err error) Result {
	o.transition(Failed)
	o.logError(err)
	return Result{State: Failed, Report: report, Err: err, Elapsed: time.Since(started)}
}

func (o *Orchestrator) logError(err error) {
	o.logger.Error(err.Error(), zap.String("kind", apperr.KindOf(err)))
}

func (o *Orchestrator) transition(s State) {
	if o.state != s {
		o.logger.Debug("state", zap.Stringer("from", o.state), zap.Stringer("to", s))
	}
	o.state = s
	if o.onState != nil {
		o.onState(s)
	}
}

func checkInputDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", apperr.ErrInvalidInput, dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", apperr.ErrInvalidInput, dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", apperr.ErrInvalidInput, dir)
	}
	return abs, nil
}

// prepareOutput resolves path and makes sure its parent directory exists,
// creating intermediate directories as needed.
func prepareOutput(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: output file is empty", apperr.ErrInvalidOutputLocation)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", apperr.ErrInvalidOutputLocation, path, err)
	}

	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", apperr.ErrInvalidOutputLocation, path)
	}

	parent := filepath.Dir(abs)
	info, err := os.Stat(parent)
	switch {
	case err == nil && !info.IsDir():
		return "", fmt.Errorf("%w: %s is not a directory", apperr.ErrInvalidOutputLocation, parent)
	case err == nil:
		return abs, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("%w: %s: %v", apperr.ErrInvalidOutputLocation, parent, err)
	}

	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", apperr.ErrInvalidOutputLocation, parent, err)
	}
	return abs, nil
}
