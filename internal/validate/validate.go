// Package validate checks an image corpus against count and resolution
// policy before any render work is committed.
package validate

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"photomesh/internal/apperr"
	"photomesh/internal/corpus"
	"photomesh/pkg/imgutil"
)

// Policy is the per-run validation configuration.
type Policy struct {
	MinImageCount int
	MinShortSide  int
	Strict        bool
}

// Check rejects non-positive thresholds.
func (p Policy) Check() error {
	if p.MinImageCount <= 0 {
		return fmt.Errorf("%w: minimum image count must be positive, got %d", apperr.ErrInvalidConfiguration, p.MinImageCount)
	}
	if p.MinShortSide <= 0 {
		return fmt.Errorf("%w: minimum short side must be positive, got %d", apperr.ErrInvalidConfiguration, p.MinShortSide)
	}
	return nil
}

// Report summarises one validation pass. Checked+Unreadable == Total.
type Report struct {
	Total         int
	Checked       int
	Unreadable    int
	LowResolution int
	Warnings      []string
}

// MeasureFunc returns an image's dimensions, or false when it cannot be read.
type MeasureFunc func(path string) (imgutil.Dimensions, bool)

// Validator runs Policy over a corpus, probing files concurrently.
type Validator struct {
	logger  *zap.Logger
	measure MeasureFunc
	workers int
}

// Option customises a Validator.
type Option func(*Validator)

// WithMeasure replaces the dimension reader.
func WithMeasure(measure MeasureFunc) Option {
	return func(v *Validator) { v.measure = measure }
}

// WithWorkers bounds the number of files measured at once.
func WithWorkers(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.workers = n
		}
	}
}

func New(logger *zap.Logger, opts ...Option) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Validator{
		logger:  logger.With(zap.String("component", "validate")),
		measure: imgutil.Measure,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateDir checks the policy, scans dir, then validates what it found.
func (v *Validator) ValidateDir(ctx context.Context, dir string, policy Policy) (Report, error) {
	if err := policy.Check(); err != nil {
		return Report{}, err
	}
	files, err := corpus.Scan(dir)
	if err != nil {
		return Report{}, err
	}
	return v.Validate(ctx, files, policy)
}

// Validate measures every file and builds the report. Warnings are logged
// before a strict-mode failure is returned, so they are never lost.
func (v *Validator) Validate(ctx context.Context, files []corpus.ImagePath, policy Policy) (Report, error) {
	if err := policy.Check(); err != nil {
		return Report{}, err
	}
	if len(files) == 0 {
		return Report{}, apperr.ErrEmptyCorpus
	}

	dims := make([]*imgutil.Dimensions, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if d, ok := v.measure(f.Path); ok {
				dims[i] = &d
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Total: len(files)}
	for i, d := range dims {
		if d == nil {
			report.Unreadable++
			v.logger.Debug("unreadable image", zap.String("file", files[i].Path))
			continue
		}
		report.Checked++
		if d.ShortSide() < float64(policy.MinShortSide) {
			report.LowResolution++
			v.logger.Debug("low resolution image",
				zap.String("file", files[i].Path),
				zap.Float64("width", d.Width),
				zap.Float64("height", d.Height),
			)
		}
	}

	if report.Total < policy.MinImageCount {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"only %d images found, below the recommended minimum of %d", report.Total, policy.MinImageCount))
	}
	if report.Unreadable > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d images unreadable", report.Unreadable))
	}
	if report.LowResolution > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"%d images below minimum short side of %dpx", report.LowResolution, policy.MinShortSide))
	}

	v.logger.Info(fmt.Sprintf("found %d images", report.Total))
	for _, w := range report.Warnings {
		v.logger.Warn(w)
	}

	if policy.Strict && len(report.Warnings) > 0 {
		return report, fmt.Errorf("%w: %d warnings in strict mode", apperr.ErrValidationFailed, len(report.Warnings))
	}
	return report, nil
}
