// Package engine defines the contract of the external photogrammetry
// renderer and a process-backed implementation of it.
package engine

import (
	"context"

	"photomesh/internal/detail"
)

// Request describes one render invocation.
type Request struct {
	InputDir   string
	OutputFile string
	Detail     detail.Level
}

// Outcome is the terminal result of a render. Err is nil on success, in
// which case ModelPath names the produced model.
type Outcome struct {
	ModelPath string
	Err       error
}

// ProgressFunc receives fractional completion in [0, 1]. It may be called
// from a goroutine other than the one that started the render.
type ProgressFunc func(fraction float64)

// Engine renders a corpus into a model.
type Engine interface {
	// Supported reports whether the engine can run on this host.
	Supported() bool
	// Render starts the render and returns immediately. Exactly one Outcome
	// is delivered on the returned channel; progress calls stop before it.
	Render(ctx context.Context, req Request, onProgress ProgressFunc) (<-chan Outcome, error)
}
