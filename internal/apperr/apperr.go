// Package apperr holds the error taxonomy shared by every stage of a run.
// Stages wrap one of the sentinels with context; callers classify with
// errors.Is or KindOf.
package apperr

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input folder")
	ErrInvalidOutputLocation = errors.New("invalid output location")
	ErrEmptyCorpus           = errors.New("no supported images found")
	ErrInvalidConfiguration  = errors.New("invalid configuration")
	ErrValidationFailed      = errors.New("input validation failed")
	ErrInvalidDetailLevel    = errors.New("invalid detail level")
	ErrEngineUnsupported     = errors.New("render engine unsupported on this host")
	ErrRenderFailed          = errors.New("render failed")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidInput, "InvalidInput"},
	{ErrInvalidOutputLocation, "InvalidOutputLocation"},
	{ErrEmptyCorpus, "EmptyCorpus"},
	{ErrInvalidConfiguration, "InvalidConfiguration"},
	{ErrValidationFailed, "ValidationFailed"},
	{ErrInvalidDetailLevel, "InvalidDetailLevel"},
	{ErrEngineUnsupported, "EngineUnsupported"},
	{ErrRenderFailed, "RenderFailed"},
}

// KindOf names the taxonomy entry err belongs to, or "Unknown".
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}
