package cartoonify

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrUnreadableImage = errors.New("unreadable image")
	ErrIO              = errors.New("image i/o failed")
	ErrProcessing      = errors.New("processing failed")
)

// UnreadableImageError reports an input file that is missing, empty,
// corrupt or in an unsupported format. No artifacts are produced.
type UnreadableImageError struct {
	Path string
	Err  error
}

func (e *UnreadableImageError) Error() string {
	return fmt.Sprintf("cannot read image %q: %v", e.Path, e.Err)
}

func (e *UnreadableImageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUnreadableImage) true.
func (e *UnreadableImageError) Is(target error) bool { return target == ErrUnreadableImage }

// IOError reports a failure to write an image. The image being saved
// is left intact and can be saved again.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIO) true.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// ProcessingError reports a failure inside a pipeline stage. The whole
// run fails with it; no partial artifacts are returned.
type ProcessingError struct {
	Stage Stage
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrProcessing) true.
func (e *ProcessingError) Is(target error) bool { return target == ErrProcessing }

// stageError wraps err as a ProcessingError for stage s unless it
// already is one.
func stageError(s Stage, err error) error {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return err
	}
	return &ProcessingError{Stage: s, Err: err}
}
