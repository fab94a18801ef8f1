package cartoonify

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wbrown/cartoonify/imageutil"
)

// Pipeline converts images to cartoons. It holds configuration only, so
// one Pipeline may serve concurrent runs.
type Pipeline struct {
	Params           Params
	MaxDisplayWidth  int
	MaxDisplayHeight int
	Interpolation    imageutil.Interpolation
	Backend          Backend

	logger zerolog.Logger
}

// PipelineOption is a functional option for configuring a Pipeline.
type PipelineOption func(*Pipeline)

// NewPipeline creates a Pipeline with the given options.
// Default values: DefaultParams(), display bounds 960x540, bilinear
// thumbnails, the pure Go backend and a no-op logger.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		Params:           DefaultParams(),
		MaxDisplayWidth:  MaxDisplayWidth,
		MaxDisplayHeight: MaxDisplayHeight,
		Interpolation:    imageutil.InterpolationLinear,
		Backend:          GoBackend{},
		logger:           zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithParams sets the filter parameters.
func WithParams(params Params) PipelineOption {
	return func(p *Pipeline) {
		p.Params = params
	}
}

// WithDisplayBounds sets the maximum thumbnail size.
func WithDisplayBounds(width, height int) PipelineOption {
	return func(p *Pipeline) {
		p.MaxDisplayWidth = width
		p.MaxDisplayHeight = height
	}
}

// WithInterpolation sets the resampling used for thumbnails.
func WithInterpolation(interp imageutil.Interpolation) PipelineOption {
	return func(p *Pipeline) {
		p.Interpolation = interp
	}
}

// WithBackend sets the filter backend.
func WithBackend(b Backend) PipelineOption {
	return func(p *Pipeline) {
		p.Backend = b
	}
}

// WithLogger sets the logger used for stage and run events.
func WithLogger(logger zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// Logger returns the pipeline's logger.
func (p *Pipeline) Logger() zerolog.Logger {
	return p.logger
}

// RunFile loads path and runs the pipeline on it. A file that cannot be
// decoded yields an *UnreadableImageError.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	original, err := LoadImage(path)
	if err != nil {
		p.logger.Error().Err(err).Str("path", path).Msg("load failed")
		return nil, err
	}
	p.logger.Debug().
		Str("path", path).
		Int("width", original.Width()).
		Int("height", original.Height()).
		Dur("elapsed", time.Since(start)).
		Msg("image loaded")

	res, err := p.Run(ctx, original)
	if err != nil {
		return nil, err
	}
	res.Timings = append([]StageTiming{{Stage: StageLoad, Elapsed: time.Since(start) - res.Elapsed}}, res.Timings...)
	return res, nil
}

// Run turns original into a cartoon and returns all six artifacts with
// their thumbnails. The edge mask and the colour-flattened image are
// computed concurrently since both only read original.
//
// Either every stage succeeds or Run returns a nil Result and an error:
// a *ProcessingError naming the failed stage (wrapping ctx.Err() when
// the context ends first).
func (p *Pipeline) Run(ctx context.Context, original *imageutil.RGBAImage) (*Result, error) {
	res, err := p.run(ctx, original)
	if err != nil {
		var pe *ProcessingError
		if errors.As(err, &pe) {
			p.logger.Error().Err(pe.Err).Stringer("stage", pe.Stage).Msg("pipeline failed")
		} else {
			p.logger.Error().Err(err).Msg("pipeline failed")
		}
		return nil, err
	}

	p.logger.Info().
		Str("backend", res.Backend).
		Int("width", original.Width()).
		Int("height", original.Height()).
		Stringer("display", res.DisplaySize).
		Dur("elapsed", res.Elapsed).
		Msg("cartoon complete")
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, original *imageutil.RGBAImage) (*Result, error) {
	start := time.Now()

	if err := p.Params.Validate(); err != nil {
		return nil, err
	}
	if p.MaxDisplayWidth < 1 || p.MaxDisplayHeight < 1 {
		return nil, &ProcessingError{Stage: StageScale,
			Err: fmt.Errorf("display bounds must be positive, got %dx%d", p.MaxDisplayWidth, p.MaxDisplayHeight)}
	}
	backend := p.Backend
	if backend == nil {
		backend = GoBackend{}
	}
	if original == nil || original.RGBA == nil {
		return nil, &ProcessingError{Stage: StageGrayscale, Err: errors.New("no input image")}
	}
	if original.Width() <= 0 || original.Height() <= 0 {
		return nil, &ProcessingError{Stage: StageGrayscale, Err: imageutil.ErrEmptyImage}
	}

	size := original.Bounds().Size()
	set := &ArtifactSet{Original: original}
	var (
		edgeTimings []StageTiming
		flatTiming  StageTiming
		edgeErr     error
		flatErr     error
		wg          sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		edgeTimings, edgeErr = p.extractEdges(ctx, backend, set, size)
	}()
	go func() {
		defer wg.Done()
		var elapsed time.Duration
		set.ColorFlattened, elapsed, flatErr = runStage(ctx, p, StageBilateralFilter, size,
			func() (*imageutil.RGBAImage, error) {
				return backend.BilateralFilter(original, p.Params.BilateralDiameter,
					p.Params.BilateralSigmaColor, p.Params.BilateralSigmaSpace)
			})
		flatTiming = StageTiming{Stage: StageBilateralFilter, Elapsed: elapsed}
	}()
	wg.Wait()

	if edgeErr != nil {
		return nil, edgeErr
	}
	if flatErr != nil {
		return nil, flatErr
	}

	cartoon, compositeElapsed, err := runStage(ctx, p, StageComposite, size,
		func() (*imageutil.RGBAImage, error) {
			return imageutil.BitwiseAndMask(set.ColorFlattened, set.EdgeMask), nil
		})
	if err != nil {
		return nil, err
	}
	set.Cartoon = cartoon

	if err := ctx.Err(); err != nil {
		return nil, &ProcessingError{Stage: StageScale, Err: err}
	}
	scaleStart := time.Now()
	display, thumbs, err := p.scale(set)
	if err != nil {
		return nil, err
	}

	timings := append(edgeTimings,
		flatTiming,
		StageTiming{Stage: StageComposite, Elapsed: compositeElapsed},
		StageTiming{Stage: StageScale, Elapsed: time.Since(scaleStart)},
	)

	return &Result{
		Artifacts:   set,
		DisplaySize: display,
		Thumbnails:  thumbs,
		Timings:     timings,
		Backend:     backend.Name(),
		Elapsed:     time.Since(start),
	}, nil
}

// extractEdges fills Grayscale, SmoothGray and EdgeMask of set.
func (p *Pipeline) extractEdges(ctx context.Context, backend Backend, set *ArtifactSet, size image.Point) ([]StageTiming, error) {
	timings := make([]StageTiming, 0, 3)

	gray, elapsed, err := runStage(ctx, p, StageGrayscale, size,
		func() (*imageutil.GrayImage, error) {
			return backend.Grayscale(set.Original)
		})
	if err != nil {
		return nil, err
	}
	timings = append(timings, StageTiming{StageGrayscale, elapsed})

	smooth, elapsed, err := runStage(ctx, p, StageMedianBlur, size,
		func() (*imageutil.GrayImage, error) {
			return backend.MedianBlur(gray, p.Params.MedianKernel)
		})
	if err != nil {
		return nil, err
	}
	timings = append(timings, StageTiming{StageMedianBlur, elapsed})

	mask, elapsed, err := runStage(ctx, p, StageAdaptiveThreshold, size,
		func() (*imageutil.GrayImage, error) {
			return backend.AdaptiveThreshold(smooth, p.Params.ThresholdBlockSize, p.Params.ThresholdOffset)
		})
	if err != nil {
		return nil, err
	}
	timings = append(timings, StageTiming{StageAdaptiveThreshold, elapsed})

	set.Grayscale, set.SmoothGray, set.EdgeMask = gray, smooth, mask
	return timings, nil
}

// scale produces the thumbnails and checks their size.
func (p *Pipeline) scale(set *ArtifactSet) (display DisplaySize, thumbs []Artifact, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ProcessingError{Stage: StageScale, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	display, thumbs = p.Scale(set)
	for _, t := range thumbs {
		if b := t.Image.Bounds(); b.Dx() != display.Width || b.Dy() != display.Height {
			return display, nil, &ProcessingError{Stage: StageScale,
				Err: fmt.Errorf("%s thumbnail is %dx%d, want %s", t.Label, b.Dx(), b.Dy(), display)}
		}
	}
	return display, thumbs, nil
}

// runStage runs fn as stage s. It refuses to start once ctx is done,
// turns panics and errors into *ProcessingError, and rejects outputs
// that are missing or not of the given size.
func runStage[T image.Image](ctx context.Context, p *Pipeline, s Stage, size image.Point, fn func() (T, error)) (out T, elapsed time.Duration, err error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, 0, &ProcessingError{Stage: s, Err: err}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, elapsed, err = zero, 0, &ProcessingError{Stage: s, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	out, err = fn()
	if err != nil {
		return zero, 0, stageError(s, err)
	}
	// A nil pointer output panics here and is reported by the recover.
	if got := out.Bounds().Size(); got != size {
		return zero, 0, &ProcessingError{Stage: s,
			Err: fmt.Errorf("output is %dx%d, want %dx%d", got.X, got.Y, size.X, size.Y)}
	}
	elapsed = time.Since(start)

	p.logger.Debug().
		Stringer("stage", s).
		Int("width", size.X).
		Int("height", size.Y).
		Dur("elapsed", elapsed).
		Msg("stage complete")
	return out, elapsed, nil
}
