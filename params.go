package cartoonify

import "fmt"

// Filter constants of the cartoon effect.
const (
	DefaultMedianKernel        = 5
	DefaultThresholdBlockSize  = 9
	DefaultThresholdOffset     = 9.0
	DefaultBilateralDiameter   = 9
	DefaultBilateralSigmaColor = 300.0
	DefaultBilateralSigmaSpace = 300.0
)

// Params holds the numeric parameters of the filter stages.
type Params struct {
	// MedianKernel is the side of the square median window applied to
	// the grayscale image. Odd.
	MedianKernel int

	// ThresholdBlockSize is the side of the window whose mean is the
	// local reference of the adaptive threshold. Odd, at least 3.
	ThresholdBlockSize int

	// ThresholdOffset is subtracted from the local mean; pixels above
	// the result are flat (255), the rest are edges (0).
	ThresholdOffset float64

	// BilateralDiameter is the diameter of the bilateral support.
	BilateralDiameter int

	// BilateralSigmaColor and BilateralSigmaSpace control how fast the
	// bilateral weights fall off with colour and spatial distance.
	BilateralSigmaColor float64
	BilateralSigmaSpace float64
}

// DefaultParams returns the parameters of the classic cartoon effect:
// median 5, adaptive mean threshold 9/9, bilateral 9/300/300.
func DefaultParams() Params {
	return Params{
		MedianKernel:        DefaultMedianKernel,
		ThresholdBlockSize:  DefaultThresholdBlockSize,
		ThresholdOffset:     DefaultThresholdOffset,
		BilateralDiameter:   DefaultBilateralDiameter,
		BilateralSigmaColor: DefaultBilateralSigmaColor,
		BilateralSigmaSpace: DefaultBilateralSigmaSpace,
	}
}

// Validate checks every parameter and returns a *ProcessingError naming
// the stage of the first invalid one.
func (p Params) Validate() error {
	switch {
	case p.MedianKernel < 1 || p.MedianKernel%2 == 0:
		return &ProcessingError{Stage: StageMedianBlur,
			Err: fmt.Errorf("median kernel must be odd and positive, got %d", p.MedianKernel)}
	case p.ThresholdBlockSize < 3 || p.ThresholdBlockSize%2 == 0:
		return &ProcessingError{Stage: StageAdaptiveThreshold,
			Err: fmt.Errorf("threshold block size must be odd and at least 3, got %d", p.ThresholdBlockSize)}
	case p.BilateralDiameter < 1:
		return &ProcessingError{Stage: StageBilateralFilter,
			Err: fmt.Errorf("bilateral diameter must be positive, got %d", p.BilateralDiameter)}
	case p.BilateralSigmaColor <= 0 || p.BilateralSigmaSpace <= 0:
		return &ProcessingError{Stage: StageBilateralFilter,
			Err: fmt.Errorf("bilateral sigmas must be positive, got %g/%g", p.BilateralSigmaColor, p.BilateralSigmaSpace)}
	}
	return nil
}
