package cartoonify

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/wbrown/cartoonify/imageutil"
)

// Report summarises a run.
type Report struct {
	Width, Height int
	DisplaySize   DisplaySize
	Backend       string

	// EdgeCoverage is the fraction of EdgeMask pixels that are edges.
	EdgeCoverage float64

	// LumaMean and LumaStdDev describe the Grayscale artifact.
	LumaMean   float64
	LumaStdDev float64

	// SmoothRMSE is the RMS difference between Grayscale and SmoothGray.
	SmoothRMSE float64

	// FlattenRMSE is the per-channel RMS difference between Original and
	// ColorFlattened, a measure of how much colour was flattened.
	FlattenRMSE float64

	// LumaCorrelation is the Pearson correlation between the luminance
	// of Original and of Cartoon. It is 0 when either is constant.
	LumaCorrelation float64

	Timings []StageTiming
	Elapsed time.Duration
}

// NewReport computes the statistics of res.
func NewReport(res *Result) *Report {
	set := res.Artifacts
	r := &Report{
		Width:       set.Original.Width(),
		Height:      set.Original.Height(),
		DisplaySize: res.DisplaySize,
		Backend:     res.Backend,
		Timings:     res.Timings,
		Elapsed:     res.Elapsed,
	}

	gray := grayValues(set.Grayscale)
	r.LumaMean, r.LumaStdDev = stat.PopMeanStdDev(gray, nil)
	r.SmoothRMSE = rmse(gray, grayValues(set.SmoothGray))
	r.FlattenRMSE = rmse(rgbValues(set.Original), rgbValues(set.ColorFlattened))

	edges := imageutil.CountGray(set.EdgeMask, 0)
	r.EdgeCoverage = float64(edges) / float64(r.Width*r.Height)

	cartoonLuma := grayValues(imageutil.ToGrayscale(set.Cartoon))
	if c := stat.Correlation(gray, cartoonLuma, nil); !math.IsNaN(c) {
		r.LumaCorrelation = c
	}

	return r
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r *Report) MarshalZerologObject(e *zerolog.Event) {
	e.Int("width", r.Width).
		Int("height", r.Height).
		Stringer("display", r.DisplaySize).
		Str("backend", r.Backend).
		Float64("edge_coverage", r.EdgeCoverage).
		Float64("luma_mean", r.LumaMean).
		Float64("luma_stddev", r.LumaStdDev).
		Float64("smooth_rmse", r.SmoothRMSE).
		Float64("flatten_rmse", r.FlattenRMSE).
		Float64("luma_correlation", r.LumaCorrelation).
		Dur("elapsed", r.Elapsed)
	for _, t := range r.Timings {
		e.Dur(t.Stage.String(), t.Elapsed)
	}
}

func grayValues(img *imageutil.GrayImage) []float64 {
	w, h := img.Width(), img.Height()
	values := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for _, v := range img.Pix[y*img.Stride : y*img.Stride+w] {
			values = append(values, float64(v))
		}
	}
	return values
}

func rgbValues(img *imageutil.RGBAImage) []float64 {
	w, h := img.Width(), img.Height()
	values := make([]float64, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			values = append(values, float64(row[x]), float64(row[x+1]), float64(row[x+2]))
		}
	}
	return values
}

// rmse returns the root mean square difference of two equally long
// series.
func rmse(a, b []float64) float64 {
	sq := make([]float64, len(a))
	for i := range a {
		d := a[i] - b[i]
		sq[i] = d * d
	}
	return math.Sqrt(stat.Mean(sq, nil))
}
