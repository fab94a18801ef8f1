package imageutil

import (
	"math"
	"sort"
	"testing"
)

// naiveMedian is a direct sort-based reference for MedianBlurGray.
func naiveMedian(img *GrayImage, ksize int) *GrayImage {
	w, h := img.Width(), img.Height()
	r := ksize / 2
	dst := NewGrayImage(w, h)
	window := make([]int, 0, ksize*ksize)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			window = window[:0]
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					window = append(window, int(img.GetGray(clampInt(x+dx, 0, w-1), clampInt(y+dy, 0, h-1))))
				}
			}
			sort.Ints(window)
			dst.SetGrayValue(x, y, uint8(window[len(window)/2]))
		}
	}
	return dst
}

// naiveAdaptive is a direct reference for AdaptiveThresholdMean.
func naiveAdaptive(img *GrayImage, blockSize, c int) *GrayImage {
	w, h := img.Width(), img.Height()
	r := blockSize / 2
	area := blockSize * blockSize
	dst := NewGrayImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					sum += int(img.GetGray(clampInt(x+dx, 0, w-1), clampInt(y+dy, 0, h-1)))
				}
			}
			mean := (sum + area/2) / area
			if int(img.GetGray(x, y)) > mean-c {
				dst.SetGrayValue(x, y, 255)
			}
		}
	}
	return dst
}

// naiveBilateral evaluates the bilateral sum in the same order as
// BilateralFilter but with explicit coordinate clamping.
func naiveBilateral(img *RGBAImage, diameter int, sigmaColor, sigmaSpace float64) *RGBAImage {
	w, h := img.Width(), img.Height()
	r := diameter / 2
	dst := NewRGBAImage(w, h)
	cc := -0.5 / (sigmaColor * sigmaColor)
	sc := -0.5 / (sigmaSpace * sigmaSpace)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c0 := img.GetRGB(x, y)
			var sr, sg, sb, ws float64
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					d2 := dx*dx + dy*dy
					if d2 > r*r {
						continue
					}
					c := img.GetRGB(clampInt(x+dx, 0, w-1), clampInt(y+dy, 0, h-1))
					l := absInt(int(c.R)-int(c0.R)) + absInt(int(c.G)-int(c0.G)) + absInt(int(c.B)-int(c0.B))
					wt := math.Exp(float64(d2)*sc) * math.Exp(float64(l*l)*cc)
					sr += wt * float64(c.R)
					sg += wt * float64(c.G)
					sb += wt * float64(c.B)
					ws += wt
				}
			}
			dst.SetRGB(x, y, RGB{clampUint8(sr / ws), clampUint8(sg / ws), clampUint8(sb / ws)})
		}
	}
	return dst
}

func grayEqual(t *testing.T, name string, got, want *GrayImage) {
	t.Helper()
	if !SameSize(got, want) {
		t.Fatalf("%s: size %dx%d, want %dx%d", name, got.Width(), got.Height(), want.Width(), want.Height())
	}
	for y := 0; y < want.Height(); y++ {
		for x := 0; x < want.Width(); x++ {
			if g, w := got.GetGray(x, y), want.GetGray(x, y); g != w {
				t.Fatalf("%s: pixel (%d,%d) = %d, want %d", name, x, y, g, w)
			}
		}
	}
}

func TestMedianBlurMatchesReference(t *testing.T) {
	// 64 rows spread over several workers; odd width exercises borders.
	img := ToGrayscale(CreateNoiseImage(37, 64, 1))
	grayEqual(t, "median 5", MedianBlurGray(img, 5), naiveMedian(img, 5))
	grayEqual(t, "median 3", MedianBlurGray(img, 3), naiveMedian(img, 3))
}

func TestMedianBlurTinyImage(t *testing.T) {
	// Windows wider than the image replicate the border repeatedly.
	img := ToGrayscale(CreateNoiseImage(2, 3, 7))
	grayEqual(t, "median 5 on 2x3", MedianBlurGray(img, 5), naiveMedian(img, 5))
}

func TestMedianBlurRemovesSaltAndPepper(t *testing.T) {
	img := CreateSaltAndPepperGray(50, 50, 100, 0.05, 3)
	smooth := MedianBlurGray(img, 5)
	if n := CountGray(smooth, 100); n < 50*50*99/100 {
		t.Errorf("Median filter should restore almost every pixel to 100, restored %d of %d", n, 50*50)
	}
}

func TestMedianBlurPreservesStepEdge(t *testing.T) {
	img := NewGrayImage(10, 10)
	for y := 0; y < 10; y++ {
		for x := 5; x < 10; x++ {
			img.SetGrayValue(x, y, 255)
		}
	}
	grayEqual(t, "step edge", MedianBlurGray(img, 5), img)
}

func TestMedianBlurSmallKernelCopies(t *testing.T) {
	img := ToGrayscale(CreateNoiseImage(8, 8, 2))
	out := MedianBlurGray(img, 1)
	grayEqual(t, "ksize 1", out, img)
	out.SetGrayValue(0, 0, img.GetGray(0, 0)+1)
	if out.GetGray(0, 0) == img.GetGray(0, 0) {
		t.Error("ksize 1 should return a copy, not the input")
	}
}

func TestAdaptiveThresholdMatchesReference(t *testing.T) {
	img := MedianBlurGray(ToGrayscale(CreateNoiseImage(41, 70, 5)), 5)
	grayEqual(t, "adaptive 9/9", AdaptiveThresholdMean(img, 9, 9), naiveAdaptive(img, 9, 9))
	grayEqual(t, "adaptive 3/2", AdaptiveThresholdMean(img, 3, 2), naiveAdaptive(img, 3, 2))
}

func TestAdaptiveThresholdIsBinary(t *testing.T) {
	inputs := map[string]*GrayImage{
		"noise": ToGrayscale(CreateNoiseImage(30, 30, 9)),
		"black": NewGrayImage(30, 30),
		"white": ToGrayscale(CreateSolidImage(30, 30, RGB{255, 255, 255})),
		"check": ToGrayscale(CreateCheckerboardImage(30, 30, 4)),
	}
	for name, img := range inputs {
		mask := AdaptiveThresholdMean(img, 9, 9)
		if n := CountGray(mask, 0) + CountGray(mask, 255); n != 30*30 {
			t.Errorf("%s: %d of %d pixels are binary", name, n, 30*30)
		}
	}
}

func TestAdaptiveThresholdUniformIsWhite(t *testing.T) {
	for _, v := range []uint8{0, 128, 255} {
		img := ToGrayscale(CreateSolidImage(20, 12, RGB{v, v, v}))
		mask := AdaptiveThresholdMean(img, 9, 9)
		if n := CountGray(mask, 255); n != 20*12 {
			t.Errorf("Uniform %d: expected all-white mask, got %d white pixels", v, n)
		}
	}
}

func TestAdaptiveThresholdSquareRing(t *testing.T) {
	img := ToGrayscale(CreateSquareImage(100, 100, 20, RGB{255, 255, 255}, RGB{}))
	mask := AdaptiveThresholdMean(img, 9, 9)

	// The square spans [40, 60). Its inner perimeter is dark, the
	// surrounding white and the square's flat interior are not.
	for _, p := range [][2]int{{41, 50}, {58, 50}, {50, 41}, {50, 58}} {
		if v := mask.GetGray(p[0], p[1]); v != 0 {
			t.Errorf("Expected edge at %v, got %d", p, v)
		}
	}
	for _, p := range [][2]int{{10, 10}, {38, 50}, {50, 50}, {99, 99}} {
		if v := mask.GetGray(p[0], p[1]); v != 255 {
			t.Errorf("Expected flat region at %v, got %d", p, v)
		}
	}
}

func TestBoxMeanGray(t *testing.T) {
	img := NewGrayImage(3, 1)
	img.Pix[0], img.Pix[1], img.Pix[2] = 0, 90, 180
	mean := BoxMeanGray(img, 1)
	// Replicated borders: rows are identical, so the mean is the
	// horizontal mean of the clamped triple.
	want := []uint8{30, 90, 150}
	for x, w := range want {
		if got := mean.GetGray(x, 0); got != w {
			t.Errorf("mean at %d = %d, want %d", x, got, w)
		}
	}
}

func TestBilateralMatchesReference(t *testing.T) {
	img := CreateNoiseImage(23, 40, 11)
	got := BilateralFilter(img, 9, 300, 300)
	want := naiveBilateral(img, 9, 300, 300)
	if d := CalculateMaxDiff(got, want); d != 0 {
		t.Errorf("Bilateral filter differs from reference by %d", d)
	}
}

func TestBilateralUniformUnchanged(t *testing.T) {
	img := CreateSolidImage(32, 20, RGB{128, 128, 128})
	out := BilateralFilter(img, 9, 300, 300)
	if d := CalculateMaxDiff(img, out); d != 0 {
		t.Errorf("Uniform image should pass through unchanged, max diff %d", d)
	}
	if out.RGBAAt(31, 19).A != 255 {
		t.Error("Bilateral output should be opaque")
	}
}

func TestBilateralPreservesStrongEdgeWithSmallColorSigma(t *testing.T) {
	img := CreateCheckerboardImage(40, 40, 10)
	out := BilateralFilter(img, 9, 10, 300)
	if d := CalculateMaxDiff(img, out); d != 0 {
		t.Errorf("Black/white edges should survive a small colour sigma, max diff %d", d)
	}
}

func TestBilateralSmoothsNoise(t *testing.T) {
	img := CreateNoiseImage(40, 40, 13)
	out := BilateralFilter(img, 9, 300, 300)

	variance := func(img *RGBAImage) float64 {
		var sum, sumSq float64
		n := float64(img.Width() * img.Height())
		for y := 0; y < img.Height(); y++ {
			for x := 0; x < img.Width(); x++ {
				v := float64(img.GetRGB(x, y).R)
				sum += v
				sumSq += v * v
			}
		}
		mean := sum / n
		return sumSq/n - mean*mean
	}

	if before, after := variance(img), variance(out); after >= before/2 {
		t.Errorf("Expected strong smoothing: variance %f -> %f", before, after)
	}
}

func TestBitwiseAndMask(t *testing.T) {
	img := CreateNoiseImage(16, 16, 17)
	mask := AdaptiveThresholdMean(ToGrayscale(img), 9, 9)

	got := BitwiseAndMask(img, mask)
	want := BitwiseAnd(img, GrayscaleToRGBA(mask))
	if d := CalculateMaxDiff(got, want); d != 0 {
		t.Errorf("BitwiseAndMask should equal BitwiseAnd with broadcast mask, diff %d", d)
	}

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := got.GetRGB(x, y)
			switch mask.GetGray(x, y) {
			case 255:
				if c != img.GetRGB(x, y) {
					t.Fatalf("(%d,%d): white mask should keep %v, got %v", x, y, img.GetRGB(x, y), c)
				}
			case 0:
				if c != (RGB{}) {
					t.Fatalf("(%d,%d): black mask should yield black, got %v", x, y, c)
				}
			}
		}
	}
}

func TestBitwiseAndPanicsOnSizeMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for mismatched sizes")
		}
	}()
	BitwiseAndMask(NewRGBAImage(4, 4), NewGrayImage(4, 5))
}

func TestParallelRowsDeterministic(t *testing.T) {
	img := CreateNoiseImage(50, 120, 19)

	prev := SetWorkers(1)
	defer SetWorkers(prev)
	serial := BilateralFilter(img, 9, 300, 300)

	SetWorkers(8)
	parallel := BilateralFilter(img, 9, 300, 300)

	if d := CalculateMaxDiff(serial, parallel); d != 0 {
		t.Errorf("Worker count should not change results, diff %d", d)
	}
}

func TestParallelRowsPropagatesPanic(t *testing.T) {
	prev := SetWorkers(4)
	defer SetWorkers(prev)

	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("Expected panic %q on caller, got %v", "boom", r)
		}
	}()
	parallelRows(128, func(y int) {
		if y == 100 {
			panic("boom")
		}
	})
}
