package cartoonify

import (
	"testing"

	"github.com/wbrown/cartoonify/imageutil"
)

func TestComputeDisplaySize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          DisplaySize
	}{
		{"full HD", 1920, 1080, DisplaySize{960, 540}},
		{"fits", 500, 400, DisplaySize{500, 400}},
		{"exact bounds", 960, 540, DisplaySize{960, 540}},
		{"tiny", 1, 1, DisplaySize{1, 1}},
		{"one pixel too wide", 961, 540, DisplaySize{960, 539}},
		{"portrait", 1000, 2000, DisplaySize{270, 540}},
		{"panorama", 3000, 100, DisplaySize{960, 32}},
		{"needle", 100, 5000, DisplaySize{10, 540}},
		{"line", 5000, 1, DisplaySize{960, 1}},
		// Wider than tall, but the height overflows more.
		{"landscape height bound", 1000, 600, DisplaySize{900, 540}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDisplaySize(tt.width, tt.height, MaxDisplayWidth, MaxDisplayHeight)
			if got != tt.want {
				t.Errorf("ComputeDisplaySize(%d, %d) = %v, want %v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestComputeDisplaySizeProperties(t *testing.T) {
	sizes := []int{1, 2, 7, 100, 539, 540, 541, 959, 960, 961, 1080, 1920, 4000, 12345}
	for _, w := range sizes {
		for _, h := range sizes {
			d := ComputeDisplaySize(w, h, MaxDisplayWidth, MaxDisplayHeight)

			if d.Width < 1 || d.Height < 1 {
				t.Fatalf("%dx%d -> %v: empty display size", w, h, d)
			}
			if d.Width > MaxDisplayWidth || d.Height > MaxDisplayHeight {
				t.Errorf("%dx%d -> %v exceeds bounds", w, h, d)
			}
			if d.Width > w || d.Height > h {
				t.Errorf("%dx%d -> %v upscales", w, h, d)
			}
			// Aspect ratio is kept up to one unit of truncation in the
			// scaled dimension, unless that dimension was clamped to 1.
			if d.Height > 1 && d.Width > 1 {
				diff := int64(d.Width)*int64(h) - int64(d.Height)*int64(w)
				if diff < 0 {
					diff = -diff
				}
				if diff >= int64(max(w, h)) {
					t.Errorf("%dx%d -> %v distorts the aspect ratio (diff %d)", w, h, d, diff)
				}
			}
		}
	}
}

func TestScaleCustomBounds(t *testing.T) {
	t.Parallel()

	p := NewPipeline(WithDisplayBounds(40, 30), WithInterpolation(imageutil.InterpolationNearest))
	img := imageutil.CreateCheckerboardImage(160, 60, 10)
	res := runPipeline(t, img, WithDisplayBounds(40, 30), WithInterpolation(imageutil.InterpolationNearest))

	if res.DisplaySize != (DisplaySize{40, 15}) {
		t.Fatalf("DisplaySize = %v, want 40x15", res.DisplaySize)
	}
	size, thumbs := p.Scale(res.Artifacts)
	if size != res.DisplaySize {
		t.Errorf("Scale size = %v, want %v", size, res.DisplaySize)
	}
	for _, th := range thumbs {
		if b := th.Image.Bounds(); b.Dx() != 40 || b.Dy() != 15 {
			t.Errorf("%s thumbnail is %dx%d, want 40x15", th.Label, b.Dx(), b.Dy())
		}
	}
	// Nearest neighbour keeps the mask thumbnail binary.
	assertBinary(t, thumbs[3].Image.(*imageutil.GrayImage))
	if res.Artifacts.Original.Width() != 160 {
		t.Error("scaling changed the full resolution original")
	}
}

func TestDisplaySizeString(t *testing.T) {
	if got := (DisplaySize{960, 540}).String(); got != "960x540" {
		t.Errorf("String() = %q", got)
	}
}
