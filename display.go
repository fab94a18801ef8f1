package cartoonify

import (
	"fmt"
	"image"

	"github.com/wbrown/cartoonify/imageutil"
)

// Display bounds for thumbnails.
const (
	MaxDisplayWidth  = 960
	MaxDisplayHeight = 540
)

// DisplaySize is the size of the thumbnails of one run.
type DisplaySize struct {
	Width, Height int
}

func (d DisplaySize) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// ComputeDisplaySize fits width×height into maxWidth×maxHeight keeping
// the aspect ratio. Images that already fit are never enlarged.
// Otherwise the dimension that overflows its bound the most is set to
// that bound and the other is scaled and truncated, with a minimum of 1.
func ComputeDisplaySize(width, height, maxWidth, maxHeight int) DisplaySize {
	if width <= maxWidth && height <= maxHeight {
		return DisplaySize{Width: width, Height: height}
	}
	// width/maxWidth >= height/maxHeight, compared without division.
	if int64(width)*int64(maxHeight) >= int64(height)*int64(maxWidth) {
		return DisplaySize{
			Width:  maxWidth,
			Height: max(1, int(int64(height)*int64(maxWidth)/int64(width))),
		}
	}
	return DisplaySize{
		Width:  max(1, int(int64(width)*int64(maxHeight)/int64(height))),
		Height: maxHeight,
	}
}

// Scale computes the display size for set and returns a resized copy of
// each of its artifacts, in processing order. The full resolution
// artifacts are not modified.
func (p *Pipeline) Scale(set *ArtifactSet) (DisplaySize, []Artifact) {
	b := set.Original.Bounds()
	size := ComputeDisplaySize(b.Dx(), b.Dy(), p.MaxDisplayWidth, p.MaxDisplayHeight)

	artifacts := set.Artifacts()
	thumbs := make([]Artifact, len(artifacts))
	for i, a := range artifacts {
		thumbs[i] = Artifact{
			Label: a.Label,
			Image: scaleTo(a.Image, size, p.Interpolation),
		}
	}
	return size, thumbs
}

// scaleTo resizes img to size, or copies it when it already has that
// size so thumbnails never alias the full resolution artifacts.
func scaleTo(img image.Image, size DisplaySize, interp imageutil.Interpolation) image.Image {
	b := img.Bounds()
	if b.Dx() == size.Width && b.Dy() == size.Height {
		switch t := img.(type) {
		case *imageutil.GrayImage:
			return t.Clone()
		case *imageutil.RGBAImage:
			return t.Clone()
		}
	}
	return imageutil.ResizeImage(img, size.Width, size.Height, interp)
}
