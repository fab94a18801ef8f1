package imageutil

import "math"

// AdaptiveThresholdMean binarizes img against a local reference. For
// each pixel the mean of its blockSize×blockSize neighbourhood is taken
// (see BoxMeanGray) and the output is 255 when
//
//	src > mean - ceil(c)
//
// and 0 otherwise, matching OpenCV's ADAPTIVE_THRESH_MEAN_C with
// THRESH_BINARY. blockSize must be odd. The output only ever holds 0
// or 255.
func AdaptiveThresholdMean(img *GrayImage, blockSize int, c float64) *GrayImage {
	width, height := img.Width(), img.Height()
	dst := NewGrayImage(width, height)
	mean := BoxMeanGray(img, blockSize/2)
	delta := int(math.Ceil(c))

	parallelRows(height, func(y int) {
		src := img.Pix[y*img.Stride : y*img.Stride+width]
		ref := mean.Pix[y*mean.Stride : y*mean.Stride+width]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+width]
		for x := 0; x < width; x++ {
			if int(src[x]) > int(ref[x])-delta {
				out[x] = 255
			} else {
				out[x] = 0
			}
		}
	})

	return dst
}

// BoxMeanGray returns the mean of every (2r+1)×(2r+1) neighbourhood,
// computed in integers and rounded half up. Neighbours outside the
// image take the value of the nearest edge pixel.
func BoxMeanGray(img *GrayImage, r int) *GrayImage {
	width, height := img.Width(), img.Height()
	dst := NewGrayImage(width, height)
	size := 2*r + 1
	area := size * size

	rowSums := boxRowSums(img, r)

	parallelRows(height, func(y int) {
		out := dst.Pix[y*dst.Stride : y*dst.Stride+width]
		for x := 0; x < width; x++ {
			var sum int
			for dy := -r; dy <= r; dy++ {
				sy := clampInt(y+dy, 0, height-1)
				sum += int(rowSums[sy*width+x])
			}
			out[x] = uint8((sum + area/2) / area)
		}
	})

	return dst
}

// boxRowSums returns, for every pixel, the sum of the 2r+1 pixels
// centred on it in its own row, with replicated borders.
func boxRowSums(img *GrayImage, r int) []int32 {
	width, height := img.Width(), img.Height()
	sums := make([]int32, width*height)

	parallelRows(height, func(y int) {
		src := img.Pix[y*img.Stride : y*img.Stride+width]
		out := sums[y*width : (y+1)*width]

		var sum int32
		for dx := -r; dx <= r; dx++ {
			sum += int32(src[clampInt(dx, 0, width-1)])
		}
		out[0] = sum
		for x := 1; x < width; x++ {
			sum -= int32(src[clampInt(x-r-1, 0, width-1)])
			sum += int32(src[clampInt(x+r, 0, width-1)])
			out[x] = sum
		}
	})

	return sums
}
