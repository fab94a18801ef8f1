package imageutil

import "fmt"

// BitwiseAnd returns the per-channel bitwise AND of two RGBA images of
// equal size. It panics if the sizes differ.
func BitwiseAnd(a, b *RGBAImage) *RGBAImage {
	mustSameSize(a.Width(), a.Height(), b.Width(), b.Height())
	width, height := a.Width(), a.Height()
	dst := NewRGBAImage(width, height)

	parallelRows(height, func(y int) {
		pa := a.Pix[y*a.Stride : y*a.Stride+width*4]
		pb := b.Pix[y*b.Stride : y*b.Stride+width*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for i := 0; i < width*4; i += 4 {
			out[i] = pa[i] & pb[i]
			out[i+1] = pa[i+1] & pb[i+1]
			out[i+2] = pa[i+2] & pb[i+2]
		}
	})

	return dst
}

// BitwiseAndMask is BitwiseAnd(img, GrayscaleToRGBA(mask)) without the
// intermediate image: every channel of img is ANDed with the mask value
// at the same position. For a binary mask this keeps img where the mask
// is 255 and yields black where it is 0. It panics if the sizes differ.
func BitwiseAndMask(img *RGBAImage, mask *GrayImage) *RGBAImage {
	mustSameSize(img.Width(), img.Height(), mask.Width(), mask.Height())
	width, height := img.Width(), img.Height()
	dst := NewRGBAImage(width, height)

	parallelRows(height, func(y int) {
		src := img.Pix[y*img.Stride : y*img.Stride+width*4]
		m := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x, v := range m {
			i := x * 4
			out[i] = src[i] & v
			out[i+1] = src[i+1] & v
			out[i+2] = src[i+2] & v
		}
	})

	return dst
}

func mustSameSize(w1, h1, w2, h2 int) {
	if w1 != w2 || h1 != h2 {
		panic(fmt.Sprintf("imageutil: size mismatch %dx%d vs %dx%d", w1, h1, w2, h2))
	}
}
