package imageutil

// Luminance weights, in thousandths, used by ToGrayscale. These are the
// BT.601 coefficients (0.299, 0.587, 0.114) that OpenCV's RGB2GRAY uses.
const (
	LumaR = 299
	LumaG = 587
	LumaB = 114
)

// Luma returns the BT.601 luminance of an RGB triple, rounded half up:
// (299*R + 587*G + 114*B + 500) / 1000.
func Luma(r, g, b uint8) uint8 {
	return uint8((LumaR*int(r) + LumaG*int(g) + LumaB*int(b) + 500) / 1000)
}

// ToGrayscale converts an RGBA image to a single-channel luminance image
// using Luma.
func ToGrayscale(img *RGBAImage) *GrayImage {
	width, height := img.Width(), img.Height()
	gray := NewGrayImage(width, height)

	parallelRows(height, func(y int) {
		src := img.Pix[y*img.Stride : y*img.Stride+width*4]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for x := 0; x < width; x++ {
			p := src[x*4 : x*4+3 : x*4+3]
			dst[x] = Luma(p[0], p[1], p[2])
		}
	})

	return gray
}

// GrayscaleToRGBA broadcasts a grayscale image to three equal channels.
func GrayscaleToRGBA(gray *GrayImage) *RGBAImage {
	width, height := gray.Width(), gray.Height()
	rgba := NewRGBAImage(width, height)

	parallelRows(height, func(y int) {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		dst := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
		for x, v := range src {
			dst[x*4] = v
			dst[x*4+1] = v
			dst[x*4+2] = v
		}
	})

	return rgba
}
