package imageutil

import "math"

// BilateralFilter smooths img while preserving strong edges. It follows
// OpenCV's bilateralFilter for 8-bit colour images:
//
//   - the support is the disc of radius diameter/2 (or 1.5*sigmaSpace
//     when diameter <= 0), at least 1;
//   - a neighbour at offset (dx, dy) weighs exp(-(dx²+dy²)/(2σs²)) *
//     exp(-L²/(2σc²)), where L = |ΔR|+|ΔG|+|ΔB| against the centre;
//   - each output channel is round(Σ w·v / Σ w).
//
// Neighbours outside the image take the value of the nearest edge
// pixel. Non-positive sigmas are treated as 1.
func BilateralFilter(img *RGBAImage, diameter int, sigmaColor, sigmaSpace float64) *RGBAImage {
	width, height := img.Width(), img.Height()
	dst := NewRGBAImage(width, height)

	if sigmaColor <= 0 {
		sigmaColor = 1
	}
	if sigmaSpace <= 0 {
		sigmaSpace = 1
	}
	var radius int
	if diameter <= 0 {
		radius = int(math.Round(sigmaSpace * 1.5))
	} else {
		radius = diameter / 2
	}
	if radius < 1 {
		radius = 1
	}

	colorCoeff := -0.5 / (sigmaColor * sigmaColor)
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)

	colorWeight := make([]float64, 3*256)
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	padded, pstride := padRGB(img, radius)

	var (
		offsets      []int
		spaceWeights []float64
	)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := dx*dx + dy*dy
			if d2 > radius*radius {
				continue
			}
			offsets = append(offsets, dy*pstride+dx*3)
			spaceWeights = append(spaceWeights, math.Exp(float64(d2)*spaceCoeff))
		}
	}

	parallelRows(height, func(y int) {
		out := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x := 0; x < width; x++ {
			c := (y+radius)*pstride + (x+radius)*3
			r0, g0, b0 := int(padded[c]), int(padded[c+1]), int(padded[c+2])

			var sumR, sumG, sumB, wsum float64
			for k, off := range offsets {
				p := padded[c+off : c+off+3 : c+off+3]
				r, g, b := int(p[0]), int(p[1]), int(p[2])
				w := spaceWeights[k] * colorWeight[absInt(r-r0)+absInt(g-g0)+absInt(b-b0)]
				sumR += w * float64(r)
				sumG += w * float64(g)
				sumB += w * float64(b)
				wsum += w
			}

			o := out[x*4 : x*4+3 : x*4+3]
			o[0] = clampUint8(sumR / wsum)
			o[1] = clampUint8(sumG / wsum)
			o[2] = clampUint8(sumB / wsum)
		}
	})

	return dst
}

// padRGB copies the colour channels of img into a tightly packed RGB
// buffer with a border of r replicated pixels on every side. It returns
// the buffer and its row stride in bytes.
func padRGB(img *RGBAImage, r int) ([]uint8, int) {
	width, height := img.Width(), img.Height()
	pw := width + 2*r
	stride := pw * 3
	buf := make([]uint8, stride*(height+2*r))

	parallelRows(height+2*r, func(py int) {
		sy := clampInt(py-r, 0, height-1)
		src := img.Pix[sy*img.Stride : sy*img.Stride+width*4]
		row := buf[py*stride : (py+1)*stride]
		for px := 0; px < pw; px++ {
			sx := clampInt(px-r, 0, width-1)
			copy(row[px*3:px*3+3], src[sx*4:sx*4+3])
		}
	})

	return buf, stride
}

// clampUint8 clamps a float64 to [0, 255] and rounds it to uint8.
func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
