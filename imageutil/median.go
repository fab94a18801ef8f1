package imageutil

// MedianBlurGray replaces every pixel with the median of its
// ksize×ksize neighbourhood. ksize must be odd; values below 3 return a
// copy. Neighbours outside the image take the value of the nearest edge
// pixel.
//
// Each row keeps a 256-bin histogram of the window that slides one
// column at a time, so the cost per pixel is O(ksize) rather than a
// sort of ksize² values.
func MedianBlurGray(img *GrayImage, ksize int) *GrayImage {
	width, height := img.Width(), img.Height()
	if ksize < 3 {
		return img.Clone()
	}
	dst := NewGrayImage(width, height)

	r := ksize / 2
	rank := ksize * ksize / 2

	parallelRows(height, func(y int) {
		rows := make([][]uint8, ksize)
		for i := range rows {
			sy := clampInt(y+i-r, 0, height-1)
			rows[i] = img.Pix[sy*img.Stride : sy*img.Stride+width]
		}

		var hist [256]int
		for dx := -r; dx <= r; dx++ {
			sx := clampInt(dx, 0, width-1)
			for _, row := range rows {
				hist[row[sx]]++
			}
		}

		// m is the current median and below the number of window
		// values strictly less than m.
		m, below := 0, 0
		out := dst.Pix[y*dst.Stride : y*dst.Stride+width]
		for x := 0; x < width; x++ {
			if x > 0 {
				outX := clampInt(x-r-1, 0, width-1)
				inX := clampInt(x+r, 0, width-1)
				for _, row := range rows {
					v := int(row[outX])
					hist[v]--
					if v < m {
						below--
					}
					v = int(row[inX])
					hist[v]++
					if v < m {
						below++
					}
				}
			}

			for below > rank {
				m--
				below -= hist[m]
			}
			for below+hist[m] <= rank {
				below += hist[m]
				m++
			}
			out[x] = uint8(m)
		}
	})

	return dst
}
