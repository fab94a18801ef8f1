//go:build gocv

package cartoonify

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/wbrown/cartoonify/imageutil"
)

// OpenCVBackendName is the name under which OpenCVBackend registers.
const OpenCVBackendName = "opencv"

func init() {
	RegisterBackend(OpenCVBackend{})
}

// OpenCVBackend runs the filter stages through OpenCV. Only built with
// the gocv build tag. OpenCV reflects rather than replicates the border
// in its bilateral filter, so results differ from GoBackend in the
// outermost few pixels.
type OpenCVBackend struct{}

func (OpenCVBackend) Name() string { return OpenCVBackendName }

func (OpenCVBackend) Grayscale(img *imageutil.RGBAImage) (*imageutil.GrayImage, error) {
	src := rgbaToMat(img)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()

	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return matToGray(dst)
}

func (OpenCVBackend) MedianBlur(img *imageutil.GrayImage, ksize int) (*imageutil.GrayImage, error) {
	src := grayToMat(img)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()

	gocv.MedianBlur(src, &dst, ksize)
	return matToGray(dst)
}

func (OpenCVBackend) AdaptiveThreshold(img *imageutil.GrayImage, blockSize int, offset float64) (*imageutil.GrayImage, error) {
	src := grayToMat(img)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()

	gocv.AdaptiveThreshold(src, &dst, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinary, blockSize, float32(offset))
	return matToGray(dst)
}

func (OpenCVBackend) BilateralFilter(img *imageutil.RGBAImage, diameter int, sigmaColor, sigmaSpace float64) (*imageutil.RGBAImage, error) {
	src := rgbaToMat(img)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()

	gocv.BilateralFilter(src, &dst, diameter, sigmaColor, sigmaSpace)
	return matToRGBA(dst)
}

// rgbaToMat converts an RGBAImage to a BGR Mat.
func rgbaToMat(img *imageutil.RGBAImage) gocv.Mat {
	mat := gocv.NewMatWithSize(img.Height(), img.Width(), gocv.MatTypeCV8UC3)
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			c := img.GetRGB(x, y)
			mat.SetUCharAt(y, x*3, c.B)
			mat.SetUCharAt(y, x*3+1, c.G)
			mat.SetUCharAt(y, x*3+2, c.R)
		}
	}
	return mat
}

func grayToMat(img *imageutil.GrayImage) gocv.Mat {
	mat := gocv.NewMatWithSize(img.Height(), img.Width(), gocv.MatTypeCV8U)
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			mat.SetUCharAt(y, x, img.GetGray(x, y))
		}
	}
	return mat
}

// matToRGBA converts a BGR Mat to an RGBAImage.
func matToRGBA(mat gocv.Mat) (*imageutil.RGBAImage, error) {
	if mat.Empty() || mat.Channels() != 3 {
		return nil, fmt.Errorf("opencv returned %d channel mat, want 3", mat.Channels())
	}
	img := imageutil.NewRGBAImage(mat.Cols(), mat.Rows())
	for y := 0; y < mat.Rows(); y++ {
		for x := 0; x < mat.Cols(); x++ {
			v := mat.GetVecbAt(y, x)
			img.SetRGB(x, y, imageutil.RGB{R: v[2], G: v[1], B: v[0]})
		}
	}
	return img, nil
}

func matToGray(mat gocv.Mat) (*imageutil.GrayImage, error) {
	if mat.Empty() || mat.Channels() != 1 {
		return nil, fmt.Errorf("opencv returned %d channel mat, want 1", mat.Channels())
	}
	img := imageutil.NewGrayImage(mat.Cols(), mat.Rows())
	for y := 0; y < mat.Rows(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < mat.Cols(); x++ {
			row[x] = mat.GetUCharAt(y, x)
		}
	}
	return img, nil
}
