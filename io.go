package cartoonify

import (
	"errors"
	"image"

	"github.com/wbrown/cartoonify/imageutil"
)

// Format identifies an output encoding.
type Format = imageutil.Format

// Output formats.
const (
	FormatAuto = imageutil.FormatAuto
	FormatPNG  = imageutil.FormatPNG
	FormatJPEG = imageutil.FormatJPEG
	FormatGIF  = imageutil.FormatGIF
	FormatBMP  = imageutil.FormatBMP
	FormatTIFF = imageutil.FormatTIFF
)

// ParseFormat maps "jpg", "png", "tiff", … to a Format.
func ParseFormat(s string) (Format, error) {
	return imageutil.ParseFormat(s)
}

// LoadImage decodes the image at path into canonical RGB at full
// resolution. Any failure, including an empty file, is returned as an
// *UnreadableImageError.
func LoadImage(path string) (*imageutil.RGBAImage, error) {
	img, err := imageutil.LoadImage(path)
	if err != nil {
		return nil, &UnreadableImageError{Path: path, Err: err}
	}
	return img, nil
}

// SaveImage encodes img to path. FormatAuto picks the format from the
// extension of path. Failures are returned as an *IOError and leave no
// partial file behind.
func SaveImage(img image.Image, path string, format Format) error {
	return SaveImageQuality(img, path, format, imageutil.DefaultJPEGQuality)
}

// SaveImageQuality is SaveImage with an explicit JPEG quality (1-100).
func SaveImageQuality(img image.Image, path string, format Format, quality int) error {
	if isNilImage(img) {
		return &IOError{Op: "save", Path: path, Err: errors.New("no image to save")}
	}
	if err := imageutil.SaveImageAs(img, path, format, quality); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	return nil
}

func isNilImage(img image.Image) bool {
	switch t := img.(type) {
	case nil:
		return true
	case *imageutil.RGBAImage:
		return t == nil || t.RGBA == nil
	case *imageutil.GrayImage:
		return t == nil || t.Gray == nil
	}
	return false
}
