package imageutil

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DefaultJPEGQuality is the quality used when none is given.
const DefaultJPEGQuality = 95

// ErrEmptyImage is returned when a file decodes to an image with no pixels.
var ErrEmptyImage = errors.New("image has zero width or height")

// Format identifies an output encoding.
type Format int

const (
	// FormatAuto picks the format from the file extension, falling back
	// to PNG.
	FormatAuto Format = iota
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatBMP
	FormatTIFF
)

// SupportedExtensions lists the file extensions offered to users when
// picking an input image.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".gif", ".webp"}

// IsSupportedExtension reports whether path carries one of
// SupportedExtensions. Decoding is content based, so this is advisory.
func IsSupportedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// String returns the canonical short name of the format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extension returns the preferred file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatGIF:
		return ".gif"
	case FormatBMP:
		return ".bmp"
	case FormatTIFF:
		return ".tiff"
	default:
		return ".png"
	}
}

// ParseFormat maps names such as "jpg", "JPEG", ".png" or "tif" to a
// Format. The empty string and "auto" yield FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "", "auto":
		return FormatAuto, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "gif":
		return FormatGIF, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return FormatAuto, fmt.Errorf("unsupported image format %q", s)
}

// FormatFromPath derives the format from the extension of path.
// Unknown extensions select PNG.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil || f == FormatAuto {
		return FormatPNG
	}
	return f
}

// Decode reads an image in any registered format (PNG, JPEG, GIF, BMP,
// TIFF, WebP) and converts it to canonical RGB. It also returns the
// format name reported by the decoder.
func Decode(r io.Reader) (*RGBAImage, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, format, ErrEmptyImage
	}
	return RGBAImageFromImage(img), format, nil
}

// LoadImage loads an image from the specified path.
// Supports PNG, JPEG, GIF, BMP, TIFF and WebP.
func LoadImage(path string) (*RGBAImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := Decode(f)
	return img, err
}

// Encode writes img to w in the given format. FormatAuto encodes PNG.
// quality applies to JPEG only; values outside 1..100 select
// DefaultJPEGQuality.
func Encode(w io.Writer, img image.Image, format Format, quality int) error {
	switch t := img.(type) {
	case *RGBAImage:
		img = t.RGBA
	case *GrayImage:
		img = t.Gray
	}

	switch format {
	case FormatJPEG:
		if quality < 1 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatGIF:
		return gif.Encode(w, img, nil)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return png.Encode(w, img)
	}
}

// SaveImage saves an image to the specified path.
// Format is determined by file extension (png, jpg/jpeg, gif, bmp, tif/tiff).
func SaveImage(img image.Image, path string) error {
	return SaveImageAs(img, path, FormatAuto, DefaultJPEGQuality)
}

// SaveImageAs saves img to path in the given format. If encoding fails
// the partially written file is removed.
func SaveImageAs(img image.Image, path string, format Format, quality int) (err error) {
	if format == FormatAuto {
		format = FormatFromPath(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := Encode(f, img, format, quality); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}
