package cartoonify

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wbrown/cartoonify/imageutil"
)

// Backend implements the filter stages of the pipeline. Implementations
// must not modify their inputs and must return images of the input's
// size.
type Backend interface {
	Name() string
	Grayscale(img *imageutil.RGBAImage) (*imageutil.GrayImage, error)
	MedianBlur(img *imageutil.GrayImage, ksize int) (*imageutil.GrayImage, error)
	AdaptiveThreshold(img *imageutil.GrayImage, blockSize int, offset float64) (*imageutil.GrayImage, error)
	BilateralFilter(img *imageutil.RGBAImage, diameter int, sigmaColor, sigmaSpace float64) (*imageutil.RGBAImage, error)
}

// DefaultBackend is the name of the pure Go backend.
const DefaultBackend = "go"

// GoBackend runs every stage with the pure Go filters of imageutil.
// Neighbourhoods crossing the image border replicate the nearest edge
// pixel.
type GoBackend struct{}

func (GoBackend) Name() string { return DefaultBackend }

func (GoBackend) Grayscale(img *imageutil.RGBAImage) (*imageutil.GrayImage, error) {
	return imageutil.ToGrayscale(img), nil
}

func (GoBackend) MedianBlur(img *imageutil.GrayImage, ksize int) (*imageutil.GrayImage, error) {
	return imageutil.MedianBlurGray(img, ksize), nil
}

func (GoBackend) AdaptiveThreshold(img *imageutil.GrayImage, blockSize int, offset float64) (*imageutil.GrayImage, error) {
	return imageutil.AdaptiveThresholdMean(img, blockSize, offset), nil
}

func (GoBackend) BilateralFilter(img *imageutil.RGBAImage, diameter int, sigmaColor, sigmaSpace float64) (*imageutil.RGBAImage, error) {
	return imageutil.BilateralFilter(img, diameter, sigmaColor, sigmaSpace), nil
}

var (
	backendsMu sync.RWMutex
	backends   = map[string]Backend{DefaultBackend: GoBackend{}}
)

// RegisterBackend makes b available to LookupBackend under b.Name(),
// replacing any backend of the same name.
func RegisterBackend(b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[b.Name()] = b
}

// LookupBackend returns the backend registered under name.
func LookupBackend(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %v)", name, backendNamesLocked())
	}
	return b, nil
}

// Backends returns the sorted names of all registered backends.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return backendNamesLocked()
}

func backendNamesLocked() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
