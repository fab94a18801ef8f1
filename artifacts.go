package cartoonify

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wbrown/cartoonify/imageutil"
)

// Artifact is one labelled image of a run.
type Artifact struct {
	Label string
	Image image.Image
}

// ArtifactSet holds the six full resolution images of one run. They are
// all Original's size and are never modified after the stage that
// produced them returns.
type ArtifactSet struct {
	Original       *imageutil.RGBAImage
	Grayscale      *imageutil.GrayImage
	SmoothGray     *imageutil.GrayImage
	EdgeMask       *imageutil.GrayImage
	ColorFlattened *imageutil.RGBAImage
	Cartoon        *imageutil.RGBAImage
}

// Artifacts returns the images with their display labels in
// processing order.
func (s *ArtifactSet) Artifacts() []Artifact {
	return []Artifact{
		{Label: LabelOriginal, Image: s.Original},
		{Label: LabelGrayscale, Image: s.Grayscale},
		{Label: LabelSmoothGray, Image: s.SmoothGray},
		{Label: LabelEdges, Image: s.EdgeMask},
		{Label: LabelBilateral, Image: s.ColorFlattened},
		{Label: LabelCartoon, Image: s.Cartoon},
	}
}

// StageTiming records how long one stage took.
type StageTiming struct {
	Stage   Stage
	Elapsed time.Duration
}

// Result is everything one pipeline run produces.
type Result struct {
	Artifacts   *ArtifactSet
	DisplaySize DisplaySize
	// Thumbnails are the artifacts resized to DisplaySize, in the same
	// order and with the same labels as Artifacts.Artifacts().
	Thumbnails []Artifact
	Timings    []StageTiming
	Backend    string
	Elapsed    time.Duration
}

// SaveArtifacts writes every full resolution artifact into dir as
// "01_original.png" … "06_cartoon.png" (extension per format) and
// returns the written paths. dir is created if needed.
func (r *Result) SaveArtifacts(dir string, format Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &IOError{Op: "create directory", Path: dir, Err: err}
	}
	if format == FormatAuto {
		format = FormatPNG
	}

	var paths []string
	for i, a := range r.Artifacts.Artifacts() {
		name := fmt.Sprintf("%02d_%s%s", i+1, artifactFileName(a.Label), format.Extension())
		path := filepath.Join(dir, name)
		if err := SaveImage(a.Image, path, format); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactFileName turns "Bilateral Filter" into "bilateral_filter".
func artifactFileName(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}
