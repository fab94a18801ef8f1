// Package cartoonify turns a photo into a cartoon: flat colour regions
// outlined by dark edges.
//
// A run loads one image, derives an edge mask (grayscale, median blur,
// adaptive mean threshold) and a colour-flattened copy (bilateral
// filter) from it, ANDs the two into the cartoon and finally makes
// bounded display thumbnails of all six intermediate images. Runs are
// independent: a Pipeline holds configuration only, and every image a
// run produces belongs to that run's Result.
//
//	p := cartoonify.NewPipeline()
//	res, err := p.RunFile(ctx, "photo.jpg")
//	if err != nil {
//		return err
//	}
//	err = cartoonify.SaveImage(res.Artifacts.Cartoon, "cartoon.jpg", cartoonify.FormatAuto)
//
// All colour images use canonical RGB order from the moment they are
// decoded until they are encoded again.
package cartoonify

import "fmt"

// Stage identifies one step of a pipeline run.
type Stage int

const (
	StageLoad Stage = iota
	StageGrayscale
	StageMedianBlur
	StageAdaptiveThreshold
	StageBilateralFilter
	StageComposite
	StageScale
	StageSave
)

var stageNames = [...]string{
	StageLoad:              "load",
	StageGrayscale:         "grayscale",
	StageMedianBlur:        "median blur",
	StageAdaptiveThreshold: "adaptive threshold",
	StageBilateralFilter:   "bilateral filter",
	StageComposite:         "composite",
	StageScale:             "scale",
	StageSave:              "save",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Display labels of the six artifacts, in processing order.
const (
	LabelOriginal   = "Original"
	LabelGrayscale  = "Grayscale"
	LabelSmoothGray = "Smooth Gray"
	LabelEdges      = "Edges"
	LabelBilateral  = "Bilateral Filter"
	LabelCartoon    = "Cartoon"
)

// Labels lists the artifact labels in the order ArtifactSet.Artifacts
// returns them.
var Labels = []string{
	LabelOriginal,
	LabelGrayscale,
	LabelSmoothGray,
	LabelEdges,
	LabelBilateral,
	LabelCartoon,
}
