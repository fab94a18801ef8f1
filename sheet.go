package cartoonify

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wbrown/cartoonify/imageutil"
)

// Contact sheet layout, in pixels.
const (
	sheetPadding    = 12
	sheetTitleSize  = 16.0
	sheetTitleSpace = 28
)

var sheetBackground = color.RGBA{R: 0xCD, G: 0xCD, B: 0xCD, A: 0xFF}

var (
	titleFontOnce sync.Once
	titleFont     *truetype.Font
	titleFontErr  error
)

func loadTitleFont() (*truetype.Font, error) {
	titleFontOnce.Do(func() {
		titleFont, titleFontErr = freetype.ParseFont(goregular.TTF)
	})
	return titleFont, titleFontErr
}

// ContactSheet lays the artifacts out in a grid with cols columns, each
// panel centred in its cell under its label. With the six thumbnails of
// a Result and cols = 2 this gives three rows of two.
func ContactSheet(artifacts []Artifact, cols int) (*imageutil.RGBAImage, error) {
	if len(artifacts) == 0 {
		return nil, &ProcessingError{Stage: StageScale, Err: fmt.Errorf("contact sheet needs at least one image")}
	}
	if cols < 1 {
		cols = 1
	}
	rows := (len(artifacts) + cols - 1) / cols

	ttf, err := loadTitleFont()
	if err != nil {
		return nil, &ProcessingError{Stage: StageScale, Err: fmt.Errorf("load title font: %w", err)}
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    sheetTitleSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	// Cells fit the largest panel and the widest label.
	var cellW, cellH int
	labelW := make([]int, len(artifacts))
	for i, a := range artifacts {
		b := a.Image.Bounds()
		labelW[i] = font.MeasureString(face, a.Label).Ceil()
		cellW = max(cellW, b.Dx(), labelW[i])
		cellH = max(cellH, b.Dy())
	}
	cellH += sheetTitleSpace

	width := cols*cellW + (cols+1)*sheetPadding
	height := rows*cellH + (rows+1)*sheetPadding
	sheet := imageutil.NewRGBAImage(width, height)
	draw.Draw(sheet.RGBA, sheet.Bounds(), image.NewUniform(sheetBackground), image.Point{}, draw.Src)

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(sheetTitleSize)
	ctx.SetClip(sheet.Bounds())
	ctx.SetDst(sheet.RGBA)
	ctx.SetSrc(image.Black)
	ctx.SetHinting(font.HintingFull)

	for i, a := range artifacts {
		col, row := i%cols, i/cols
		x0 := sheetPadding + col*(cellW+sheetPadding)
		y0 := sheetPadding + row*(cellH+sheetPadding)

		baseline := y0 + sheetTitleSpace - 8
		pt := freetype.Pt(x0+(cellW-labelW[i])/2, baseline)
		if _, err := ctx.DrawString(a.Label, pt); err != nil {
			return nil, &ProcessingError{Stage: StageScale, Err: fmt.Errorf("draw label %q: %w", a.Label, err)}
		}

		b := a.Image.Bounds()
		dx := x0 + (cellW-b.Dx())/2
		dy := y0 + sheetTitleSpace + (cellH-sheetTitleSpace-b.Dy())/2
		draw.Draw(sheet.RGBA, image.Rect(dx, dy, dx+b.Dx(), dy+b.Dy()), a.Image, b.Min, draw.Src)
	}

	return sheet, nil
}
