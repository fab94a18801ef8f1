package imageutil

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSaveImage(t *testing.T) {
	tmpDir := t.TempDir()
	img := CreateColorBarsImage(64, 64)

	// Lossless formats round-trip exactly.
	for _, name := range []string{"test.png", "test.bmp", "test.tiff"} {
		path := filepath.Join(tmpDir, name)
		if err := SaveImage(img, path); err != nil {
			t.Fatalf("Failed to save %s: %v", name, err)
		}

		loaded, err := LoadImage(path)
		if err != nil {
			t.Fatalf("Failed to load %s: %v", name, err)
		}
		if mse := CalculateMSE(img, loaded); mse != 0 {
			t.Errorf("%s should be lossless, MSE=%f", name, mse)
		}
	}
}

func TestSaveJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jpg")
	img := CreateSolidImage(40, 30, RGB{200, 100, 50})

	if err := SaveImageAs(img, path, FormatAuto, 90); err != nil {
		t.Fatalf("Failed to save JPEG: %v", err)
	}
	loaded, err := LoadImage(path)
	if err != nil {
		t.Fatalf("Failed to load JPEG: %v", err)
	}
	if loaded.Width() != 40 || loaded.Height() != 30 {
		t.Errorf("Expected 40x30, got %dx%d", loaded.Width(), loaded.Height())
	}
	if mse := CalculateMSE(img, loaded); mse > 10 {
		t.Errorf("JPEG of a flat image should be close to the source, MSE=%f", mse)
	}
}

func TestSaveGrayImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.png")
	mask := ToGrayscale(CreateCheckerboardImage(16, 16, 4))

	if err := SaveImage(mask, path); err != nil {
		t.Fatalf("Failed to save gray PNG: %v", err)
	}
	loaded, err := LoadImage(path)
	if err != nil {
		t.Fatalf("Failed to load gray PNG: %v", err)
	}
	if got := loaded.GetRGB(4, 0); got != (RGB{}) {
		t.Errorf("Expected black square at (4,0), got %v", got)
	}
	if got := loaded.GetRGB(0, 0); got != (RGB{255, 255, 255}) {
		t.Errorf("Expected white square at (0,0), got %v", got)
	}
}

func TestLoadImageErrors(t *testing.T) {
	tmpDir := t.TempDir()

	empty := filepath.Join(tmpDir, "empty.jpg")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	garbage := filepath.Join(tmpDir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image at all"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{empty, garbage, filepath.Join(tmpDir, "missing.png")} {
		img, err := LoadImage(path)
		if err == nil {
			t.Errorf("LoadImage(%s) should fail", filepath.Base(path))
		}
		if img != nil {
			t.Errorf("LoadImage(%s) should not return an image", filepath.Base(path))
		}
	}
}

func TestSaveImageAsRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")

	// PNG refuses to encode an empty image.
	err := SaveImageAs(image.NewRGBA(image.Rect(0, 0, 0, 0)), path, FormatPNG, 0)
	if err == nil {
		t.Fatal("Expected an encode error for an empty image")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("Partial file should be removed, stat err = %v", statErr)
	}
}

func TestSaveImageUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.png")
	if err := SaveImage(NewRGBAImage(2, 2), path); err == nil {
		t.Error("Saving into a missing directory should fail")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"auto", FormatAuto, false},
		{"jpg", FormatJPEG, false},
		{"JPEG", FormatJPEG, false},
		{".png", FormatPNG, false},
		{"gif", FormatGIF, false},
		{"bmp", FormatBMP, false},
		{"tif", FormatTIFF, false},
		{"tiff", FormatTIFF, false},
		{"webp", FormatAuto, true},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"out.jpg":     FormatJPEG,
		"OUT.JPEG":    FormatJPEG,
		"a/b/c.tif":   FormatTIFF,
		"x.bmp":       FormatBMP,
		"noext":       FormatPNG,
		"weird.xyz":   FormatPNG,
		"picture.png": FormatPNG,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", path, got, want)
		}
	}
	if FormatJPEG.Extension() != ".jpg" || FormatAuto.Extension() != ".png" {
		t.Error("Unexpected format extensions")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	for _, p := range []string{"a.jpg", "b.JPEG", "c.png", "d.bmp", "e.tiff"} {
		if !IsSupportedExtension(p) {
			t.Errorf("%s should be supported", p)
		}
	}
	for _, p := range []string{"a.txt", "b", "c.psd"} {
		if IsSupportedExtension(p) {
			t.Errorf("%s should not be supported", p)
		}
	}
}
