package screenshot

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"pxsnap/src/config"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	return img
}

func TestSavePNG(t *testing.T) {
	settings := config.DefaultSettings()
	settings.SaveDirectory = t.TempDir()

	path, err := Save(testImage(64, 48), settings, "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	pattern := regexp.MustCompile(`^screenshot_\d{8}_\d{6}\.png$`)
	if !pattern.MatchString(filepath.Base(path)) {
		t.Errorf("Expected filename matching prefix_YYYYMMDD_HHMMSS.png, got '%s'", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open saved file: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Saved file is not valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 64 || decoded.Bounds().Dy() != 48 {
		t.Errorf("Expected 64x48 image, got %dx%d", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestSaveJPEG(t *testing.T) {
	settings := config.DefaultSettings()
	settings.SaveDirectory = t.TempDir()
	settings.FileFormat = "jpg"

	path, err := Save(testImage(64, 48), settings, "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Ext(path) != ".jpg" {
		t.Errorf("Expected .jpg extension, got '%s'", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open saved file: %v", err)
	}
	defer f.Close()
	if _, err := jpeg.Decode(f); err != nil {
		t.Errorf("Saved file is not valid JPEG: %v", err)
	}
}

func TestSaveCustomName(t *testing.T) {
	settings := config.DefaultSettings()
	settings.SaveDirectory = t.TempDir()

	path, err := Save(testImage(10, 10), settings, "named.png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "named.png" {
		t.Errorf("Expected custom filename 'named.png', got '%s'", filepath.Base(path))
	}
}

func TestSaveUnknownFormatFallsBackToPNG(t *testing.T) {
	settings := config.DefaultSettings()
	settings.SaveDirectory = t.TempDir()
	settings.FileFormat = "bmp"

	path, err := Save(testImage(10, 10), settings, "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Ext(path) != ".bmp" {
		t.Errorf("Expected requested .bmp extension, got '%s'", filepath.Ext(path))
	}

	// Content is PNG regardless of the requested extension.
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open saved file: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("Expected PNG content for unknown format, decode failed: %v", err)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	settings := config.DefaultSettings()
	settings.SaveDirectory = filepath.Join(t.TempDir(), "nested", "shots")

	path, err := Save(testImage(10, 10), settings, "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected saved file to exist: %v", err)
	}
}
