package screenshot

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pxsnap/src/config"
)

const jpegQuality = 95

// Save writes img into the configured save directory and returns the absolute
// path. The filename is customName when given, otherwise
// <prefix>_<timestamp>.<format>. PNG is written with best compression, JPEG
// at quality 95. Unrecognized extensions fall back to PNG encoding under the
// requested name.
func Save(img image.Image, settings config.Settings, customName string) (string, error) {
	name := customName
	if name == "" {
		stamp := time.Now().Format(settings.TimestampFormat)
		name = fmt.Sprintf("%s_%s.%s", settings.FilePrefix, stamp, settings.FileFormat)
	}

	if err := os.MkdirAll(settings.SaveDirectory, 0755); err != nil {
		return "", fmt.Errorf("failed to create save directory: %w", err)
	}

	path := filepath.Join(settings.SaveDirectory, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	default:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(f, img)
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}
