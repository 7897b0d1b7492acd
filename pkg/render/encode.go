package render

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned when an output path or format name does not
// map to a supported image encoder.
var ErrUnknownFormat = errors.New("unknown image format")

// jpegQuality is the quality used for JPEG output.
const jpegQuality = 90

// Encode writes img to w in the named format. Supported formats are "png",
// "jpeg" (alias "jpg"), "bmp", and "tiff" (alias "tif").
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "jpeg", "jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff", "tif":
		return tiff.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FormatFromPath derives the encoder format from a file extension.
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "jpeg", "jpg", "bmp", "tiff", "tif":
		return ext, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// EncodeFile writes img to path, choosing the encoder from the extension.
func EncodeFile(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(out, img, format); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}
