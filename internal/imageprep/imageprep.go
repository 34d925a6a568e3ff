// Package imageprep turns user uploads into the JPEG the model expects.
package imageprep

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// DefaultMaxDim bounds the longest side sent to the model.
	DefaultMaxDim = 1536
	// MaxPixels bounds the decoded size of an upload. Compressed inputs
	// can be tiny while their pixel buffers are not.
	MaxPixels   = 50_000_000
	jpegQuality = 85
)

var ErrUnsupported = errors.New("unsupported image")

// Normalize decodes an upload in any supported format, applies its EXIF
// orientation, shrinks it to fit within maxDim and re-encodes it as JPEG.
// Images already within bounds are not upscaled.
func Normalize(data []byte, maxDim int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrUnsupported
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupported, cfg.Width, cfg.Height, MaxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	b := img.Bounds()
	if b.Dx() > maxDim || b.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
