// Package imaging validates uploaded images and normalizes them into the
// internal asset representation the recoloring model expects.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	// Register the decoders for the format allow-list.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pssnndl/Recolorization/pkg/models"
)

// ValidationError describes a user-correctable problem with an upload.
// It is reported to the user verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Config bounds the validator. Zero values fall back to the model defaults.
type Config struct {
	// MaxBytes is the upload size ceiling.
	MaxBytes int64
	// MaxDim is the model's maximum working resolution on the longer edge.
	MaxDim int
	// Block is the stride multiple required by the model; normalized
	// dimensions are rounded down to it.
	Block int
}

// DefaultConfig matches the standard model configuration.
func DefaultConfig() Config {
	return Config{
		MaxBytes: 10 << 20,
		MaxDim:   350,
		Block:    16,
	}
}

// Validator checks and normalizes uploads.
type Validator struct {
	cfg Config
}

// allowedFormats is the decodable-format allow-list, keyed by the name
// image.Decode reports.
var allowedFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"webp": true,
	"bmp":  true,
	"tiff": true,
}

// NewValidator creates a Validator, filling unset bounds from DefaultConfig.
func NewValidator(cfg Config) *Validator {
	def := DefaultConfig()
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.MaxDim <= 0 {
		cfg.MaxDim = def.MaxDim
	}
	if cfg.Block <= 0 {
		cfg.Block = def.Block
	}
	return &Validator{cfg: cfg}
}

// Validate decodes, checks, and normalizes an upload. The returned asset
// holds PNG-encoded pixels at the model's working resolution with a content
// fingerprint; the input bytes are never mutated.
func (v *Validator) Validate(data []byte) (*models.ImageAsset, error) {
	if len(data) == 0 {
		return nil, &ValidationError{Reason: "empty upload"}
	}
	if int64(len(data)) > v.cfg.MaxBytes {
		return nil, &ValidationError{Reason: fmt.Sprintf(
			"image is %.1f MiB, above the %d MiB limit",
			float64(len(data))/(1<<20), v.cfg.MaxBytes>>20)}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ValidationError{Reason: "not a decodable image (PNG, JPEG, WEBP, BMP, or TIFF)"}
	}
	if !allowedFormats[format] {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported image format %q", format)}
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < v.cfg.Block || h < v.cfg.Block {
		return nil, &ValidationError{Reason: fmt.Sprintf(
			"image is %dx%d; both dimensions must be at least %d", w, h, v.cfg.Block)}
	}

	nw, nh := v.normalizedSize(w, h)
	out := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(out, out.Bounds(), img, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode normalized image: %w", err)
	}

	return models.NewImageAsset(buf.Bytes(), "png", nw, nh), nil
}

// normalizedSize scales (w, h) down so the longer edge fits MaxDim while
// preserving aspect ratio, then rounds both dimensions down to the block
// multiple. Results never drop below one block.
func (v *Validator) normalizedSize(w, h int) (int, int) {
	maxDim := v.cfg.MaxDim
	scale := 1.0
	if w > maxDim || h > maxDim {
		if w > h {
			scale = float64(maxDim) / float64(w)
		} else {
			scale = float64(maxDim) / float64(h)
		}
	}

	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)

	block := v.cfg.Block
	nw = (nw / block) * block
	nh = (nh / block) * block
	if nw < block {
		nw = block
	}
	if nh < block {
		nh = block
	}
	return nw, nh
}
