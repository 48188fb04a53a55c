package palette

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pssnndl/Recolorization/pkg/models"
)

// twoToneAsset builds an asset that is 3/4 red and 1/4 blue.
func twoToneAsset(t *testing.T) *models.ImageAsset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if x < 48 {
				img.Set(x, y, color.RGBA{R: 200, A: 255})
			} else {
				img.Set(x, y, color.RGBA{B: 200, A: 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return models.NewImageAsset(buf.Bytes(), "png", 64, 64)
}

func TestExtractDominantColorFirst(t *testing.T) {
	p, err := ExtractFromImage(twoToneAsset(t), 2)
	if err != nil {
		t.Fatalf("ExtractFromImage failed: %v", err)
	}
	if len(p.Colors) != 2 {
		t.Fatalf("got %d colors, want 2", len(p.Colors))
	}
	first := p.Colors[0]
	if first.R < 150 || first.B > 80 {
		t.Errorf("dominant color should be red-ish, got %v", first)
	}
	if p.Source != models.ProvenanceExtracted {
		t.Errorf("source = %s", p.Source)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	asset := twoToneAsset(t)
	a, err := ExtractFromImage(asset, 6)
	if err != nil {
		t.Fatalf("ExtractFromImage failed: %v", err)
	}
	for run := 0; run < 3; run++ {
		b, err := ExtractFromImage(asset, 6)
		if err != nil {
			t.Fatalf("ExtractFromImage failed: %v", err)
		}
		if len(a.Colors) != len(b.Colors) {
			t.Fatalf("runs disagree on palette size")
		}
		for i := range a.Colors {
			if a.Colors[i] != b.Colors[i] {
				t.Errorf("run %d slot %d: %v != %v", run, i, b.Colors[i], a.Colors[i])
			}
		}
	}
}

func TestExtractNilAsset(t *testing.T) {
	if _, err := ExtractFromImage(nil, 6); err == nil {
		t.Error("nil asset did not error")
	}
}

func TestExtractGarbageBytes(t *testing.T) {
	asset := &models.ImageAsset{Bytes: []byte("nope"), Format: "png"}
	if _, err := ExtractFromImage(asset, 6); err == nil {
		t.Error("undecodable asset did not error")
	}
}
