package palette

import (
	"testing"

	"github.com/pssnndl/Recolorization/pkg/models"
)

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

func testPalette() models.Palette {
	return models.Palette{
		Colors: []models.Color{
			{R: 0xFF, G: 0x6B, B: 0x6B}, {R: 0xFF, G: 0xD9, B: 0x3D}, {R: 0x6B, G: 0xCB, B: 0x77},
			{R: 0x4D, G: 0x96, B: 0xFF}, {R: 0xFF, G: 0x6B, B: 0xAE}, {R: 0xC7, G: 0x7D, B: 0xFF},
		},
		Source: models.ProvenanceUser,
	}
}

func TestComplementaryIsInvolution(t *testing.T) {
	p := testPalette()
	once, err := ApplyVariation(p, KindComplementary)
	if err != nil {
		t.Fatalf("ApplyVariation failed: %v", err)
	}
	twice, err := ApplyVariation(once, KindComplementary)
	if err != nil {
		t.Fatalf("ApplyVariation failed: %v", err)
	}
	for i := range p.Colors {
		a, b := p.Colors[i], twice.Colors[i]
		if absDiff(a.R, b.R) > 2 || absDiff(a.G, b.G) > 2 || absDiff(a.B, b.B) > 2 {
			t.Errorf("slot %d: complementary twice gave %v, want ~%v", i, b, a)
		}
	}
}

func TestVariationPreservesOrderAndSize(t *testing.T) {
	p := testPalette()
	for _, kind := range []Kind{KindWarmer, KindCooler, KindBolder, KindSubtle, KindComplementary} {
		out, err := ApplyVariation(p, kind)
		if err != nil {
			t.Fatalf("ApplyVariation(%s) failed: %v", kind, err)
		}
		if len(out.Colors) != len(p.Colors) {
			t.Errorf("%s: size changed from %d to %d", kind, len(p.Colors), len(out.Colors))
		}
		if out.Source != models.ProvenanceVariation {
			t.Errorf("%s: source = %s", kind, out.Source)
		}
	}
}

func TestVariationIsDeterministic(t *testing.T) {
	p := testPalette()
	for _, kind := range []Kind{KindWarmer, KindCooler, KindBolder, KindSubtle, KindComplementary} {
		a, _ := ApplyVariation(p, kind)
		b, _ := ApplyVariation(p, kind)
		for i := range a.Colors {
			if a.Colors[i] != b.Colors[i] {
				t.Errorf("%s: slot %d differs between runs", kind, i)
			}
		}
	}
}

func TestBolderIncreasesSaturation(t *testing.T) {
	p := models.Palette{Colors: []models.Color{{R: 180, G: 120, B: 120}}}
	out, err := ApplyVariation(p, KindBolder)
	if err != nil {
		t.Fatalf("ApplyVariation failed: %v", err)
	}
	_, sBefore, _ := p.Colors[0].Colorful().Hsl()
	_, sAfter, _ := out.Colors[0].Colorful().Hsl()
	if sAfter <= sBefore {
		t.Errorf("saturation did not increase: before=%.3f after=%.3f", sBefore, sAfter)
	}
}

func TestSubtleDecreasesSaturation(t *testing.T) {
	p := models.Palette{Colors: []models.Color{{R: 220, G: 60, B: 60}}}
	out, err := ApplyVariation(p, KindSubtle)
	if err != nil {
		t.Fatalf("ApplyVariation failed: %v", err)
	}
	_, sBefore, _ := p.Colors[0].Colorful().Hsl()
	_, sAfter, _ := out.Colors[0].Colorful().Hsl()
	if sAfter >= sBefore {
		t.Errorf("saturation did not decrease: before=%.3f after=%.3f", sBefore, sAfter)
	}
}

func TestApplyVariationUnknownKind(t *testing.T) {
	if _, err := ApplyVariation(testPalette(), Kind("psychedelic")); err == nil {
		t.Error("unknown kind did not error")
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		text string
		want Kind
	}{
		{"make it warmer", KindWarmer},
		{"i want something cooler", KindCooler},
		{"bolder please", KindBolder},
		{"more vivid!", KindBolder},
		{"soften it, more pastel", KindSubtle},
		{"give me the complement", KindComplementary},
		{"invert everything", KindComplementary},
		{"just tweak it a bit", KindSubtle},
	}
	for _, tt := range tests {
		if got := DetectKind(tt.text); got != tt.want {
			t.Errorf("DetectKind(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}
