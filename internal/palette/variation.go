package palette

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pssnndl/Recolorization/pkg/models"
)

// Kind names a palette variation transform.
type Kind string

const (
	KindWarmer        Kind = "warmer"
	KindCooler        Kind = "cooler"
	KindBolder        Kind = "bolder"
	KindSubtle        Kind = "subtle"
	KindComplementary Kind = "complementary"
)

// Hue anchors and step sizes for the variation transforms. Complementary is
// an exact 180-degree rotation so applying it twice round-trips.
const (
	warmHueDeg   = 30.0
	coolHueDeg   = 210.0
	hueShiftFrac = 0.25
	satStep      = 0.20
)

// kindKeywords maps natural-language adjustment words onto variation kinds.
var kindKeywords = map[string]Kind{
	"warmer": KindWarmer, "warm": KindWarmer, "hot": KindWarmer, "fiery": KindWarmer,
	"cooler": KindCooler, "cool": KindCooler, "cold": KindCooler, "icy": KindCooler,
	"bolder": KindBolder, "bold": KindBolder, "vibrant": KindBolder,
	"vivid": KindBolder, "saturated": KindBolder, "richer": KindBolder,
	"subtle": KindSubtle, "subtler": KindSubtle, "softer": KindSubtle,
	"muted": KindSubtle, "pastel": KindSubtle, "duller": KindSubtle,
	"complementary": KindComplementary, "complement": KindComplementary,
	"opposite": KindComplementary, "invert": KindComplementary,
}

// DetectKind finds the variation kind implied by a message. The fallback is
// subtle, matching the least surprising adjustment.
func DetectKind(text string) Kind {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	})
	for _, f := range fields {
		if k, ok := kindKeywords[f]; ok {
			return k
		}
	}
	return KindSubtle
}

// ApplyVariation transforms every color of the palette in HSL space and
// clamps back to the sRGB gamut. Order and size are preserved; the result
// carries derived-variation provenance.
func ApplyVariation(p models.Palette, kind Kind) (models.Palette, error) {
	out := make([]models.Color, len(p.Colors))
	for i, c := range p.Colors {
		h, s, l := c.Colorful().Hsl()

		switch kind {
		case KindWarmer:
			h = shiftHueToward(h, warmHueDeg, hueShiftFrac)
		case KindCooler:
			h = shiftHueToward(h, coolHueDeg, hueShiftFrac)
		case KindBolder:
			s = math.Min(1.0, s+satStep)
		case KindSubtle:
			s = math.Max(0.0, s-satStep)
		case KindComplementary:
			h = math.Mod(h+180.0, 360.0)
		default:
			return models.Palette{}, fmt.Errorf("unknown variation kind %q", kind)
		}

		out[i] = models.FromColorful(colorful.Hsl(h, s, l))
	}
	return models.Palette{Colors: out, Source: models.ProvenanceVariation}, nil
}

// shiftHueToward moves hue h toward the target hue along the shorter arc of
// the hue circle by the given fraction of the distance.
func shiftHueToward(h, target, frac float64) float64 {
	delta := math.Mod(target-h+540.0, 360.0) - 180.0
	return math.Mod(h+delta*frac+360.0, 360.0)
}
