package palette

import "github.com/pssnndl/Recolorization/pkg/models"

// Slots is the model's required palette slot count in the standard
// configuration.
const Slots = 6

// FitToSlots deterministically adjusts a palette to exactly n colors:
// palettes that are too long are truncated, palettes that are too short are
// padded by repeating the last color. The input is not modified. An empty
// palette comes back empty; callers must not send those downstream.
func FitToSlots(p models.Palette, n int) models.Palette {
	out := p.Clone()
	if len(out.Colors) == 0 || n <= 0 {
		out.Colors = nil
		return out
	}
	if len(out.Colors) > n {
		out.Colors = out.Colors[:n]
		return out
	}
	last := out.Colors[len(out.Colors)-1]
	for len(out.Colors) < n {
		out.Colors = append(out.Colors, last)
	}
	return out
}
