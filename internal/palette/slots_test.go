package palette

import (
	"testing"

	"github.com/pssnndl/Recolorization/pkg/models"
)

func TestFitToSlotsPadsByRepeatingLast(t *testing.T) {
	p := models.Palette{Colors: []models.Color{{R: 1, G: 1, B: 1}, {R: 2, G: 2, B: 2}}}
	out := FitToSlots(p, 6)
	if len(out.Colors) != 6 {
		t.Fatalf("got %d colors, want 6", len(out.Colors))
	}
	for i := 2; i < 6; i++ {
		if out.Colors[i] != (models.Color{R: 2, G: 2, B: 2}) {
			t.Errorf("slot %d = %v, want repeated last color", i, out.Colors[i])
		}
	}
	// Input untouched.
	if len(p.Colors) != 2 {
		t.Errorf("input palette was modified: %d colors", len(p.Colors))
	}
}

func TestFitToSlotsTruncates(t *testing.T) {
	colors := make([]models.Color, 9)
	for i := range colors {
		colors[i] = models.Color{R: uint8(i)}
	}
	out := FitToSlots(models.Palette{Colors: colors}, 6)
	if len(out.Colors) != 6 {
		t.Fatalf("got %d colors, want 6", len(out.Colors))
	}
	for i := 0; i < 6; i++ {
		if out.Colors[i].R != uint8(i) {
			t.Errorf("truncation reordered colors at slot %d", i)
		}
	}
}

func TestFitToSlotsExact(t *testing.T) {
	p := FitToSlots(Default(), Slots)
	if len(p.Colors) != Slots {
		t.Fatalf("got %d colors, want %d", len(p.Colors), Slots)
	}
}

func TestFitToSlotsEmpty(t *testing.T) {
	out := FitToSlots(models.Palette{}, 6)
	if len(out.Colors) != 0 {
		t.Errorf("empty palette grew to %d colors", len(out.Colors))
	}
}
