package palette

import (
	"errors"
	"testing"

	"github.com/pssnndl/Recolorization/pkg/models"
)

func TestParseExplicitHex(t *testing.T) {
	text := "#FF6B6B #FFD93D #6BCB77 #4D96FF #FF6BAE #C77DFF, recolor it"
	p, err := ParseExplicit(text)
	if err != nil {
		t.Fatalf("ParseExplicit failed: %v", err)
	}
	want := []models.Color{
		{R: 0xFF, G: 0x6B, B: 0x6B}, {R: 0xFF, G: 0xD9, B: 0x3D}, {R: 0x6B, G: 0xCB, B: 0x77},
		{R: 0x4D, G: 0x96, B: 0xFF}, {R: 0xFF, G: 0x6B, B: 0xAE}, {R: 0xC7, G: 0x7D, B: 0xFF},
	}
	if len(p.Colors) != len(want) {
		t.Fatalf("got %d colors, want %d", len(p.Colors), len(want))
	}
	for i, c := range want {
		if p.Colors[i] != c {
			t.Errorf("color %d = %v, want %v", i, p.Colors[i], c)
		}
	}
	if p.Source != models.ProvenanceUser {
		t.Errorf("source = %s, want %s", p.Source, models.ProvenanceUser)
	}
}

func TestParseExplicitRGBForm(t *testing.T) {
	p, err := ParseExplicit("try rgb(10, 20, 30) and RGB(255,0,128)")
	if err != nil {
		t.Fatalf("ParseExplicit failed: %v", err)
	}
	want := []models.Color{{R: 10, G: 20, B: 30}, {R: 255, G: 0, B: 128}}
	for i, c := range want {
		if p.Colors[i] != c {
			t.Errorf("color %d = %v, want %v", i, p.Colors[i], c)
		}
	}
}

func TestParseExplicitPreservesInputOrder(t *testing.T) {
	p, err := ParseExplicit("rgb(1,2,3) then #aabbcc then rgb(4,5,6)")
	if err != nil {
		t.Fatalf("ParseExplicit failed: %v", err)
	}
	want := []models.Color{{R: 1, G: 2, B: 3}, {R: 0xaa, G: 0xbb, B: 0xcc}, {R: 4, G: 5, B: 6}}
	if len(p.Colors) != 3 {
		t.Fatalf("got %d colors, want 3", len(p.Colors))
	}
	for i, c := range want {
		if p.Colors[i] != c {
			t.Errorf("color %d = %v, want %v", i, p.Colors[i], c)
		}
	}
}

func TestParseExplicitSkipsMalformed(t *testing.T) {
	// rgb(300,...) is out of range and must be skipped, not fatal.
	p, err := ParseExplicit("rgb(300, 0, 0) #112233")
	if err != nil {
		t.Fatalf("ParseExplicit failed: %v", err)
	}
	if len(p.Colors) != 1 || p.Colors[0] != (models.Color{R: 0x11, G: 0x22, B: 0x33}) {
		t.Errorf("got %v, want just #112233", p.Colors)
	}
}

func TestParseExplicitNoTokens(t *testing.T) {
	for _, text := range []string{"", "warm sunset colors", "#12345 #GGGGGG rgb(300,300,300)"} {
		_, err := ParseExplicit(text)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("ParseExplicit(%q): want ParseError, got %v", text, err)
		}
	}
}

func TestParseExplicitTokenCountMatches(t *testing.T) {
	// Length always equals the count of valid tokens.
	tests := []struct {
		text string
		n    int
	}{
		{"#000000", 1},
		{"#000000 #ffffff", 2},
		{"#000000 junk #ffffff rgb(1,1,1)", 3},
	}
	for _, tt := range tests {
		p, err := ParseExplicit(tt.text)
		if err != nil {
			t.Errorf("ParseExplicit(%q) failed: %v", tt.text, err)
			continue
		}
		if len(p.Colors) != tt.n {
			t.Errorf("ParseExplicit(%q): %d colors, want %d", tt.text, len(p.Colors), tt.n)
		}
	}
}
