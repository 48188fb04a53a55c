// Package models defines the shared domain types for the recolorization
// service: colors, palettes, intents, sessions, and messages.
package models

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a single sRGB color with 8-bit channels.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as a lowercase #rrggbb string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Colorful converts the color to a go-colorful color for color-space math.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// FromColorful converts a go-colorful color back to an 8-bit Color,
// clamping to the sRGB gamut first.
func FromColorful(c colorful.Color) Color {
	clamped := c.Clamped()
	r, g, b := clamped.RGB255()
	return Color{R: r, G: g, B: b}
}

// Provenance records how a palette was produced.
type Provenance string

const (
	// ProvenanceExtracted means the palette was clustered out of an image.
	ProvenanceExtracted Provenance = "extracted"
	// ProvenanceGenerated means an LLM produced the palette from a description.
	ProvenanceGenerated Provenance = "generated"
	// ProvenanceFetched means the palette came from the external palette API
	// (or its built-in fallback).
	ProvenanceFetched Provenance = "fetched"
	// ProvenanceUser means the user supplied the colors explicitly.
	ProvenanceUser Provenance = "user-specified"
	// ProvenanceVariation means the palette is a transform of an earlier one.
	ProvenanceVariation Provenance = "derived-variation"
)

// Palette is an ordered list of colors. Order is meaningful: slot position
// maps to a tone role consumed by the recoloring model.
type Palette struct {
	Colors []Color    `json:"colors"`
	Source Provenance `json:"source"`
}

// Len returns the number of colors in the palette.
func (p Palette) Len() int { return len(p.Colors) }

// Hex returns the palette as space-separated hex codes.
func (p Palette) Hex() string {
	out := ""
	for i, c := range p.Colors {
		if i > 0 {
			out += " "
		}
		out += c.Hex()
	}
	return out
}

// Clone returns a deep copy of the palette.
func (p Palette) Clone() Palette {
	colors := make([]Color, len(p.Colors))
	copy(colors, p.Colors)
	return Palette{Colors: colors, Source: p.Source}
}

// PaletteCandidate is one palette option offered to the user, with a
// human-readable description of where it came from.
type PaletteCandidate struct {
	Palette     Palette `json:"palette"`
	Description string  `json:"description"`
}
