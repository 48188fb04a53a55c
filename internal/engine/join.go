package engine

import (
	"github.com/pssnndl/Recolorization/pkg/models"
)

// Readiness is the join synchronizer's verdict on the recolor
// prerequisites. It reports what is missing; it never blocks.
type Readiness struct {
	Ready          bool
	MissingImage   bool
	MissingPalette bool
}

// CheckReady is a pure predicate over the session: ready iff both an image
// asset and a usable palette are present.
func CheckReady(s *models.Session) Readiness {
	r := Readiness{
		MissingImage:   !s.HasImage(),
		MissingPalette: !s.HasPalette(),
	}
	r.Ready = !r.MissingImage && !r.MissingPalette
	return r
}

// missingPrompt asks the user for whichever prerequisite the join found
// absent. Empty when nothing is missing.
func missingPrompt(r Readiness) string {
	switch {
	case r.MissingImage && r.MissingPalette:
		return "To recolor I need both an image and a palette. Upload an image and tell me the colors you want."
	case r.MissingImage:
		return "Upload an image and I'll recolor it with this palette."
	case r.MissingPalette:
		return "Tell me the colors you want, and I'll recolor your image. You can give hex codes, describe a mood, or ask me to extract a palette from the image."
	default:
		return ""
	}
}
