package engine

import (
	"github.com/pssnndl/Recolorization/pkg/models"
)

// Node names identify which branch produced an outcome.
const (
	NodeImage   = "image"
	NodePalette = "palette"
	NodeChat    = "chat"
	NodeRecolor = "recolor"
)

// maxCandidates bounds the palette suggestions kept per operation.
const maxCandidates = 4

// StateDelta is the set of session fields a branch wants merged. Branches
// never touch the session directly; the engine applies deltas after the
// join barrier, in fixed node order.
type StateDelta struct {
	Image          *models.ImageAsset
	Palette        *models.Palette
	Candidates     []models.PaletteCandidate
	PendingRecolor *bool
}

// AgentOutcome is what one branch returns: a delta to merge, a reply
// fragment, or a failure. A failed branch contributes its error to the
// reply and nothing to the session.
type AgentOutcome struct {
	Node     string
	Fragment string
	Delta    StateDelta
	Err      error
}

// UserError carries a message shown to the user verbatim. Used by branches
// for user-correctable situations that are not transport or model faults.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string { return e.Msg }

// applyDelta merges one branch's delta into the session.
func applyDelta(s *models.Session, d StateDelta) {
	if d.Image != nil {
		s.Image = d.Image
	}
	if d.Palette != nil {
		s.Palette = d.Palette
	}
	if len(d.Candidates) > 0 {
		// Each palette operation replaces the candidate set; stale
		// suggestions from earlier turns would shift selection indexes.
		s.Candidates = d.Candidates
		if len(s.Candidates) > maxCandidates {
			s.Candidates = s.Candidates[:maxCandidates]
		}
	}
	if d.PendingRecolor != nil {
		s.PendingRecolor = *d.PendingRecolor
	}
}
