package engine

import (
	"context"

	"github.com/pssnndl/Recolorization/internal/palette"
	"github.com/pssnndl/Recolorization/pkg/models"
)

// runImageNode validates and normalizes an uploaded image into an asset
// delta. Validation failures surface as the outcome error.
func (e *Engine) runImageNode(raw []byte) AgentOutcome {
	out := AgentOutcome{Node: NodeImage}
	asset, err := e.validator.Validate(raw)
	if err != nil {
		out.Err = err
		return out
	}
	out.Delta.Image = asset
	out.Fragment = "Got your image."
	return out
}

// runPaletteNode executes the single palette operation this turn asked for.
// When several palette intents co-fire, the most explicit wins: literal hex
// beats extraction beats variation beats fetching beats description.
// staged carries this turn's raw upload so extraction can use an image that
// arrived in the same message, before the image branch's delta is merged.
func (e *Engine) runPaletteNode(ctx context.Context, s *models.Session, intents []models.Intent, text string, staged []byte) AgentOutcome {
	out := AgentOutcome{Node: NodePalette}

	switch {
	case models.HasIntent(intents, models.IntentSetPaletteHex):
		parsed, err := palette.ParseExplicit(text)
		if err != nil {
			out.Err = err
			return out
		}
		padded := palette.FitToSlots(parsed, e.slots)
		p := padded
		if parsed.Len() < e.slots {
			p = e.seedFill(ctx, parsed)
		}
		out.Delta.Palette = &p
		out.Delta.Candidates = candidateSet(
			models.PaletteCandidate{Palette: p, Description: "your colors"},
			models.PaletteCandidate{Palette: padded, Description: "your colors, repeated to fill"},
		)
		out.Fragment = "Palette set: " + p.Hex() + "."

	case models.HasIntent(intents, models.IntentExtractFromImage):
		img := s.Image
		if img == nil && len(staged) > 0 {
			if a, err := e.validator.Validate(staged); err == nil {
				img = a
			}
		}
		if img == nil {
			out.Err = &UserError{Msg: "Upload an image first and I'll pull a palette from it."}
			return out
		}
		p, err := palette.ExtractFromImage(img, e.slots)
		if err != nil {
			out.Err = err
			return out
		}
		seed := p.Colors
		if len(seed) > 3 {
			seed = seed[:3]
		}
		alt := palette.FitToSlots(e.fetcher.Fetch(ctx, seed), e.slots)
		out.Delta.Palette = &p
		out.Delta.Candidates = candidateSet(
			models.PaletteCandidate{Palette: p, Description: "extracted from your image"},
			models.PaletteCandidate{Palette: alt, Description: "harmonized around the extracted colors"},
		)
		out.Fragment = "Extracted from your image: " + p.Hex() + "."

	case models.HasIntent(intents, models.IntentRequestVariation):
		if !s.HasPalette() {
			out.Err = &UserError{Msg: "There's no palette to adjust yet. Give me some colors or describe a mood first."}
			return out
		}
		kind := palette.DetectKind(text)
		p, err := palette.ApplyVariation(*s.Palette, kind)
		if err != nil {
			out.Err = err
			return out
		}
		cands := []models.PaletteCandidate{{Palette: p, Description: string(kind)}}
		altKind := palette.KindComplementary
		if kind == palette.KindComplementary {
			altKind = palette.KindBolder
		}
		if alt, altErr := palette.ApplyVariation(*s.Palette, altKind); altErr == nil {
			cands = append(cands, models.PaletteCandidate{Palette: alt, Description: string(altKind)})
		}
		out.Delta.Palette = &p
		out.Delta.Candidates = candidateSet(cands...)
		out.Fragment = "Here's a " + string(kind) + " take: " + p.Hex() + "."

	case models.HasIntent(intents, models.IntentFetchExternal):
		p := palette.FitToSlots(e.fetcher.Fetch(ctx, nil), e.slots)
		cands := []models.PaletteCandidate{{Palette: p, Description: "suggested"}}
		if alt, altErr := palette.ApplyVariation(p, palette.KindBolder); altErr == nil {
			cands = append(cands, models.PaletteCandidate{Palette: alt, Description: "suggested, bolder"})
		}
		out.Delta.Palette = &p
		out.Delta.Candidates = candidateSet(cands...)
		out.Fragment = "How about this palette: " + p.Hex() + "?"

	case models.HasIntent(intents, models.IntentDescribePalette):
		p, err := e.generator.FromDescription(ctx, text, s.Palette)
		if err != nil {
			out.Err = err
			return out
		}
		p = palette.FitToSlots(p, e.slots)
		alt := palette.FitToSlots(e.fetcher.Fetch(ctx, nil), e.slots)
		out.Delta.Palette = &p
		out.Delta.Candidates = candidateSet(
			models.PaletteCandidate{Palette: p, Description: text},
			models.PaletteCandidate{Palette: alt, Description: "a harmonized alternative"},
		)
		out.Fragment = "Here's a palette for that: " + p.Hex() + "."
	}

	return out
}

// candidateSet assembles an operation's replacement candidate list: the
// chosen palette first, then alternates, deduplicated by hex and capped.
func candidateSet(cands ...models.PaletteCandidate) []models.PaletteCandidate {
	out := make([]models.PaletteCandidate, 0, maxCandidates)
	seen := make(map[string]bool, len(cands))
	for _, c := range cands {
		if len(out) == maxCandidates {
			break
		}
		if c.Palette.Len() == 0 || seen[c.Palette.Hex()] {
			continue
		}
		seen[c.Palette.Hex()] = true
		out = append(out, c)
	}
	return out
}

// seedFill completes a short explicit palette through the external API,
// which locks the given colors in place and harmonizes the remaining slots.
// If the API degraded to its default (the seed colors are absent from the
// result), the seed is padded by repetition instead.
func (e *Engine) seedFill(ctx context.Context, p models.Palette) models.Palette {
	seed := p.Colors
	if len(seed) > 5 {
		return palette.FitToSlots(p, e.slots)
	}
	fetched := e.fetcher.Fetch(ctx, seed)
	for i, c := range seed {
		if i >= len(fetched.Colors) || fetched.Colors[i] != c {
			return palette.FitToSlots(p, e.slots)
		}
	}
	fetched.Source = models.ProvenanceUser
	return palette.FitToSlots(fetched, e.slots)
}

const chatSystemPrompt = "You are a friendly assistant for an image " +
	"recoloring tool. Users upload an image, pick or describe a color " +
	"palette, and you recolor the image for them. Keep replies short and " +
	"conversational. Never invent image results; the tool reports those."

// runChatNode produces conversational filler over the session transcript.
// Without a language model, or when the gateway fails, the outcome is empty
// and composition falls back to a canned line.
func (e *Engine) runChatNode(ctx context.Context, s *models.Session) AgentOutcome {
	out := AgentOutcome{Node: NodeChat}
	if e.llm == nil {
		return out
	}
	reply, err := e.llm.Chat(ctx, chatSystemPrompt, s.Messages)
	if err != nil {
		e.logger.Warn("chat gateway failed", "session", s.ID, "error", err)
		return out
	}
	out.Fragment = reply
	return out
}

// runRecolorNode calls the model gateway with the session's image and its
// palette fitted to the model's slot count. Never retried; failures surface
// so the user can ask again.
func (e *Engine) runRecolorNode(ctx context.Context, s *models.Session) (AgentOutcome, []byte) {
	out := AgentOutcome{Node: NodeRecolor}
	if e.recolorer == nil {
		out.Err = &UserError{Msg: "Recoloring isn't available right now."}
		return out, nil
	}
	fitted := palette.FitToSlots(*s.Palette, e.slots)
	result, err := e.recolorer.Recolor(ctx, s.Image, fitted)
	if err != nil {
		out.Err = err
		return out, nil
	}
	out.Fragment = "Done! I recolored your image with " + fitted.Hex() + "."
	return out, result
}
