package palette

import (
	"context"
	"fmt"
	"strings"

	"github.com/pssnndl/Recolorization/pkg/models"
)

// Completer is the slice of the LLM gateway the generator needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator derives palettes from free-text descriptions via the LLM
// gateway, with strict output-shape validation and one bounded retry.
type Generator struct {
	llm   Completer
	slots int
}

// NewGenerator creates a Generator producing palettes of the given size.
func NewGenerator(llm Completer, slots int) *Generator {
	if slots <= 0 {
		slots = Slots
	}
	return &Generator{llm: llm, slots: slots}
}

const generatePromptFmt = `Generate exactly %d colors that match this description: %q
%s
Respond with ONLY the %d colors as hex codes separated by spaces.
Example: #ff6432 #c8b43c #1e78c8 #ffc896 #505050 #f0f0e6
Your response (hex codes only, no explanation):`

// FromDescription asks the LLM for exactly slots hex colors matching the
// description. A malformed response triggers one retry; a second failure
// surfaces as a GenerationError.
func (g *Generator) FromDescription(ctx context.Context, description string, current *models.Palette) (models.Palette, error) {
	if g.llm == nil {
		return models.Palette{}, &GenerationError{Reason: "no language model configured"}
	}

	reference := ""
	if current != nil && len(current.Colors) > 0 {
		reference = "Current palette for reference: " + current.Hex() + "\n"
	}
	prompt := fmt.Sprintf(generatePromptFmt, g.slots, description, reference, g.slots)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		text, err := g.llm.Complete(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		p, err := g.parseResponse(text)
		if err != nil {
			lastErr = err
			continue
		}
		return p, nil
	}
	return models.Palette{}, &GenerationError{
		Reason: "language model did not produce a usable palette",
		Err:    lastErr,
	}
}

// parseResponse validates the shape of the LLM output: exactly slots valid
// hex tokens, nothing fewer accepted.
func (g *Generator) parseResponse(text string) (models.Palette, error) {
	matches := hexColorRe.FindAllString(text, -1)
	if len(matches) < g.slots {
		return models.Palette{}, fmt.Errorf("expected %d hex colors, found %d", g.slots, len(matches))
	}
	p, err := ParseExplicit(strings.Join(matches[:g.slots], " "))
	if err != nil {
		return models.Palette{}, err
	}
	p.Source = models.ProvenanceGenerated
	return p, nil
}
