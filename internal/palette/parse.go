package palette

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/pssnndl/Recolorization/pkg/models"
)

var (
	hexColorRe = regexp.MustCompile(`#([0-9a-fA-F]{6})\b`)
	rgbColorRe = regexp.MustCompile(`(?i)rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)`)
)

type parsedToken struct {
	pos   int
	color models.Color
}

// ParseExplicit extracts #RRGGBB and rgb(r,g,b) tokens from text, in input
// order. Malformed tokens (e.g. rgb channels above 255) are skipped; if no
// valid token remains the result is a ParseError.
func ParseExplicit(text string) (models.Palette, error) {
	var tokens []parsedToken

	for _, m := range hexColorRe.FindAllStringSubmatchIndex(text, -1) {
		hex := text[m[2]:m[3]]
		r, _ := strconv.ParseUint(hex[0:2], 16, 8)
		g, _ := strconv.ParseUint(hex[2:4], 16, 8)
		b, _ := strconv.ParseUint(hex[4:6], 16, 8)
		tokens = append(tokens, parsedToken{
			pos:   m[0],
			color: models.Color{R: uint8(r), G: uint8(g), B: uint8(b)},
		})
	}

	for _, m := range rgbColorRe.FindAllStringSubmatchIndex(text, -1) {
		r, errR := strconv.Atoi(text[m[2]:m[3]])
		g, errG := strconv.Atoi(text[m[4]:m[5]])
		b, errB := strconv.Atoi(text[m[6]:m[7]])
		if errR != nil || errG != nil || errB != nil {
			continue
		}
		if r > 255 || g > 255 || b > 255 {
			continue
		}
		tokens = append(tokens, parsedToken{
			pos:   m[0],
			color: models.Color{R: uint8(r), G: uint8(g), B: uint8(b)},
		})
	}

	if len(tokens) == 0 {
		return models.Palette{}, &ParseError{
			Reason: "no valid color tokens found; use #RRGGBB or rgb(r,g,b)",
		}
	}

	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].pos < tokens[j].pos })

	colors := make([]models.Color, len(tokens))
	for i, tok := range tokens {
		colors[i] = tok.color
	}
	return models.Palette{Colors: colors, Source: models.ProvenanceUser}, nil
}
