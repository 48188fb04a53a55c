// Package intent provides deterministic, rule-based classification of user
// messages into the engine's intent set. Classification is pure and total:
// it never fails, never calls out, and identical input always yields the
// same intents.
package intent

import (
	"regexp"
	"strings"

	"github.com/pssnndl/Recolorization/pkg/models"
)

var (
	hexTokenRe = regexp.MustCompile(`#[0-9a-fA-F]{6}\b`)
	rgbTokenRe = regexp.MustCompile(`rgb\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*\)`)
)

// Keyword tables, checked against the lowercased message. Ordered so that
// more specific phrases are listed before the generic ones they contain.
var (
	extractKeywords = []string{
		"extract", "dominant color", "from the image", "from my image",
		"from this image", "colors in the image",
	}
	fetchKeywords = []string{
		"random palette", "suggest a palette", "suggest one", "surprise me",
		"harmonious palette", "pick a palette for me",
	}
	variationKeywords = []string{
		"warmer", "cooler", "bolder", "more vibrant", "more saturated",
		"subtler", "more subtle", "softer", "more muted", "complementary",
		"complement", "invert the palette", "opposite colors",
	}
	recolorKeywords = []string{
		"recolor", "recolour", "repaint", "apply", "transform",
	}
	describeKeywords = []string{
		"palette", "color scheme", "colours", "colors",
	}
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Classify maps a user message plus attachment presence to a set of intents.
// Multiple non-conflicting intents may co-fire; when nothing matches, the
// result is exactly {converse}.
func Classify(text string, hasAttachment bool) []models.Intent {
	lower := strings.ToLower(text)
	var intents []models.Intent

	add := func(in models.Intent) {
		if !models.HasIntent(intents, in) {
			intents = append(intents, in)
		}
	}

	if hasAttachment {
		add(models.IntentUploadImage)
	}
	if hexTokenRe.MatchString(text) || rgbTokenRe.MatchString(lower) {
		add(models.IntentSetPaletteHex)
	}
	if containsAny(lower, extractKeywords) {
		add(models.IntentExtractFromImage)
	}
	if containsAny(lower, fetchKeywords) {
		add(models.IntentFetchExternal)
	}
	if containsAny(lower, variationKeywords) {
		add(models.IntentRequestVariation)
	}
	if containsAny(lower, recolorKeywords) {
		add(models.IntentRequestRecolor)
	}

	// A palette mention with no more specific palette intent is a request
	// to build one from the description ("show me a sunset palette").
	if containsAny(lower, describeKeywords) &&
		!models.HasIntent(intents, models.IntentSetPaletteHex) &&
		!models.HasIntent(intents, models.IntentExtractFromImage) &&
		!models.HasIntent(intents, models.IntentFetchExternal) &&
		!models.HasIntent(intents, models.IntentRequestVariation) {
		add(models.IntentDescribePalette)
	}

	if len(intents) == 0 {
		add(models.IntentConverse)
	}
	return intents
}
