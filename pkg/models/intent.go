package models

// Intent is a classified user intention for a single turn. A turn may carry
// several intents at once ("upload image and recolor with a sunset palette").
type Intent string

const (
	IntentUploadImage      Intent = "upload_image"
	IntentSetPaletteHex    Intent = "set_palette_hex"
	IntentDescribePalette  Intent = "describe_palette"
	IntentExtractFromImage Intent = "extract_from_image"
	IntentFetchExternal    Intent = "fetch_external"
	IntentRequestVariation Intent = "request_variation"
	IntentRequestRecolor   Intent = "request_recolor"
	IntentConverse         Intent = "converse"
	IntentUnknown          Intent = "unknown"
)

// validIntents is the closed set of intents the engine dispatches on.
var validIntents = map[Intent]bool{
	IntentUploadImage:      true,
	IntentSetPaletteHex:    true,
	IntentDescribePalette:  true,
	IntentExtractFromImage: true,
	IntentFetchExternal:    true,
	IntentRequestVariation: true,
	IntentRequestRecolor:   true,
	IntentConverse:         true,
	IntentUnknown:          true,
}

// Valid reports whether the intent is a member of the enumerated set.
func (i Intent) Valid() bool { return validIntents[i] }

// ParseIntent converts a stored tag back into an Intent. Unrecognized tags
// map to IntentUnknown so old session payloads never poison a turn.
func ParseIntent(s string) Intent {
	if in := Intent(s); in.Valid() {
		return in
	}
	return IntentUnknown
}

// HasIntent reports whether the given intent is present in the set.
func HasIntent(set []Intent, want Intent) bool {
	for _, in := range set {
		if in == want {
			return true
		}
	}
	return false
}
