// Package palette implements the palette derivation engine: parsing explicit
// colors, extracting dominant colors from images, generating palettes via the
// LLM gateway, fetching from the external palette API, and color-space
// variations. All operations are deterministic except the two that delegate
// to external services.
package palette

// ParseError means a message carried no usable explicit color tokens.
// Reported to the user verbatim.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return e.Reason }

// GenerationError means the LLM failed to produce a well-formed palette
// even after the bounded retry.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }
