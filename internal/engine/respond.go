package engine

import (
	"errors"
	"strings"

	"github.com/pssnndl/Recolorization/internal/gateway"
	"github.com/pssnndl/Recolorization/internal/imaging"
	"github.com/pssnndl/Recolorization/internal/palette"
)

// defaultReply is the floor: a turn always gets exactly one reply, even
// when every branch failed or produced nothing.
const defaultReply = "I can recolor images for you. Upload one and tell me the colors you'd like."

// composeReply merges branch fragments into one reply in fixed precedence:
// errors, then the join-missing prompt, then generated content, then
// conversational filler. Deterministic regardless of branch finish order.
func composeReply(outcomes []AgentOutcome, joinPrompt string) string {
	var parts []string

	for _, o := range outcomes {
		if o.Err != nil {
			parts = append(parts, renderError(o.Err))
		}
	}
	if joinPrompt != "" {
		parts = append(parts, joinPrompt)
	}
	for _, o := range outcomes {
		if o.Err == nil && o.Fragment != "" && o.Node != NodeChat {
			parts = append(parts, o.Fragment)
		}
	}
	for _, o := range outcomes {
		if o.Err == nil && o.Fragment != "" && o.Node == NodeChat {
			parts = append(parts, o.Fragment)
		}
	}

	if len(parts) == 0 {
		return defaultReply
	}
	return strings.Join(parts, " ")
}

// renderError turns a branch failure into user-facing text. The session
// keeps its image and palette across failures, and the phrasing says so
// where a retry is worthwhile.
func renderError(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Msg
	}

	var valErr *imaging.ValidationError
	if errors.As(err, &valErr) {
		return "I couldn't use that image: " + valErr.Reason + "."
	}

	var parseErr *palette.ParseError
	if errors.As(err, &parseErr) {
		return "I couldn't read those colors: " + parseErr.Reason + "."
	}

	var genErr *palette.GenerationError
	if errors.As(err, &genErr) {
		return "I couldn't come up with a palette for that: " + genErr.Reason + ". Try describing it differently."
	}

	var timeoutErr *gateway.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "The recoloring model took too long to answer. Your image and palette are saved; ask me to try again."
	}

	var infErr *gateway.InferenceError
	if errors.As(err, &infErr) {
		return "Recoloring failed: " + infErr.Msg + ". Your image and palette are saved; ask me to try again."
	}

	return "Something went wrong with part of that request: " + err.Error() + "."
}
