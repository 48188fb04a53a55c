package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn entry. Immutable once appended to a session.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text,omitempty"`
	HasImage  bool      `json:"has_image,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ImageAsset is a validated, normalized image held by a session. Bytes are
// immutable: replacing the image creates a new asset with a new fingerprint.
type ImageAsset struct {
	Bytes       []byte `json:"bytes"`
	Format      string `json:"format"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Fingerprint string `json:"fingerprint"`
}

// NewImageAsset builds an asset and computes its content fingerprint.
func NewImageAsset(data []byte, format string, width, height int) *ImageAsset {
	return &ImageAsset{
		Bytes:       data,
		Format:      format,
		Width:       width,
		Height:      height,
		Fingerprint: Fingerprint(data),
	}
}

// Fingerprint returns the content fingerprint for a byte slice.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Session is the per-conversation state. All mutation goes through the
// session store; agent nodes only produce deltas that the engine merges.
type Session struct {
	ID         string             `json:"id"`
	Messages   []Message          `json:"messages"`
	Image      *ImageAsset        `json:"image,omitempty"`
	Palette    *Palette           `json:"palette,omitempty"`
	Candidates []PaletteCandidate `json:"candidates,omitempty"`

	// PendingRecolor is set when the user asked to recolor before both
	// prerequisites were present; a later turn that completes the pair
	// triggers the recolor without the user repeating the request.
	PendingRecolor bool `json:"pending_recolor,omitempty"`

	RecolorCount int       `json:"recolor_count"`
	Version      int64     `json:"version"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSession creates an empty session. If id is empty an ID is issued.
func NewSession(id string) *Session {
	if id == "" {
		id = uuid.New().String()
	}
	return &Session{ID: id, UpdatedAt: time.Now().UTC()}
}

// Append adds a message to the session transcript.
func (s *Session) Append(m Message) {
	s.Messages = append(s.Messages, m)
}

// HasImage reports whether a validated image asset is present.
func (s *Session) HasImage() bool {
	return s.Image != nil && len(s.Image.Bytes) > 0
}

// HasPalette reports whether a usable palette is present.
func (s *Session) HasPalette() bool {
	return s.Palette != nil && len(s.Palette.Colors) > 0
}

// LastUserText returns the text of the most recent user message, or "".
func (s *Session) LastUserText() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Text
		}
	}
	return ""
}
