package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pssnndl/Recolorization/internal/engine"
	"github.com/pssnndl/Recolorization/pkg/models"
)

// maxRequestBody bounds the decoded chat request; the image ceiling itself
// is enforced downstream by the validator.
const maxRequestBody = 16 << 20

// ChatRequest is one inbound chat turn over HTTP. Images travel as base64
// so the endpoint stays plain JSON.
type ChatRequest struct {
	SessionID     string `json:"session_id,omitempty"`
	Message       string `json:"message,omitempty"`
	ImageBase64   string `json:"image_b64,omitempty"`
	ImageFilename string `json:"image_filename,omitempty"`
}

// CandidatePayload is one stored palette suggestion.
type CandidatePayload struct {
	Palette     []string `json:"palette"`
	Description string   `json:"description,omitempty"`
}

// ChatResponse is the reply plus a snapshot of the session state the
// front end renders from.
type ChatResponse struct {
	SessionID    string             `json:"session_id"`
	Reply        string             `json:"reply"`
	Intents      []string           `json:"intents,omitempty"`
	HasImage     bool               `json:"has_image"`
	HasPalette   bool               `json:"has_palette"`
	Palette      []string           `json:"palette,omitempty"`
	Candidates   []CandidatePayload `json:"candidates,omitempty"`
	ResultBase64 string             `json:"result_b64,omitempty"`
	RecolorCount int                `json:"recolor_count"`
	Version      int64              `json:"version"`
	Error        string             `json:"error,omitempty"`
}

func chatResponseFrom(reply *engine.TurnReply) ChatResponse {
	s := reply.Session
	resp := ChatResponse{
		SessionID:    reply.SessionID,
		Reply:        reply.Message,
		HasImage:     s.HasImage(),
		HasPalette:   s.HasPalette(),
		RecolorCount: s.RecolorCount,
		Version:      s.Version,
	}
	for _, in := range reply.Intents {
		resp.Intents = append(resp.Intents, string(in))
	}
	if s.HasPalette() {
		resp.Palette = hexList(*s.Palette)
	}
	for _, c := range s.Candidates {
		resp.Candidates = append(resp.Candidates, CandidatePayload{
			Palette:     hexList(c.Palette),
			Description: c.Description,
		})
	}
	if len(reply.Result) > 0 {
		resp.ResultBase64 = base64.StdEncoding.EncodeToString(reply.Result)
	}
	return resp
}

func hexList(p models.Palette) []string {
	out := make([]string, 0, len(p.Colors))
	for _, c := range p.Colors {
		out = append(out, c.Hex())
	}
	return out
}

// handleChat runs one turn. Validation problems come back 400 with the
// user-facing reason; infrastructure faults come back 500.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" && req.ImageBase64 == "" {
		s.respondError(w, http.StatusBadRequest, "message or image required")
		return
	}

	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "image_b64 is not valid base64")
			return
		}
		image = decoded
	}

	reply, err := s.engine.HandleTurn(r.Context(), engine.TurnRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
		Image:     image,
	})
	if err != nil {
		s.logger.Error("turn failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.respondJSON(w, http.StatusOK, chatResponseFrom(reply))
}

// handleSelectPalette promotes a stored candidate to the active palette.
// The mutation runs inside the engine so it queues behind any in-flight
// turn for the same session.
func (s *Server) handleSelectPalette(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	sess, err := s.engine.SelectCandidate(r.Context(), sessionID, index)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUnknownSession):
			s.respondError(w, http.StatusNotFound, "unknown session")
		case errors.Is(err, engine.ErrNoSuchCandidate):
			s.respondError(w, http.StatusBadRequest, "candidate index out of range")
		default:
			s.logger.Error("select candidate", "session", sessionID, "error", err)
			s.respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.respondJSON(w, http.StatusOK, sessionStateFrom(sess))
}

// SessionState is the read-only snapshot served to pollers.
type SessionState struct {
	SessionID    string             `json:"session_id"`
	HasImage     bool               `json:"has_image"`
	HasPalette   bool               `json:"has_palette"`
	Palette      []string           `json:"palette,omitempty"`
	Candidates   []CandidatePayload `json:"candidates,omitempty"`
	RecolorCount int                `json:"recolor_count"`
	Version      int64              `json:"version"`
	Messages     int                `json:"messages"`
}

func sessionStateFrom(sess *models.Session) SessionState {
	st := SessionState{
		SessionID:    sess.ID,
		HasImage:     sess.HasImage(),
		HasPalette:   sess.HasPalette(),
		RecolorCount: sess.RecolorCount,
		Version:      sess.Version,
		Messages:     len(sess.Messages),
	}
	if sess.HasPalette() {
		st.Palette = hexList(*sess.Palette)
	}
	for _, c := range sess.Candidates {
		st.Candidates = append(st.Candidates, CandidatePayload{
			Palette:     hexList(c.Palette),
			Description: c.Description,
		})
	}
	return st
}

// handleGetSession returns the current session state without running a turn.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := s.store.Get(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("load session", "session", sessionID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if sess == nil {
		s.respondError(w, http.StatusNotFound, "unknown session")
		return
	}
	s.respondJSON(w, http.StatusOK, sessionStateFrom(sess))
}
