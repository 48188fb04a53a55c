package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/pssnndl/Recolorization/internal/engine"
	"github.com/pssnndl/Recolorization/pkg/models"
)

// wsInbound is a client frame. Type selects the action; unused fields stay
// empty.
type wsInbound struct {
	Type        string `json:"type"`
	Message     string `json:"message,omitempty"`
	ImageBase64 string `json:"image_b64,omitempty"`
	Index       *int   `json:"index,omitempty"`
}

// wsOutbound is a server frame.
type wsOutbound struct {
	Type  string        `json:"type"`
	State string        `json:"state,omitempty"`
	Data  *ChatResponse `json:"data,omitempty"`
	Error string        `json:"error,omitempty"`
}

// wsTurnTimeout bounds one turn driven over the socket.
const wsTurnTimeout = 2 * time.Minute

// handleWS streams a chat session over a websocket. Each inbound frame is
// one turn (or a candidate selection); the session sticks to the socket for
// its lifetime.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		sessionID = r.URL.Query().Get("session_id")
	}
	if sessionID == "" {
		sessionID = models.NewSession("").ID
	}
	ctx := r.Context()

	for {
		var in wsInbound
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}

		switch in.Type {
		case "text", "image":
			s.wsTurn(ctx, conn, sessionID, in)
		case "select_palette":
			s.wsSelect(ctx, conn, sessionID, in)
		default:
			s.wsError(ctx, conn, "unknown frame type "+in.Type)
		}
	}
}

func (s *Server) wsTurn(ctx context.Context, conn *websocket.Conn, sessionID string, in wsInbound) {
	var image []byte
	if in.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(in.ImageBase64)
		if err != nil {
			s.wsError(ctx, conn, "image_b64 is not valid base64")
			return
		}
		image = decoded
	}

	_ = wsjson.Write(ctx, conn, wsOutbound{Type: "status", State: "processing"})

	turnCtx, cancel := context.WithTimeout(ctx, wsTurnTimeout)
	defer cancel()
	reply, err := s.engine.HandleTurn(turnCtx, engine.TurnRequest{
		SessionID: sessionID,
		Message:   in.Message,
		Image:     image,
	})
	if err != nil {
		s.logger.Error("websocket turn failed", "session", sessionID, "error", err)
		s.wsError(ctx, conn, "internal error")
		return
	}

	resp := chatResponseFrom(reply)
	if err := wsjson.Write(ctx, conn, wsOutbound{Type: "reply", Data: &resp}); err != nil {
		s.logger.Warn("websocket write failed", "session", sessionID, "error", err)
	}
}

func (s *Server) wsSelect(ctx context.Context, conn *websocket.Conn, sessionID string, in wsInbound) {
	if in.Index == nil {
		s.wsError(ctx, conn, "select_palette requires an index")
		return
	}
	sess, err := s.engine.SelectCandidate(ctx, sessionID, *in.Index)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUnknownSession):
			s.wsError(ctx, conn, "unknown session")
		case errors.Is(err, engine.ErrNoSuchCandidate):
			s.wsError(ctx, conn, "candidate index out of range")
		default:
			s.logger.Error("select candidate", "session", sessionID, "error", err)
			s.wsError(ctx, conn, "internal error")
		}
		return
	}

	resp := ChatResponse{
		SessionID:  sess.ID,
		HasImage:   sess.HasImage(),
		HasPalette: true,
		Palette:    hexList(*sess.Palette),
		Version:    sess.Version,
	}
	_ = wsjson.Write(ctx, conn, wsOutbound{Type: "reply", Data: &resp})
}

func (s *Server) wsError(ctx context.Context, conn *websocket.Conn, msg string) {
	_ = wsjson.Write(ctx, conn, wsOutbound{Type: "error", Error: msg})
}
