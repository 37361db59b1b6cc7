package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
)

const wsWriteTimeout = 10 * time.Second

// Frame is the JSON message exchanged over the chat websocket.
type Frame struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Result *contractx.TurnResult `json:"result,omitempty"`
}

const (
	FrameWelcome = "welcome"
	FrameMessage = "message"
	FrameToken   = "token"
	FrameDone    = "done"
	FrameError   = "error"
)

// chatSocket runs a chat session for the lifetime of the connection: the
// session starts on connect, every inbound message frame is one turn, and
// the session ends when the socket closes.
func (s *Server) chatSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return isOriginAllowed(r, s.cfg.AllowedOrigins)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx := r.Context()
	welcome, err := s.svc.StartSession(ctx, sessionID)
	if err != nil {
		_ = writeFrame(conn, Frame{Type: FrameError, Text: publicMessage(err)})
		return
	}
	defer func() {
		if err := s.svc.EndSession(context.WithoutCancel(ctx), sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("end session on websocket close")
		}
	}()

	if err := writeFrame(conn, Frame{Type: FrameWelcome, Text: welcome}); err != nil {
		return
	}

	sink := contractx.SinkFunc(func(ctx context.Context, fragment string) error {
		return writeFrame(conn, Frame{Type: FrameToken, Text: fragment})
	})

	for {
		var in Frame
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Type != FrameMessage {
			continue
		}

		res, err := s.svc.HandleMessage(ctx, sessionID, in.Text, sink)
		switch {
		case errors.Is(err, contractx.ErrTurnCanceled):
			return
		case err != nil:
			if werr := writeFrame(conn, Frame{Type: FrameError, Text: publicMessage(err)}); werr != nil {
				return
			}
			continue
		}
		if err := writeFrame(conn, Frame{Type: FrameDone, Result: &res}); err != nil {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(f)
}

// isOriginAllowed accepts same-host requests, requests without an Origin
// header, and any origin listed in allowed ("*" allows all).
func isOriginAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
