package hub

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/bft-labs/xstore/pkg/log"
)

const writeTimeout = 10 * time.Second

// wsHandler serves a Hub over websocket connections.
type wsHandler struct {
	hub    *Hub
	logger log.Logger
}

// Handler returns an http.Handler that upgrades each request to a websocket,
// sends the hub greeting and then answers every text message. The request's
// Origin header identifies the caller; a missing header is treated as a file
// context ("null").
func Handler(h *Hub, logger log.Logger) http.Handler {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &wsHandler{hub: h, logger: logger}
}

func (s *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	eventOrigin := r.Header.Get("Origin")
	if eventOrigin == "" {
		eventOrigin = "null"
	}

	// Origins are checked per request against the hub permissions.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", log.Err(err))
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	s.logger.Debug("hub connection opened", log.String("origin", eventOrigin))

	if err := s.write(ctx, conn, s.hub.Greeting(ctx)); err != nil {
		s.logger.Debug("greeting failed", log.Err(err))
		return
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				s.logger.Debug("hub connection read failed", log.Err(err))
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		out, ok := s.hub.Handle(ctx, eventOrigin, string(data))
		if !ok {
			continue
		}
		if err := s.write(ctx, conn, out); err != nil {
			s.logger.Debug("hub reply failed", log.Err(err))
			return
		}
	}
}

func (s *wsHandler) write(ctx context.Context, conn *websocket.Conn, msg string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(msg))
}
