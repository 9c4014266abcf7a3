package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/ranked/internal/live"
	"github.com/jason-s-yu/ranked/internal/middleware"
)

const wsWriteTimeout = 5 * time.Second

// StreamHandler serves the live leaderboard as server-sent events. The
// first event is {"type":"connected"}; each committed rating change sends
// {"type":"update","time":<unix ms>}. The stream stays open until the
// client goes away or a write fails.
func (s *Server) StreamHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx
	w.WriteHeader(http.StatusOK)

	sub := s.Hub.Subscribe()
	defer s.Hub.Unsubscribe(sub.ID)
	middleware.LogStreamConnect(s.Logger, r.RemoteAddr, "sse", s.Hub.Len())

	var streamErr error
	defer func() {
		middleware.LogStreamDisconnect(s.Logger, r.RemoteAddr, "sse", streamErr)
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub.Events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				streamErr = err
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				streamErr = err
				return
			}
			flusher.Flush()
		}
	}
}

// WSHandler carries the same events as StreamHandler over a WebSocket, one
// JSON text message per event. Client messages are ignored.
func (s *Server) WSHandler(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.Logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	// CloseRead drains client frames and cancels ctx once the peer closes.
	ctx := c.CloseRead(r.Context())

	sub := s.Hub.Subscribe()
	defer s.Hub.Unsubscribe(sub.ID)
	middleware.LogStreamConnect(s.Logger, r.RemoteAddr, "ws", s.Hub.Len())

	err = s.pumpEvents(ctx, c, sub.Events)
	middleware.LogStreamDisconnect(s.Logger, r.RemoteAddr, "ws", err)
	if err == nil {
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// pumpEvents writes events until the peer leaves, a write fails, or the hub
// drops the subscriber.
func (s *Server) pumpEvents(ctx context.Context, c *websocket.Conn, events <-chan live.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, open := <-events:
			if !open {
				c.Close(HubClosedError, "removed from update hub")
				return nil
			}
			wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(wctx, c, ev)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
