package stream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	julia "github.com/marben/juliaset"
)

const writeTimeout = 5 * time.Second

// ServeHTTP upgrades the request to a websocket and streams hub messages
// until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		julia.Logger().Warn("stream: accept", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer c.CloseNow()

	// watchers never send; CloseRead handles control frames and cancels ctx on close.
	ctx := c.CloseRead(r.Context())

	msgs, stop := h.Watch()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return
		case m := <-msgs:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c, m)
			cancel()
			if err != nil {
				julia.Logger().Debug("stream: write", "remote", r.RemoteAddr, "err", err)
				return
			}
		}
	}
}

// Watch dials the websocket at url and hands every message to fn until fn
// returns false, ctx is done or the connection fails.
func Watch(ctx context.Context, url string, fn func(Message) bool) error {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("websocket.Dial: %w", err)
	}
	defer c.CloseNow()

	for {
		var m Message
		if err := wsjson.Read(ctx, c, &m); err != nil {
			return fmt.Errorf("wsjson.Read: %w", err)
		}
		if !fn(m) {
			return c.Close(websocket.StatusNormalClosure, "")
		}
	}
}
