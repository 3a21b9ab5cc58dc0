package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ScoreFeed streams published score event payloads.
type ScoreFeed interface {
	Subscribe(ctx context.Context) (<-chan string, func() error)
}

type scoreMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// LiveScores pushes every score event to the websocket client until it
// disconnects.
func LiveScores(feed ScoreFeed, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// Read pump: detect client disconnect
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ch, closeFeed := feed.Subscribe(ctx)
		defer closeFeed()

		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-ch:
				if !ok {
					return
				}
				if !json.Valid([]byte(payload)) {
					logger.Warn("dropping malformed score event")
					continue
				}
				msg := scoreMessage{Type: "score_update", Data: json.RawMessage(payload)}
				if err := conn.WriteJSON(msg); err != nil {
					logger.Debug("websocket write failed", zap.Error(err))
					return
				}
			}
		}
	}
}
