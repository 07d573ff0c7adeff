package server

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richinex/arbiter/comparison"
	"github.com/richinex/arbiter/model"
	"go.uber.org/zap"
)

const heartbeatInterval = 15 * time.Second

// events streams the state as server-sent events: one "state" event on
// connect and one after every change. Slow clients only see the latest state.
func (s *Server) events(c *gin.Context) {
	latest := make(chan model.State, 1)
	unsubscribe := s.store.Subscribe(func(st model.State) {
		for {
			select {
			case latest <- st:
				return
			default:
			}
			select {
			case <-latest:
			default:
			}
		}
	})
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	send := func(st model.State) bool {
		data, err := comparison.Encode(st)
		if err != nil {
			s.log.Error("failed to encode state event", zap.Error(err))
			return false
		}
		c.SSEvent("state", json.RawMessage(data))
		c.Writer.Flush()
		return true
	}

	if !send(s.store.Snapshot()) {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-latest:
			if !send(st) {
				return
			}
		case <-heartbeat.C:
			c.SSEvent("ping", "")
			c.Writer.Flush()
		}
	}
}
