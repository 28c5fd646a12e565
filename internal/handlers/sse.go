package handlers

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/realtime"
	"github.com/storemesh/marketplace-backend/internal/requestdata"
)

// SSEHandler streams marketplace events to the authenticated user over
// server-sent events. Every client follows its own user channel; passing
// ?store_id= additionally follows that store's channel.
type SSEHandler struct {
	hub *realtime.Hub
}

func NewSSEHandler(hub *realtime.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

const sseHeartbeat = 25 * time.Second

func (sh *SSEHandler) Stream(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())

	events, unsubscribe := sh.hub.Subscribe(userID.String())
	defer unsubscribe()

	var storeEvents <-chan realtime.Event
	if raw := c.Query("store_id"); raw != "" {
		storeID, err := uuid.Parse(raw)
		if err == nil {
			ch, storeUnsub := sh.hub.Subscribe(storeID.String())
			defer storeUnsub()
			storeEvents = ch
		}
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			writeSSEEvent(c, ev)
			return true
		case ev, ok := <-storeEvents:
			if !ok {
				storeEvents = nil
				return true
			}
			writeSSEEvent(c, ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func writeSSEEvent(c *gin.Context, ev realtime.Event) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	c.SSEvent(ev.Name, string(payload))
}
