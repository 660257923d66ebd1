package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicenotes/internal/app/events"
	"voicenotes/internal/app/summarizer"
)

// eventBuffer is how many changes a slow client may lag behind before
// it starts missing them.
const eventBuffer = 64

// ChangeSource is the subscription side of the orchestrator.
type ChangeSource interface {
	Subscribe(buffer int) (<-chan summarizer.Change, func())
}

// EventsHandler streams orchestrator changes as server-sent events.
type EventsHandler struct {
	source ChangeSource
}

func NewEventsHandler(source ChangeSource) *EventsHandler {
	return &EventsHandler{source: source}
}

// Stream handles GET /api/v1/events. Each change is sent as a "change"
// event carrying the same JSON published to Redis.
//
// @Summary Stream summary status changes
// @Description Server-sent events, one "change" event per persisted status transition
// @Tags events
// @Produce text/event-stream
// @Success 200 {object} events.Message "Stream of change events"
// @Router /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	changes, cancel := h.source.Subscribe(eventBuffer)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			c.SSEvent("change", events.NewMessage(change))
			c.Writer.Flush()
		}
	}
}
