package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const heartbeatInterval = 30 * time.Second

// ServeSSE streams a channel's events to the client as server-sent events
// until the client disconnects. A comment heartbeat keeps intermediaries
// from timing the connection out.
func (h *Hub) ServeSSE(c echo.Context, channel string) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	sub := h.Subscribe(channel)
	defer h.Unsubscribe(channel, sub)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev, ok := <-sub:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev.Payload)
			if err != nil {
				h.log.Warn("dropping unmarshalable event payload")
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Event, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
