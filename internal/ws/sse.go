package ws

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const keepAlivePeriod = 25 * time.Second

// ServeSSE streams refresh pings as Server-Sent Events.
func ServeSSE(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := hub.Subscribe()
		defer hub.Unsubscribe(sub)
		sub.C <- RefreshMessage

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		keepAlive := time.NewTicker(keepAlivePeriod)
		defer keepAlive.Stop()

		ctx := c.Request.Context()
		c.Stream(func(w io.Writer) bool {
			select {
			case msg, ok := <-sub.C:
				if !ok {
					return false
				}
				c.SSEvent("message", msg)
				return true
			case <-keepAlive.C:
				c.SSEvent("keepalive", "")
				return true
			case <-ctx.Done():
				return false
			}
		})
	}
}
