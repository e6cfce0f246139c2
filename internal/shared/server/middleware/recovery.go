package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"offertanalys/internal/shared/server/respond"
	"offertanalys/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      rec,
				"route":      c.FullPath(),
				"method":     c.Request.Method,
				"stack":      string(debug.Stack()),
			}
			if id, ok := c.Get("quoteId"); ok {
				fields["quote_id"] = id
			}
			telemetry.Error("http.panic", fields)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "unexpected server error", nil)
		}()
		c.Next()
	}
}
