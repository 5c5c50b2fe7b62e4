package middlewares

import (
	"fmt"
	"log/slog"

	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/geocoder89/courseapi/internal/http/respond"
	"github.com/gin-gonic/gin"
)

// FaultBoundary must be the first middleware. Errors attached with ctx.Error
// and panics anywhere below it end as a generic 500 unless a response was
// already written. The cause is only logged.
func FaultBoundary(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			log.ErrorContext(c.Request.Context(), "panic recovered",
				"panic", r,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", respond.RequestIDFrom(c),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Abort(c, apierr.Fault(fmt.Errorf("panic: %v", r)))
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		log.ErrorContext(c.Request.Context(), "request failed",
			"err", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", respond.RequestIDFrom(c),
		)

		if !c.Writer.Written() {
			respond.Abort(c, apierr.Fault(err))
		}
	}
}
