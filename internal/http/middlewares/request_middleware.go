package middlewares

import (
	"log/slog"
	"time"

	"github.com/geocoder89/courseapi/internal/actorctx"
	"github.com/geocoder89/courseapi/internal/http/respond"
	"github.com/geocoder89/courseapi/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)

		if id == "" {
			id = uuid.NewString()
		}

		ctx.Writer.Header().Set(requestIDHeader, id)

		ctx.Set(respond.RequestIDKey, id)
		ctx.Request = ctx.Request.WithContext(observability.WithRequestID(ctx.Request.Context(), id))

		ctx.Next()
	}
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path // fallback (e.g. 404)
		}

		method := ctx.Request.Method

		ctx.Next()

		lat := time.Since(start)
		status := ctx.Writer.Status()

		logAttrs := []any{
			"method", method,
			"route", route,
			"status", status,
			"latency_ms", lat.Milliseconds(),
		}

		// request_id comes from the request context via the log handler
		if _, ok := observability.RequestIDFromContext(ctx.Request.Context()); !ok {
			logAttrs = append(logAttrs, "request_id", respond.RequestIDFrom(ctx))
		}

		// the identity lives on the request context, which handlers replace
		if u, ok := actorctx.UserFrom(ctx.Request.Context()); ok {
			logAttrs = append(logAttrs, "user_id", u.ID)
		}

		log.InfoContext(ctx.Request.Context(), "http_request", logAttrs...)
	}
}
