// Package respond writes every error response of the API. Bad requests use
// the {"errors": [...]} shape; all other kinds use the error envelope.
package respond

import (
	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the request id middleware writes.
const RequestIDKey = "request_id"

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type BadRequestBody struct {
	Errors []string `json:"errors"`
}

func RequestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(RequestIDKey)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// Abort writes err and stops the handler chain.
func Abort(ctx *gin.Context, err *apierr.Error) {
	if err.Kind == apierr.KindBadRequest {
		ctx.AbortWithStatusJSON(err.Kind.Status(), BadRequestBody{Errors: err.Messages})
		return
	}

	body := APIError{
		Code:    err.Kind.Code(),
		Message: err.Message(),
	}
	// 401 bodies must not differ between requests; the id stays in the
	// X-Request-Id header
	if err.Kind != apierr.KindUnauthenticated {
		body.RequestID = RequestIDFrom(ctx)
	}

	ctx.AbortWithStatusJSON(err.Kind.Status(), gin.H{"error": body})
}

// Fail hands err to the fault boundary without writing anything.
func Fail(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	ctx.Abort()
}
