package respond

import (
	"errors"

	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/geocoder89/courseapi/internal/domain/validation"
	"github.com/gin-gonic/gin"
)

// WriteError translates the outcome of a failed write. Field and uniqueness
// violations become a 400, taxonomy errors keep their kind, and anything else
// is passed on unchanged to the fault boundary.
func WriteError(ctx *gin.Context, err error) {
	var (
		fieldErr  *validation.FieldViolations
		uniqueErr *validation.UniqueViolation
		apiErr    *apierr.Error
	)

	switch {
	case errors.As(err, &fieldErr):
		Abort(ctx, apierr.BadRequest(fieldErr.Messages()...))
	case errors.As(err, &uniqueErr):
		Abort(ctx, apierr.BadRequest(uniqueErr.Message))
	case errors.As(err, &apiErr) && apiErr.Kind != apierr.KindFault:
		Abort(ctx, apiErr)
	default:
		Fail(ctx, err)
	}
}
