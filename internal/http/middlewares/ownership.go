package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/courseapi/internal/actorctx"
	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/geocoder89/courseapi/internal/authz"
	"github.com/geocoder89/courseapi/internal/domain/course"
	"github.com/geocoder89/courseapi/internal/http/respond"
	"github.com/gin-gonic/gin"
)

type CourseFinder interface {
	GetByID(ctx context.Context, id string) (course.Course, error)
}

type OwnershipGuard struct {
	courses CourseFinder
	timeout time.Duration
}

func NewOwnershipGuard(courses CourseFinder) *OwnershipGuard {
	return &OwnershipGuard{courses: courses, timeout: 2 * time.Second}
}

// RequireCourseOwner loads the course named by :id and lets the request
// through only for its owner. It must run after RequireAuth.
func (g *OwnershipGuard) RequireCourseOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := actorctx.UserFrom(c.Request.Context())
		if !ok {
			respond.Abort(c, apierr.Unauthenticated())
			return
		}

		id := c.Param("id")

		found, err := g.lookup(c.Request.Context(), id)
		if err != nil {
			respond.Fail(c, err)
			return
		}

		if err := authz.CheckOwnership(identity, found, id); err != nil {
			respond.WriteError(c, err)
			return
		}

		c.Request = c.Request.WithContext(actorctx.WithCourse(c.Request.Context(), *found))

		c.Next()
	}
}

// lookup returns nil without an error when the course does not exist.
func (g *OwnershipGuard) lookup(ctx context.Context, id string) (*course.Course, error) {
	if !course.ValidID(id) {
		return nil, nil
	}

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	found, err := g.courses.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, course.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &found, nil
}
