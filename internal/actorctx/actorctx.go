// Package actorctx carries the authenticated identity, and the course the
// ownership guard resolved, through a single request's context.
package actorctx

import (
	"context"

	"github.com/geocoder89/courseapi/internal/domain/course"
	"github.com/geocoder89/courseapi/internal/domain/user"
)

type ctxKey int

const (
	keyUser ctxKey = iota
	keyCourse
)

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, keyUser, u)
}

func UserFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(keyUser).(user.User)

	return u, ok && u.ID != ""
}

func WithCourse(ctx context.Context, c course.Course) context.Context {
	return context.WithValue(ctx, keyCourse, c)
}

func CourseFrom(ctx context.Context) (course.Course, bool) {
	c, ok := ctx.Value(keyCourse).(course.Course)

	return c, ok && c.ID != ""
}
