// Package authz decides whether an authenticated identity may mutate a course.
package authz

import (
	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/geocoder89/courseapi/internal/domain/course"
	"github.com/geocoder89/courseapi/internal/domain/user"
)

// CheckOwnership answers NotFound when c is nil and Forbidden when identity
// does not own c. Existence is always checked first.
func CheckOwnership(identity user.User, c *course.Course, requestedID string) error {
	if c == nil {
		return apierr.NotFound("Course", requestedID)
	}

	if c.UserID != identity.ID {
		return apierr.Forbidden()
	}

	return nil
}
